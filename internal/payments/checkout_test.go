package payments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartstudio/internal/adapter/repo"
	"smartstudio/internal/domain"
)

type fakeGateway struct {
	got BeginRedirectRequest
	url string
	err error
}

func (f *fakeGateway) BeginRedirect(_ context.Context, req BeginRedirectRequest) (string, error) {
	f.got = req
	return f.url, f.err
}

var fixedNow = func() time.Time { return time.UnixMilli(1700000000123) }

func TestCheckoutCreate(t *testing.T) {
	ctx := context.Background()
	store := repo.NewMemoryStore()
	gw := &fakeGateway{url: "https://pay.example/xyz"}
	checkout := NewCheckout(gw, store, CheckoutOptions{BaseURL: "https://studio.example/", Price: 49, Now: fixedNow})

	res, err := checkout.Create(ctx, domain.Identity{ID: "uid_1", Email: "dana@example.com"}, CheckoutRequest{Plan: "premium"})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/xyz", res.PaymentURL)
	assert.Equal(t, "order_uid_1_1700000000123", res.OrderID)

	req := gw.got
	assert.Equal(t, "dana", req.Customer.Name)
	assert.Equal(t, "uid_1", req.Customer.ExternalIdentifier)
	assert.Equal(t, "https://studio.example/payment/success", req.RedirectURL)
	assert.Equal(t, "https://studio.example/payment/cancel", req.CancelRedirectURL)
	assert.Equal(t, "https://studio.example/api/payments?action=webhook", req.IPNURL)
	assert.Equal(t, 1, req.MaximumPayments)
	assert.True(t, req.VATIncluded)
	assert.Equal(t, "he", req.Language)
	require.Len(t, req.Items, 1)
	assert.Equal(t, 49.0, req.Items[0].UnitPrice)
	assert.Equal(t, "Smart Studio Premium - מנוי חודשי", req.Items[0].Item.Name)

	rec, err := store.GetByOrderID(ctx, res.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPending, rec.Status)
	assert.Equal(t, "uid_1", rec.UserID)
	assert.Equal(t, "ILS", rec.Currency)
	assert.Equal(t, "https://pay.example/xyz", rec.PaymentURL)
}

func TestCheckoutReturnURLOverride(t *testing.T) {
	gw := &fakeGateway{url: "u"}
	checkout := NewCheckout(gw, repo.NewMemoryStore(), CheckoutOptions{BaseURL: "https://default.example", Price: 49, Now: fixedNow})

	_, err := checkout.Create(context.Background(), domain.Identity{ID: "u1"}, CheckoutRequest{Plan: "premium", ReturnURL: "https://preview.example/"})
	require.NoError(t, err)
	assert.Equal(t, "https://preview.example/payment/success", gw.got.RedirectURL)
	assert.Equal(t, "Smart Studio User", gw.got.Customer.Name)
}

func TestCheckoutErrors(t *testing.T) {
	ctx := context.Background()
	ident := domain.Identity{ID: "u1"}

	_, err := NewCheckout(&fakeGateway{}, repo.NewMemoryStore(), CheckoutOptions{}).Create(ctx, ident, CheckoutRequest{Plan: "gold"})
	assert.ErrorIs(t, err, domain.ErrInvalidPlan)

	_, err = NewCheckout(nil, repo.NewMemoryStore(), CheckoutOptions{}).Create(ctx, ident, CheckoutRequest{Plan: "premium"})
	assert.ErrorIs(t, err, domain.ErrNotConfigured)

	store := repo.NewMemoryStore()
	gw := &fakeGateway{err: &GatewayError{Status: "GeneralError", Details: "declined"}}
	_, err = NewCheckout(gw, store, CheckoutOptions{Now: fixedNow}).Create(ctx, ident, CheckoutRequest{Plan: "premium"})
	_, ok := IsGatewayRejection(err)
	assert.True(t, ok)
	_, err = store.GetByOrderID(ctx, OrderID("u1", fixedNow()))
	assert.True(t, errors.Is(err, domain.ErrNotFound), "no pending record on rejection")
}
