package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"smartstudio/internal/domain"
)

const (
	premiumItemName        = "Smart Studio Premium - מנוי חודשי"
	premiumItemDescription = "גישה מלאה לכל התכונות - יצירות ללא הגבלה"
	defaultCustomerName    = "Smart Studio User"
	currencyILS            = "ILS"
)

// Gateway creates hosted payment pages.
type Gateway interface {
	BeginRedirect(ctx context.Context, req BeginRedirectRequest) (string, error)
}

// CheckoutRequest is the client's checkout body.
type CheckoutRequest struct {
	Plan      string `json:"plan"`
	ReturnURL string `json:"returnUrl"`
}

type CheckoutResult struct {
	PaymentURL string `json:"paymentUrl"`
	OrderID    string `json:"orderId"`
}

type CheckoutOptions struct {
	BaseURL string
	Price   float64
	Now     func() time.Time
}

// Checkout starts premium purchases. A nil gateway means payments are not configured.
type Checkout struct {
	gateway  Gateway
	payments domain.PaymentRepository
	baseURL  string
	price    float64
	now      func() time.Time
}

func NewCheckout(gateway Gateway, payments domain.PaymentRepository, opts CheckoutOptions) *Checkout {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Checkout{
		gateway:  gateway,
		payments: payments,
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		price:    opts.Price,
		now:      now,
	}
}

// Configured reports whether a gateway is available.
func (c *Checkout) Configured() bool {
	return c != nil && c.gateway != nil
}

// Create opens a hosted payment page for ident and records a pending payment.
func (c *Checkout) Create(ctx context.Context, ident domain.Identity, req CheckoutRequest) (*CheckoutResult, error) {
	if domain.Plan(req.Plan) != domain.PlanPremium {
		return nil, domain.ErrInvalidPlan
	}
	if !c.Configured() {
		return nil, fmt.Errorf("payment gateway: %w", domain.ErrNotConfigured)
	}

	base := strings.TrimRight(strings.TrimSpace(req.ReturnURL), "/")
	if base == "" {
		base = c.baseURL
	}
	orderID := OrderID(ident.ID, c.now())

	paymentURL, err := c.gateway.BeginRedirect(ctx, BeginRedirectRequest{
		Customer: SumitCustomer{
			Name:               customerName(ident.Email),
			EmailAddress:       ident.Email,
			ExternalIdentifier: ident.ID,
		},
		Items: []SumitItem{{
			Item:      SumitItemDetails{Name: premiumItemName, Description: premiumItemDescription},
			Quantity:  1,
			UnitPrice: c.price,
		}},
		VATIncluded:              true,
		RedirectURL:              base + "/payment/success",
		CancelRedirectURL:        base + "/payment/cancel",
		IPNURL:                   base + "/api/payments?action=webhook",
		ExternalIdentifier:       orderID,
		MaximumPayments:          1,
		SendUpdateByEmailAddress: ident.Email,
		Language:                 "he",
	})
	if err != nil {
		return nil, err
	}

	record := &domain.PaymentRecord{
		OrderID:    orderID,
		UserID:     ident.ID,
		UserEmail:  ident.Email,
		Plan:       domain.PlanPremium,
		Amount:     c.price,
		Currency:   currencyILS,
		PaymentURL: paymentURL,
	}
	if err := c.payments.CreatePending(ctx, record); err != nil {
		// The customer already has a payment page; settlement creates the record if this one is missing.
		zerolog.Ctx(ctx).Error().Err(err).Str("order_id", orderID).Msg("store pending payment failed")
	}

	zerolog.Ctx(ctx).Info().Str("user_id", ident.ID).Str("order_id", orderID).Msg("checkout created")
	return &CheckoutResult{PaymentURL: paymentURL, OrderID: orderID}, nil
}

// OrderID builds the gateway external identifier order_<userID>_<unix ms>.
func OrderID(userID string, at time.Time) string {
	return fmt.Sprintf("order_%s_%d", userID, at.UnixMilli())
}

func customerName(email string) string {
	if local, _, ok := strings.Cut(email, "@"); ok && local != "" {
		return local
	}
	return defaultCustomerName
}

// IsGatewayRejection reports whether err is a gateway-side rejection.
func IsGatewayRejection(err error) (*GatewayError, bool) {
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return gwErr, true
	}
	return nil, false
}
