package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"smartstudio/internal/domain"
	"smartstudio/internal/sqlinline"
)

func TestCreatePendingDefaults(t *testing.T) {
	exec := &scriptedExecutor{}
	repo := NewPaymentRepository(exec)

	rec := &domain.PaymentRecord{OrderID: "order_u1_1700000000000", UserID: "u1", Amount: 49}
	if err := repo.CreatePending(context.Background(), rec); err != nil {
		t.Fatalf("CreatePending error: %v", err)
	}
	if rec.ID == "" {
		t.Fatalf("expected generated id")
	}
	if rec.Status != domain.PaymentPending {
		t.Fatalf("expected pending, got %s", rec.Status)
	}
	if exec.queries[0] != sqlinline.QInsertPendingPayment {
		t.Fatalf("unexpected query")
	}
	args := exec.args[0]
	if args[4] != "premium" || args[6] != "ILS" {
		t.Fatalf("unexpected defaults: plan=%v currency=%v", args[4], args[6])
	}
}

func TestCreatePendingRequiresOrderID(t *testing.T) {
	repo := NewPaymentRepository(&scriptedExecutor{})
	err := repo.CreatePending(context.Background(), &domain.PaymentRecord{UserID: "u1"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCompletePayment(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	exec := &scriptedExecutor{rows: []pgx.Row{valuesRow{values: []any{
		"2f1a0b8e-1d39-4d5c-8a8b-4f7d8e6e2a10", "order_u1_1", "u1", "", "premium", 49.0, "ILS", "completed",
		"", "T-1", "D-1", []byte(`{"TransactionID":"T-1"}`), now, now,
	}}}}
	repo := NewPaymentRepository(exec)

	rec, err := repo.Complete(context.Background(), domain.PaymentCompletion{
		OrderID:              "order_u1_1",
		UserID:               "u1",
		Amount:               49,
		GatewayTransactionID: "T-1",
	})
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if rec.Status != domain.PaymentCompleted || rec.CompletedAt == nil {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if got := exec.args[0][7]; got != "{}" {
		t.Fatalf("expected empty webhook payload to default to {}, got %v", got)
	}
}

func TestGetByOrderIDNotFound(t *testing.T) {
	repo := NewPaymentRepository(&scriptedExecutor{})
	if _, err := repo.GetByOrderID(context.Background(), "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
