package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"smartstudio/internal/domain"
	"smartstudio/internal/infra"
	"smartstudio/internal/sqlinline"
)

// PaymentRepositoryPG implements domain.PaymentRepository backed by PostgreSQL.
type PaymentRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewPaymentRepository creates a new PaymentRepositoryPG.
func NewPaymentRepository(sql infra.SQLExecutor) *PaymentRepositoryPG {
	return &PaymentRepositoryPG{sql: sql}
}

// CreatePending stores a new pending record. A record already present for the
// order id is left untouched.
func (r *PaymentRepositoryPG) CreatePending(ctx context.Context, record *domain.PaymentRecord) error {
	if record == nil || strings.TrimSpace(record.OrderID) == "" {
		return &domain.ValidationError{Field: "orderId"}
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	plan := record.Plan
	if plan == "" {
		plan = domain.PlanPremium
	}
	_, err := r.sql.Exec(ctx, sqlinline.QInsertPendingPayment,
		record.ID,
		record.OrderID,
		record.UserID,
		record.UserEmail,
		string(plan),
		record.Amount,
		currencyOrDefault(record.Currency),
		record.PaymentURL,
	)
	if err != nil {
		return fmt.Errorf("insert pending payment: %w", err)
	}
	record.Status = domain.PaymentPending
	return nil
}

// Complete upserts the order as completed in one statement.
func (r *PaymentRepositoryPG) Complete(ctx context.Context, c domain.PaymentCompletion) (*domain.PaymentRecord, error) {
	webhook := []byte(c.WebhookData)
	if len(webhook) == 0 {
		webhook = []byte("{}")
	}
	row := r.sql.QueryRow(ctx, sqlinline.QCompletePayment,
		uuid.NewString(),
		c.OrderID,
		c.UserID,
		c.Amount,
		currencyOrDefault(c.Currency),
		c.GatewayTransactionID,
		c.GatewayDocumentNumber,
		string(webhook),
	)
	rec, err := scanPayment(row)
	if err != nil {
		return nil, fmt.Errorf("complete payment %s: %w", c.OrderID, err)
	}
	return rec, nil
}

func (r *PaymentRepositoryPG) GetByOrderID(ctx context.Context, orderID string) (*domain.PaymentRecord, error) {
	return scanPayment(r.sql.QueryRow(ctx, sqlinline.QSelectPaymentByOrderID, orderID))
}

func scanPayment(row pgx.Row) (*domain.PaymentRecord, error) {
	var (
		p           domain.PaymentRecord
		plan        string
		status      string
		webhook     []byte
		completedAt *time.Time
	)
	err := row.Scan(&p.ID, &p.OrderID, &p.UserID, &p.UserEmail, &plan, &p.Amount, &p.Currency, &status,
		&p.PaymentURL, &p.GatewayTransactionID, &p.GatewayDocumentNumber, &webhook, &p.CreatedAt, &completedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	p.Plan = domain.ParsePlan(plan)
	p.Status = domain.PaymentStatus(status)
	p.WebhookData = webhook
	p.CompletedAt = completedAt
	return &p, nil
}

func currencyOrDefault(currency string) string {
	if c := strings.ToUpper(strings.TrimSpace(currency)); c != "" {
		return c
	}
	return "ILS"
}

var _ domain.PaymentRepository = (*PaymentRepositoryPG)(nil)
