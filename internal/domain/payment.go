package domain

import (
	"encoding/json"
	"time"
)

// PaymentStatus enumerates payment record states.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
)

// PaymentRecord tracks one checkout from creation to settlement.
type PaymentRecord struct {
	ID                    string
	OrderID               string
	UserID                string
	UserEmail             string
	Plan                  Plan
	Amount                float64
	Currency              string
	Status                PaymentStatus
	PaymentURL            string
	GatewayTransactionID  string
	GatewayDocumentNumber string
	WebhookData           json.RawMessage
	CreatedAt             time.Time
	CompletedAt           *time.Time
}

// PaymentCompletion carries the gateway data used to settle an order.
type PaymentCompletion struct {
	OrderID               string
	UserID                string
	Amount                float64
	Currency              string
	GatewayTransactionID  string
	GatewayDocumentNumber string
	WebhookData           json.RawMessage
}
