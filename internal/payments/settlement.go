package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"smartstudio/internal/domain"
	"smartstudio/internal/infra"
)

const orderPrefix = "order_"

var orderTimestampSuffix = regexp.MustCompile(`_\d+$`)

// Notification is a gateway payment notification, flattened from query,
// form or JSON input.
type Notification struct {
	ExternalIdentifier         string
	CustomerExternalIdentifier string
	TransactionID              string
	DocumentNumber             string
	CustomerEmail              string
	Amount                     float64
	Raw                        json.RawMessage
}

// NotificationFromMap reads the known gateway fields from a decoded payload.
func NotificationFromMap(data map[string]any) Notification {
	raw, _ := json.Marshal(data)
	n := Notification{
		ExternalIdentifier:         stringField(data, "ExternalIdentifier"),
		CustomerExternalIdentifier: stringField(data, "CustomerExternalIdentifier"),
		TransactionID:              stringField(data, "TransactionID"),
		DocumentNumber:             stringField(data, "DocumentNumber"),
		CustomerEmail:              stringField(data, "CustomerEmail"),
		Raw:                        raw,
	}
	if amount, ok := floatField(data, "Amount"); ok {
		n.Amount = amount
	}
	return n
}

// OrderKey is the identifier the payment record is stored under.
func (n Notification) OrderKey() string {
	if n.ExternalIdentifier != "" {
		return n.ExternalIdentifier
	}
	return n.CustomerExternalIdentifier
}

// UserID derives the account id from the notification. For order ids of the
// form order_<uid>_<millis> the prefix and timestamp are stripped, keeping any
// underscores inside the uid.
func (n Notification) UserID() string {
	key := n.OrderKey()
	if strings.HasPrefix(key, orderPrefix) {
		uid := strings.TrimPrefix(key, orderPrefix)
		return orderTimestampSuffix.ReplaceAllString(uid, "")
	}
	return strings.TrimSpace(n.CustomerExternalIdentifier)
}

// Upgrader grants premium to an account, creating it when absent.
type Upgrader interface {
	UpgradeToPremium(ctx context.Context, userID, email string) (*domain.UserAccount, error)
}

// SettlementResult is reported back to the gateway.
type SettlementResult struct {
	Processed bool
	UserID    string
}

// Settler applies payment notifications. Applying the same notification twice
// leaves the same end state.
type Settler struct {
	payments domain.PaymentRepository
	accounts Upgrader
	price    float64
}

func NewSettler(payments domain.PaymentRepository, accounts Upgrader, price float64) *Settler {
	return &Settler{payments: payments, accounts: accounts, price: price}
}

// Settle completes the payment and upgrades the account. Errors are returned
// for logging only; callers always acknowledge the gateway.
func (s *Settler) Settle(ctx context.Context, n Notification) (SettlementResult, error) {
	logger := zerolog.Ctx(ctx)
	orderKey := n.OrderKey()
	if orderKey == "" {
		logger.Warn().Msg("payment notification without external identifier")
		infra.PaymentsSettled.WithLabelValues("false").Inc()
		return SettlementResult{}, nil
	}
	userID := n.UserID()
	if userID == "" {
		logger.Warn().Str("order_id", orderKey).Msg("could not derive user id from notification")
		infra.PaymentsSettled.WithLabelValues("false").Inc()
		return SettlementResult{}, nil
	}

	amount := n.Amount
	if amount <= 0 {
		amount = s.price
	}
	if _, err := s.payments.Complete(ctx, domain.PaymentCompletion{
		OrderID:               orderKey,
		UserID:                userID,
		Amount:                amount,
		Currency:              currencyILS,
		GatewayTransactionID:  n.TransactionID,
		GatewayDocumentNumber: n.DocumentNumber,
		WebhookData:           n.Raw,
	}); err != nil {
		infra.PaymentsSettled.WithLabelValues("false").Inc()
		return SettlementResult{UserID: userID}, fmt.Errorf("complete payment: %w", err)
	}

	if _, err := s.accounts.UpgradeToPremium(ctx, userID, n.CustomerEmail); err != nil {
		infra.PaymentsSettled.WithLabelValues("false").Inc()
		return SettlementResult{UserID: userID}, fmt.Errorf("upgrade account: %w", err)
	}

	infra.PaymentsSettled.WithLabelValues("true").Inc()
	logger.Info().Str("user_id", userID).Str("order_id", orderKey).Msg("payment settled")
	return SettlementResult{Processed: true, UserID: userID}, nil
}

func stringField(data map[string]any, key string) string {
	switch v := data[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case []string:
		if len(v) > 0 {
			return strings.TrimSpace(v[0])
		}
	}
	return ""
}

func floatField(data map[string]any, key string) (float64, bool) {
	switch v := data[key].(type) {
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	case []string:
		if len(v) > 0 {
			f, err := strconv.ParseFloat(strings.TrimSpace(v[0]), 64)
			return f, err == nil
		}
	}
	return 0, false
}
