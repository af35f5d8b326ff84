package repo

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"smartstudio/internal/domain"
)

// MemoryStore keeps accounts and payments in process memory. Each method holds
// the lock for its whole read-modify-write, which gives the same per-account
// atomicity as the conditional SQL statements.
type MemoryStore struct {
	mu       sync.Mutex
	accounts map[string]*domain.UserAccount
	payments map[string]*domain.PaymentRecord
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[string]*domain.UserAccount),
		payments: make(map[string]*domain.PaymentRecord),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (m *MemoryStore) GetOrCreate(_ context.Context, seed domain.UserAccount) (*domain.UserAccount, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.accounts[seed.ID]; ok {
		return cloneAccount(existing), false, nil
	}
	now := m.now()
	acct := &domain.UserAccount{
		ID:        seed.ID,
		Email:     strings.TrimSpace(seed.Email),
		Plan:      seed.Plan,
		Credits:   domain.Credits{Limit: seed.Credits.Limit},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if acct.Plan == "" {
		acct.Plan = domain.PlanFree
	}
	m.accounts[seed.ID] = acct
	return cloneAccount(acct), true, nil
}

func (m *MemoryStore) GetByID(_ context.Context, id string) (*domain.UserAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acct, ok := m.accounts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneAccount(acct), nil
}

func (m *MemoryStore) GetByEmail(_ context.Context, email string) (*domain.UserAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email = strings.TrimSpace(email)
	var found *domain.UserAccount
	for _, acct := range m.accounts {
		if acct.Email == "" || !strings.EqualFold(acct.Email, email) {
			continue
		}
		if found == nil || acct.CreatedAt.Before(found.CreatedAt) {
			found = acct
		}
	}
	if found == nil {
		return nil, domain.ErrNotFound
	}
	return cloneAccount(found), nil
}

func (m *MemoryStore) PromoteToPremium(_ context.Context, id string) (*domain.UserAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acct, ok := m.accounts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	acct.Plan = domain.PlanPremium
	acct.Credits.Limit = domain.UnlimitedCredits
	acct.UpdatedAt = m.now()
	return cloneAccount(acct), nil
}

func (m *MemoryStore) ConsumeCredit(_ context.Context, id string) (domain.ConsumeResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acct, ok := m.accounts[id]
	if !ok {
		return domain.ConsumeResult{}, domain.ErrNotFound
	}
	if acct.IsPremium() {
		return domain.ConsumeResult{Consumed: true, Remaining: domain.UnlimitedCredits, Plan: domain.PlanPremium}, nil
	}
	if acct.Credits.Used >= acct.Credits.Limit {
		return domain.ConsumeResult{Consumed: false, Remaining: acct.Credits.Remaining(), Plan: domain.PlanFree}, nil
	}
	acct.Credits.Used++
	acct.UpdatedAt = m.now()
	return domain.ConsumeResult{Consumed: true, Remaining: acct.Credits.Remaining(), Plan: domain.PlanFree}, nil
}

func (m *MemoryStore) ResetCredits(_ context.Context, id string) (*domain.UserAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acct, ok := m.accounts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	now := m.now()
	acct.Credits.Used = 0
	acct.Credits.ResetAt = &now
	acct.UpdatedAt = now
	return cloneAccount(acct), nil
}

func (m *MemoryStore) UpsertPremium(_ context.Context, id, email string) (*domain.UserAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	acct, ok := m.accounts[id]
	if !ok {
		acct = &domain.UserAccount{ID: id, Email: strings.TrimSpace(email), CreatedAt: now}
		m.accounts[id] = acct
	}
	if acct.Email == "" {
		acct.Email = strings.TrimSpace(email)
	}
	acct.Plan = domain.PlanPremium
	acct.Credits.Limit = domain.UnlimitedCredits
	acct.Subscription.Status = "active"
	acct.Subscription.Plan = domain.PlanPremium
	if acct.Subscription.StartedAt == nil {
		acct.Subscription.StartedAt = &now
	}
	acct.UpdatedAt = now
	return cloneAccount(acct), nil
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

func (m *MemoryStore) CreatePending(_ context.Context, record *domain.PaymentRecord) error {
	if record == nil || strings.TrimSpace(record.OrderID) == "" {
		return &domain.ValidationError{Field: "orderId"}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.payments[record.OrderID]; ok {
		return nil
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.Plan == "" {
		record.Plan = domain.PlanPremium
	}
	record.Currency = currencyOrDefault(record.Currency)
	record.Status = domain.PaymentPending
	record.CreatedAt = m.now()
	stored := *record
	m.payments[record.OrderID] = &stored
	return nil
}

func (m *MemoryStore) Complete(_ context.Context, c domain.PaymentCompletion) (*domain.PaymentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	rec, ok := m.payments[c.OrderID]
	if !ok {
		rec = &domain.PaymentRecord{
			ID:        uuid.NewString(),
			OrderID:   c.OrderID,
			UserID:    c.UserID,
			Plan:      domain.PlanPremium,
			Amount:    c.Amount,
			Currency:  currencyOrDefault(c.Currency),
			CreatedAt: now,
		}
		m.payments[c.OrderID] = rec
	}
	rec.Status = domain.PaymentCompleted
	if rec.CompletedAt == nil {
		rec.CompletedAt = &now
	}
	if c.GatewayTransactionID != "" {
		rec.GatewayTransactionID = c.GatewayTransactionID
	}
	if c.GatewayDocumentNumber != "" {
		rec.GatewayDocumentNumber = c.GatewayDocumentNumber
	}
	rec.WebhookData = append(json.RawMessage(nil), c.WebhookData...)
	out := *rec
	return &out, nil
}

func (m *MemoryStore) GetByOrderID(_ context.Context, orderID string) (*domain.PaymentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.payments[orderID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *rec
	return &out, nil
}

func cloneAccount(a *domain.UserAccount) *domain.UserAccount {
	out := *a
	return &out
}

var (
	_ domain.AccountRepository = (*MemoryStore)(nil)
	_ domain.PaymentRepository = (*MemoryStore)(nil)
)
