package domain

import "context"

// AccountRepository persists user accounts. Every mutation is a single
// conditional statement so concurrent requests cannot overshoot the limit.
type AccountRepository interface {
	// GetOrCreate inserts seed when no account with seed.ID exists and returns
	// the stored account. created is true only for the call that inserted it.
	GetOrCreate(ctx context.Context, seed UserAccount) (account *UserAccount, created bool, err error)
	GetByID(ctx context.Context, id string) (*UserAccount, error)
	GetByEmail(ctx context.Context, email string) (*UserAccount, error)
	// PromoteToPremium sets plan=premium with unlimited credits. ErrNotFound when absent.
	PromoteToPremium(ctx context.Context, id string) (*UserAccount, error)
	// ConsumeCredit increments used by one only while used < limit on a free plan.
	ConsumeCredit(ctx context.Context, id string) (ConsumeResult, error)
	ResetCredits(ctx context.Context, id string) (*UserAccount, error)
	// UpsertPremium creates the account as premium or upgrades it, and marks the subscription active.
	UpsertPremium(ctx context.Context, id, email string) (*UserAccount, error)
	Ping(ctx context.Context) error
}

// PaymentRepository persists payment records keyed by order id.
type PaymentRepository interface {
	CreatePending(ctx context.Context, record *PaymentRecord) error
	// Complete marks the order completed, creating the record when missing.
	Complete(ctx context.Context, completion PaymentCompletion) (*PaymentRecord, error)
	GetByOrderID(ctx context.Context, orderID string) (*PaymentRecord, error)
}
