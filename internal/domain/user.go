package domain

import (
	"strings"
	"time"
)

// UnlimitedCredits is the sentinel limit (and remaining count) for premium accounts.
const UnlimitedCredits = -1

// Plan enumerates billing plans.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
)

// ParsePlan normalizes a stored plan value. Unknown values are treated as free.
func ParsePlan(v string) Plan {
	if strings.EqualFold(strings.TrimSpace(v), string(PlanPremium)) {
		return PlanPremium
	}
	return PlanFree
}

// Identity is the caller produced by the credentials verifier. It lives for one request.
type Identity struct {
	ID    string
	Email string
}

// Credits tracks usage for a free account. Limit is UnlimitedCredits for premium.
type Credits struct {
	Used    int
	Limit   int
	ResetAt *time.Time
}

// Remaining returns the unused credits, never negative.
func (c Credits) Remaining() int {
	if c.Limit == UnlimitedCredits {
		return UnlimitedCredits
	}
	if r := c.Limit - c.Used; r > 0 {
		return r
	}
	return 0
}

// Subscription is recorded when a payment settles.
type Subscription struct {
	Status    string
	Plan      Plan
	StartedAt *time.Time
}

// UserAccount is the per-identity credit record.
type UserAccount struct {
	ID           string
	Email        string
	Plan         Plan
	Credits      Credits
	Subscription Subscription
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsPremium reports whether the account has unlimited generation.
func (u UserAccount) IsPremium() bool {
	return u.Plan == PlanPremium
}

// CreditStatus is the result of a credit check.
type CreditStatus struct {
	HasCredits bool
	Remaining  int
	Plan       Plan
}

// ConsumeResult is the outcome of an atomic conditional credit decrement.
type ConsumeResult struct {
	Consumed  bool
	Remaining int
	Plan      Plan
}
