// Package credits enforces the per-account generation allowance.
package credits

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"smartstudio/internal/domain"
	"smartstudio/internal/infra"
)

// Policy configures how accounts are provisioned and how store outages are treated.
type Policy struct {
	FreeLimit       int
	UnlimitedEmails []string
	// FailOpen grants a capped default allowance when the store is unreachable.
	FailOpen bool
}

// Ledger answers credit checks and consumes credits through the account repository.
type Ledger struct {
	accounts  domain.AccountRepository
	policy    Policy
	unlimited map[string]struct{}
}

func NewLedger(accounts domain.AccountRepository, policy Policy) *Ledger {
	if policy.FreeLimit < 0 {
		policy.FreeLimit = 0
	}
	unlimited := make(map[string]struct{}, len(policy.UnlimitedEmails))
	for _, email := range policy.UnlimitedEmails {
		if e := normalizeEmail(email); e != "" {
			unlimited[e] = struct{}{}
		}
	}
	return &Ledger{accounts: accounts, policy: policy, unlimited: unlimited}
}

// FailOpen reports whether store failures are answered permissively.
func (l *Ledger) FailOpen() bool { return l.policy.FailOpen }

// IsUnlimitedEmail reports whether email is on the unlimited allow-list.
func (l *Ledger) IsUnlimitedEmail(email string) bool {
	e := normalizeEmail(email)
	if e == "" {
		return false
	}
	_, ok := l.unlimited[e]
	return ok
}

// CheckCredits reports whether the identity may generate. Missing accounts are
// created on the spot and allow-listed accounts are upgraded in place.
func (l *Ledger) CheckCredits(ctx context.Context, ident domain.Identity) (domain.CreditStatus, error) {
	logger := zerolog.Ctx(ctx)
	status, err := l.checkCredits(ctx, ident)
	if err != nil {
		if l.policy.FailOpen {
			logger.Error().Err(err).Str("user_id", ident.ID).Msg("credit check failed, allowing by policy")
			infra.CreditDecisions.WithLabelValues("check", "fail_open").Inc()
			return l.failOpenStatus(), nil
		}
		infra.CreditDecisions.WithLabelValues("check", "error").Inc()
		return domain.CreditStatus{}, err
	}
	result := "denied"
	if status.HasCredits {
		result = "allowed"
	}
	infra.CreditDecisions.WithLabelValues("check", result).Inc()
	return status, nil
}

func (l *Ledger) checkCredits(ctx context.Context, ident domain.Identity) (domain.CreditStatus, error) {
	if strings.TrimSpace(ident.ID) == "" {
		return domain.CreditStatus{}, &domain.ValidationError{Field: "identity"}
	}
	allowListed := l.IsUnlimitedEmail(ident.Email)

	seed := domain.UserAccount{
		ID:      ident.ID,
		Email:   ident.Email,
		Plan:    domain.PlanFree,
		Credits: domain.Credits{Limit: l.policy.FreeLimit},
	}
	if allowListed {
		seed.Plan = domain.PlanPremium
		seed.Credits.Limit = domain.UnlimitedCredits
	}

	acct, created, err := l.accounts.GetOrCreate(ctx, seed)
	if err != nil {
		return domain.CreditStatus{}, fmt.Errorf("load account: %w", err)
	}
	if created {
		zerolog.Ctx(ctx).Info().Str("user_id", acct.ID).Str("plan", string(acct.Plan)).Msg("account created")
	}

	if allowListed && !acct.IsPremium() {
		acct, err = l.accounts.PromoteToPremium(ctx, ident.ID)
		if err != nil {
			return domain.CreditStatus{}, fmt.Errorf("upgrade allow-listed account: %w", err)
		}
		zerolog.Ctx(ctx).Info().Str("user_id", acct.ID).Msg("allow-listed account upgraded")
	}

	return statusOf(acct), nil
}

// TryConsumeCredit atomically spends one credit. Premium accounts always
// succeed without mutation. A missing account is reported as not consumed.
func (l *Ledger) TryConsumeCredit(ctx context.Context, ident domain.Identity) (domain.ConsumeResult, error) {
	res, err := l.accounts.ConsumeCredit(ctx, ident.ID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		infra.CreditDecisions.WithLabelValues("consume", "missing").Inc()
		return domain.ConsumeResult{Consumed: false, Remaining: 0, Plan: domain.PlanFree}, nil
	case err != nil:
		infra.CreditDecisions.WithLabelValues("consume", "error").Inc()
		return domain.ConsumeResult{}, fmt.Errorf("consume credit: %w", err)
	}
	result := "rejected"
	if res.Consumed {
		result = "consumed"
	}
	infra.CreditDecisions.WithLabelValues("consume", result).Inc()
	return res, nil
}

// UseCredit is the boolean form of TryConsumeCredit. Store errors count as false.
func (l *Ledger) UseCredit(ctx context.Context, ident domain.Identity) bool {
	res, err := l.TryConsumeCredit(ctx, ident)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("user_id", ident.ID).Msg("use credit failed")
		return false
	}
	return res.Consumed
}

// ResetCredits zeroes the used counter of an existing account.
func (l *Ledger) ResetCredits(ctx context.Context, userID string) (*domain.UserAccount, error) {
	return l.accounts.ResetCredits(ctx, userID)
}

// UpgradeToPremium marks the account premium, creating it when absent.
func (l *Ledger) UpgradeToPremium(ctx context.Context, userID, email string) (*domain.UserAccount, error) {
	acct, err := l.accounts.UpsertPremium(ctx, userID, email)
	if err != nil {
		return nil, fmt.Errorf("upgrade account %s: %w", userID, err)
	}
	infra.CreditDecisions.WithLabelValues("upgrade", "premium").Inc()
	return acct, nil
}

// Account returns the stored account by id, or by email when the id lookup misses.
func (l *Ledger) Account(ctx context.Context, idOrEmail string) (*domain.UserAccount, error) {
	acct, err := l.accounts.GetByID(ctx, idOrEmail)
	if err == nil || !errors.Is(err, domain.ErrNotFound) || !strings.Contains(idOrEmail, "@") {
		return acct, err
	}
	return l.accounts.GetByEmail(ctx, idOrEmail)
}

func (l *Ledger) failOpenStatus() domain.CreditStatus {
	return domain.CreditStatus{HasCredits: true, Remaining: l.policy.FreeLimit, Plan: domain.PlanFree}
}

func statusOf(acct *domain.UserAccount) domain.CreditStatus {
	if acct.IsPremium() {
		return domain.CreditStatus{HasCredits: true, Remaining: domain.UnlimitedCredits, Plan: domain.PlanPremium}
	}
	remaining := acct.Credits.Remaining()
	return domain.CreditStatus{HasCredits: remaining > 0, Remaining: remaining, Plan: domain.PlanFree}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
