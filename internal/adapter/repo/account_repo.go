package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"smartstudio/internal/domain"
	"smartstudio/internal/infra"
	"smartstudio/internal/sqlinline"
)

// AccountRepositoryPG implements domain.AccountRepository backed by PostgreSQL.
type AccountRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewAccountRepository creates a new AccountRepositoryPG.
func NewAccountRepository(sql infra.SQLExecutor) *AccountRepositoryPG {
	return &AccountRepositoryPG{sql: sql}
}

// GetOrCreate inserts seed unless the id exists. A concurrent insert of the
// same id can leave the statement snapshot without a row, so it retries once.
func (r *AccountRepositoryPG) GetOrCreate(ctx context.Context, seed domain.UserAccount) (*domain.UserAccount, bool, error) {
	plan := seed.Plan
	if plan == "" {
		plan = domain.PlanFree
	}
	for attempt := 0; attempt < 2; attempt++ {
		row := r.sql.QueryRow(ctx, sqlinline.QGetOrCreateUser, seed.ID, seed.Email, string(plan), seed.Credits.Limit)
		var created bool
		account, err := scanAccount(row, &created)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, false, fmt.Errorf("get or create account: %w", err)
		}
		return account, created, nil
	}
	return nil, false, fmt.Errorf("get or create account %s: %w", seed.ID, domain.ErrNotFound)
}

// GetByID fetches an account by identity id.
func (r *AccountRepositoryPG) GetByID(ctx context.Context, id string) (*domain.UserAccount, error) {
	return scanAccount(r.sql.QueryRow(ctx, sqlinline.QSelectUserByID, id), nil)
}

// GetByEmail fetches the oldest account registered with email, case-insensitively.
func (r *AccountRepositoryPG) GetByEmail(ctx context.Context, email string) (*domain.UserAccount, error) {
	return scanAccount(r.sql.QueryRow(ctx, sqlinline.QSelectUserByEmail, strings.TrimSpace(email)), nil)
}

func (r *AccountRepositoryPG) PromoteToPremium(ctx context.Context, id string) (*domain.UserAccount, error) {
	return scanAccount(r.sql.QueryRow(ctx, sqlinline.QPromoteUserToPremium, id), nil)
}

// ConsumeCredit runs the guarded increment. When the guard rejects the update
// the current row is read only to classify the outcome.
func (r *AccountRepositoryPG) ConsumeCredit(ctx context.Context, id string) (domain.ConsumeResult, error) {
	var plan string
	var used, limit int
	err := r.sql.QueryRow(ctx, sqlinline.QConsumeCredit, id).Scan(&plan, &used, &limit)
	if err == nil {
		credits := domain.Credits{Used: used, Limit: limit}
		return domain.ConsumeResult{Consumed: true, Remaining: credits.Remaining(), Plan: domain.ParsePlan(plan)}, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.ConsumeResult{}, fmt.Errorf("consume credit: %w", err)
	}

	err = r.sql.QueryRow(ctx, sqlinline.QSelectUserCredits, id).Scan(&plan, &used, &limit)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ConsumeResult{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.ConsumeResult{}, fmt.Errorf("load credits: %w", err)
	}
	if domain.ParsePlan(plan) == domain.PlanPremium {
		return domain.ConsumeResult{Consumed: true, Remaining: domain.UnlimitedCredits, Plan: domain.PlanPremium}, nil
	}
	credits := domain.Credits{Used: used, Limit: limit}
	return domain.ConsumeResult{Consumed: false, Remaining: credits.Remaining(), Plan: domain.PlanFree}, nil
}

func (r *AccountRepositoryPG) ResetCredits(ctx context.Context, id string) (*domain.UserAccount, error) {
	return scanAccount(r.sql.QueryRow(ctx, sqlinline.QResetUserCredits, id), nil)
}

func (r *AccountRepositoryPG) UpsertPremium(ctx context.Context, id, email string) (*domain.UserAccount, error) {
	return scanAccount(r.sql.QueryRow(ctx, sqlinline.QUpsertPremiumUser, id, strings.TrimSpace(email)), nil)
}

// Ping reports whether the underlying database answers.
func (r *AccountRepositoryPG) Ping(ctx context.Context) error {
	if p, ok := r.sql.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

// scanAccount reads the shared user column list. When created is non-nil the
// row carries a trailing created flag.
func scanAccount(row pgx.Row, created *bool) (*domain.UserAccount, error) {
	var (
		a           domain.UserAccount
		plan        string
		subPlan     string
		resetAt     *time.Time
		subStarted  *time.Time
		destination []any
	)
	destination = append(destination,
		&a.ID, &a.Email, &plan, &a.Credits.Used, &a.Credits.Limit, &resetAt,
		&a.Subscription.Status, &subPlan, &subStarted, &a.CreatedAt, &a.UpdatedAt,
	)
	if created != nil {
		destination = append(destination, created)
	}
	if err := row.Scan(destination...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	a.Plan = domain.ParsePlan(plan)
	a.Credits.ResetAt = resetAt
	if subPlan != "" {
		a.Subscription.Plan = domain.ParsePlan(subPlan)
	}
	a.Subscription.StartedAt = subStarted
	return &a, nil
}

var _ domain.AccountRepository = (*AccountRepositoryPG)(nil)
