package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"smartstudio/internal/domain"
	"smartstudio/internal/middleware"
	"smartstudio/internal/payments"
)

const maxBodyBytes = 25 << 20

type CreditLedger interface {
	CheckCredits(ctx context.Context, ident domain.Identity) (domain.CreditStatus, error)
	TryConsumeCredit(ctx context.Context, ident domain.Identity) (domain.ConsumeResult, error)
	FailOpen() bool
}

type ConceptGenerator interface {
	Generate(ctx context.Context, brief *domain.DesignBrief) ([]domain.AIConcept, error)
}

type ConceptReviser interface {
	Revise(ctx context.Context, concept domain.AIConcept, edits *domain.ConceptEdits, attachments []domain.ReferenceAttachment) (*domain.Revision, error)
}

type FieldSuggester interface {
	Suggest(ctx context.Context, field string, c domain.AutoFillContext) string
}

type CheckoutService interface {
	Configured() bool
	Create(ctx context.Context, ident domain.Identity, req payments.CheckoutRequest) (*payments.CheckoutResult, error)
}

type PaymentSettler interface {
	Settle(ctx context.Context, n payments.Notification) (payments.SettlementResult, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// Environment is the static readiness information reported by /health.
type Environment struct {
	HasGeminiKey        bool
	FirebaseProjectID   string
	IdentityInitError   string
	StoreDriver         string
	HasSumitCredentials bool
}

// App carries the services behind the HTTP handlers. A nil service means the
// integration is not configured and its endpoints answer 500.
type App struct {
	Verifier  middleware.IdentityVerifier
	Credits   CreditLedger
	Concepts  ConceptGenerator
	Reviser   ConceptReviser
	Suggester FieldSuggester
	Checkout  CheckoutService
	Settler   PaymentSettler
	Store     Pinger
	Env       Environment
	Now       func() time.Time
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// error writes the {error, message} envelope with a localized summary.
func (a *App) error(w http.ResponseWriter, r *http.Request, code int, key, detail string) {
	body := map[string]any{"error": localize(r.Context(), key)}
	if detail != "" {
		body["message"] = detail
	}
	a.json(w, code, body)
}

// failure maps a service error onto the response taxonomy. Details of
// unclassified errors stay in the log.
func (a *App) failure(w http.ResponseWriter, r *http.Request, key string, err error) {
	logger := zerolog.Ctx(r.Context())
	var verr *domain.ValidationError
	var terr *domain.TimeoutError
	switch {
	case errors.As(err, &verr):
		a.error(w, r, http.StatusBadRequest, msgMissingFields, verr.Error())
	case errors.Is(err, domain.ErrNotConfigured):
		logger.Error().Err(err).Msg("integration not configured")
		a.error(w, r, http.StatusInternalServerError, msgNotConfigured, "service not configured")
	case errors.As(err, &terr):
		logger.Error().Err(err).Msg("upstream timeout")
		a.error(w, r, http.StatusInternalServerError, key, terr.Message)
	case errors.Is(err, domain.ErrInvalidConcepts):
		logger.Error().Err(err).Msg("invalid concepts response")
		a.error(w, r, http.StatusInternalServerError, key, "Failed to generate valid concepts")
	case errors.Is(err, domain.ErrImageGenerationFailed):
		logger.Error().Err(err).Msg("image generation failed")
		a.error(w, r, http.StatusInternalServerError, key, "Failed to generate image")
	default:
		logger.Error().Err(err).Msg("request failed")
		a.error(w, r, http.StatusInternalServerError, key, localize(r.Context(), msgInternal))
	}
}

// requireIdentity answers 401 (or 500 when verification is not configured)
// and reports false when the request carries no verified caller.
func (a *App) requireIdentity(w http.ResponseWriter, r *http.Request) (domain.Identity, bool) {
	if a.Verifier == nil {
		zerolog.Ctx(r.Context()).Error().Str("init_error", a.Env.IdentityInitError).Msg("identity verification unavailable")
		a.error(w, r, http.StatusInternalServerError, msgNotConfigured, "identity verification not configured")
		return domain.Identity{}, false
	}
	ident, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		a.error(w, r, http.StatusUnauthorized, msgLoginRequired, "")
		return domain.Identity{}, false
	}
	return ident, true
}

func (a *App) creditsError(w http.ResponseWriter, r *http.Request, remaining int) {
	if remaining < 0 {
		remaining = 0
	}
	a.json(w, http.StatusForbidden, map[string]any{
		"error":     localize(r.Context(), msgNotEnoughCredits),
		"remaining": remaining,
		"message":   localize(r.Context(), msgCreditsRemaining, remaining),
	})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// NotFound and MethodNotAllowed keep chi's fallbacks in the JSON envelope.
func (a *App) NotFound(w http.ResponseWriter, r *http.Request) {
	a.error(w, r, http.StatusNotFound, msgNotFound, "")
}

func (a *App) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	a.error(w, r, http.StatusMethodNotAllowed, msgMethodNotAllowed, "")
}

func (a *App) RateLimited(w http.ResponseWriter, r *http.Request) {
	a.error(w, r, http.StatusTooManyRequests, msgRateLimited, "")
}
