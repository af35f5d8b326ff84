package handlers

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"smartstudio/internal/domain"
)

type generateConceptsRequest struct {
	Brief *domain.DesignBrief `json:"brief"`
}

type generateConceptsResponse struct {
	Concepts         []domain.AIConcept `json:"concepts"`
	CreditsRemaining int                `json:"creditsRemaining"`
}

// GenerateConcepts checks credits, generates the concepts and only then
// spends the credit, so failed generations are free.
func (a *App) GenerateConcepts(w http.ResponseWriter, r *http.Request) {
	ident, ok := a.requireIdentity(w, r)
	if !ok {
		return
	}
	var req generateConceptsRequest
	if err := decodeJSON(r, &req); err != nil {
		a.error(w, r, http.StatusBadRequest, msgInvalidPayload, err.Error())
		return
	}
	if req.Brief == nil {
		a.error(w, r, http.StatusBadRequest, msgMissingBrief, "")
		return
	}
	if a.Concepts == nil || a.Credits == nil {
		a.failure(w, r, msgGenerateFailed, domain.ErrNotConfigured)
		return
	}

	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	status, err := a.Credits.CheckCredits(ctx, ident)
	if err != nil {
		a.failure(w, r, msgGenerateFailed, err)
		return
	}
	if !status.HasCredits {
		a.creditsError(w, r, status.Remaining)
		return
	}

	concepts, err := a.Concepts.Generate(ctx, req.Brief)
	if err != nil {
		a.failure(w, r, msgGenerateFailed, err)
		return
	}

	remaining := status.Remaining
	consumed, err := a.Credits.TryConsumeCredit(ctx, ident)
	switch {
	case err != nil && !a.Credits.FailOpen():
		a.failure(w, r, msgGenerateFailed, err)
		return
	case err != nil:
		logger.Error().Err(err).Msg("credit consumption failed, returning concepts by policy")
	case !consumed.Consumed:
		logger.Warn().Int("remaining", consumed.Remaining).Msg("credit race lost after generation")
		a.creditsError(w, r, consumed.Remaining)
		return
	default:
		remaining = consumed.Remaining
	}

	logger.Info().Int("concepts", len(concepts)).Int("credits_remaining", remaining).Msg("concepts generated")
	a.json(w, http.StatusOK, generateConceptsResponse{Concepts: concepts, CreditsRemaining: remaining})
}

type updateImageRequest struct {
	Concept     *domain.AIConcept            `json:"concept"`
	Edits       *domain.ConceptEdits         `json:"edits"`
	Attachments []domain.ReferenceAttachment `json:"attachments"`
}

// UpdateImage revises one concept's image. The returned prompt is what the
// client sends back as imageGenerationPrompt on the next revision.
func (a *App) UpdateImage(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.requireIdentity(w, r); !ok {
		return
	}
	var req updateImageRequest
	if err := decodeJSON(r, &req); err != nil {
		a.error(w, r, http.StatusBadRequest, msgInvalidPayload, err.Error())
		return
	}
	if req.Concept == nil || strings.TrimSpace(req.Concept.ImageGenerationPrompt) == "" || req.Edits == nil {
		a.error(w, r, http.StatusBadRequest, msgMissingFields, "concept.imageGenerationPrompt and edits are required")
		return
	}
	if a.Reviser == nil {
		a.failure(w, r, msgUpdateFailed, domain.ErrNotConfigured)
		return
	}

	rev, err := a.Reviser.Revise(r.Context(), *req.Concept, req.Edits, req.Attachments)
	if err != nil {
		a.failure(w, r, msgUpdateFailed, err)
		return
	}
	a.json(w, http.StatusOK, rev)
}

type autoFillRequest struct {
	Field       string                  `json:"field"`
	TargetField string                  `json:"targetField"`
	Context     *domain.AutoFillContext `json:"context"`
}

// AutoFill suggests a value for one brief field. Upstream failures produce an
// empty suggestion rather than an error shape.
func (a *App) AutoFill(w http.ResponseWriter, r *http.Request) {
	var req autoFillRequest
	if err := decodeJSON(r, &req); err != nil {
		a.error(w, r, http.StatusBadRequest, msgInvalidPayload, err.Error())
		return
	}
	field := strings.TrimSpace(req.Field)
	if field == "" {
		field = strings.TrimSpace(req.TargetField)
	}
	if field == "" || req.Context == nil {
		a.error(w, r, http.StatusBadRequest, msgMissingFields, "field: "+presence(field != "")+", context: "+presence(req.Context != nil))
		return
	}
	suggestion := ""
	if a.Suggester != nil {
		suggestion = a.Suggester.Suggest(r.Context(), field, *req.Context)
	} else {
		zerolog.Ctx(r.Context()).Warn().Msg("auto-fill requested without a text provider")
	}
	a.json(w, http.StatusOK, map[string]string{"suggestion": suggestion})
}

func presence(ok bool) string {
	if ok {
		return "present"
	}
	return "missing"
}
