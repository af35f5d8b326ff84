package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"smartstudio/internal/domain"
)

type fakeLedger struct {
	status     domain.CreditStatus
	checkErr   error
	consume    domain.ConsumeResult
	consumeErr error
	failOpen   bool
	consumed   int
}

func (f *fakeLedger) CheckCredits(context.Context, domain.Identity) (domain.CreditStatus, error) {
	return f.status, f.checkErr
}

func (f *fakeLedger) TryConsumeCredit(context.Context, domain.Identity) (domain.ConsumeResult, error) {
	f.consumed++
	return f.consume, f.consumeErr
}

func (f *fakeLedger) FailOpen() bool { return f.failOpen }

type fakeConcepts struct {
	concepts []domain.AIConcept
	err      error
	calls    int
}

func (f *fakeConcepts) Generate(context.Context, *domain.DesignBrief) ([]domain.AIConcept, error) {
	f.calls++
	return f.concepts, f.err
}

func fourConcepts() []domain.AIConcept {
	out := make([]domain.AIConcept, 4)
	for i := range out {
		out[i] = domain.AIConcept{Title: "concept", ImageGenerationPrompt: "poster", ImageURL: "data:image/png;base64,AA=="}
	}
	return out
}

func TestGenerateConcepts(t *testing.T) {
	brief := map[string]any{"brief": map[string]any{"subject": "poster", "platforms": []string{"1:1"}}}
	free := domain.CreditStatus{HasCredits: true, Remaining: 3, Plan: domain.PlanFree}

	tests := []struct {
		name          string
		ident         *domain.Identity
		body          any
		ledger        *fakeLedger
		concepts      *fakeConcepts
		wantStatus    int
		wantRemaining float64
		wantConcepts  int
		wantConsumed  int
		wantMessage   string
	}{
		{
			name:       "unauthenticated",
			body:       brief,
			ledger:     &fakeLedger{status: free},
			concepts:   &fakeConcepts{concepts: fourConcepts()},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing brief",
			ident:      &testIdentity,
			body:       map[string]any{},
			ledger:     &fakeLedger{status: free},
			concepts:   &fakeConcepts{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:          "no credits",
			ident:         &testIdentity,
			body:          brief,
			ledger:        &fakeLedger{status: domain.CreditStatus{HasCredits: false, Remaining: 0}},
			concepts:      &fakeConcepts{concepts: fourConcepts()},
			wantStatus:    http.StatusForbidden,
			wantRemaining: 0,
		},
		{
			name:          "success spends one credit",
			ident:         &testIdentity,
			body:          brief,
			ledger:        &fakeLedger{status: free, consume: domain.ConsumeResult{Consumed: true, Remaining: 2}},
			concepts:      &fakeConcepts{concepts: fourConcepts()},
			wantStatus:    http.StatusOK,
			wantRemaining: 2,
			wantConcepts:  4,
			wantConsumed:  1,
		},
		{
			name:          "premium reports unlimited",
			ident:         &testIdentity,
			body:          brief,
			ledger:        &fakeLedger{status: domain.CreditStatus{HasCredits: true, Remaining: -1, Plan: domain.PlanPremium}, consume: domain.ConsumeResult{Consumed: true, Remaining: -1, Plan: domain.PlanPremium}},
			concepts:      &fakeConcepts{concepts: fourConcepts()},
			wantStatus:    http.StatusOK,
			wantRemaining: -1,
			wantConcepts:  4,
			wantConsumed:  1,
		},
		{
			name:          "lost race withholds concepts",
			ident:         &testIdentity,
			body:          brief,
			ledger:        &fakeLedger{status: free, consume: domain.ConsumeResult{Consumed: false, Remaining: 0}},
			concepts:      &fakeConcepts{concepts: fourConcepts()},
			wantStatus:    http.StatusForbidden,
			wantRemaining: 0,
			wantConsumed:  1,
		},
		{
			name:          "store failure on consume with fail-open",
			ident:         &testIdentity,
			body:          brief,
			ledger:        &fakeLedger{status: free, consumeErr: errors.New("db down"), failOpen: true},
			concepts:      &fakeConcepts{concepts: fourConcepts()},
			wantStatus:    http.StatusOK,
			wantRemaining: 3,
			wantConcepts:  4,
			wantConsumed:  1,
		},
		{
			name:         "store failure on consume with fail-closed",
			ident:        &testIdentity,
			body:         brief,
			ledger:       &fakeLedger{status: free, consumeErr: errors.New("db down")},
			concepts:     &fakeConcepts{concepts: fourConcepts()},
			wantStatus:   http.StatusInternalServerError,
			wantConsumed: 1,
		},
		{
			name:        "timeout keeps the credit",
			ident:       &testIdentity,
			body:        brief,
			ledger:      &fakeLedger{status: free},
			concepts:    &fakeConcepts{err: &domain.TimeoutError{Message: "Concept generation timed out"}},
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Concept generation timed out",
		},
		{
			name:        "invalid concepts",
			ident:       &testIdentity,
			body:        brief,
			ledger:      &fakeLedger{status: free},
			concepts:    &fakeConcepts{err: domain.ErrInvalidConcepts},
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Failed to generate valid concepts",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := &App{Verifier: stubVerifier{}, Credits: tc.ledger, Concepts: tc.concepts}
			rec := httptest.NewRecorder()
			app.GenerateConcepts(rec, newRequest(t, http.MethodPost, "/generate-concepts", tc.body, tc.ident, language.English))

			require.Equal(t, tc.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, tc.wantConsumed, tc.ledger.consumed)
			body := decodeBody(t, rec)
			switch tc.wantStatus {
			case http.StatusOK:
				assert.Equal(t, tc.wantRemaining, body["creditsRemaining"])
				assert.Len(t, body["concepts"], tc.wantConcepts)
			case http.StatusForbidden:
				assert.Equal(t, tc.wantRemaining, body["remaining"])
				assert.NotContains(t, body, "concepts")
				assert.NotEmpty(t, body["message"])
			default:
				assert.NotEmpty(t, body["error"])
			}
			if tc.wantMessage != "" {
				assert.Equal(t, tc.wantMessage, body["message"])
			}
		})
	}
}

func TestGenerateConceptsLocalizedErrors(t *testing.T) {
	app := &App{Verifier: stubVerifier{}, Credits: &fakeLedger{status: domain.CreditStatus{Remaining: 0}}, Concepts: &fakeConcepts{}}
	body := map[string]any{"brief": map[string]any{"subject": "poster"}}

	rec := httptest.NewRecorder()
	app.GenerateConcepts(rec, newRequest(t, http.MethodPost, "/generate-concepts", body, nil, language.Hebrew))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "נדרשת התחברות", decodeBody(t, rec)["error"])

	rec = httptest.NewRecorder()
	app.GenerateConcepts(rec, newRequest(t, http.MethodPost, "/generate-concepts", body, &testIdentity, language.Hebrew))
	require.Equal(t, http.StatusForbidden, rec.Code)
	got := decodeBody(t, rec)
	assert.Equal(t, "אין מספיק קרדיטים", got["error"])
	assert.Equal(t, "נגמרו הקרדיטים החינמיים שלך. שדרג לפרימיום כדי להמשיך.", got["message"])
}

func TestGenerateConceptsWithoutVerifier(t *testing.T) {
	app := &App{Credits: &fakeLedger{}, Concepts: &fakeConcepts{}}
	rec := httptest.NewRecorder()
	app.GenerateConcepts(rec, newRequest(t, http.MethodPost, "/generate-concepts", map[string]any{"brief": map[string]any{}}, &testIdentity, language.English))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

type fakeReviser struct {
	rev  *domain.Revision
	err  error
	seen domain.AIConcept
}

func (f *fakeReviser) Revise(_ context.Context, c domain.AIConcept, _ *domain.ConceptEdits, _ []domain.ReferenceAttachment) (*domain.Revision, error) {
	f.seen = c
	return f.rev, f.err
}

func TestUpdateImage(t *testing.T) {
	valid := map[string]any{
		"concept": map[string]any{"imageGenerationPrompt": "poster with text"},
		"edits":   map[string]any{"newHeadline": "מבצע", "aspectRatio": "1:1"},
	}
	tests := []struct {
		name        string
		body        any
		reviser     *fakeReviser
		wantStatus  int
		wantMessage string
	}{
		{
			name:       "success",
			body:       valid,
			reviser:    &fakeReviser{rev: &domain.Revision{ImageURL: "data:image/png;base64,AA==", UpdatedPrompt: "new prompt"}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing edits",
			body:       map[string]any{"concept": map[string]any{"imageGenerationPrompt": "p"}},
			reviser:    &fakeReviser{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing prompt",
			body:       map[string]any{"concept": map[string]any{}, "edits": map[string]any{}},
			reviser:    &fakeReviser{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:        "no image",
			body:        valid,
			reviser:     &fakeReviser{err: domain.ErrImageGenerationFailed},
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Failed to generate image",
		},
		{
			name:        "timeout",
			body:        valid,
			reviser:     &fakeReviser{err: &domain.TimeoutError{Message: "Image generation timed out"}},
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Image generation timed out",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := &App{Verifier: stubVerifier{}, Reviser: tc.reviser}
			rec := httptest.NewRecorder()
			app.UpdateImage(rec, newRequest(t, http.MethodPost, "/update-image", tc.body, &testIdentity, language.English))

			require.Equal(t, tc.wantStatus, rec.Code, rec.Body.String())
			body := decodeBody(t, rec)
			if tc.wantStatus == http.StatusOK {
				assert.Equal(t, "data:image/png;base64,AA==", body["imageUrl"])
				assert.Equal(t, "new prompt", body["updatedPrompt"])
				assert.Equal(t, "poster with text", tc.reviser.seen.ImageGenerationPrompt)
			}
			if tc.wantMessage != "" {
				assert.Equal(t, tc.wantMessage, body["message"])
			}
		})
	}
}

type fakeSuggester struct {
	field string
	out   string
}

func (f *fakeSuggester) Suggest(_ context.Context, field string, _ domain.AutoFillContext) string {
	f.field = field
	return f.out
}

func TestAutoFill(t *testing.T) {
	ctxBody := map[string]any{"subject": "bakery"}
	tests := []struct {
		name       string
		body       any
		suggester  FieldSuggester
		wantStatus int
		wantText   string
		wantField  string
	}{
		{name: "field", body: map[string]any{"field": "goal", "context": ctxBody}, suggester: &fakeSuggester{out: "להגדיל מכירות"}, wantStatus: http.StatusOK, wantText: "להגדיל מכירות", wantField: "goal"},
		{name: "targetField alias", body: map[string]any{"targetField": "coreMessage", "context": ctxBody}, suggester: &fakeSuggester{out: "x"}, wantStatus: http.StatusOK, wantText: "x", wantField: "coreMessage"},
		{name: "upstream failure is empty", body: map[string]any{"field": "goal", "context": ctxBody}, suggester: &fakeSuggester{}, wantStatus: http.StatusOK, wantText: "", wantField: "goal"},
		{name: "no provider", body: map[string]any{"field": "goal", "context": ctxBody}, wantStatus: http.StatusOK, wantText: ""},
		{name: "missing context", body: map[string]any{"field": "goal"}, suggester: &fakeSuggester{}, wantStatus: http.StatusBadRequest},
		{name: "missing field", body: map[string]any{"context": ctxBody}, suggester: &fakeSuggester{}, wantStatus: http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := &App{Suggester: tc.suggester}
			rec := httptest.NewRecorder()
			app.AutoFill(rec, newRequest(t, http.MethodPost, "/auto-fill", tc.body, nil, language.English))

			require.Equal(t, tc.wantStatus, rec.Code, rec.Body.String())
			body := decodeBody(t, rec)
			if tc.wantStatus != http.StatusOK {
				assert.Contains(t, body["message"], "missing")
				return
			}
			assert.Equal(t, tc.wantText, body["suggestion"])
			if s, ok := tc.suggester.(*fakeSuggester); ok {
				assert.Equal(t, tc.wantField, s.field)
			}
		})
	}
}
