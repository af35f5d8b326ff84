package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"smartstudio/internal/domain"
	"smartstudio/internal/http/handlers"
)

type tokenVerifier struct{}

func (tokenVerifier) Verify(_ context.Context, authorization string) *domain.Identity {
	if authorization == "Bearer ok" {
		return &domain.Identity{ID: "uid-1"}
	}
	return nil
}

type staticSuggester string

func (s staticSuggester) Suggest(context.Context, string, domain.AutoFillContext) string {
	return string(s)
}

func newTestRouter(rateLimit int) http.Handler {
	app := &handlers.App{Verifier: tokenVerifier{}, Suggester: staticSuggester("הצעה")}
	return NewRouter(app, Options{Logger: zerolog.Nop(), DefaultLocale: language.Hebrew, RateLimitPerMin: rateLimit})
}

func TestRouterMountsRootAndAPI(t *testing.T) {
	router := newTestRouter(100)
	for _, path := range []string{"/health", "/api/health"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"), path)
	}
}

func TestRouterPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/generate-concepts", nil)
	req.Header.Set("Origin", "https://studio.example")
	rec := httptest.NewRecorder()
	newTestRouter(100).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://studio.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouterRequiresToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/generate-concepts", nil)
	req.Header.Set("Authorization", "Bearer nope")
	rec := httptest.NewRecorder()
	newTestRouter(100).ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "נדרשת התחברות", body["error"])
}

func TestRouterRateLimitsAutoFill(t *testing.T) {
	router := newTestRouter(1)
	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auto-fill", nil)
		req.RemoteAddr = "203.0.113.9:4000"
		req.Body = http.NoBody
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusBadRequest, http.StatusTooManyRequests}, codes)
}

func TestRouterUnknownRoute(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(100).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
}
