package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"smartstudio/internal/domain"
	"smartstudio/internal/middleware"
)

type stubVerifier struct{}

func (stubVerifier) Verify(context.Context, string) *domain.Identity { return nil }

var testIdentity = domain.Identity{ID: "uid-1", Email: "dana@example.com"}

// newRequest builds a JSON request carrying the given identity (when non-nil)
// and locale.
func newRequest(t *testing.T, method, target string, body any, ident *domain.Identity, locale language.Tag) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	ctx := middleware.ContextWithLocale(req.Context(), locale)
	ctx = zerolog.Nop().WithContext(ctx)
	if ident != nil {
		ctx = middleware.ContextWithIdentity(ctx, *ident)
	}
	return req.WithContext(ctx)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}
