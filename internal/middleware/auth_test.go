package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"smartstudio/internal/domain"
)

type staticVerifier struct {
	want  string
	ident *domain.Identity
}

func (v staticVerifier) Verify(_ context.Context, authorization string) *domain.Identity {
	if authorization != v.want {
		return nil
	}
	return v.ident
}

func TestAuthenticate(t *testing.T) {
	verifier := staticVerifier{
		want:  "Bearer good",
		ident: &domain.Identity{ID: "uid-1", Email: "a@example.com"},
	}
	tests := []struct {
		name     string
		verifier IdentityVerifier
		header   string
		wantID   string
	}{
		{name: "valid token", verifier: verifier, header: "Bearer good", wantID: "uid-1"},
		{name: "invalid token", verifier: verifier, header: "Bearer bad"},
		{name: "missing header", verifier: verifier},
		{name: "no verifier", header: "Bearer good"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got domain.Identity
			var ok bool
			h := Authenticate(tc.verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, ok = IdentityFromContext(r.Context())
			}))
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)

			if tc.wantID == "" {
				if ok {
					t.Fatalf("expected no identity, got %+v", got)
				}
				return
			}
			if !ok || got.ID != tc.wantID {
				t.Fatalf("identity = %+v (ok=%v), want id %q", got, ok, tc.wantID)
			}
		})
	}
}

func TestContextWithIdentityIgnoresEmpty(t *testing.T) {
	ctx := ContextWithIdentity(context.Background(), domain.Identity{})
	if _, ok := IdentityFromContext(ctx); ok {
		t.Fatalf("empty identity should not be stored")
	}
}
