package middleware

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"smartstudio/internal/domain"
)

// IdentityVerifier turns an Authorization header into a caller identity.
type IdentityVerifier interface {
	Verify(ctx context.Context, authorization string) *domain.Identity
}

type identityContextKey struct{}

// Authenticate attaches the verified identity, when there is one, to the
// request context. Handlers decide whether an identity is required.
func Authenticate(verifier IdentityVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if verifier == nil || header == "" {
				next.ServeHTTP(w, r)
				return
			}
			ident := verifier.Verify(r.Context(), header)
			if ident == nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := ContextWithIdentity(r.Context(), *ident)
			logger := zerolog.Ctx(ctx).With().Str("user_id", ident.ID).Logger()
			ctx = logger.WithContext(ctx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func ContextWithIdentity(ctx context.Context, ident domain.Identity) context.Context {
	if ident.ID == "" {
		return ctx
	}
	return context.WithValue(ctx, identityContextKey{}, ident)
}

// IdentityFromContext returns the verified caller, if any.
func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	ident, ok := ctx.Value(identityContextKey{}).(domain.Identity)
	return ident, ok
}
