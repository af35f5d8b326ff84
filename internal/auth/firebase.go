// Package auth verifies Firebase ID tokens against Google's published signing keys.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"smartstudio/internal/domain"
)

const (
	bearerPrefix  = "Bearer "
	issuerPrefix  = "https://securetoken.google.com/"
	defaultLeeway = 30 * time.Second
	maxSubjectLen = 128
)

// Claims is the subset of a Firebase ID token the service reads.
type Claims struct {
	Email    string `json:"email"`
	AuthTime int64  `json:"auth_time"`
	jwt.RegisteredClaims
}

// Verifier validates Firebase ID tokens for one project.
type Verifier struct {
	projectID string
	keyFunc   jwt.Keyfunc
	parser    *jwt.Parser
}

// NewVerifier builds a verifier that fetches signing keys from jwksURL.
func NewVerifier(projectID, jwksURL string) (*Verifier, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, errors.New("firebase project id must be set")
	}
	if strings.TrimSpace(jwksURL) == "" {
		return nil, errors.New("jwks url must be set")
	}
	keyProvider, err := keyfunc.NewDefault([]string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("init JWKS keyfunc: %w", err)
	}
	return NewVerifierWithKeyfunc(projectID, keyProvider.Keyfunc), nil
}

// NewVerifierWithKeyfunc builds a verifier around an explicit key lookup.
func NewVerifierWithKeyfunc(projectID string, kf jwt.Keyfunc) *Verifier {
	parser := jwt.NewParser(
		jwt.WithIssuer(issuerPrefix+projectID),
		jwt.WithAudience(projectID),
		jwt.WithLeeway(defaultLeeway),
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)
	return &Verifier{projectID: projectID, keyFunc: kf, parser: parser}
}

// Verify returns the caller identity for an "Authorization: Bearer <token>"
// header value, or nil when the header is absent, malformed or fails
// verification. The reason is logged at debug level only.
func (v *Verifier) Verify(ctx context.Context, authorization string) *domain.Identity {
	if v == nil || !strings.HasPrefix(authorization, bearerPrefix) {
		return nil
	}
	token := strings.TrimSpace(strings.TrimPrefix(authorization, bearerPrefix))
	if token == "" {
		return nil
	}
	ident, err := v.VerifyToken(token)
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("token verification failed")
		return nil
	}
	return ident
}

// VerifyToken validates a raw ID token.
func (v *Verifier) VerifyToken(raw string) (*domain.Identity, error) {
	var claims Claims
	token, err := v.parser.ParseWithClaims(raw, &claims, v.keyFunc)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	sub := strings.TrimSpace(claims.Subject)
	if sub == "" || len(sub) > maxSubjectLen {
		return nil, errors.New("token subject missing or too long")
	}
	if claims.AuthTime > 0 && time.Unix(claims.AuthTime, 0).After(time.Now().Add(defaultLeeway)) {
		return nil, errors.New("token auth_time in the future")
	}
	return &domain.Identity{ID: sub, Email: strings.TrimSpace(claims.Email)}, nil
}

// ProjectID returns the Firebase project this verifier accepts tokens for.
func (v *Verifier) ProjectID() string {
	if v == nil {
		return ""
	}
	return v.projectID
}
