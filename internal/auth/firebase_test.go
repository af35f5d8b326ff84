package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testProject = "smart-studio-test"

func newTestVerifier(t *testing.T) (*Verifier, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	kf := func(token *jwt.Token) (any, error) {
		return &key.PublicKey, nil
	}
	return NewVerifierWithKeyfunc(testProject, kf), key
}

func signToken(t *testing.T, key *rsa.PrivateKey, method jwt.SigningMethod, claims Claims) string {
	t.Helper()
	var signingKey any = key
	if method == jwt.SigningMethodHS256 {
		signingKey = []byte("shared-secret")
	}
	s, err := jwt.NewWithClaims(method, claims).SignedString(signingKey)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func validClaims() Claims {
	now := time.Now()
	return Claims{
		Email:    "designer@example.com",
		AuthTime: now.Add(-time.Minute).Unix(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "uid-123",
			Issuer:    issuerPrefix + testProject,
			Audience:  jwt.ClaimStrings{testProject},
			IssuedAt:  jwt.NewNumericDate(now.Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
}

func TestVerifyAcceptsValidToken(t *testing.T) {
	v, key := newTestVerifier(t)
	token := signToken(t, key, jwt.SigningMethodRS256, validClaims())

	ident := v.Verify(context.Background(), "Bearer "+token)
	if ident == nil {
		t.Fatalf("expected identity")
	}
	if ident.ID != "uid-123" || ident.Email != "designer@example.com" {
		t.Fatalf("unexpected identity: %+v", ident)
	}
}

func TestVerifyRejects(t *testing.T) {
	v, key := newTestVerifier(t)

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	wrongAudience := validClaims()
	wrongAudience.Audience = jwt.ClaimStrings{"other-project"}

	wrongIssuer := validClaims()
	wrongIssuer.Issuer = "https://accounts.google.com"

	noSubject := validClaims()
	noSubject.Subject = ""

	noExpiry := validClaims()
	noExpiry.ExpiresAt = nil

	valid := signToken(t, key, jwt.SigningMethodRS256, validClaims())

	tests := []struct {
		name   string
		header string
	}{
		{"empty header", ""},
		{"missing bearer prefix", valid},
		{"lowercase scheme", "bearer " + valid},
		{"bearer without token", "Bearer "},
		{"garbage token", "Bearer not.a.token"},
		{"expired", "Bearer " + signToken(t, key, jwt.SigningMethodRS256, expired)},
		{"wrong audience", "Bearer " + signToken(t, key, jwt.SigningMethodRS256, wrongAudience)},
		{"wrong issuer", "Bearer " + signToken(t, key, jwt.SigningMethodRS256, wrongIssuer)},
		{"no subject", "Bearer " + signToken(t, key, jwt.SigningMethodRS256, noSubject)},
		{"no expiry", "Bearer " + signToken(t, key, jwt.SigningMethodRS256, noExpiry)},
		{"hmac signed", "Bearer " + signToken(t, key, jwt.SigningMethodHS256, validClaims())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if ident := v.Verify(context.Background(), tt.header); ident != nil {
				t.Fatalf("expected nil identity, got %+v", ident)
			}
		})
	}
}

func TestVerifyRejectsForeignKey(t *testing.T) {
	v, _ := newTestVerifier(t)
	other, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	token := signToken(t, other, jwt.SigningMethodRS256, validClaims())
	if ident := v.Verify(context.Background(), "Bearer "+token); ident != nil {
		t.Fatalf("expected signature failure, got %+v", ident)
	}
}

func TestNilVerifier(t *testing.T) {
	var v *Verifier
	if v.Verify(context.Background(), "Bearer x") != nil {
		t.Fatalf("nil verifier must not authenticate")
	}
	if v.ProjectID() != "" {
		t.Fatalf("expected empty project")
	}
}

func TestNewVerifierRequiresProject(t *testing.T) {
	if _, err := NewVerifier("", "https://example.com/jwks"); err == nil {
		t.Fatalf("expected error for empty project id")
	}
}
