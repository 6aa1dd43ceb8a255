package api

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

func TestBearerToken(t *testing.T) {
	token, err := bearerToken("Bearer header.payload.signature")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "header.payload.signature" {
		t.Fatalf("unexpected token: %q", token)
	}
}

func TestBearerTokenMissing(t *testing.T) {
	if _, err := bearerToken(""); err != errMissingAuthorization {
		t.Fatalf("expected missing header error, got %v", err)
	}
}

func TestBearerTokenMalformed(t *testing.T) {
	cases := []string{
		"header.payload.signature",       // no scheme
		"Basic abc",                      // wrong scheme
		"Bearer notajwt",                 // not three segments
		"Bearer a.b.c.d",                 // too many segments
	}
	for _, h := range cases {
		if _, err := bearerToken(h); err != errBadAuthorization {
			t.Fatalf("header %q: expected bad auth error, got %v", h, err)
		}
	}
}

func newLocalAuth(t *testing.T, secret string) *Auth {
	t.Helper()
	t.Setenv(envLocalAuthMode, "hs256")
	t.Setenv(envLocalAuthSecret, secret)
	return NewAuth(nil, "api://studioflow", "https://issuer/")
}

func signHS256(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestUserIDFromAuthHeaderHS256(t *testing.T) {
	auth := newLocalAuth(t, "test-secret")
	signed := signHS256(t, "test-secret", jwt.MapClaims{
		"sub": "user-123",
		"aud": "api://studioflow",
		"iss": "https://issuer/",
		"exp": time.Now().Add(5 * time.Minute).Unix(),
		"nbf": time.Now().Add(-time.Minute).Unix(),
		"iat": time.Now().Add(-time.Minute).Unix(),
	})

	sub, err := auth.UserIDFromAuthHeader("Bearer " + signed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub != "user-123" {
		t.Fatalf("unexpected subject: %q", sub)
	}
}

func TestUserIDFromAuthHeaderExpired(t *testing.T) {
	auth := newLocalAuth(t, "test-secret")
	signed := signHS256(t, "test-secret", jwt.MapClaims{
		"sub": "user-123",
		"aud": "api://studioflow",
		"iss": "https://issuer/",
		"exp": time.Now().Add(-5 * time.Minute).Unix(),
	})

	if _, err := auth.UserIDFromAuthHeader("Bearer " + signed); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestUserIDFromAuthHeaderWrongAudience(t *testing.T) {
	auth := newLocalAuth(t, "test-secret")
	signed := signHS256(t, "test-secret", jwt.MapClaims{
		"sub": "user-123",
		"aud": "api://other",
		"iss": "https://issuer/",
		"exp": time.Now().Add(5 * time.Minute).Unix(),
	})

	if _, err := auth.UserIDFromAuthHeader("Bearer " + signed); err == nil {
		t.Fatal("expected audience mismatch to be rejected")
	}
}

func TestUserIDFromAuthHeaderMissingSub(t *testing.T) {
	auth := newLocalAuth(t, "test-secret")
	signed := signHS256(t, "test-secret", jwt.MapClaims{
		"aud": "api://studioflow",
		"iss": "https://issuer/",
		"exp": time.Now().Add(5 * time.Minute).Unix(),
	})

	if _, err := auth.UserIDFromAuthHeader("Bearer " + signed); err == nil {
		t.Fatal("expected token without sub to be rejected")
	}
}
