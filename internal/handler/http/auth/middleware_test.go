package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signTestToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestAuthz(t *testing.T) {
	t.Setenv("JWT_SECRET", testJWTSecret)

	adminToken := signTestToken(t, jwt.MapClaims{
		"sub":  "admin@example.com",
		"role": "admin",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}, testJWTSecret)
	userToken := signTestToken(t, jwt.MapClaims{
		"sub":  "viewer@example.com",
		"role": "user",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}, testJWTSecret)
	expiredToken := signTestToken(t, jwt.MapClaims{
		"sub":  "admin@example.com",
		"role": "admin",
		"exp":  time.Now().Add(-time.Minute).Unix(),
	}, testJWTSecret)
	forgedToken := signTestToken(t, jwt.MapClaims{
		"sub":  "admin@example.com",
		"role": "admin",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}, "some-other-secret-that-is-long-enough")

	var gotUser string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = UserFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	handler := Authz(inner)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"admin token", "Bearer " + adminToken, http.StatusNoContent},
		{"non-admin token", "Bearer " + userToken, http.StatusForbidden},
		{"expired token", "Bearer " + expiredToken, http.StatusUnauthorized},
		{"wrong secret", "Bearer " + forgedToken, http.StatusUnauthorized},
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc123", http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.jwt", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotUser = ""
			req := httptest.NewRequest(http.MethodPost, "/admin/payments/txn/confirm", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.want == http.StatusNoContent && gotUser != "admin@example.com" {
				t.Errorf("context user = %q, want admin@example.com", gotUser)
			}
		})
	}
}

func TestAuthz_RejectsUnexpectedSigningMethod(t *testing.T) {
	t.Setenv("JWT_SECRET", testJWTSecret)

	// alg=none style tokens must never pass.
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub":  "admin@example.com",
		"role": "admin",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	handler := Authz(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/admin/payments/txn/confirm", nil)
	req.Header.Set("Authorization", "Bearer "+unsigned)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
