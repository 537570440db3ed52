package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"laostream/internal/domain/entity"
	"laostream/internal/ratelimit"
	"laostream/internal/repository"
	rentalUC "laostream/internal/usecase/rental"
)

// stubRentalRepo serves fixed rentals by transaction ID. Only the lookups
// the token endpoint needs are implemented.
type stubRentalRepo struct {
	rentals map[string]*entity.Rental
}

func (s *stubRentalRepo) GetByTransactionID(_ context.Context, txID string) (*entity.Rental, error) {
	return s.rentals[txID], nil
}

func (s *stubRentalRepo) Create(_ context.Context, _ *entity.Rental) error { return nil }

func (s *stubRentalRepo) UpdateStatusIfPending(_ context.Context, _ string, _ entity.RentalStatus, _ *time.Time, _ *string) (bool, error) {
	return false, nil
}

func (s *stubRentalRepo) CountPaidByMovie(_ context.Context, _ int64) (int, error) { return 0, nil }

func (s *stubRentalRepo) ListStalePending(_ context.Context, _ time.Time, _ int) ([]*entity.Rental, error) {
	return nil, nil
}

var _ repository.RentalRepository = (*stubRentalRepo)(nil)

func newVideoTokenHandler(t *testing.T, rentals map[string]*entity.Rental) http.HandlerFunc {
	t.Helper()
	svc := rentalUC.NewService(&stubRentalRepo{rentals: rentals}, nil, nil, nil, 0, nil)
	limiter := ratelimit.NewStore(ratelimit.StoreConfig{})
	clientIP := func(*http.Request) string { return "10.0.0.1" }
	return VideoTokenHandler(svc, limiter, testPolicies(), clientIP)
}

func requestVideoToken(handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/auth/video-token", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestVideoTokenHandler_IssuesScopedToken(t *testing.T) {
	t.Setenv("JWT_SECRET", testJWTSecret)

	paidAt := time.Now().Add(-time.Hour)
	expiresAt := time.Now().Add(48 * time.Hour)
	userID := int64(7)
	handler := newVideoTokenHandler(t, map[string]*entity.Rental{
		"txn-paid": {
			TransactionID: "txn-paid",
			MovieID:       42,
			UserID:        &userID,
			AmountLAK:     50000,
			Provider:      "bcel",
			Status:        entity.RentalStatusSuccess,
			PaidAt:        &paidAt,
			ExpiresAt:     &expiresAt,
		},
	})

	rec := requestVideoToken(handler, `{"transaction_id":"txn-paid"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp videoTokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	tok, err := jwt.Parse(resp.Token, func(t *jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	if err != nil || !tok.Valid {
		t.Fatalf("issued token does not validate: %v", err)
	}
	claims := tok.Claims.(jwt.MapClaims)
	if claims["scope"] != "video" {
		t.Errorf("scope = %v, want video", claims["scope"])
	}
	if claims["txn"] != "txn-paid" {
		t.Errorf("txn = %v, want txn-paid", claims["txn"])
	}
	if got := int64(claims["movie_id"].(float64)); got != 42 {
		t.Errorf("movie_id = %d, want 42", got)
	}

	exp := time.Unix(int64(claims["exp"].(float64)), 0)
	if until := time.Until(exp); until > videoTokenTTL+time.Minute || until <= 0 {
		t.Errorf("token lifetime = %v, want about %v", until, videoTokenTTL)
	}
}

func TestVideoTokenHandler_Refusals(t *testing.T) {
	t.Setenv("JWT_SECRET", testJWTSecret)

	anon := "sess-1"
	expired := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)
	handler := newVideoTokenHandler(t, map[string]*entity.Rental{
		"txn-pending": {
			TransactionID: "txn-pending",
			MovieID:       1,
			AnonymousID:   &anon,
			Status:        entity.RentalStatusPending,
		},
		"txn-failed": {
			TransactionID: "txn-failed",
			MovieID:       1,
			AnonymousID:   &anon,
			Status:        entity.RentalStatusFailed,
		},
		"txn-expired": {
			TransactionID: "txn-expired",
			MovieID:       1,
			AnonymousID:   &anon,
			Status:        entity.RentalStatusSuccess,
			ExpiresAt:     &expired,
		},
		"txn-live": {
			TransactionID: "txn-live",
			MovieID:       1,
			AnonymousID:   &anon,
			Status:        entity.RentalStatusSuccess,
			ExpiresAt:     &future,
		},
	})

	tests := []struct {
		name string
		body string
		want int
	}{
		{"pending rental", `{"transaction_id":"txn-pending"}`, http.StatusForbidden},
		{"failed rental", `{"transaction_id":"txn-failed"}`, http.StatusForbidden},
		{"expired rental", `{"transaction_id":"txn-expired"}`, http.StatusForbidden},
		{"unknown transaction", `{"transaction_id":"txn-ghost"}`, http.StatusNotFound},
		{"missing transaction id", `{}`, http.StatusBadRequest},
		{"live rental", `{"transaction_id":"txn-live"}`, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := requestVideoToken(handler, tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestVideoTokenHandler_ThrottlesPerIP(t *testing.T) {
	t.Setenv("JWT_SECRET", testJWTSecret)

	future := time.Now().Add(time.Hour)
	anon := "sess-1"
	handler := newVideoTokenHandler(t, map[string]*entity.Rental{
		"txn-live": {
			TransactionID: "txn-live",
			MovieID:       1,
			AnonymousID:   &anon,
			Status:        entity.RentalStatusSuccess,
			ExpiresAt:     &future,
		},
	})

	// Budget is 30 per minute; every issuance attempt counts.
	for i := 0; i < 30; i++ {
		rec := requestVideoToken(handler, `{"transaction_id":"txn-live"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("attempt %d: status = %d, want %d", i+1, rec.Code, http.StatusOK)
		}
	}
	rec := requestVideoToken(handler, `{"transaction_id":"txn-live"}`)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header on throttled response")
	}
}
