package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"laostream/internal/domain/entity"
	"laostream/internal/handler/http/respond"
	"laostream/internal/ratelimit"
	rentalUC "laostream/internal/usecase/rental"
	"laostream/pkg/config"
)

type videoTokenRequest struct {
	TransactionID string `json:"transaction_id"`
}

type videoTokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

// videoTokenTTL bounds how long one playback token stays usable by the
// static video file server.
const videoTokenTTL = 15 * time.Minute

// VideoTokenHandler issues short-lived playback tokens for paid rentals.
// The endpoint is throttled per client IP with the video-token limit class;
// every issuance attempt is recorded, successful or not, because token
// issuance itself is the resource being protected.
func VideoTokenHandler(rentals *rentalUC.Service, limiter *ratelimit.Store, policies *config.RateLimitConfig, clientIP func(*http.Request) string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identifier := clientIP(r)
		policy := toPolicy(policies.Policy(config.LimitClassVideoToken))

		if policies.Enabled {
			if d := limiter.Check(config.LimitClassVideoToken, identifier, policy); !d.Allowed {
				tooManyAttempts(w, d.RetryAfter)
				return
			}
			limiter.Record(config.LimitClassVideoToken, identifier, policy)
		}

		var req videoTokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if req.TransactionID == "" {
			http.Error(w, "transaction_id required", http.StatusBadRequest)
			return
		}

		rental, err := rentals.Status(r.Context(), req.TransactionID)
		if err != nil {
			if errors.Is(err, rentalUC.ErrRentalNotFound) {
				respond.SafeError(w, http.StatusNotFound, err)
				return
			}
			respond.SafeError(w, http.StatusInternalServerError, err)
			return
		}

		if rental.Status != entity.RentalStatusSuccess {
			respond.SafeError(w, http.StatusForbidden, errors.New("rental is not paid"))
			return
		}
		if rental.ExpiresAt != nil && time.Now().After(*rental.ExpiresAt) {
			respond.SafeError(w, http.StatusForbidden, errors.New("rental has expired"))
			return
		}

		expiresAt := time.Now().Add(videoTokenTTL)
		secret := []byte(os.Getenv("JWT_SECRET"))
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"scope":    "video",
			"txn":      rental.TransactionID,
			"movie_id": rental.MovieID,
			"exp":      expiresAt.Unix(),
		})

		signed, err := token.SignedString(secret)
		if err != nil {
			slog.Error("video token generation failed",
				slog.String("error", err.Error()))
			http.Error(w, "token generation failed", http.StatusInternalServerError)
			return
		}

		respond.JSON(w, http.StatusOK, videoTokenResponse{
			Token:     signed,
			ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
		})
	}
}
