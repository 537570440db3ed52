// Package auth provides authentication endpoints and JWT middleware: login
// token issuance, video playback tokens, and the admin authorization guard.
// The login, forgot-password, and video-token endpoints are guarded by the
// fixed-window rate limiter.
package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"laostream/internal/handler/http/requestid"
	"laostream/internal/handler/http/respond"
	"laostream/internal/ratelimit"
	"laostream/internal/repository"
	"laostream/pkg/config"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// tooManyAttempts writes the throttling response with the retry timestamp.
func tooManyAttempts(w http.ResponseWriter, retryAfter time.Time) {
	seconds := int(time.Until(retryAfter).Seconds())
	if seconds < 1 {
		seconds = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(seconds))
	respond.JSON(w, http.StatusTooManyRequests, map[string]string{
		"error":       "too many attempts, try again later",
		"retry_after": retryAfter.UTC().Format(time.RFC3339),
	})
}

// TokenHandler creates an HTTP handler that authenticates users and issues JWT tokens.
//
// Failed attempts are recorded against the login limit class keyed by the
// lowercased email; a successful login resets the counter so earlier
// failures do not penalize the account. The check runs before the database
// lookup so a throttled caller costs nothing.
func TokenHandler(users repository.UserRepository, limiter *ratelimit.Store, policies *config.RateLimitConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := requestid.FromContext(r.Context())
		logger := slog.With(slog.String("request_id", requestID))

		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Warn("authentication failed",
				slog.String("reason", "invalid_request"),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()))
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if req.Email == "" || req.Password == "" {
			http.Error(w, "email and password required", http.StatusBadRequest)
			return
		}

		identifier := strings.ToLower(req.Email)
		policy := toPolicy(policies.Policy(config.LimitClassLogin))

		if policies.Enabled {
			if d := limiter.Check(config.LimitClassLogin, identifier, policy); !d.Allowed {
				logger.Warn("authentication throttled",
					slog.String("limit_class", config.LimitClassLogin))
				tooManyAttempts(w, d.RetryAfter)
				return
			}
		}

		user, err := users.GetByEmail(r.Context(), identifier)
		if err != nil {
			logger.Error("authentication failed",
				slog.String("reason", "lookup_error"),
				slog.String("error", err.Error()))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
			// Record only actual failed attempts.
			if policies.Enabled {
				limiter.Record(config.LimitClassLogin, identifier, policy)
			}
			logger.Warn("authentication failed",
				slog.String("reason", "invalid_credentials"),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()))
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		// Clear prior failed attempts.
		if policies.Enabled {
			limiter.Reset(config.LimitClassLogin, identifier)
		}

		secret := []byte(os.Getenv("JWT_SECRET"))
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub":  user.Email,
			"uid":  user.ID,
			"role": string(user.Role),
			"exp":  time.Now().Add(1 * time.Hour).Unix(),
		})

		signed, err := token.SignedString(secret)
		if err != nil {
			logger.Error("token generation failed",
				slog.String("error", err.Error()))
			http.Error(w, "token generation failed", http.StatusInternalServerError)
			return
		}

		logger.Info("authentication successful",
			slog.String("role", string(user.Role)),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()))

		respond.JSON(w, http.StatusOK, tokenResponse{Token: signed})
	}
}

// toPolicy converts the configured attempt policy to the limiter's type.
func toPolicy(p config.AttemptPolicy) ratelimit.Policy {
	return ratelimit.Policy{MaxAttempts: p.MaxAttempts, Window: p.Window}
}
