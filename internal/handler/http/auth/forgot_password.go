package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"laostream/internal/handler/http/respond"
	"laostream/internal/ratelimit"
	"laostream/internal/repository"
	"laostream/pkg/config"
)

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPasswordHandler accepts password reset requests. Every request for
// an email counts against the forgot-password limit class regardless of
// whether the account exists, and the response never reveals account
// existence. Reset delivery happens out of band.
func ForgotPasswordHandler(users repository.UserRepository, limiter *ratelimit.Store, policies *config.RateLimitConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req forgotPasswordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if req.Email == "" {
			http.Error(w, "email required", http.StatusBadRequest)
			return
		}

		identifier := strings.ToLower(req.Email)
		policy := toPolicy(policies.Policy(config.LimitClassForgotPassword))

		if policies.Enabled {
			if d := limiter.Check(config.LimitClassForgotPassword, identifier, policy); !d.Allowed {
				tooManyAttempts(w, d.RetryAfter)
				return
			}
			limiter.Record(config.LimitClassForgotPassword, identifier, policy)
		}

		user, err := users.GetByEmail(r.Context(), identifier)
		if err != nil {
			slog.Error("forgot password lookup failed",
				slog.String("error", err.Error()))
		} else if user != nil {
			slog.Info("password reset requested",
				slog.Int64("user_id", user.ID))
		}

		respond.JSON(w, http.StatusAccepted, map[string]string{
			"message": "if the account exists, reset instructions have been sent",
		})
	}
}
