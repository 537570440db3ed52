package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Limit classes guarded by the attempt limiter. Each class carries its own
// policy so that, for example, failed logins and video-token issuance are
// throttled independently for the same identifier.
const (
	LimitClassLogin          = "login"
	LimitClassForgotPassword = "forgot-password"
	LimitClassVideoToken     = "video-token"
)

// AttemptPolicy bounds the number of attempts an identifier may make within
// a fixed window. The window starts at the first recorded attempt and is not
// extended by subsequent attempts.
type AttemptPolicy struct {
	MaxAttempts int           `yaml:"max_attempts"`
	Window      time.Duration `yaml:"window"`
}

// RateLimitConfig holds the attempt limiter configuration: one policy per
// limit class plus the background cleanup interval.
type RateLimitConfig struct {
	Enabled         bool
	CleanupInterval time.Duration
	Policies        map[string]AttemptPolicy
}

// DefaultRateLimitConfig returns the compiled-in limiter policies.
//
// Defaults: login 5 attempts / 15 min, forgot-password 3 / 15 min,
// video-token 30 / 1 min, cleanup sweep every 5 min.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled:         true,
		CleanupInterval: 5 * time.Minute,
		Policies: map[string]AttemptPolicy{
			LimitClassLogin:          {MaxAttempts: 5, Window: 15 * time.Minute},
			LimitClassForgotPassword: {MaxAttempts: 3, Window: 15 * time.Minute},
			LimitClassVideoToken:     {MaxAttempts: 30, Window: 1 * time.Minute},
		},
	}
}

// ratelimitPolicyFile mirrors the YAML policy override file layout:
//
//	ratelimit:
//	  cleanup_interval: 5m
//	  policies:
//	    login:
//	      max_attempts: 5
//	      window: 15m
type ratelimitPolicyFile struct {
	RateLimit struct {
		CleanupInterval time.Duration            `yaml:"cleanup_interval"`
		Policies        map[string]AttemptPolicy `yaml:"policies"`
	} `yaml:"ratelimit"`
}

// LoadRateLimitConfig loads the limiter configuration.
//
// Precedence, lowest to highest: compiled-in defaults, the optional YAML
// policy file named by RATELIMIT_POLICY_FILE, then per-class environment
// overrides (RATELIMIT_LOGIN_MAX_ATTEMPTS, RATELIMIT_LOGIN_WINDOW, and the
// equivalents for FORGOT_PASSWORD and VIDEO_TOKEN). RATELIMIT_ENABLED=false
// disables enforcement entirely.
func LoadRateLimitConfig() (RateLimitConfig, error) {
	cfg := DefaultRateLimitConfig()

	if path := os.Getenv("RATELIMIT_POLICY_FILE"); path != "" {
		if err := applyPolicyFile(&cfg, path); err != nil {
			return RateLimitConfig{}, err
		}
	}

	cfg.Enabled = GetEnvBool("RATELIMIT_ENABLED", cfg.Enabled)
	cfg.CleanupInterval = GetEnvDuration("RATELIMIT_CLEANUP_INTERVAL", cfg.CleanupInterval)

	envOverrides := map[string]string{
		LimitClassLogin:          "RATELIMIT_LOGIN",
		LimitClassForgotPassword: "RATELIMIT_FORGOT_PASSWORD",
		LimitClassVideoToken:     "RATELIMIT_VIDEO_TOKEN",
	}
	for class, prefix := range envOverrides {
		policy := cfg.Policies[class]
		policy.MaxAttempts = GetEnvInt(prefix+"_MAX_ATTEMPTS", policy.MaxAttempts)
		policy.Window = GetEnvDuration(prefix+"_WINDOW", policy.Window)
		cfg.Policies[class] = policy
	}

	if err := cfg.validate(); err != nil {
		return RateLimitConfig{}, err
	}
	return cfg, nil
}

// applyPolicyFile overlays policies from a trusted YAML file onto cfg.
// Unknown classes in the file are accepted; callers looking them up get
// whatever the file declares.
func applyPolicyFile(cfg *RateLimitConfig, path string) error {
	// #nosec G304 -- path comes from the operator's environment, not user input
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read rate limit policy file: %w", err)
	}

	var file ratelimitPolicyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse rate limit policy file: %w", err)
	}

	if file.RateLimit.CleanupInterval > 0 {
		cfg.CleanupInterval = file.RateLimit.CleanupInterval
	}
	for class, policy := range file.RateLimit.Policies {
		cfg.Policies[class] = policy
	}
	return nil
}

func (c RateLimitConfig) validate() error {
	if err := ValidateDurationRange(c.CleanupInterval, 10*time.Second, 1*time.Hour); err != nil {
		return fmt.Errorf("invalid cleanup interval: %w", err)
	}
	for class, policy := range c.Policies {
		if policy.MaxAttempts <= 0 {
			return fmt.Errorf("limit class %q: max_attempts must be positive, got %d", class, policy.MaxAttempts)
		}
		if err := ValidatePositiveDuration(policy.Window); err != nil {
			return fmt.Errorf("limit class %q: %w", class, err)
		}
	}
	return nil
}

// Policy returns the policy for a limit class, falling back to the login
// policy for unknown classes so a misnamed class throttles conservatively
// instead of not at all.
func (c RateLimitConfig) Policy(class string) AttemptPolicy {
	if policy, ok := c.Policies[class]; ok {
		return policy
	}
	return c.Policies[LimitClassLogin]
}
