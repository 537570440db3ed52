// Package payment defines the payment provider contract and its concrete
// backends. Providers are a closed set constructed at startup: free for
// zero-amount rentals, bcel for the BCEL OnePay gateway, and manual for
// admin-confirmed bank transfers.
package payment

import (
	"context"
	"errors"
	"time"
)

// Provider name constants. Stable identifiers used in persistence and API
// responses; never rename.
const (
	ProviderFree   = "free"
	ProviderBCEL   = "bcel"
	ProviderManual = "manual"
)

// Status is a payment state. success and failed are terminal: once a
// transaction reaches either, no later webhook or admin action may change it.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Terminal returns true for success and failed.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

var (
	// ErrWebhookUnsupported is returned by providers that never receive
	// webhooks. It signals a routing misconfiguration and must surface as a
	// server error, never a silent no-op.
	ErrWebhookUnsupported = errors.New("provider does not support webhooks")

	// ErrProviderNotFound is returned by registry lookups with no match.
	ErrProviderNotFound = errors.New("payment provider not found")

	// ErrStatusNotTracked marks a status result from a provider that keeps
	// no state of its own. The authoritative status lives in the rentals
	// table; the accompanying pending result is a placeholder.
	ErrStatusNotTracked = errors.New("provider does not track payment status")

	// ErrInvalidSignature is returned when a webhook payload fails
	// signature verification.
	ErrInvalidSignature = errors.New("invalid webhook signature")

	// ErrGatewayUnavailable is returned when the gateway cannot be reached
	// or its circuit breaker is open.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
)

// CreateParams carries everything a provider needs to initiate a payment.
type CreateParams struct {
	// TransactionID is the caller-generated identifier for the rental
	// transaction. Providers must be safe to call once per TransactionID.
	TransactionID string
	AmountLAK     int64
	Description   string
	// ReturnURL is where the gateway sends the customer after checkout.
	// Ignored by providers without a hosted payment page.
	ReturnURL string
}

// Intent is a provider's initial acknowledgment of a payment, not the final
// settled state.
type Intent struct {
	TransactionID string
	Status        Status
	// RedirectURL points at the external payment page. Empty for providers
	// that settle inline or out-of-band.
	RedirectURL   string
	FailureReason string
}

// StatusResult is a point-in-time status query result or the outcome of a
// confirm/reject action.
type StatusResult struct {
	TransactionID string
	Status        Status
	PaidAt        *time.Time
	FailureReason string
}

// WebhookResult is the parsed, verified outcome of a gateway callback. The
// caller persists it idempotently: a replayed webhook for an already
// terminal transaction must not double-apply.
type WebhookResult struct {
	TransactionID string
	Status        Status
	PaidAt        *time.Time
	FailureReason string
}

// Provider is the capability contract every payment backend implements.
type Provider interface {
	// Name returns the stable identifier (free, bcel, manual).
	Name() string
	// DisplayName returns the human-readable label for admin display.
	DisplayName() string
	// Available reports whether the provider is currently operable, e.g.
	// gateway credentials are present and the circuit is closed.
	Available() bool
	// CanHandle reports whether the provider is eligible for the amount.
	// It is a provider-owned eligibility check, separate from the
	// registry's selection policy.
	CanHandle(amountLAK int64) bool

	CreatePayment(ctx context.Context, params CreateParams) (*Intent, error)
	PaymentStatus(ctx context.Context, transactionID string) (*StatusResult, error)
	HandleWebhook(ctx context.Context, payload []byte) (*WebhookResult, error)
}
