package payment

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DefaultRejectReason is used when an admin rejects a payment without
// giving one.
const DefaultRejectReason = "payment rejected by administrator"

// ManualProvider handles bank-transfer payments confirmed by an admin
// out-of-band. It is always available, which guarantees the registry can
// resolve a provider for any nonzero amount even when the gateway is down.
//
// The provider keeps no state of its own. The authoritative status for a
// manual payment lives in the rentals table; PaymentStatus exists for
// interface symmetry only.
type ManualProvider struct {
	clock func() time.Time
}

func NewManualProvider() *ManualProvider {
	return &ManualProvider{clock: time.Now}
}

func (p *ManualProvider) Name() string        { return ProviderManual }
func (p *ManualProvider) DisplayName() string { return "Bank Transfer (Manual)" }
func (p *ManualProvider) Available() bool     { return true }

// CanHandle is true for any non-negative amount.
func (p *ManualProvider) CanHandle(amountLAK int64) bool { return amountLAK >= 0 }

// CreatePayment always returns pending with no redirect. The customer pays
// by bank transfer and an admin confirms or rejects later.
func (p *ManualProvider) CreatePayment(_ context.Context, params CreateParams) (*Intent, error) {
	slog.Info("manual payment created, awaiting admin confirmation",
		slog.String("transaction_id", params.TransactionID),
		slog.Int64("amount_lak", params.AmountLAK))

	return &Intent{
		TransactionID: params.TransactionID,
		Status:        StatusPending,
	}, nil
}

// PaymentStatus returns a pending placeholder together with
// ErrStatusNotTracked. A bare pending here would be misleading: the payment
// may long since have been confirmed or rejected in the rentals table.
func (p *ManualProvider) PaymentStatus(_ context.Context, transactionID string) (*StatusResult, error) {
	return &StatusResult{
		TransactionID: transactionID,
		Status:        StatusPending,
	}, ErrStatusNotTracked
}

func (p *ManualProvider) HandleWebhook(context.Context, []byte) (*WebhookResult, error) {
	return nil, fmt.Errorf("manual provider: %w", ErrWebhookUnsupported)
}

// ConfirmPayment marks the transaction successful with paidAt set to now.
// The caller persists the result and enforces terminal immutability.
func (p *ManualProvider) ConfirmPayment(_ context.Context, transactionID string) (*StatusResult, error) {
	now := p.clock()

	slog.Info("manual payment confirmed",
		slog.String("transaction_id", transactionID))

	return &StatusResult{
		TransactionID: transactionID,
		Status:        StatusSuccess,
		PaidAt:        &now,
	}, nil
}

// RejectPayment marks the transaction failed. An empty reason falls back to
// DefaultRejectReason.
func (p *ManualProvider) RejectPayment(_ context.Context, transactionID, reason string) (*StatusResult, error) {
	if reason == "" {
		reason = DefaultRejectReason
	}

	slog.Info("manual payment rejected",
		slog.String("transaction_id", transactionID),
		slog.String("reason", reason))

	return &StatusResult{
		TransactionID: transactionID,
		Status:        StatusFailed,
		FailureReason: reason,
	}, nil
}
