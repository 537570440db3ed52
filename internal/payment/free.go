package payment

import (
	"context"
	"fmt"
	"log/slog"
)

// FreeProvider settles zero-amount rentals immediately. It has no pending
// state and no external dependency, so free content is never blocked by a
// gateway outage.
type FreeProvider struct{}

func NewFreeProvider() *FreeProvider { return &FreeProvider{} }

func (p *FreeProvider) Name() string        { return ProviderFree }
func (p *FreeProvider) DisplayName() string { return "Free" }
func (p *FreeProvider) Available() bool     { return true }

// CanHandle is true only for an amount of exactly zero.
func (p *FreeProvider) CanHandle(amountLAK int64) bool { return amountLAK == 0 }

func (p *FreeProvider) CreatePayment(_ context.Context, params CreateParams) (*Intent, error) {
	if params.AmountLAK != 0 {
		return nil, fmt.Errorf("free provider cannot handle amount %d", params.AmountLAK)
	}

	slog.Info("free payment settled",
		slog.String("transaction_id", params.TransactionID))

	return &Intent{
		TransactionID: params.TransactionID,
		Status:        StatusSuccess,
	}, nil
}

// PaymentStatus reports success: a free payment settles at creation, so any
// known transaction is already final.
func (p *FreeProvider) PaymentStatus(_ context.Context, transactionID string) (*StatusResult, error) {
	return &StatusResult{
		TransactionID: transactionID,
		Status:        StatusSuccess,
	}, nil
}

func (p *FreeProvider) HandleWebhook(context.Context, []byte) (*WebhookResult, error) {
	return nil, fmt.Errorf("free provider: %w", ErrWebhookUnsupported)
}
