package payment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFreeProvider_CreatePayment(t *testing.T) {
	p := NewFreeProvider()

	intent, err := p.CreatePayment(context.Background(), CreateParams{
		TransactionID: "txn-1",
		AmountLAK:     0,
	})

	require.NoError(t, err)
	assert.Equal(t, "txn-1", intent.TransactionID)
	assert.Equal(t, StatusSuccess, intent.Status)
	assert.Empty(t, intent.RedirectURL)
}

func TestFreeProvider_RejectsNonzeroAmount(t *testing.T) {
	p := NewFreeProvider()

	_, err := p.CreatePayment(context.Background(), CreateParams{
		TransactionID: "txn-1",
		AmountLAK:     10000,
	})

	assert.Error(t, err)
}

func TestFreeProvider_CanHandle(t *testing.T) {
	p := NewFreeProvider()

	assert.True(t, p.CanHandle(0))
	assert.False(t, p.CanHandle(1))
	assert.False(t, p.CanHandle(-1))
	assert.True(t, p.Available())
}

func TestFreeProvider_WebhookUnsupported(t *testing.T) {
	p := NewFreeProvider()

	_, err := p.HandleWebhook(context.Background(), []byte(`{}`))

	assert.ErrorIs(t, err, ErrWebhookUnsupported)
}

func TestManualProvider_CreatePaymentIsPending(t *testing.T) {
	p := NewManualProvider()

	intent, err := p.CreatePayment(context.Background(), CreateParams{
		TransactionID: "txn-2",
		AmountLAK:     50000,
	})

	require.NoError(t, err)
	assert.Equal(t, StatusPending, intent.Status)
	assert.Empty(t, intent.RedirectURL)
}

func TestManualProvider_CanHandle(t *testing.T) {
	p := NewManualProvider()

	assert.True(t, p.CanHandle(0))
	assert.True(t, p.CanHandle(50000))
	assert.False(t, p.CanHandle(-1))
	assert.True(t, p.Available())
}

func TestManualProvider_StatusNotTracked(t *testing.T) {
	p := NewManualProvider()

	result, err := p.PaymentStatus(context.Background(), "txn-2")

	assert.ErrorIs(t, err, ErrStatusNotTracked)
	require.NotNil(t, result)
	assert.Equal(t, StatusPending, result.Status)
}

func TestManualProvider_WebhookUnsupported(t *testing.T) {
	p := NewManualProvider()

	_, err := p.HandleWebhook(context.Background(), []byte(`{}`))

	require.ErrorIs(t, err, ErrWebhookUnsupported)
	assert.Contains(t, err.Error(), "manual provider")
}

func TestManualProvider_ConfirmPayment(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := &ManualProvider{clock: func() time.Time { return fixed }}

	result, err := p.ConfirmPayment(context.Background(), "txn-2")

	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, result.Status)
	require.NotNil(t, result.PaidAt)
	assert.Equal(t, fixed, *result.PaidAt)
}

func TestManualProvider_RejectPayment(t *testing.T) {
	p := NewManualProvider()

	result, err := p.RejectPayment(context.Background(), "txn-2", "duplicate transfer")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, result.Status)
	assert.Equal(t, "duplicate transfer", result.FailureReason)
	assert.Nil(t, result.PaidAt)

	result, err = p.RejectPayment(context.Background(), "txn-3", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultRejectReason, result.FailureReason)
}

func TestStatus_Terminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.True(t, StatusSuccess.Terminal())
	assert.True(t, StatusFailed.Terminal())
}
