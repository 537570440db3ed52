// Package rental implements the rental transaction lifecycle: creation with
// payment provider selection, status queries, and the idempotent terminal
// status transitions driven by gateway webhooks and admin actions.
package rental

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"laostream/internal/domain/entity"
	"laostream/internal/payment"
	"laostream/internal/repository"
)

// expireParallelism bounds concurrent status updates during the stale sweep.
const expireParallelism = 4

// MetricsRecorder receives rental lifecycle events.
type MetricsRecorder interface {
	RecordRentalCreated(provider string)
	RecordStatusApplied(status string)
	RecordDuplicateUpdate()
}

// NoopMetrics discards all events.
type NoopMetrics struct{}

func (NoopMetrics) RecordRentalCreated(string) {}
func (NoopMetrics) RecordStatusApplied(string) {}
func (NoopMetrics) RecordDuplicateUpdate()     {}

// CreateInput represents the input parameters for creating a rental.
// Exactly one of UserID and AnonymousID must be set.
type CreateInput struct {
	MovieID     int64
	UserID      *int64
	AnonymousID *string
	// ReturnURL is where the gateway sends the customer after checkout.
	ReturnURL string
}

// CreateResult is the outcome of a rental creation: the persisted rental
// plus the provider-specific next step.
type CreateResult struct {
	Rental *entity.Rental
	// Provider is the stable name of the selected payment provider.
	Provider string
	// RedirectURL points at the hosted payment page for gateway payments.
	RedirectURL string
}

// Service provides rental lifecycle use cases. It owns the state-transition
// rules: pending is the only mutable status, and every terminal transition
// goes through the status-guarded repository update.
type Service struct {
	Rentals   repository.RentalRepository
	Movies    repository.MovieRepository
	Providers *payment.Registry
	Manual    *payment.ManualProvider

	// MaxRentalsPerMovie caps successful rentals per movie. Zero or
	// negative disables the cap.
	MaxRentalsPerMovie int

	Metrics MetricsRecorder

	now   func() time.Time
	newID func() string
}

// NewService wires a rental service with real time and id sources.
func NewService(rentals repository.RentalRepository, movies repository.MovieRepository, providers *payment.Registry, manual *payment.ManualProvider, maxRentalsPerMovie int, metrics MetricsRecorder) *Service {
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	return &Service{
		Rentals:            rentals,
		Movies:             movies,
		Providers:          providers,
		Manual:             manual,
		MaxRentalsPerMovie: maxRentalsPerMovie,
		Metrics:            metrics,
		now:                time.Now,
		newID:              uuid.NewString,
	}
}

// Create starts a rental: it validates the movie, enforces the per-movie
// cap, selects a payment provider for the movie's price, creates the
// payment intent, and persists the rental with the intent's status.
func (s *Service) Create(ctx context.Context, in CreateInput) (*CreateResult, error) {
	if in.MovieID <= 0 {
		return nil, &entity.ValidationError{Field: "movieID", Message: "must be positive"}
	}
	if (in.UserID == nil) == (in.AnonymousID == nil) {
		return nil, &entity.ValidationError{Field: "userID", Message: "exactly one of userID and anonymousID must be set"}
	}

	movie, err := s.Movies.Get(ctx, in.MovieID)
	if err != nil {
		return nil, fmt.Errorf("get movie: %w", err)
	}
	if movie == nil {
		return nil, ErrMovieNotFound
	}
	if !movie.Published {
		return nil, ErrMovieUnavailable
	}

	if s.MaxRentalsPerMovie > 0 && !movie.Free() {
		count, err := s.Rentals.CountPaidByMovie(ctx, movie.ID)
		if err != nil {
			return nil, fmt.Errorf("count rentals: %w", err)
		}
		if count >= s.MaxRentalsPerMovie {
			return nil, ErrRentalLimitReached
		}
	}

	transactionID := s.newID()
	provider := s.Providers.ProviderForAmount(movie.RentalPriceLAK)

	intent, err := provider.CreatePayment(ctx, payment.CreateParams{
		TransactionID: transactionID,
		AmountLAK:     movie.RentalPriceLAK,
		Description:   "Rental: " + movie.Title,
		ReturnURL:     in.ReturnURL,
	})
	if err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}

	now := s.now()
	expiresAt := now.Add(time.Duration(movie.RentalDays) * 24 * time.Hour)
	r := &entity.Rental{
		TransactionID: transactionID,
		MovieID:       movie.ID,
		UserID:        in.UserID,
		AnonymousID:   in.AnonymousID,
		AmountLAK:     movie.RentalPriceLAK,
		Provider:      provider.Name(),
		Status:        toRentalStatus(intent.Status),
		ExpiresAt:     &expiresAt,
	}
	if intent.Status == payment.StatusSuccess {
		r.PaidAt = &now
	}
	if intent.FailureReason != "" {
		r.FailureReason = &intent.FailureReason
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}

	if err := s.Rentals.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("create rental: %w", err)
	}

	s.Metrics.RecordRentalCreated(provider.Name())

	return &CreateResult{
		Rental:      r,
		Provider:    provider.Name(),
		RedirectURL: intent.RedirectURL,
	}, nil
}

// Status returns the persisted rental for a transaction. The rentals table
// is authoritative for every provider; providers are not consulted.
func (s *Service) Status(ctx context.Context, transactionID string) (*entity.Rental, error) {
	if transactionID == "" {
		return nil, &entity.ValidationError{Field: "transactionID", Message: "is required"}
	}

	r, err := s.Rentals.GetByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("get rental: %w", err)
	}
	if r == nil {
		return nil, ErrRentalNotFound
	}
	return r, nil
}

// ApplyPaymentUpdate transitions a pending rental to a terminal status.
// A rental that is already terminal is never touched: the update reports
// ErrAlreadyFinal and the stored status stands, whichever writer got there
// first. Replaying the same update is therefore a safe no-op at the caller.
func (s *Service) ApplyPaymentUpdate(ctx context.Context, transactionID string, status payment.Status, paidAt *time.Time, failureReason string) (*entity.Rental, error) {
	if !status.Terminal() {
		return nil, &entity.ValidationError{Field: "status", Message: "must be a terminal status"}
	}

	r, err := s.Rentals.GetByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("get rental: %w", err)
	}
	if r == nil {
		return nil, ErrRentalNotFound
	}
	if r.Status.Terminal() {
		s.Metrics.RecordDuplicateUpdate()
		return r, ErrAlreadyFinal
	}

	var reason *string
	if failureReason != "" {
		reason = &failureReason
	}
	if status == payment.StatusSuccess && paidAt == nil {
		now := s.now()
		paidAt = &now
	}

	newStatus := toRentalStatus(status)
	updated, err := s.Rentals.UpdateStatusIfPending(ctx, transactionID, newStatus, paidAt, reason)
	if err != nil {
		return nil, fmt.Errorf("update rental status: %w", err)
	}
	if !updated {
		// Lost the race against another writer after the read above.
		s.Metrics.RecordDuplicateUpdate()
		current, err := s.Rentals.GetByTransactionID(ctx, transactionID)
		if err != nil {
			return nil, fmt.Errorf("get rental: %w", err)
		}
		return current, ErrAlreadyFinal
	}

	s.Metrics.RecordStatusApplied(string(newStatus))

	r.Status = newStatus
	r.PaidAt = paidAt
	r.FailureReason = reason
	return r, nil
}

// ConfirmManual applies an admin confirmation to a manual-provider rental.
func (s *Service) ConfirmManual(ctx context.Context, transactionID string) (*entity.Rental, error) {
	if err := s.requireManual(ctx, transactionID); err != nil {
		return nil, err
	}

	result, err := s.Manual.ConfirmPayment(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("confirm payment: %w", err)
	}
	return s.ApplyPaymentUpdate(ctx, transactionID, result.Status, result.PaidAt, result.FailureReason)
}

// RejectManual applies an admin rejection to a manual-provider rental. An
// empty reason falls back to the provider default.
func (s *Service) RejectManual(ctx context.Context, transactionID, reason string) (*entity.Rental, error) {
	if err := s.requireManual(ctx, transactionID); err != nil {
		return nil, err
	}

	result, err := s.Manual.RejectPayment(ctx, transactionID, reason)
	if err != nil {
		return nil, fmt.Errorf("reject payment: %w", err)
	}
	return s.ApplyPaymentUpdate(ctx, transactionID, result.Status, result.PaidAt, result.FailureReason)
}

func (s *Service) requireManual(ctx context.Context, transactionID string) error {
	r, err := s.Rentals.GetByTransactionID(ctx, transactionID)
	if err != nil {
		return fmt.Errorf("get rental: %w", err)
	}
	if r == nil {
		return ErrRentalNotFound
	}
	if r.Provider != payment.ProviderManual {
		return ErrNotManualRental
	}
	return nil
}

// HandleGatewayWebhook verifies and applies a gateway callback. The
// returned error may be ErrAlreadyFinal for a replayed webhook; the HTTP
// layer acknowledges those so the gateway stops retrying.
func (s *Service) HandleGatewayWebhook(ctx context.Context, payload []byte) (*entity.Rental, error) {
	provider, err := s.Providers.Provider(payment.ProviderBCEL)
	if err != nil {
		return nil, fmt.Errorf("lookup gateway provider: %w", err)
	}

	result, err := provider.HandleWebhook(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("handle webhook: %w", err)
	}

	return s.ApplyPaymentUpdate(ctx, result.TransactionID, result.Status, result.PaidAt, result.FailureReason)
}

// ExpireStalePending fails pending rentals older than ttl. Run by the
// background worker so abandoned checkouts do not stay pending forever.
// Returns the number of rentals transitioned.
func (s *Service) ExpireStalePending(ctx context.Context, ttl time.Duration, limit int) (int, error) {
	cutoff := s.now().Add(-ttl)
	stale, err := s.Rentals.ListStalePending(ctx, cutoff, limit)
	if err != nil {
		return 0, fmt.Errorf("list stale rentals: %w", err)
	}

	var expired atomic.Int64
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(expireParallelism)
	for _, r := range stale {
		txID := r.TransactionID
		eg.Go(func() error {
			_, err := s.ApplyPaymentUpdate(egCtx, txID, payment.StatusFailed, nil, "payment expired")
			if errors.Is(err, ErrAlreadyFinal) {
				// Settled between the listing and the update. Not ours to touch.
				return nil
			}
			if err != nil {
				return fmt.Errorf("expire rental %s: %w", txID, err)
			}
			expired.Add(1)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return int(expired.Load()), err
	}
	return int(expired.Load()), nil
}

// ListProviders exposes the provider listing for admin display.
func (s *Service) ListProviders() []payment.ProviderInfo {
	return s.Providers.List()
}

func toRentalStatus(s payment.Status) entity.RentalStatus {
	switch s {
	case payment.StatusSuccess:
		return entity.RentalStatusSuccess
	case payment.StatusFailed:
		return entity.RentalStatusFailed
	default:
		return entity.RentalStatusPending
	}
}
