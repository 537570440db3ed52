package repository

import (
	"context"
	"time"

	"laostream/internal/domain/entity"
)

type RentalRepository interface {
	GetByTransactionID(ctx context.Context, transactionID string) (*entity.Rental, error)
	Create(ctx context.Context, rental *entity.Rental) error

	// UpdateStatusIfPending transitions the rental identified by
	// transactionID from pending to status, recording paidAt and
	// failureReason as appropriate. It reports whether a row was updated:
	// false means the rental was already terminal (or absent), which is the
	// idempotence backstop for webhook replays and racing admin actions.
	UpdateStatusIfPending(ctx context.Context, transactionID string, status entity.RentalStatus, paidAt *time.Time, failureReason *string) (bool, error)

	// CountPaidByMovie returns the number of successful rentals for a movie.
	// Backs the MAX_RENTALS_PER_MOVIE cap.
	CountPaidByMovie(ctx context.Context, movieID int64) (int, error)

	// ListStalePending returns pending rentals created before cutoff,
	// bounded by limit. Used by the worker sweep.
	ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]*entity.Rental, error)
}
