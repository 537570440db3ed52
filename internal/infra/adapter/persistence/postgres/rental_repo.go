package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"laostream/internal/domain/entity"
	"laostream/internal/observability/metrics"
	"laostream/internal/repository"
)

// observeQuery feeds the db_query_duration histogram. Rental queries sit on
// the payment path, so they are the ones worth watching.
func observeQuery(operation string, start time.Time) {
	metrics.DBQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

type RentalRepo struct{ db *sql.DB }

func NewRentalRepo(db *sql.DB) repository.RentalRepository {
	return &RentalRepo{db: db}
}

const rentalColumns = `id, transaction_id, movie_id, user_id, anonymous_id,
amount_lak, provider, status, failure_reason, paid_at, expires_at,
created_at, updated_at`

// scanRental is a helper to scan one rental row.
func scanRental(rows *sql.Rows) (*entity.Rental, error) {
	var rental entity.Rental
	if err := rows.Scan(
		&rental.ID, &rental.TransactionID, &rental.MovieID, &rental.UserID,
		&rental.AnonymousID, &rental.AmountLAK, &rental.Provider,
		&rental.Status, &rental.FailureReason, &rental.PaidAt,
		&rental.ExpiresAt, &rental.CreatedAt, &rental.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &rental, nil
}

func (repo *RentalRepo) GetByTransactionID(ctx context.Context, transactionID string) (*entity.Rental, error) {
	const query = `
SELECT ` + rentalColumns + `
FROM rentals
WHERE transaction_id = $1
LIMIT 1`
	defer observeQuery("rental_get_by_transaction_id", time.Now())
	var rental entity.Rental
	err := repo.db.QueryRowContext(ctx, query, transactionID).Scan(
		&rental.ID, &rental.TransactionID, &rental.MovieID, &rental.UserID,
		&rental.AnonymousID, &rental.AmountLAK, &rental.Provider,
		&rental.Status, &rental.FailureReason, &rental.PaidAt,
		&rental.ExpiresAt, &rental.CreatedAt, &rental.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetByTransactionID: %w", err)
	}
	return &rental, nil
}

func (repo *RentalRepo) Create(ctx context.Context, rental *entity.Rental) error {
	const query = `
INSERT INTO rentals (transaction_id, movie_id, user_id, anonymous_id,
                     amount_lak, provider, status, paid_at, expires_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id`
	defer observeQuery("rental_create", time.Now())
	err := repo.db.QueryRowContext(ctx, query,
		rental.TransactionID, rental.MovieID, rental.UserID,
		rental.AnonymousID, rental.AmountLAK, rental.Provider,
		rental.Status, rental.PaidAt, rental.ExpiresAt,
	).Scan(&rental.ID)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

// UpdateStatusIfPending is the idempotence backstop for terminal
// transitions: the WHERE status = 'pending' guard means a replayed webhook
// or a racing admin action updates zero rows instead of overwriting a
// terminal status.
func (repo *RentalRepo) UpdateStatusIfPending(ctx context.Context, transactionID string, status entity.RentalStatus, paidAt *time.Time, failureReason *string) (bool, error) {
	const query = `
UPDATE rentals SET
       status         = $1,
       paid_at        = $2,
       failure_reason = $3,
       updated_at     = now()
WHERE transaction_id = $4
AND status = 'pending'`
	defer observeQuery("rental_update_status", time.Now())
	res, err := repo.db.ExecContext(ctx, query, status, paidAt, failureReason, transactionID)
	if err != nil {
		return false, fmt.Errorf("UpdateStatusIfPending: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("UpdateStatusIfPending: %w", err)
	}
	return n > 0, nil
}

func (repo *RentalRepo) CountPaidByMovie(ctx context.Context, movieID int64) (int, error) {
	const query = `
SELECT COUNT(*)
FROM rentals
WHERE movie_id = $1
AND status = 'success'`
	var count int
	if err := repo.db.QueryRowContext(ctx, query, movieID).Scan(&count); err != nil {
		return 0, fmt.Errorf("CountPaidByMovie: %w", err)
	}
	return count, nil
}

func (repo *RentalRepo) ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]*entity.Rental, error) {
	const query = `
SELECT ` + rentalColumns + `
FROM rentals
WHERE status = 'pending'
AND created_at < $1
ORDER BY created_at ASC
LIMIT $2`
	rows, err := repo.db.QueryContext(ctx, query, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("ListStalePending: %w", err)
	}
	defer func() { _ = rows.Close() }()

	rentals := make([]*entity.Rental, 0, limit)
	for rows.Next() {
		rental, err := scanRental(rows)
		if err != nil {
			return nil, fmt.Errorf("ListStalePending: %w", err)
		}
		rentals = append(rentals, rental)
	}
	return rentals, rows.Err()
}
