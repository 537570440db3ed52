package rental

import "errors"

var (
	// ErrRentalNotFound is returned when no rental matches the transaction id.
	ErrRentalNotFound = errors.New("rental not found")

	// ErrMovieNotFound is returned when the requested movie does not exist.
	ErrMovieNotFound = errors.New("movie not found")

	// ErrMovieUnavailable is returned when the movie exists but is not
	// published for rental.
	ErrMovieUnavailable = errors.New("movie is not available for rental")

	// ErrRentalLimitReached is returned when the per-movie rental cap is hit.
	ErrRentalLimitReached = errors.New("rental limit reached for this movie")

	// ErrAlreadyFinal signals that the rental's payment status is terminal
	// and the requested transition was not applied. Webhook handlers treat
	// it as a replay and acknowledge; admin handlers surface it as a
	// conflict.
	ErrAlreadyFinal = errors.New("payment status is already final")

	// ErrNotManualRental is returned when an admin confirm/reject targets a
	// rental that does not use the manual provider.
	ErrNotManualRental = errors.New("rental does not use the manual payment provider")
)
