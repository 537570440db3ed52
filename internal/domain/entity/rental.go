package entity

import "time"

// RentalStatus is the payment status of a rental transaction.
//
// pending is the only non-terminal status. Once a rental reaches success or
// failed it must never revert; every writer goes through the status-guarded
// repository update to enforce this.
type RentalStatus string

const (
	RentalStatusPending RentalStatus = "pending"
	RentalStatusSuccess RentalStatus = "success"
	RentalStatusFailed  RentalStatus = "failed"
)

// IsValid reports whether the status is one of the known values.
func (s RentalStatus) IsValid() bool {
	switch s {
	case RentalStatusPending, RentalStatusSuccess, RentalStatusFailed:
		return true
	default:
		return false
	}
}

// Terminal reports whether the status is final (success or failed).
func (s RentalStatus) Terminal() bool {
	return s == RentalStatusSuccess || s == RentalStatusFailed
}

// Rental represents a rental transaction: one attempt by a user (or an
// anonymous session) to rent one movie through one payment provider.
type Rental struct {
	ID            int64
	TransactionID string
	MovieID       int64
	// Exactly one of UserID / AnonymousID is set.
	UserID      *int64
	AnonymousID *string
	AmountLAK   int64
	Provider    string
	Status      RentalStatus
	// FailureReason carries the provider-supplied error for failed rentals.
	FailureReason *string
	PaidAt        *time.Time
	ExpiresAt     *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Validate checks the rental's structural invariants.
func (r *Rental) Validate() error {
	if r.TransactionID == "" {
		return &ValidationError{Field: "transactionID", Message: "is required"}
	}
	if r.MovieID <= 0 {
		return &ValidationError{Field: "movieID", Message: "must be positive"}
	}
	if r.AmountLAK < 0 {
		return &ValidationError{Field: "amountLAK", Message: "cannot be negative"}
	}
	if (r.UserID == nil) == (r.AnonymousID == nil) {
		return &ValidationError{Field: "userID", Message: "exactly one of userID and anonymousID must be set"}
	}
	if !r.Status.IsValid() {
		return &ValidationError{Field: "status", Message: "must be pending, success, or failed"}
	}
	return nil
}
