package rental

import (
	"time"

	"laostream/internal/domain/entity"
)

// DTO is the wire shape of a rental transaction.
type DTO struct {
	TransactionID string     `json:"transaction_id"`
	MovieID       int64      `json:"movie_id"`
	AmountLAK     int64      `json:"amount_lak"`
	Provider      string     `json:"provider"`
	Status        string     `json:"status"`
	FailureReason *string    `json:"failure_reason,omitempty"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func toDTO(r *entity.Rental) DTO {
	return DTO{
		TransactionID: r.TransactionID,
		MovieID:       r.MovieID,
		AmountLAK:     r.AmountLAK,
		Provider:      r.Provider,
		Status:        string(r.Status),
		FailureReason: r.FailureReason,
		PaidAt:        r.PaidAt,
		ExpiresAt:     r.ExpiresAt,
		CreatedAt:     r.CreatedAt,
	}
}
