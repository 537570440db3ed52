// Package rental exposes the rental transaction endpoints: checkout,
// status lookup, provider listing, the gateway webhook, and the admin
// confirm/reject actions for manual payments.
package rental

import (
	"encoding/json"
	"errors"
	"net/http"

	"laostream/internal/domain/entity"
	"laostream/internal/handler/http/respond"
	rentalUC "laostream/internal/usecase/rental"
)

type CreateHandler struct{ Svc *rentalUC.Service }

func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MovieID     int64   `json:"movie_id"`
		UserID      *int64  `json:"user_id"`
		AnonymousID *string `json:"anonymous_id"`
		ReturnURL   string  `json:"return_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := h.Svc.Create(r.Context(), rentalUC.CreateInput{
		MovieID:     req.MovieID,
		UserID:      req.UserID,
		AnonymousID: req.AnonymousID,
		ReturnURL:   req.ReturnURL,
	})
	if err != nil {
		respond.SafeError(w, createStatus(err), err)
		return
	}

	respond.JSON(w, http.StatusCreated, struct {
		DTO
		RedirectURL string `json:"redirect_url,omitempty"`
	}{
		DTO:         toDTO(result.Rental),
		RedirectURL: result.RedirectURL,
	})
}

func createStatus(err error) int {
	var verr *entity.ValidationError
	switch {
	case errors.Is(err, rentalUC.ErrMovieNotFound):
		return http.StatusNotFound
	case errors.Is(err, rentalUC.ErrMovieUnavailable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, rentalUC.ErrRentalLimitReached):
		return http.StatusConflict
	case errors.As(err, &verr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
