package rental

import (
	"errors"
	"net/http"
	"strings"

	"laostream/internal/handler/http/respond"
	rentalUC "laostream/internal/usecase/rental"
)

type GetHandler struct{ Svc *rentalUC.Service }

func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	txID := strings.TrimPrefix(r.URL.Path, "/rentals/")
	if txID == "" || strings.Contains(txID, "/") {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid transaction id"))
		return
	}

	rental, err := h.Svc.Status(r.Context(), txID)
	if err != nil {
		if errors.Is(err, rentalUC.ErrRentalNotFound) {
			respond.SafeError(w, http.StatusNotFound, err)
			return
		}
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	respond.JSON(w, http.StatusOK, toDTO(rental))
}
