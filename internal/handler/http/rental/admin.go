package rental

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"laostream/internal/handler/http/respond"
	rentalUC "laostream/internal/usecase/rental"
)

// ConfirmHandler settles a manual-provider rental as paid. Admin only.
type ConfirmHandler struct{ Svc *rentalUC.Service }

func (h ConfirmHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	txID, ok := adminTxID(r.URL.Path, "/confirm")
	if !ok {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid transaction id"))
		return
	}

	rental, err := h.Svc.ConfirmManual(r.Context(), txID)
	if err != nil {
		respond.SafeError(w, adminStatus(err), err)
		return
	}

	respond.JSON(w, http.StatusOK, toDTO(rental))
}

// RejectHandler settles a manual-provider rental as failed, with an
// optional reason in the request body. Admin only.
type RejectHandler struct{ Svc *rentalUC.Service }

func (h RejectHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	txID, ok := adminTxID(r.URL.Path, "/reject")
	if !ok {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid transaction id"))
		return
	}

	// The body is optional; an absent or empty reason falls back to the
	// provider default.
	var req struct {
		Reason string `json:"reason"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	rental, err := h.Svc.RejectManual(r.Context(), txID, req.Reason)
	if err != nil {
		respond.SafeError(w, adminStatus(err), err)
		return
	}

	respond.JSON(w, http.StatusOK, toDTO(rental))
}

func adminTxID(path, action string) (string, bool) {
	rest := strings.TrimPrefix(path, "/admin/payments/")
	txID := strings.TrimSuffix(rest, action)
	if txID == "" || txID == rest || strings.Contains(txID, "/") {
		return "", false
	}
	return txID, true
}

func adminStatus(err error) int {
	switch {
	case errors.Is(err, rentalUC.ErrRentalNotFound):
		return http.StatusNotFound
	case errors.Is(err, rentalUC.ErrAlreadyFinal), errors.Is(err, rentalUC.ErrNotManualRental):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
