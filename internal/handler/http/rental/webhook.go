package rental

import (
	"errors"
	"io"
	"net/http"

	"laostream/internal/handler/http/respond"
	"laostream/internal/observability/metrics"
	"laostream/internal/payment"
	rentalUC "laostream/internal/usecase/rental"
)

// maxWebhookBody bounds gateway callback payloads.
const maxWebhookBody = 64 * 1024

// WebhookHandler receives BCEL OnePay payment callbacks. Replays of an
// already-settled transaction are acknowledged with 200 without touching
// the stored outcome, so the gateway stops retrying.
type WebhookHandler struct{ Svc *rentalUC.Service }

func (h WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		metrics.WebhooksReceivedTotal.WithLabelValues("invalid").Inc()
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid payload"))
		return
	}

	rental, err := h.Svc.HandleGatewayWebhook(r.Context(), payload)
	switch {
	case err == nil:
		metrics.WebhooksReceivedTotal.WithLabelValues("applied").Inc()
		respond.JSON(w, http.StatusOK, map[string]string{
			"result":         "applied",
			"transaction_id": rental.TransactionID,
			"status":         string(rental.Status),
		})
	case errors.Is(err, rentalUC.ErrAlreadyFinal):
		// Duplicate delivery. Acknowledge so the gateway stops retrying.
		metrics.WebhooksReceivedTotal.WithLabelValues("replay").Inc()
		respond.JSON(w, http.StatusOK, map[string]string{
			"result":         "already_processed",
			"transaction_id": rental.TransactionID,
			"status":         string(rental.Status),
		})
	case errors.Is(err, payment.ErrInvalidSignature):
		metrics.WebhooksReceivedTotal.WithLabelValues("invalid").Inc()
		respond.SafeError(w, http.StatusUnauthorized, err)
	case errors.Is(err, rentalUC.ErrRentalNotFound):
		metrics.WebhooksReceivedTotal.WithLabelValues("invalid").Inc()
		respond.SafeError(w, http.StatusNotFound, err)
	case errors.Is(err, payment.ErrWebhookUnsupported):
		// A webhook route pointed at a provider that never receives them
		// is a wiring bug, not a bad request.
		metrics.WebhooksReceivedTotal.WithLabelValues("invalid").Inc()
		respond.SafeError(w, http.StatusInternalServerError, err)
	default:
		metrics.WebhooksReceivedTotal.WithLabelValues("invalid").Inc()
		respond.SafeError(w, http.StatusBadRequest, err)
	}
}
