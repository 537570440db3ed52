package rental

import (
	"net/http"

	"laostream/internal/handler/http/respond"
	rentalUC "laostream/internal/usecase/rental"
)

// ProvidersHandler lists the registered payment providers with their
// current availability so the checkout page can grey out the gateway.
type ProvidersHandler struct{ Svc *rentalUC.Service }

func (h ProvidersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, h.Svc.ListProviders())
}
