package rental

import (
	"net/http"

	"laostream/internal/handler/http/auth"
	rentalUC "laostream/internal/usecase/rental"
)

// Register wires the rental endpoints onto the mux. The webhook and the
// public read endpoints are unauthenticated; the manual confirm/reject
// actions sit behind the admin guard.
func Register(mux *http.ServeMux, svc *rentalUC.Service) {
	mux.Handle("POST   /rentals", CreateHandler{svc})
	mux.Handle("GET    /rentals/", GetHandler{svc})
	mux.Handle("GET    /payments/providers", ProvidersHandler{svc})
	mux.Handle("POST   /payments/webhook/bcel", WebhookHandler{svc})

	mux.Handle("POST   /admin/payments/", auth.Authz(adminRouter(svc)))
}

// adminRouter splits /admin/payments/{txID}/confirm and /reject after the
// auth guard has run.
func adminRouter(svc *rentalUC.Service) http.Handler {
	confirm := ConfirmHandler{svc}
	reject := RejectHandler{svc}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case hasAction(r.URL.Path, "/confirm"):
			confirm.ServeHTTP(w, r)
		case hasAction(r.URL.Path, "/reject"):
			reject.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

func hasAction(path, action string) bool {
	_, ok := adminTxID(path, action)
	return ok
}
