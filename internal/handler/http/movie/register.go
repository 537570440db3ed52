package movie

import (
	"net/http"

	"laostream/internal/handler/http/auth"
	movieUC "laostream/internal/usecase/movie"
)

// Register wires the catalogue endpoints onto the mux. Browsing is public;
// mutations require an admin token.
func Register(mux *http.ServeMux, svc *movieUC.Service) {
	mux.Handle("GET    /movies", ListHandler{svc})
	mux.Handle("GET    /movies/search", SearchHandler{svc})
	mux.Handle("GET    /movies/", GetHandler{svc})

	mux.Handle("POST   /movies", auth.Authz(CreateHandler{svc}))
	mux.Handle("PUT    /movies/", auth.Authz(UpdateHandler{svc}))
	mux.Handle("DELETE /movies/", auth.Authz(DeleteHandler{svc}))
}
