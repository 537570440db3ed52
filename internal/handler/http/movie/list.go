// Package movie exposes the catalogue endpoints: public browsing and
// admin-only mutations.
package movie

import (
	"net/http"
	"strconv"

	"laostream/internal/handler/http/respond"
	movieUC "laostream/internal/usecase/movie"
)

type ListHandler struct{ Svc *movieUC.Service }

func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	movies, err := h.Svc.List(r.Context(), limit, offset)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTOs(movies))
}
