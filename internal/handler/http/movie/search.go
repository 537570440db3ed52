package movie

import (
	"errors"
	"net/http"

	"laostream/internal/handler/http/respond"
	movieUC "laostream/internal/usecase/movie"
)

type SearchHandler struct{ Svc *movieUC.Service }

func (h SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("q")
	if keyword == "" {
		respond.SafeError(w, http.StatusBadRequest, errors.New("q parameter required"))
		return
	}

	movies, err := h.Svc.Search(r.Context(), keyword)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTOs(movies))
}
