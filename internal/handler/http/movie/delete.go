package movie

import (
	"errors"
	"net/http"

	"laostream/internal/handler/http/pathutil"
	"laostream/internal/handler/http/respond"
	movieUC "laostream/internal/usecase/movie"
)

type DeleteHandler struct{ Svc *movieUC.Service }

func (h DeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(r.URL.Path, "/movies/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.Svc.Delete(r.Context(), id); err != nil {
		if errors.Is(err, movieUC.ErrMovieNotFound) {
			respond.SafeError(w, http.StatusNotFound, err)
			return
		}
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
