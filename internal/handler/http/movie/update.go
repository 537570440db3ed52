package movie

import (
	"encoding/json"
	"errors"
	"net/http"

	"laostream/internal/domain/entity"
	"laostream/internal/handler/http/pathutil"
	"laostream/internal/handler/http/respond"
	movieUC "laostream/internal/usecase/movie"
)

type UpdateHandler struct{ Svc *movieUC.Service }

func (h UpdateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(r.URL.Path, "/movies/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	var req struct {
		Title          string `json:"title"`
		TitleLao       string `json:"title_lao"`
		Description    string `json:"description"`
		PosterURL      string `json:"poster_url"`
		RentalPriceLAK *int64 `json:"rental_price_lak"`
		RentalDays     *int   `json:"rental_days"`
		Published      *bool  `json:"published"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	m, err := h.Svc.Update(r.Context(), movieUC.UpdateInput{
		ID:             id,
		Title:          req.Title,
		TitleLao:       req.TitleLao,
		Description:    req.Description,
		PosterURL:      req.PosterURL,
		RentalPriceLAK: req.RentalPriceLAK,
		RentalDays:     req.RentalDays,
		Published:      req.Published,
	})
	if err != nil {
		switch {
		case errors.Is(err, movieUC.ErrMovieNotFound):
			respond.SafeError(w, http.StatusNotFound, err)
		default:
			var verr *entity.ValidationError
			if errors.As(err, &verr) {
				respond.SafeError(w, http.StatusBadRequest, err)
				return
			}
			respond.SafeError(w, http.StatusInternalServerError, err)
		}
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(m))
}
