package movie

import (
	"encoding/json"
	"errors"
	"net/http"

	"laostream/internal/domain/entity"
	"laostream/internal/handler/http/respond"
	movieUC "laostream/internal/usecase/movie"
)

type CreateHandler struct{ Svc *movieUC.Service }

func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title          string `json:"title"`
		TitleLao       string `json:"title_lao"`
		Description    string `json:"description"`
		PosterURL      string `json:"poster_url"`
		TMDBID         *int64 `json:"tmdb_id"`
		RentalPriceLAK int64  `json:"rental_price_lak"`
		RentalDays     int    `json:"rental_days"`
		Published      bool   `json:"published"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Title == "" && req.TMDBID == nil {
		respond.SafeError(w, http.StatusBadRequest,
			errors.New("title or tmdb_id required"))
		return
	}

	m, err := h.Svc.Create(r.Context(), movieUC.CreateInput{
		Title:          req.Title,
		TitleLao:       req.TitleLao,
		Description:    req.Description,
		PosterURL:      req.PosterURL,
		TMDBID:         req.TMDBID,
		RentalPriceLAK: req.RentalPriceLAK,
		RentalDays:     req.RentalDays,
		Published:      req.Published,
	})
	if err != nil {
		var verr *entity.ValidationError
		if errors.As(err, &verr) {
			respond.SafeError(w, http.StatusBadRequest, err)
			return
		}
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	respond.JSON(w, http.StatusCreated, toDTO(m))
}
