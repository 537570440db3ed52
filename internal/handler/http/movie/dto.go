package movie

import (
	"time"

	"laostream/internal/domain/entity"
)

type DTO struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	TitleLao       string    `json:"title_lao,omitempty"`
	Description    string    `json:"description,omitempty"`
	PosterURL      string    `json:"poster_url,omitempty"`
	TMDBID         *int64    `json:"tmdb_id,omitempty"`
	RentalPriceLAK int64     `json:"rental_price_lak"`
	RentalDays     int       `json:"rental_days"`
	Published      bool      `json:"published"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toDTO(m *entity.Movie) DTO {
	return DTO{
		ID:             m.ID,
		Title:          m.Title,
		TitleLao:       m.TitleLao,
		Description:    m.Description,
		PosterURL:      m.PosterURL,
		TMDBID:         m.TMDBID,
		RentalPriceLAK: m.RentalPriceLAK,
		RentalDays:     m.RentalDays,
		Published:      m.Published,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func toDTOs(movies []*entity.Movie) []DTO {
	out := make([]DTO, 0, len(movies))
	for _, m := range movies {
		out = append(out, toDTO(m))
	}
	return out
}
