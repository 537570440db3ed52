// Package movie provides catalogue management use cases.
package movie

import (
	"context"
	"errors"
	"fmt"

	"laostream/internal/domain/entity"
	"laostream/internal/repository"
)

// ErrMovieNotFound is returned when a movie lookup has no match.
var ErrMovieNotFound = errors.New("movie not found")

// CreateInput represents the input parameters for creating a movie.
type CreateInput struct {
	Title          string
	TitleLao       string
	Description    string
	PosterURL      string
	TMDBID         *int64
	RentalPriceLAK int64
	RentalDays     int
	Published      bool
}

// UpdateInput represents the input parameters for updating a movie.
// Empty string fields and nil pointer fields are not updated.
type UpdateInput struct {
	ID             int64
	Title          string
	TitleLao       string
	Description    string
	PosterURL      string
	RentalPriceLAK *int64
	RentalDays     *int
	Published      *bool
}

// Service provides movie catalogue use cases. The optional Importer pulls
// metadata from the external catalogue when a TMDB id is supplied.
type Service struct {
	Repo     repository.MovieRepository
	Importer repository.MovieImporter
}

// List returns published and unpublished movies with offset pagination.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*entity.Movie, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	movies, err := s.Repo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	return movies, nil
}

// Search finds movies whose title matches the given keyword.
func (s *Service) Search(ctx context.Context, keyword string) ([]*entity.Movie, error) {
	if keyword == "" {
		return nil, &entity.ValidationError{Field: "keyword", Message: "is required"}
	}
	movies, err := s.Repo.Search(ctx, keyword)
	if err != nil {
		return nil, fmt.Errorf("search movies: %w", err)
	}
	return movies, nil
}

// Get returns one movie by id. Returns ErrMovieNotFound if absent.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Movie, error) {
	if id <= 0 {
		return nil, &entity.ValidationError{Field: "id", Message: "must be positive"}
	}
	m, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get movie: %w", err)
	}
	if m == nil {
		return nil, ErrMovieNotFound
	}
	return m, nil
}

// Create adds a movie to the catalogue. When a TMDB id is supplied and an
// importer is wired, catalogue metadata fills in missing fields.
func (s *Service) Create(ctx context.Context, in CreateInput) (*entity.Movie, error) {
	if in.Title == "" && in.TMDBID == nil {
		return nil, &entity.ValidationError{Field: "title", Message: "is required"}
	}
	if in.RentalPriceLAK < 0 {
		return nil, &entity.ValidationError{Field: "rentalPriceLAK", Message: "cannot be negative"}
	}
	if in.RentalDays <= 0 {
		return nil, &entity.ValidationError{Field: "rentalDays", Message: "must be positive"}
	}

	m := &entity.Movie{
		Title:          in.Title,
		TitleLao:       in.TitleLao,
		Description:    in.Description,
		PosterURL:      in.PosterURL,
		TMDBID:         in.TMDBID,
		RentalPriceLAK: in.RentalPriceLAK,
		RentalDays:     in.RentalDays,
		Published:      in.Published,
	}

	if in.TMDBID != nil && s.Importer != nil {
		imported, err := s.Importer.ImportByTMDBID(ctx, *in.TMDBID)
		if err != nil {
			return nil, fmt.Errorf("import movie metadata: %w", err)
		}
		if m.Title == "" {
			m.Title = imported.Title
		}
		if m.Description == "" {
			m.Description = imported.Description
		}
		if m.PosterURL == "" {
			m.PosterURL = imported.PosterURL
		}
	}

	if err := s.Repo.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("create movie: %w", err)
	}
	return m, nil
}

// Update modifies an existing movie. Returns ErrMovieNotFound if absent.
func (s *Service) Update(ctx context.Context, in UpdateInput) (*entity.Movie, error) {
	if in.ID <= 0 {
		return nil, &entity.ValidationError{Field: "id", Message: "must be positive"}
	}

	m, err := s.Repo.Get(ctx, in.ID)
	if err != nil {
		return nil, fmt.Errorf("get movie: %w", err)
	}
	if m == nil {
		return nil, ErrMovieNotFound
	}

	if in.Title != "" {
		m.Title = in.Title
	}
	if in.TitleLao != "" {
		m.TitleLao = in.TitleLao
	}
	if in.Description != "" {
		m.Description = in.Description
	}
	if in.PosterURL != "" {
		m.PosterURL = in.PosterURL
	}
	if in.RentalPriceLAK != nil {
		if *in.RentalPriceLAK < 0 {
			return nil, &entity.ValidationError{Field: "rentalPriceLAK", Message: "cannot be negative"}
		}
		m.RentalPriceLAK = *in.RentalPriceLAK
	}
	if in.RentalDays != nil {
		if *in.RentalDays <= 0 {
			return nil, &entity.ValidationError{Field: "rentalDays", Message: "must be positive"}
		}
		m.RentalDays = *in.RentalDays
	}
	if in.Published != nil {
		m.Published = *in.Published
	}

	if err := s.Repo.Update(ctx, m); err != nil {
		return nil, fmt.Errorf("update movie: %w", err)
	}
	return m, nil
}

// Delete removes a movie by id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return &entity.ValidationError{Field: "id", Message: "must be positive"}
	}
	m, err := s.Repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get movie: %w", err)
	}
	if m == nil {
		return ErrMovieNotFound
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete movie: %w", err)
	}
	return nil
}
