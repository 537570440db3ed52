// Package repository defines the persistence interfaces the use case layer
// depends on. Implementations live under internal/infra/adapter/persistence.
package repository

import (
	"context"

	"laostream/internal/domain/entity"
)

type MovieRepository interface {
	Get(ctx context.Context, id int64) (*entity.Movie, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Movie, error)
	Search(ctx context.Context, keyword string) ([]*entity.Movie, error)
	Create(ctx context.Context, movie *entity.Movie) error
	Update(ctx context.Context, movie *entity.Movie) error
	Delete(ctx context.Context, id int64) error
}

// MovieImporter is the contract for the external catalogue import glue
// (TMDB). The import pipeline itself is an external collaborator; the
// backend only defines the shape it would call.
type MovieImporter interface {
	ImportByTMDBID(ctx context.Context, tmdbID int64) (*entity.Movie, error)
}
