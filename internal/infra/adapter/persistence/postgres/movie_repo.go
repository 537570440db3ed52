// Package postgres implements the repository interfaces on top of a
// Postgres database reached through the pgx stdlib driver.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"laostream/internal/domain/entity"
	"laostream/internal/repository"
)

type MovieRepo struct{ db *sql.DB }

func NewMovieRepo(db *sql.DB) repository.MovieRepository {
	return &MovieRepo{db: db}
}

const movieColumns = `id, title, title_lao, description, poster_url, tmdb_id,
rental_price_lak, rental_days, published, created_at, updated_at`

// scanMovie is a helper to scan one movie row.
func scanMovie(rows *sql.Rows) (*entity.Movie, error) {
	var movie entity.Movie
	if err := rows.Scan(
		&movie.ID, &movie.Title, &movie.TitleLao, &movie.Description,
		&movie.PosterURL, &movie.TMDBID, &movie.RentalPriceLAK,
		&movie.RentalDays, &movie.Published, &movie.CreatedAt, &movie.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &movie, nil
}

func (repo *MovieRepo) Get(ctx context.Context, id int64) (*entity.Movie, error) {
	const query = `
SELECT ` + movieColumns + `
FROM movies
WHERE id = $1
LIMIT 1`
	var movie entity.Movie
	err := repo.db.QueryRowContext(ctx, query, id).Scan(
		&movie.ID, &movie.Title, &movie.TitleLao, &movie.Description,
		&movie.PosterURL, &movie.TMDBID, &movie.RentalPriceLAK,
		&movie.RentalDays, &movie.Published, &movie.CreatedAt, &movie.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return &movie, nil
}

func (repo *MovieRepo) List(ctx context.Context, limit, offset int) ([]*entity.Movie, error) {
	const query = `
SELECT ` + movieColumns + `
FROM movies
WHERE published = TRUE
ORDER BY created_at DESC, id DESC
LIMIT $1 OFFSET $2`
	rows, err := repo.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	movies := make([]*entity.Movie, 0, limit)
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("List: %w", err)
		}
		movies = append(movies, movie)
	}
	return movies, rows.Err()
}

func (repo *MovieRepo) Search(ctx context.Context, keyword string) ([]*entity.Movie, error) {
	const query = `
SELECT ` + movieColumns + `
FROM movies
WHERE published = TRUE
AND (title ILIKE $1 OR title_lao ILIKE $1)
ORDER BY id ASC`
	param := "%" + keyword + "%"
	rows, err := repo.db.QueryContext(ctx, query, param)
	if err != nil {
		return nil, fmt.Errorf("Search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	movies := make([]*entity.Movie, 0, 50)
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("Search: %w", err)
		}
		movies = append(movies, movie)
	}
	return movies, rows.Err()
}

func (repo *MovieRepo) Create(ctx context.Context, movie *entity.Movie) error {
	const query = `
INSERT INTO movies (title, title_lao, description, poster_url, tmdb_id,
                    rental_price_lak, rental_days, published)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id`
	err := repo.db.QueryRowContext(ctx, query,
		movie.Title, movie.TitleLao, movie.Description, movie.PosterURL,
		movie.TMDBID, movie.RentalPriceLAK, movie.RentalDays, movie.Published,
	).Scan(&movie.ID)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *MovieRepo) Update(ctx context.Context, movie *entity.Movie) error {
	const query = `
UPDATE movies SET
       title            = $1,
       title_lao        = $2,
       description      = $3,
       poster_url       = $4,
       tmdb_id          = $5,
       rental_price_lak = $6,
       rental_days      = $7,
       published        = $8,
       updated_at       = now()
WHERE id = $9`
	res, err := repo.db.ExecContext(ctx, query,
		movie.Title, movie.TitleLao, movie.Description, movie.PosterURL,
		movie.TMDBID, movie.RentalPriceLAK, movie.RentalDays, movie.Published,
		movie.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Update: no rows affected")
	}
	return nil
}

func (repo *MovieRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM movies WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: no rows affected")
	}
	return nil
}
