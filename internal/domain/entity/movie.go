// Package entity defines the core domain entities and validation logic for
// the rental platform: movies, users, and rental transactions, along with
// their validation rules and domain-specific errors.
package entity

import "time"

// Movie represents a rentable title in the catalogue.
type Movie struct {
	ID          int64
	Title       string
	TitleLao    string
	Description string
	PosterURL   string
	TMDBID      *int64
	// RentalPriceLAK is the rental price in Lao kip. Zero means the title
	// is free to rent.
	RentalPriceLAK int64
	RentalDays     int
	Published      bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Free reports whether renting this movie costs nothing.
func (m *Movie) Free() bool {
	return m.RentalPriceLAK == 0
}
