// SPDX-License-Identifier: GPL-3.0-or-later

package tmdb

import (
	"slices"
	"time"
)

// Movie is a movie of the now playing list.
type Movie struct {
	// ID is the movie identifier.
	ID int

	// Title is the original title.
	Title string

	// ImagePath is the poster path, falling back to the backdrop path.
	ImagePath string

	// ReleaseDate is the parsed release date or the zero time when the
	// API returned an empty or malformed date.
	ReleaseDate time.Time

	// RawReleaseDate is the release date as returned by the API.
	RawReleaseDate string

	// Grade is the average vote.
	Grade float64

	// Overview is the plot summary.
	Overview string

	// GenreIDs lists the genres of the movie.
	GenreIDs []int
}

// NewMovie converts a [MovieResult] into a [Movie].
func NewMovie(r MovieResult) Movie {
	m := Movie{
		ID:             r.ID,
		Title:          r.OriginalTitle,
		RawReleaseDate: r.ReleaseDate,
		Grade:          r.VoteAverage,
		Overview:       r.Overview,
		GenreIDs:       slices.Clone(r.GenreIDs),
	}
	switch {
	case r.PosterPath != nil:
		m.ImagePath = *r.PosterPath
	case r.BackdropPath != nil:
		m.ImagePath = *r.BackdropPath
	}
	if t, err := time.Parse(time.DateOnly, r.ReleaseDate); err == nil {
		m.ReleaseDate = t
	}
	return m
}

// NewMovies converts all the results of a [MoviesPage].
func NewMovies(page MoviesPage) []Movie {
	movies := make([]Movie, 0, len(page.Results))
	for _, r := range page.Results {
		movies = append(movies, NewMovie(r))
	}
	return movies
}

// PosterURL returns the full size image URL of the movie or an empty
// string when the movie has no image.
func (m Movie) PosterURL() string {
	if m.ImagePath == "" {
		return ""
	}
	return PosterBaseURL + m.ImagePath
}

// HasGenre returns whether the movie belongs to the given genre.
func (m Movie) HasGenre(id int) bool {
	return slices.Contains(m.GenreIDs, id)
}

// LikedMovie is a [Movie] annotated with the liked state.
type LikedMovie struct {
	Movie

	// IsFavourite is true when the movie ID is in the [LikedStore].
	IsFavourite bool
}

// MergeLiked annotates movies with the liked state, preserving their order.
func MergeLiked(movies []Movie, likedIDs []int) []LikedMovie {
	liked := make(map[int]bool, len(likedIDs))
	for _, id := range likedIDs {
		liked[id] = true
	}
	out := make([]LikedMovie, 0, len(movies))
	for _, m := range movies {
		out = append(out, LikedMovie{Movie: m, IsFavourite: liked[m.ID]})
	}
	return out
}

// Country is a country of the configuration list.
type Country struct {
	// ID is the ISO 3166-1 code.
	ID string

	// EnglishName is the name in English.
	EnglishName string

	// NativeName is the name in the country's language.
	NativeName string
}

// NewCountries converts the countries returned by the API.
func NewCountries(results []CountryResult) []Country {
	out := make([]Country, 0, len(results))
	for _, r := range results {
		out = append(out, Country{ID: r.ISO3166_1, EnglishName: r.EnglishName, NativeName: r.NativeName})
	}
	return out
}

// Category is a movie genre.
type Category struct {
	ID          int
	EnglishName string
}

// NewCategories converts the genres returned by the API.
func NewCategories(list GenreList) []Category {
	out := make([]Category, 0, len(list.Genres))
	for _, g := range list.Genres {
		out = append(out, Category{ID: g.ID, EnglishName: g.Name})
	}
	return out
}

// SearchSuggestion is a movie title matching a search.
type SearchSuggestion struct {
	Text string
}

// NewSearchSuggestions converts a search [MoviesPage] into suggestions.
func NewSearchSuggestions(page MoviesPage) []SearchSuggestion {
	out := make([]SearchSuggestion, 0, len(page.Results))
	for _, r := range page.Results {
		out = append(out, SearchSuggestion{Text: r.OriginalTitle})
	}
	return out
}
