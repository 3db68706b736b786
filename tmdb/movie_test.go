// SPDX-License-Identifier: GPL-3.0-or-later

package tmdb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ptr(s string) *string {
	return &s
}

// NewMovie uses the original title, falls back to the backdrop image, and
// tolerates malformed release dates.
func TestNewMovie(t *testing.T) {
	tests := []struct {
		// name describes what this test case verifies.
		name string

		// result is the API result.
		result MovieResult

		// wantImage is the expected image path.
		wantImage string

		// wantDate is the expected release date.
		wantDate time.Time
	}{
		{
			name: "poster and valid date",
			result: MovieResult{
				PosterPath:   ptr("/poster.jpg"),
				BackdropPath: ptr("/backdrop.jpg"),
				ReleaseDate:  "1999-10-15",
			},
			wantImage: "/poster.jpg",
			wantDate:  time.Date(1999, 10, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "backdrop fallback",
			result:    MovieResult{BackdropPath: ptr("/backdrop.jpg"), ReleaseDate: "2024-03-01"},
			wantImage: "/backdrop.jpg",
			wantDate:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "no image and empty date",
			result:    MovieResult{},
			wantImage: "",
		},
		{
			name:   "malformed date",
			result: MovieResult{ReleaseDate: "15/10/1999"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.result.ID = 550
			tt.result.Title = "Localized"
			tt.result.OriginalTitle = "Fight Club"
			tt.result.VoteAverage = 8.4
			tt.result.Overview = "overview"
			tt.result.GenreIDs = []int{18, 53}

			m := NewMovie(tt.result)

			assert.Equal(t, 550, m.ID)
			assert.Equal(t, "Fight Club", m.Title)
			assert.Equal(t, tt.wantImage, m.ImagePath)
			assert.True(t, tt.wantDate.Equal(m.ReleaseDate))
			assert.Equal(t, tt.result.ReleaseDate, m.RawReleaseDate)
			assert.Equal(t, 8.4, m.Grade)
			assert.Equal(t, "overview", m.Overview)
			assert.Equal(t, []int{18, 53}, m.GenreIDs)
		})
	}
}

// PosterURL joins the image path to the poster base URL.
func TestMoviePosterURL(t *testing.T) {
	assert.Equal(t, "https://image.tmdb.org/t/p/original/p.jpg", Movie{ImagePath: "/p.jpg"}.PosterURL())
	assert.Equal(t, "", Movie{}.PosterURL())
}

// MergeLiked marks the liked movies and preserves the movie order.
func TestMergeLiked(t *testing.T) {
	movies := []Movie{{ID: 3}, {ID: 1}, {ID: 2}}

	got := MergeLiked(movies, []int{1, 2, 99})

	assert.Equal(t, []LikedMovie{
		{Movie: Movie{ID: 3}, IsFavourite: false},
		{Movie: Movie{ID: 1}, IsFavourite: true},
		{Movie: Movie{ID: 2}, IsFavourite: true},
	}, got)
}

// The lookup conversions keep every element in order.
func TestLookupConversions(t *testing.T) {
	countries := NewCountries([]CountryResult{
		{ISO3166_1: "IT", EnglishName: "Italy", NativeName: "Italia"},
		{ISO3166_1: "PL", EnglishName: "Poland", NativeName: "Polska"},
	})
	assert.Equal(t, []Country{
		{ID: "IT", EnglishName: "Italy", NativeName: "Italia"},
		{ID: "PL", EnglishName: "Poland", NativeName: "Polska"},
	}, countries)

	categories := NewCategories(GenreList{Genres: []GenreResult{{ID: 18, Name: "Drama"}}})
	assert.Equal(t, []Category{{ID: 18, EnglishName: "Drama"}}, categories)

	suggestions := NewSearchSuggestions(MoviesPage{Results: []MovieResult{
		{Title: "localized", OriginalTitle: "Fight Club"},
	}})
	assert.Equal(t, []SearchSuggestion{{Text: "Fight Club"}}, suggestions)
}
