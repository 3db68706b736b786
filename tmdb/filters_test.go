// SPDX-License-Identifier: GPL-3.0-or-later

package tmdb

import (
	"testing"

	"github.com/bassosimone/apiflow/filtering"
	"github.com/stretchr/testify/assert"
)

func testLikedMovies() []LikedMovie {
	return []LikedMovie{
		{Movie: Movie{ID: 1, Title: "Dune", GenreIDs: []int{878, 12}}},
		{Movie: Movie{ID: 2, Title: "Dune: Part Two", GenreIDs: []int{878}}, IsFavourite: true},
		{Movie: Movie{ID: 3, Title: "Past Lives", GenreIDs: []int{18, 10749}}},
		{Movie: Movie{ID: 4, Title: "Oppenheimer", GenreIDs: []int{18, 36}}, IsFavourite: true},
	}
}

func ids(movies []LikedMovie) []int {
	out := []int{}
	for _, m := range movies {
		out = append(out, m.ID)
	}
	return out
}

// FilterLiked ORs the selected genres and then applies the title query.
func TestFilterLiked(t *testing.T) {
	tests := []struct {
		// name describes what this test case verifies.
		name string

		// genres are the selected genres.
		genres []int

		// query is the title query.
		query string

		// want lists the expected movie IDs.
		want []int
	}{
		{
			name: "no genres and empty query keep everything",
			want: []int{1, 2, 3, 4},
		},
		{
			name:   "single genre",
			genres: []int{878},
			want:   []int{1, 2},
		},
		{
			name:   "genres are ORed",
			genres: []int{12, 36},
			want:   []int{1, 4},
		},
		{
			name:  "title query only",
			query: "Dune",
			want:  []int{1, 2},
		},
		{
			name:   "genres and title",
			genres: []int{18, 878},
			query:  "Part",
			want:   []int{2},
		},
		{
			name:  "title matching is case sensitive",
			query: "dune",
			want:  []int{},
		},
		{
			name:   "unknown genre",
			genres: []int{99},
			want:   []int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterLiked(testLikedMovies(), tt.genres, tt.query)

			assert.Equal(t, tt.want, ids(got))
		})
	}
}

// OnlyFavourites composes with the other factors.
func TestOnlyFavourites(t *testing.T) {
	got := filtering.And(testLikedMovies(), OnlyFavourites, GenreFactor(18))

	assert.Equal(t, []int{4}, ids(got))
}
