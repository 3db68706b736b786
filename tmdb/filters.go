// SPDX-License-Identifier: GPL-3.0-or-later

package tmdb

import (
	"strings"

	"github.com/bassosimone/apiflow/filtering"
)

// GenreFactor accepts the movies belonging to the given genre.
func GenreFactor(id int) filtering.Factor[LikedMovie] {
	return func(m LikedMovie) bool {
		return m.HasGenre(id)
	}
}

// GenreFactors returns one [GenreFactor] per selected genre.
func GenreFactors(ids []int) []filtering.Factor[LikedMovie] {
	factors := make([]filtering.Factor[LikedMovie], 0, len(ids))
	for _, id := range ids {
		factors = append(factors, GenreFactor(id))
	}
	return factors
}

// TitleFactor accepts the movies whose title contains query.
//
// An empty query accepts every movie. Matching is case sensitive.
func TitleFactor(query string) filtering.Factor[LikedMovie] {
	return func(m LikedMovie) bool {
		return query == "" || strings.Contains(m.Title, query)
	}
}

// FilterLiked keeps the movies belonging to any of the selected genres
// and whose title contains query.
//
// No selected genre means no genre restriction.
func FilterLiked(movies []LikedMovie, genres []int, query string) []LikedMovie {
	byGenre := filtering.Or(movies, GenreFactors(genres)...)
	return filtering.Or(byGenre, TitleFactor(query))
}

// OnlyFavourites accepts the liked movies.
func OnlyFavourites(m LikedMovie) bool {
	return m.IsFavourite
}
