// SPDX-License-Identifier: GPL-3.0-or-later

package tmdb

import "github.com/bassosimone/apiflow"

const (
	// BaseURL is the API base URL.
	BaseURL = "https://api.themoviedb.org"

	// PosterBaseURL is the base URL of full size poster images.
	PosterBaseURL = "https://image.tmdb.org/t/p/original"

	// DefaultLanguage is the language requested by default.
	DefaultLanguage = "en"
)

// Headers is the headers channel shared by all endpoints.
type Headers struct {
	Authorization string `json:"Authorization"`
	Accept        string `json:"accept"`
}

// NewHeaders returns the [Headers] carrying the given API read access token.
func NewHeaders(token string) Headers {
	return Headers{Authorization: "Bearer " + token, Accept: "application/json"}
}

// NowPlayingQuery is the query of [NowPlaying].
type NowPlayingQuery struct {
	Page     int    `json:"page"`
	Language string `json:"language"`
}

// SearchQuery is the query of [SearchMovies].
type SearchQuery struct {
	Query    string `json:"query"`
	Page     int    `json:"page"`
	Language string `json:"language"`
}

// DateRange is the release window of a [MoviesPage].
type DateRange struct {
	Maximum string `json:"maximum"`
	Minimum string `json:"minimum"`
}

// MovieResult is a movie as returned by the API.
type MovieResult struct {
	Adult            bool    `json:"adult"`
	BackdropPath     *string `json:"backdrop_path"`
	GenreIDs         []int   `json:"genre_ids"`
	ID               int     `json:"id"`
	OriginalLanguage string  `json:"original_language"`
	OriginalTitle    string  `json:"original_title"`
	Overview         string  `json:"overview"`
	Popularity       float64 `json:"popularity"`
	PosterPath       *string `json:"poster_path"`
	ReleaseDate      string  `json:"release_date"`
	Title            string  `json:"title"`
	Video            bool    `json:"video"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
}

// MoviesPage is a page of [MovieResult].
//
// Dates is only present in now playing responses.
type MoviesPage struct {
	Dates        *DateRange    `json:"dates,omitempty"`
	Page         int           `json:"page"`
	Results      []MovieResult `json:"results"`
	TotalPages   int           `json:"total_pages"`
	TotalResults int           `json:"total_results"`
}

// CountryResult is a country as returned by the API.
type CountryResult struct {
	ISO3166_1   string `json:"iso_3166_1"`
	EnglishName string `json:"english_name"`
	NativeName  string `json:"native_name"`
}

// GenreResult is a genre as returned by the API.
type GenreResult struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// GenreList is the response of [Genres].
type GenreList struct {
	Genres []GenreResult `json:"genres"`
}

// ErrorBody is the body the API returns along with non-2xx statuses.
type ErrorBody struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
	Success       bool   `json:"success"`
}

// NowPlaying lists the movies now in theaters.
var NowPlaying = &apiflow.Schema[Headers, NowPlayingQuery, apiflow.Empty, MoviesPage]{
	Name: "nowPlaying",
	Request: apiflow.RequestValue[Headers, NowPlayingQuery, apiflow.Empty]{
		Path: "/3/movie/now_playing",
	},
}

// SearchMovies searches movies by title.
var SearchMovies = &apiflow.Schema[Headers, SearchQuery, apiflow.Empty, MoviesPage]{
	Name: "searchMovies",
	Request: apiflow.RequestValue[Headers, SearchQuery, apiflow.Empty]{
		Path: "/3/search/movie",
	},
}

// Countries lists the countries used in the API.
var Countries = &apiflow.Schema[Headers, apiflow.Empty, apiflow.Empty, []CountryResult]{
	Name: "countries",
	Request: apiflow.RequestValue[Headers, apiflow.Empty, apiflow.Empty]{
		Path: "/3/configuration/countries",
	},
}

// Genres lists the movie genres.
var Genres = &apiflow.Schema[Headers, apiflow.Empty, apiflow.Empty, GenreList]{
	Name: "genres",
	Request: apiflow.RequestValue[Headers, apiflow.Empty, apiflow.Empty]{
		Path: "/3/genre/movie/list",
	},
}
