// SPDX-License-Identifier: GPL-3.0-or-later

// Package tmdb is a movie database client built on apiflow.
//
// Endpoints are declared as [apiflow.Schema] values ([NowPlaying],
// [SearchMovies], [Countries], [Genres]). A [*Client] fills in the bearer
// token from a [KeyProvider], executes the requests, and converts the
// responses into domain values such as [Movie]. The liked movies are kept
// by an injected [LikedStore], merged into [LikedMovie] values, and narrowed
// with OR filtering via [FilterLiked].
package tmdb
