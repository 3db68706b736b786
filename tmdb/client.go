// SPDX-License-Identifier: GPL-3.0-or-later

package tmdb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bassosimone/apiflow"
	"golang.org/x/sync/errgroup"
)

// ErrStatus indicates that the API answered with a non-2xx status.
var ErrStatus = errors.New("tmdb: unexpected status")

// StatusError is returned when the API answers with a non-2xx status.
type StatusError struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Message is the status message found in the body, if any.
	Message string
}

// Error implements error.
func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("tmdb: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("tmdb: unexpected status %d: %s", e.StatusCode, e.Message)
}

// Unwrap returns [ErrStatus].
func (e *StatusError) Unwrap() error {
	return ErrStatus
}

// CheckStatusFunc fails with [*StatusError] on non-2xx responses.
type CheckStatusFunc struct{}

var _ apiflow.Func[*apiflow.RawResponse, *apiflow.RawResponse] = CheckStatusFunc{}

// Call implements [apiflow.Func].
func (CheckStatusFunc) Call(ctx context.Context, resp *apiflow.RawResponse) (*apiflow.RawResponse, error) {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	serr := &StatusError{StatusCode: resp.StatusCode}
	if body, err := apiflow.Decode[ErrorBody](apiflow.JSONCodec{}, resp.Body); err == nil {
		serr.Message = body.StatusMessage
	}
	return nil, serr
}

// LikedStore persists the IDs of the liked movies.
type LikedStore interface {
	// Fetch returns the liked IDs in ascending order.
	Fetch(ctx context.Context) ([]int, error)

	// Add marks id as liked. Adding a liked ID is a no-op.
	Add(ctx context.Context, id int) error

	// Remove unmarks id. Removing an unknown ID is a no-op.
	Remove(ctx context.Context, id int) error
}

// Client is the movie database use-case surface.
//
// All fields are safe to modify after construction but before first use.
type Client struct {
	// API executes the requests.
	//
	// Set by [NewClient] to an [*apiflow.Client] whose base URL defaults
	// to [BaseURL] when [apiflow.Config.BaseURL] is empty.
	API *apiflow.Client

	// Keys provides the API read access token.
	//
	// Set by [NewClient] to the user-provided key provider.
	Keys KeyProvider

	// Language is the language requested for localized fields.
	//
	// Set by [NewClient] to [DefaultLanguage].
	Language string

	// Liked stores the liked movie IDs.
	//
	// Set by [NewClient] to the user-provided store.
	Liked LikedStore

	// Logger is the [apiflow.SLogger] to use.
	//
	// Set by [NewClient] to the user-provided logger.
	Logger apiflow.SLogger
}

// NewClient returns a new [*Client].
//
// The cfg argument contains the common configuration for apiflow operations.
//
// The keys argument provides the API key and liked stores the liked IDs.
//
// The logger argument is the [apiflow.SLogger] to use for structured logging.
func NewClient(cfg *apiflow.Config, keys KeyProvider, liked LikedStore, logger apiflow.SLogger) *Client {
	api := apiflow.NewClient(cfg, logger)
	if api.BaseURL == "" {
		api.BaseURL = BaseURL
	}
	return &Client{
		API:      api,
		Keys:     keys,
		Language: DefaultLanguage,
		Liked:    liked,
		Logger:   logger,
	}
}

func (c *Client) headers(ctx context.Context) (Headers, error) {
	key, err := c.Keys.APIKey(ctx)
	if err != nil {
		return Headers{}, err
	}
	return NewHeaders(key), nil
}

// fetch runs the request pipeline rejecting non-2xx responses before decoding.
func fetch[H, Q, B, R any](ctx context.Context, c *Client, b *apiflow.RequestBuilder[H, Q, B, R]) (R, error) {
	var zero R
	dec, err := b.WithDefaultCodec(c.API.Codec).Decoder()
	if err != nil {
		return zero, err
	}
	pipeline := apiflow.Compose4(
		apiflow.Func[apiflow.RequestSource, *apiflow.WireRequest](apiflow.NewWireFunc(&apiflow.Config{BaseURL: c.API.BaseURL})),
		apiflow.Func[*apiflow.WireRequest, *apiflow.RawResponse](apiflow.NewPerformFunc(c.API.Performer)),
		apiflow.Func[*apiflow.RawResponse, *apiflow.RawResponse](CheckStatusFunc{}),
		apiflow.Func[*apiflow.RawResponse, *apiflow.ResponseEnvelope[R]](apiflow.NewDecodeFunc[R](dec)),
	)
	env, err := pipeline.Call(ctx, b)
	if err != nil {
		return zero, err
	}
	return env.Body, nil
}

// NowPlayingRequest returns the builder for the given page of [NowPlaying].
func (c *Client) NowPlayingRequest(ctx context.Context, page int) (*apiflow.RequestBuilder[Headers, NowPlayingQuery, apiflow.Empty, MoviesPage], error) {
	h, err := c.headers(ctx)
	if err != nil {
		return nil, err
	}
	b := NowPlaying.NewRequestBuilder().
		WithHeaders(h).
		WithQuery(NowPlayingQuery{Page: page, Language: c.Language})
	return b, nil
}

// FetchMovies returns the given page of the movies now playing.
func (c *Client) FetchMovies(ctx context.Context, page int) ([]Movie, error) {
	b, err := c.NowPlayingRequest(ctx, page)
	if err != nil {
		return nil, err
	}
	body, err := fetch(ctx, c, b)
	if err != nil {
		return nil, err
	}
	return NewMovies(body), nil
}

// ShareMovies prepares a shared execution of the given page of the movies
// now playing.
//
// The request starts when [*apiflow.SharedExecution.Connect] is called and
// every subscriber of the returned publisher observes the same outcome. The
// status is checked before decoding, so non-2xx answers fail with
// [*StatusError] whatever their body.
func (c *Client) ShareMovies(ctx context.Context, page int) (*apiflow.SharedExecution, apiflow.Publisher[[]Movie], error) {
	b, err := c.NowPlayingRequest(ctx, page)
	if err != nil {
		return nil, nil, err
	}
	dec, err := b.WithDefaultCodec(c.API.Codec).Decoder()
	if err != nil {
		return nil, nil, err
	}
	req, err := apiflow.Prepare(c.API, b)
	if err != nil {
		return nil, nil, err
	}
	se := apiflow.Store(c.API.Performer, req)
	decode := apiflow.Compose2(
		apiflow.Func[*apiflow.RawResponse, *apiflow.RawResponse](CheckStatusFunc{}),
		apiflow.Func[*apiflow.RawResponse, *apiflow.ResponseEnvelope[MoviesPage]](apiflow.NewDecodeFunc[MoviesPage](dec)),
	)
	movies := apiflow.Map(apiflow.Publisher[*apiflow.RawResponse](se), func(resp *apiflow.RawResponse) ([]Movie, error) {
		env, err := decode.Call(ctx, resp)
		if err != nil {
			return nil, err
		}
		return NewMovies(env.Body), nil
	})
	return se, movies, nil
}

// FetchSearchSuggestions returns the titles of the first page of movies
// matching text.
func (c *Client) FetchSearchSuggestions(ctx context.Context, text string) ([]SearchSuggestion, error) {
	h, err := c.headers(ctx)
	if err != nil {
		return nil, err
	}
	b := SearchMovies.NewRequestBuilder().
		WithHeaders(h).
		WithQuery(SearchQuery{Query: text, Page: 1, Language: c.Language})
	body, err := fetch(ctx, c, b)
	if err != nil {
		return nil, err
	}
	return NewSearchSuggestions(body), nil
}

// FetchCountries returns the countries known to the API.
func (c *Client) FetchCountries(ctx context.Context) ([]Country, error) {
	h, err := c.headers(ctx)
	if err != nil {
		return nil, err
	}
	body, err := fetch(ctx, c, Countries.NewRequestBuilder().WithHeaders(h))
	if err != nil {
		return nil, err
	}
	return NewCountries(body), nil
}

// FetchCategories returns the movie genres.
func (c *Client) FetchCategories(ctx context.Context) ([]Category, error) {
	h, err := c.headers(ctx)
	if err != nil {
		return nil, err
	}
	body, err := fetch(ctx, c, Genres.NewRequestBuilder().WithHeaders(h))
	if err != nil {
		return nil, err
	}
	return NewCategories(body), nil
}

// LookupTables contains the data needed to populate the filters.
type LookupTables struct {
	Countries  []Country
	Categories []Category
}

// FetchLookupTables fetches countries and categories concurrently.
//
// The first failure cancels the other request.
func (c *Client) FetchLookupTables(ctx context.Context) (*LookupTables, error) {
	tables := &LookupTables{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		tables.Countries, err = c.FetchCountries(gctx)
		return
	})
	g.Go(func() (err error) {
		tables.Categories, err = c.FetchCategories(gctx)
		return
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}

// FetchLikedIDs returns the liked movie IDs in ascending order.
func (c *Client) FetchLikedIDs(ctx context.Context) ([]int, error) {
	return c.Liked.Fetch(ctx)
}

// MarkFavourite adds id to the liked movies.
func (c *Client) MarkFavourite(ctx context.Context, id int) error {
	err := c.Liked.Add(ctx, id)
	c.Logger.Info("markFavourite", slog.Int("movieID", id), slog.Any("err", err))
	return err
}

// UnmarkFavourite removes id from the liked movies.
func (c *Client) UnmarkFavourite(ctx context.Context, id int) error {
	err := c.Liked.Remove(ctx, id)
	c.Logger.Info("unmarkFavourite", slog.Int("movieID", id), slog.Any("err", err))
	return err
}

// FetchLikedMovies returns the given page of the movies now playing
// annotated with the liked state.
//
// The movies and the liked IDs are fetched concurrently.
func (c *Client) FetchLikedMovies(ctx context.Context, page int) ([]LikedMovie, error) {
	var (
		movies []Movie
		liked  []int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		movies, err = c.FetchMovies(gctx, page)
		return
	})
	g.Go(func() (err error) {
		liked, err = c.FetchLikedIDs(gctx)
		return
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return MergeLiked(movies, liked), nil
}
