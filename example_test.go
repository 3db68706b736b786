// SPDX-License-Identifier: GPL-3.0-or-later

package apiflow_test

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/bassosimone/apiflow"
	"github.com/bassosimone/runtimex"
)

type nowPlayingQuery struct {
	Page     int    `json:"page"`
	Language string `json:"language"`
}

type moviesPage struct {
	Page    int `json:"page"`
	Results []struct {
		ID    int64  `json:"id"`
		Title string `json:"title"`
	} `json:"results"`
}

var nowPlaying = &apiflow.Schema[apiflow.Empty, nowPlayingQuery, apiflow.Empty, moviesPage]{
	Name: "nowPlaying",
	Request: apiflow.RequestValue[apiflow.Empty, nowPlayingQuery, apiflow.Empty]{
		Path: "/3/movie/now_playing",
	},
}

// This example shows how a schema turns into a wire request.
func Example_wireRequest() {
	b := nowPlaying.NewRequestBuilder().WithQuery(nowPlayingQuery{Page: 1, Language: "en"})

	wr := runtimex.PanicOnError1(apiflow.ToWireRequest(b, "https://api.example.com"))

	fmt.Println(wr.Method(), wr.URL())
	fmt.Println(wr.Curl(nil))
	// Output:
	// GET https://api.example.com/3/movie/now_playing?page=1&language=en
	// curl -i -X GET "https://api.example.com/3/movie/now_playing?page=1&language=en"
}

// This example shows how to share a single execution among consumers.
func Example_sharedExecution() {
	performer := apiflow.PerformerFunc(func(ctx context.Context, req *apiflow.WireRequest) (*apiflow.RawResponse, error) {
		body := `{"page":1,"results":[{"id":550,"title":"Fight Club"}]}`
		return &apiflow.RawResponse{StatusCode: 200, Body: []byte(body)}, nil
	})
	cfg := apiflow.NewConfig()
	cfg.BaseURL = "https://api.example.com"
	client := apiflow.NewClient(cfg, apiflow.DefaultSLogger())
	client.Performer = performer

	b := nowPlaying.NewRequestBuilder().WithQuery(nowPlayingQuery{Page: 1, Language: "en"})
	se, envelopes, err := apiflow.DoShared(client, b)
	runtimex.Assert(err == nil)
	se.Connect(context.Background())

	for range 2 {
		env := runtimex.PanicOnError1(apiflow.NewBridge(envelopes).First(context.Background()))
		fmt.Println(env.Body.Results[0].Title)
	}
	// Output:
	// Fight Club
	// Fight Club
}

// This example shows how to fetch data from a live API using the
// default dialing transport and JSON logging.
func Example_liveRequest() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := apiflow.NewConfig()
	cfg.BaseURL = "https://api.themoviedb.org"
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	client := apiflow.NewClient(cfg, logger)

	b := nowPlaying.NewRequestBuilder().WithQuery(nowPlayingQuery{Page: 1, Language: "en"})
	env, err := apiflow.Do(ctx, client, b)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(env.Response.StatusCode)
}
