// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/bassosimone/apiflow/filtering"
	"github.com/bassosimone/apiflow/tmdb"
	"github.com/spf13/cobra"
)

// globalFlags are the flags shared by all subcommands.
type globalFlags struct {
	config       string
	verbose      bool
	traceSecrets bool
	metrics      bool
}

func newRootCmd() *cobra.Command {
	gf := &globalFlags{}
	rootCmd := &cobra.Command{
		Use:   "tmdbctl",
		Short: "Browse the movies now playing",
		Long: `tmdbctl lists the movies now playing in theaters, searches titles,
and keeps a local list of liked movies.

The API read access token is read from the environment variable named by
api_key_env in the configuration file (TMDB_API_KEY by default).`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&gf.config, "config", "", "YAML configuration file")
	flags.BoolVarP(&gf.verbose, "verbose", "v", false, "Log JSON events to stderr")
	flags.BoolVar(&gf.traceSecrets, "trace-secrets", false, "Do not redact credentials in logs")
	flags.BoolVar(&gf.metrics, "metrics", false, "Print request metrics to stderr on exit")

	rootCmd.AddCommand(newMoviesCmd(gf))
	rootCmd.AddCommand(newSearchCmd(gf))
	rootCmd.AddCommand(newCountriesCmd(gf))
	rootCmd.AddCommand(newGenresCmd(gf))
	rootCmd.AddCommand(newLikeCmd(gf, true))
	rootCmd.AddCommand(newLikeCmd(gf, false))
	rootCmd.AddCommand(newLikedCmd(gf))
	return rootCmd
}

// runE adapts fn to a cobra RunE, building the app and the context.
func runE(gf *globalFlags, fn func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(gf.config)
		if err != nil {
			return err
		}
		a, err := newApp(s, gf.traceSecrets, newLogger(gf.verbose, cmd.ErrOrStderr()))
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		ctx, cancel := context.WithTimeout(ctx, s.Timeout)
		defer cancel()

		err = fn(ctx, cmd, a, args)
		if gf.metrics {
			if merr := a.writeMetrics(cmd.ErrOrStderr()); err == nil {
				err = merr
			}
		}
		return err
	}
}

func newMoviesCmd(gf *globalFlags) *cobra.Command {
	var (
		page       int
		genres     []int
		title      string
		favourites bool
	)
	cmd := &cobra.Command{
		Use:   "movies",
		Short: "List the movies now playing",
		Long: `List a page of the movies now playing, marking the liked ones with '*'.

Movies belonging to any of the --genre IDs are kept; --title further keeps
the movies whose title contains the given text.`,
		Args: cobra.NoArgs,
		RunE: runE(gf, func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			movies, err := a.client.FetchLikedMovies(ctx, page)
			if err != nil {
				return err
			}
			movies = tmdb.FilterLiked(movies, genres, title)
			if favourites {
				movies = filtering.And(movies, tmdb.OnlyFavourites)
			}
			out := cmd.OutOrStdout()
			for _, m := range movies {
				mark := " "
				if m.IsFavourite {
					mark = "*"
				}
				fmt.Fprintf(out, "%s %7d  %-40s %s  %.1f\n", mark, m.ID, m.Title, m.RawReleaseDate, m.Grade)
			}
			return nil
		}),
	}
	cmd.Flags().IntVar(&page, "page", 1, "Page to fetch")
	cmd.Flags().IntSliceVar(&genres, "genre", nil, "Keep movies of this genre ID (repeatable)")
	cmd.Flags().StringVar(&title, "title", "", "Keep movies whose title contains this text")
	cmd.Flags().BoolVar(&favourites, "favourites", false, "Only list liked movies")
	return cmd
}

func newSearchCmd(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "search TEXT",
		Short: "Suggest movie titles matching TEXT",
		Args:  cobra.ExactArgs(1),
		RunE: runE(gf, func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			suggestions, err := a.client.FetchSearchSuggestions(ctx, args[0])
			if err != nil {
				return err
			}
			for _, s := range suggestions {
				fmt.Fprintln(cmd.OutOrStdout(), s.Text)
			}
			return nil
		}),
	}
}

func newCountriesCmd(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "countries",
		Short: "List the countries",
		Args:  cobra.NoArgs,
		RunE: runE(gf, func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			countries, err := a.client.FetchCountries(ctx)
			if err != nil {
				return err
			}
			for _, c := range countries {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s (%s)\n", c.ID, c.EnglishName, c.NativeName)
			}
			return nil
		}),
	}
}

func newGenresCmd(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "genres",
		Short: "List the movie genres",
		Args:  cobra.NoArgs,
		RunE: runE(gf, func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			categories, err := a.client.FetchCategories(ctx)
			if err != nil {
				return err
			}
			for _, c := range categories {
				fmt.Fprintf(cmd.OutOrStdout(), "%6d  %s\n", c.ID, c.EnglishName)
			}
			return nil
		}),
	}
}

func newLikeCmd(gf *globalFlags, like bool) *cobra.Command {
	use, short := "like ID", "Add a movie to the liked movies"
	if !like {
		use, short = "unlike ID", "Remove a movie from the liked movies"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: runE(gf, func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid movie ID %q", args[0])
			}
			if like {
				return a.client.MarkFavourite(ctx, id)
			}
			return a.client.UnmarkFavourite(ctx, id)
		}),
	}
}

func newLikedCmd(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "liked",
		Short: "List the liked movie IDs",
		Args:  cobra.NoArgs,
		RunE: runE(gf, func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			ids, err := a.client.FetchLikedIDs(ctx)
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		}),
	}
}
