// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bassosimone/apiflow"
	"github.com/bassosimone/apiflow/likedstore"
	"github.com/bassosimone/apiflow/metrics"
	"github.com/bassosimone/apiflow/tmdb"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// app holds what the subcommands share.
type app struct {
	client   *tmdb.Client
	registry *prometheus.Registry
}

// newLogger returns a JSON logger writing to w, or the discard logger.
func newLogger(verbose bool, w io.Writer) apiflow.SLogger {
	if !verbose {
		return apiflow.DefaultSLogger()
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// newApp wires the client with rate limiting and metrics.
func newApp(s *settings, traceSecrets bool, logger apiflow.SLogger) (*app, error) {
	cfg := apiflow.NewConfig()
	cfg.BaseURL = s.BaseURL
	cfg.TraceSecrets = traceSecrets
	resolver, err := s.newResolver(cfg, logger)
	if err != nil {
		return nil, err
	}
	if resolver != nil {
		cfg.Resolver = resolver
	}

	path, err := s.likedFile()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}

	client := tmdb.NewClient(cfg, tmdb.NewEnvKey(s.APIKeyEnv), likedstore.NewFile(path), logger)
	client.Language = s.Language

	reg := prometheus.NewRegistry()
	measured := metrics.NewPerformer(cfg, client.API.Performer, metrics.NewMetrics(reg))
	client.API.Performer = apiflow.NewLimitedPerformer(measured, s.RPS, s.Burst)

	return &app{client: client, registry: reg}, nil
}

// writeMetrics prints the gathered metrics in the Prometheus text format.
func (a *app) writeMetrics(w io.Writer) error {
	families, err := a.registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
