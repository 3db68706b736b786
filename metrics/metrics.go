// SPDX-License-Identifier: GPL-3.0-or-later

// Package metrics exports Prometheus metrics about performed requests.
package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/bassosimone/apiflow"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains the collectors updated by [*Performer].
type Metrics struct {
	// RequestsTotal counts completed requests by method, status, and error class.
	RequestsTotal *prometheus.CounterVec

	// RequestDuration observes the request duration in seconds by method.
	RequestDuration *prometheus.HistogramVec

	// InFlight is the number of requests being performed.
	InFlight prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "apiflow",
				Subsystem: "performer",
				Name:      "requests_total",
				Help:      "Total number of performed requests",
			},
			[]string{"method", "status", "err_class"},
		),

		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "apiflow",
				Subsystem: "performer",
				Name:      "request_duration_seconds",
				Help:      "Request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),

		InFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "apiflow",
				Subsystem: "performer",
				Name:      "in_flight_requests",
				Help:      "Number of requests being performed",
			},
		),
	}
	reg.MustRegister(m.RequestsTotal, m.RequestDuration, m.InFlight)
	return m
}

// Performer is an [apiflow.Performer] recording [*Metrics].
//
// All fields are safe to modify after construction but before first use.
type Performer struct {
	// ErrClassifier computes the err_class label.
	//
	// Set by [NewPerformer] from [apiflow.Config.ErrClassifier].
	ErrClassifier apiflow.ErrClassifier

	// Metrics contains the collectors to update.
	Metrics *Metrics

	// Performer is the wrapped [apiflow.Performer].
	Performer apiflow.Performer

	// TimeNow is the function to get the current time.
	//
	// Set by [NewPerformer] from [apiflow.Config.TimeNow].
	TimeNow func() time.Time
}

// NewPerformer wraps p so that each Perform updates m.
func NewPerformer(cfg *apiflow.Config, p apiflow.Performer, m *Metrics) *Performer {
	return &Performer{
		ErrClassifier: cfg.ErrClassifier,
		Metrics:       m,
		Performer:     p,
		TimeNow:       cfg.TimeNow,
	}
}

var _ apiflow.Performer = &Performer{}

// Perform implements [apiflow.Performer].
func (p *Performer) Perform(ctx context.Context, req *apiflow.WireRequest) (*apiflow.RawResponse, error) {
	p.Metrics.InFlight.Inc()
	defer p.Metrics.InFlight.Dec()

	t0 := p.TimeNow()
	resp, err := p.Performer.Perform(ctx, req)
	elapsed := p.TimeNow().Sub(t0)

	status := "none"
	if resp != nil {
		status = strconv.Itoa(resp.StatusCode)
	}
	errClass := p.ErrClassifier.Classify(err)
	p.Metrics.RequestsTotal.WithLabelValues(req.Method(), status, errClass).Inc()
	p.Metrics.RequestDuration.WithLabelValues(req.Method()).Observe(elapsed.Seconds())
	return resp, err
}
