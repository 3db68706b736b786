// SPDX-License-Identifier: GPL-3.0-or-later

package apiflow

import (
	"context"

	"golang.org/x/time/rate"
)

// LimitedPerformer throttles a [Performer] on the client side.
//
// Each Perform call waits for a token from Limiter before delegating.
// Waiting is interrupted by ctx, in which case the request is never sent
// and a [*CanceledError] is returned. There are no retries.
type LimitedPerformer struct {
	// Performer is the wrapped [Performer].
	Performer Performer

	// Limiter is the token bucket to wait on.
	Limiter *rate.Limiter
}

// NewLimitedPerformer returns a [*LimitedPerformer] allowing rps requests
// per second with the given burst.
func NewLimitedPerformer(p Performer, rps float64, burst int) *LimitedPerformer {
	return &LimitedPerformer{
		Performer: p,
		Limiter:   rate.NewLimiter(rate.Limit(rps), burst),
	}
}

var _ Performer = &LimitedPerformer{}

// Perform implements [Performer].
func (lp *LimitedPerformer) Perform(ctx context.Context, req *WireRequest) (*RawResponse, error) {
	if err := lp.Limiter.Wait(ctx); err != nil {
		if cause := context.Cause(ctx); cause != nil {
			return nil, &CanceledError{Cause: cause}
		}
		return nil, &CanceledError{Cause: err}
	}
	return lp.Performer.Perform(ctx, req)
}
