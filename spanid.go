// SPDX-License-Identifier: GPL-3.0-or-later

package apiflow

import (
	"github.com/bassosimone/runtimex"
	"github.com/google/uuid"
)

// NewSpanID returns a UUIDv7 identifying one request execution.
//
// [*HTTPPerformer] tags its performStart/performDone events with a fresh
// span ID so that the transport events emitted in between can be
// correlated by attaching the same ID to the logger with [*slog.Logger.With].
//
// This function panics if the system random number generator fails.
func NewSpanID() string {
	return newUUID().String()
}

// newUUID returns a time-ordered UUID, also used as Bridge registry key.
func newUUID() uuid.UUID {
	return runtimex.PanicOnError1(uuid.NewV7())
}
