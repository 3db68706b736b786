// SPDX-License-Identifier: GPL-3.0-or-later

package apiflow

import (
	"context"
	"iter"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Bridge turns a push-based [Publisher] into pull-based results.
//
// Each consumption ([*Bridge.First], [*Bridge.FirstOptional], or
// [*Bridge.Values]) subscribes to the publisher and registers the
// subscription under a fresh ID. The entry is removed, and the upstream
// subscription canceled, before the consumption returns. The registry is
// safe for concurrent use and belongs to a single Bridge.
type Bridge[T any] struct {
	// Logger is the [SLogger] to use.
	//
	// Set by [NewBridge] to [DefaultSLogger].
	Logger SLogger

	source Publisher[T]

	mu       sync.Mutex
	registry map[uuid.UUID]func()
}

// NewBridge returns a new [*Bridge] consuming source.
func NewBridge[T any](source Publisher[T]) *Bridge[T] {
	return &Bridge[T]{
		Logger:   DefaultSLogger(),
		source:   source,
		registry: make(map[uuid.UUID]func()),
	}
}

// Active returns the number of registered subscriptions.
func (b *Bridge[T]) Active() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.registry)
}

// First waits for the first value.
//
// Returns [ErrStreamCompletedWithoutValue] if the publisher completes
// without values, the publisher error if it fails first, and
// [*CanceledError] if ctx is done first.
func (b *Bridge[T]) First(ctx context.Context) (T, error) {
	value, found, err := b.FirstOptional(ctx)
	if err == nil && !found {
		err = ErrStreamCompletedWithoutValue
	}
	return value, err
}

// FirstOptional is like [*Bridge.First] except that completion without
// values returns false and a nil error.
func (b *Bridge[T]) FirstOptional(ctx context.Context) (T, bool, error) {
	var zero T
	q, stop := b.start("first")
	defer stop()
	ev, err := q.pop(ctx)
	switch {
	case err != nil:
		return zero, false, err
	case ev.done && ev.err != nil:
		return zero, false, ev.err
	case ev.done:
		return zero, false, nil
	default:
		return ev.value, true, nil
	}
}

// Values returns a sequence yielding every value in order.
//
// The sequence subscribes when iteration starts. A publisher failure or
// the cancellation of ctx is yielded as the last element with a zero value.
// Stopping the iteration early cancels the upstream subscription and
// removes the registry entry before the range loop body resumes.
func (b *Bridge[T]) Values(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		q, stop := b.start("values")
		defer stop()
		for {
			ev, err := q.pop(ctx)
			if err != nil {
				yield(zero, err)
				return
			}
			if ev.done {
				if ev.err != nil {
					yield(zero, ev.err)
				}
				return
			}
			if !yield(ev.value, nil) {
				return
			}
		}
	}
}

// start subscribes to the source and registers the subscription.
func (b *Bridge[T]) start(mode string) (*eventQueue[T], func()) {
	q := newEventQueue[T]()
	id := newUUID()
	cancel := b.source.Subscribe(q)

	b.mu.Lock()
	b.registry[id] = cancel
	active := len(b.registry)
	b.mu.Unlock()

	b.Logger.Debug(
		"bridgeSubscribe",
		slog.String("mode", mode),
		slog.String("subscriptionID", id.String()),
		slog.Int("active", active),
	)

	stop := func() {
		b.release(id, mode)
		q.close()
	}
	return q, stop
}

// release removes id from the registry and cancels its subscription.
func (b *Bridge[T]) release(id uuid.UUID, mode string) {
	b.mu.Lock()
	cancel, found := b.registry[id]
	delete(b.registry, id)
	active := len(b.registry)
	b.mu.Unlock()
	if !found {
		return
	}
	cancel()

	b.Logger.Debug(
		"bridgeRelease",
		slog.String("mode", mode),
		slog.String("subscriptionID", id.String()),
		slog.Int("active", active),
	)
}

// streamEvent is either a value or the terminal event.
type streamEvent[T any] struct {
	value T
	err   error
	done  bool
}

// eventQueue is an unbounded [Sink] that never blocks the publisher.
//
// Publishers may deliver synchronously from within Subscribe, so the
// sink must accept events before anyone is reading them.
type eventQueue[T any] struct {
	mu     sync.Mutex
	events []streamEvent[T]
	closed bool
	notify chan struct{}
}

func newEventQueue[T any]() *eventQueue[T] {
	return &eventQueue[T]{notify: make(chan struct{}, 1)}
}

var _ Sink[int] = &eventQueue[int]{}

// Next implements [Sink].
func (q *eventQueue[T]) Next(value T) {
	q.push(streamEvent[T]{value: value})
}

// Done implements [Sink].
func (q *eventQueue[T]) Done(err error) {
	q.push(streamEvent[T]{err: err, done: true})
}

func (q *eventQueue[T]) push(ev streamEvent[T]) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.events = append(q.events, ev)
	q.mu.Unlock()
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// close drops pending and future events.
func (q *eventQueue[T]) close() {
	q.mu.Lock()
	q.closed = true
	q.events = nil
	q.mu.Unlock()
}

// pop returns the next event or [*CanceledError] once ctx is done.
//
// A done ctx takes precedence over pending events.
func (q *eventQueue[T]) pop(ctx context.Context) (streamEvent[T], error) {
	for {
		if ctx.Err() != nil {
			return streamEvent[T]{}, &CanceledError{Cause: context.Cause(ctx)}
		}
		q.mu.Lock()
		if len(q.events) > 0 {
			ev := q.events[0]
			q.events = q.events[1:]
			q.mu.Unlock()
			return ev, nil
		}
		q.mu.Unlock()
		select {
		case <-q.notify:
		case <-ctx.Done():
		}
	}
}
