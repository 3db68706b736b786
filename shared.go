// SPDX-License-Identifier: GPL-3.0-or-later

package apiflow

import (
	"context"
	"sync"
)

// SharedExecution is a connectable, shared, single-flight execution of a
// [*WireRequest] created by [Store].
//
// Consumers attach with [*SharedExecution.Subscribe] and the request is
// started explicitly by [*SharedExecution.Connect]. The underlying
// [Performer] runs at most once regardless of how many consumers attach or
// how many times Connect is called, and every consumer observes the same
// outcome. Consumers attaching after completion receive the cached outcome.
type SharedExecution struct {
	performer Performer
	req       *WireRequest

	once sync.Once
	done chan struct{}

	mu     sync.Mutex
	sinks  map[uint64]*subscription[*RawResponse]
	nextID uint64
	resp   *RawResponse
	err    error
	ended  bool
}

// Store wraps the execution of req by p into a [*SharedExecution].
//
// Nothing is executed until Connect is called.
func Store(p Performer, req *WireRequest) *SharedExecution {
	return &SharedExecution{
		performer: p,
		req:       req,
		done:      make(chan struct{}),
		sinks:     make(map[uint64]*subscription[*RawResponse]),
	}
}

var _ Publisher[*RawResponse] = &SharedExecution{}

// Subscribe implements [Publisher].
//
// When the execution already completed, sink synchronously receives the
// cached outcome before Subscribe returns.
func (se *SharedExecution) Subscribe(sink Sink[*RawResponse]) (cancel func()) {
	se.mu.Lock()
	if se.ended {
		resp, err := se.resp, se.err
		se.mu.Unlock()
		deliver(sink, resp, err)
		return func() {}
	}
	id := se.nextID
	se.nextID++
	sub := &subscription[*RawResponse]{sink: sink}
	se.sinks[id] = sub
	se.mu.Unlock()

	return func() {
		se.mu.Lock()
		delete(se.sinks, id)
		sub.cancel()
		se.mu.Unlock()
	}
}

// Connect starts the underlying execution in a background goroutine.
//
// Only the first call has an effect and ctx bounds the execution. Connect
// returns immediately; use [*SharedExecution.Wait] or subscribe to observe
// the outcome.
func (se *SharedExecution) Connect(ctx context.Context) {
	se.once.Do(func() {
		go se.run(ctx)
	})
}

func (se *SharedExecution) run(ctx context.Context) {
	resp, err := se.performer.Perform(ctx, se.req)

	se.mu.Lock()
	se.resp, se.err, se.ended = resp, err, true
	sinks := make([]*subscription[*RawResponse], 0, len(se.sinks))
	for _, s := range se.sinks {
		sinks = append(sinks, s)
	}
	clear(se.sinks)
	se.mu.Unlock()

	close(se.done)
	for _, s := range sinks {
		deliver(s, resp, err)
	}
}

func deliver(sink Sink[*RawResponse], resp *RawResponse, err error) {
	if err != nil {
		sink.Done(err)
		return
	}
	sink.Next(resp)
	sink.Done(nil)
}

// Done returns a channel closed once the execution completed.
func (se *SharedExecution) Done() <-chan struct{} {
	return se.done
}

// Wait waits for the execution to complete and returns its outcome.
//
// Wait does not call Connect. When ctx is done first, Wait returns a
// [*CanceledError] while the execution keeps running for other consumers.
func (se *SharedExecution) Wait(ctx context.Context) (*RawResponse, error) {
	select {
	case <-se.done:
		se.mu.Lock()
		defer se.mu.Unlock()
		return se.resp, se.err
	case <-ctx.Done():
		return nil, &CanceledError{Cause: context.Cause(ctx)}
	}
}
