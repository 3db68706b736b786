// SPDX-License-Identifier: GPL-3.0-or-later

package apiflow

import (
	"sync"
	"sync/atomic"
)

// Sink receives the events emitted by a [Publisher].
//
// A publisher calls Next zero or more times and then Done exactly once,
// unless the subscription is canceled first. A nil error passed to Done
// means successful completion.
type Sink[T any] interface {
	Next(value T)
	Done(err error)
}

// Publisher is a reactive stream of values of type T.
//
// Subscribe registers sink and returns a function that cancels the
// subscription. Publishers may deliver events synchronously from within
// Subscribe. The cancel function is idempotent and, after it returns, the
// publisher must not start delivering further events to sink. A delivery
// already running on another goroutine may still complete.
type Publisher[T any] interface {
	Subscribe(sink Sink[T]) (cancel func())
}

// SinkFuncs adapts a pair of functions to the [Sink] interface.
//
// Nil functions are ignored.
type SinkFuncs[T any] struct {
	NextFunc func(value T)
	DoneFunc func(err error)
}

var _ Sink[int] = SinkFuncs[int]{}

// Next implements [Sink].
func (s SinkFuncs[T]) Next(value T) {
	if s.NextFunc != nil {
		s.NextFunc(value)
	}
}

// Done implements [Sink].
func (s SinkFuncs[T]) Done(err error) {
	if s.DoneFunc != nil {
		s.DoneFunc(err)
	}
}

// PublisherFunc adapts a function to the [Publisher] interface.
type PublisherFunc[T any] func(sink Sink[T]) (cancel func())

// Subscribe implements [Publisher].
func (f PublisherFunc[T]) Subscribe(sink Sink[T]) (cancel func()) {
	return f(sink)
}

// Just returns a [Publisher] that synchronously emits values and completes.
func Just[T any](values ...T) Publisher[T] {
	return PublisherFunc[T](func(sink Sink[T]) func() {
		for _, v := range values {
			sink.Next(v)
		}
		sink.Done(nil)
		return func() {}
	})
}

// Fail returns a [Publisher] that synchronously fails with err.
func Fail[T any](err error) Publisher[T] {
	return PublisherFunc[T](func(sink Sink[T]) func() {
		sink.Done(err)
		return func() {}
	})
}

// subscription is a [Sink] dropping every event once canceled.
type subscription[T any] struct {
	sink     Sink[T]
	canceled atomic.Bool
}

var _ Sink[int] = &subscription[int]{}

// Next implements [Sink].
func (s *subscription[T]) Next(value T) {
	if !s.canceled.Load() {
		s.sink.Next(value)
	}
}

// Done implements [Sink].
func (s *subscription[T]) Done(err error) {
	if !s.canceled.Load() {
		s.sink.Done(err)
	}
}

func (s *subscription[T]) cancel() {
	s.canceled.Store(true)
}

// Broadcaster is a hot [Publisher] fanning values out to its current subscribers.
//
// Subscribers only see values sent after they subscribed. Subscribing after
// [*Broadcaster.Close] immediately delivers the completion. The zero value
// is ready to use.
type Broadcaster[T any] struct {
	mu      sync.Mutex
	sinks   map[uint64]*subscription[T]
	nextID  uint64
	closed  bool
	doneErr error
}

var _ Publisher[int] = &Broadcaster[int]{}

// Subscribe implements [Publisher].
func (b *Broadcaster[T]) Subscribe(sink Sink[T]) (cancel func()) {
	b.mu.Lock()
	if b.closed {
		err := b.doneErr
		b.mu.Unlock()
		sink.Done(err)
		return func() {}
	}
	if b.sinks == nil {
		b.sinks = make(map[uint64]*subscription[T])
	}
	id := b.nextID
	b.nextID++
	sub := &subscription[T]{sink: sink}
	b.sinks[id] = sub
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.sinks, id)
		sub.cancel()
		b.mu.Unlock()
	}
}

// snapshot returns the current sinks. The caller must hold the mutex.
func (b *Broadcaster[T]) snapshot() []*subscription[T] {
	sinks := make([]*subscription[T], 0, len(b.sinks))
	for _, s := range b.sinks {
		sinks = append(sinks, s)
	}
	return sinks
}

// Send delivers value to every current subscriber. Send after Close is a no-op.
func (b *Broadcaster[T]) Send(value T) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	sinks := b.snapshot()
	b.mu.Unlock()
	for _, s := range sinks {
		s.Next(value)
	}
}

// Close completes the stream with err. Subsequent calls are no-ops.
func (b *Broadcaster[T]) Close(err error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed, b.doneErr = true, err
	sinks := b.snapshot()
	b.sinks = nil
	b.mu.Unlock()
	for _, s := range sinks {
		s.Done(err)
	}
}

// Len returns the number of current subscribers.
func (b *Broadcaster[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sinks)
}

// Map returns a [Publisher] applying fn to every value of p.
//
// When fn fails, the subscriber receives the error as completion and the
// upstream subscription is canceled.
func Map[A, B any](p Publisher[A], fn func(A) (B, error)) Publisher[B] {
	return PublisherFunc[B](func(sink Sink[B]) func() {
		ms := &mapSink[A, B]{fn: fn, sink: sink}
		cancel := p.Subscribe(ms)
		ms.mu.Lock()
		ms.cancel = cancel
		finished := ms.finished
		ms.mu.Unlock()
		if finished {
			cancel()
		}
		return func() {
			ms.mu.Lock()
			ms.finished = true
			ms.mu.Unlock()
			cancel()
		}
	})
}

type mapSink[A, B any] struct {
	fn   func(A) (B, error)
	sink Sink[B]

	mu       sync.Mutex
	cancel   func()
	finished bool
}

func (ms *mapSink[A, B]) Next(value A) {
	ms.mu.Lock()
	if ms.finished {
		ms.mu.Unlock()
		return
	}
	ms.mu.Unlock()
	out, err := ms.fn(value)
	if err != nil {
		ms.finish(err)
		return
	}
	ms.mu.Lock()
	finished := ms.finished
	ms.mu.Unlock()
	if !finished {
		ms.sink.Next(out)
	}
}

func (ms *mapSink[A, B]) Done(err error) {
	ms.finish(err)
}

func (ms *mapSink[A, B]) finish(err error) {
	ms.mu.Lock()
	if ms.finished {
		ms.mu.Unlock()
		return
	}
	ms.finished = true
	cancel := ms.cancel
	ms.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	ms.sink.Done(err)
}
