// SPDX-License-Identifier: GPL-3.0-or-later

// Package likedstore contains implementations of [tmdb.LikedStore].
package likedstore

import (
	"context"
	"iter"
	"slices"
	"sync"

	"github.com/bassosimone/apiflow"
	"github.com/bassosimone/apiflow/tmdb"
)

// Memory is an in-memory [tmdb.LikedStore] publishing its changes.
//
// Every successful Add or Remove that changes the set sends the sorted
// IDs to the subscribers of [*Memory.Changes]. Subscribers must not call
// back into the store from their sinks.
type Memory struct {
	mu      sync.Mutex
	ids     map[int]struct{}
	changes apiflow.Broadcaster[[]int]
}

// NewMemory returns a new [*Memory] containing ids.
func NewMemory(ids ...int) *Memory {
	m := &Memory{ids: make(map[int]struct{}, len(ids))}
	for _, id := range ids {
		m.ids[id] = struct{}{}
	}
	return m
}

var _ tmdb.LikedStore = &Memory{}

// Fetch implements [tmdb.LikedStore].
func (m *Memory) Fetch(ctx context.Context) ([]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortedLocked(), nil
}

// Add implements [tmdb.LikedStore].
func (m *Memory) Add(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, found := m.ids[id]; found {
		return nil
	}
	m.ids[id] = struct{}{}
	m.changes.Send(m.sortedLocked())
	return nil
}

// Remove implements [tmdb.LikedStore].
func (m *Memory) Remove(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, found := m.ids[id]; !found {
		return nil
	}
	delete(m.ids, id)
	m.changes.Send(m.sortedLocked())
	return nil
}

func (m *Memory) sortedLocked() []int {
	out := make([]int, 0, len(m.ids))
	for id := range m.ids {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Changes returns a hot [apiflow.Publisher] of the liked IDs after each change.
func (m *Memory) Changes() apiflow.Publisher[[]int] {
	return &m.changes
}

// Watch returns a sequence yielding the liked IDs after each change until
// ctx is done or the store is closed.
func (m *Memory) Watch(ctx context.Context) iter.Seq2[[]int, error] {
	return apiflow.NewBridge(m.Changes()).Values(ctx)
}

// Close completes the change stream. The store remains usable.
func (m *Memory) Close() error {
	m.changes.Close(nil)
	return nil
}
