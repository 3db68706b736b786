// SPDX-License-Identifier: GPL-3.0-or-later

// Package filtering selects elements of a collection using predicates.
//
// A [Factor] is a pure predicate. [Or] keeps the elements accepted by at
// least one factor and [And] keeps those accepted by every factor. Both
// treat an empty factor list as "keep everything", preserve the source
// order, and never modify the source.
package filtering

// Factor is a predicate deciding whether to keep a value.
type Factor[T any] func(value T) bool

// Or returns the elements of source accepted by at least one factor.
func Or[T any](source []T, factors ...Factor[T]) []T {
	if len(factors) <= 0 {
		return clone(source)
	}
	return keep(source, AnyOf(factors...))
}

// And returns the elements of source accepted by every factor.
func And[T any](source []T, factors ...Factor[T]) []T {
	if len(factors) <= 0 {
		return clone(source)
	}
	return keep(source, AllOf(factors...))
}

// AnyOf combines factors into a factor accepting values that at least one
// of them accepts. With no factors the result rejects everything.
func AnyOf[T any](factors ...Factor[T]) Factor[T] {
	return func(value T) bool {
		for _, f := range factors {
			if f(value) {
				return true
			}
		}
		return false
	}
}

// AllOf combines factors into a factor accepting values that every one of
// them accepts. With no factors the result accepts everything.
func AllOf[T any](factors ...Factor[T]) Factor[T] {
	return func(value T) bool {
		for _, f := range factors {
			if !f(value) {
				return false
			}
		}
		return true
	}
}

// Not negates f.
func Not[T any](f Factor[T]) Factor[T] {
	return func(value T) bool {
		return !f(value)
	}
}

func keep[T any](source []T, f Factor[T]) []T {
	out := make([]T, 0, len(source))
	for _, v := range source {
		if f(v) {
			out = append(out, v)
		}
	}
	return out
}

func clone[T any](source []T) []T {
	return append(make([]T, 0, len(source)), source...)
}
