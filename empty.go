// SPDX-License-Identifier: GPL-3.0-or-later

package apiflow

// Empty is the channel type for endpoints that have no headers, no query
// items, or no body.
//
// A channel declared as Empty never needs to be configured: the builder
// accessors yield no headers, no query items, and a "{}" body.
type Empty struct{}

// isEmptyType returns whether T is [Empty].
func isEmptyType[T any]() bool {
	_, ok := any((*T)(nil)).(*Empty)
	return ok
}
