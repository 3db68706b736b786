// SPDX-License-Identifier: GPL-3.0-or-later

package tmdb

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// ErrNoAPIKey indicates that no API key is available.
var ErrNoAPIKey = errors.New("tmdb: no API key")

// KeyProvider returns the API read access token.
type KeyProvider interface {
	APIKey(ctx context.Context) (string, error)
}

// StaticKey is a [KeyProvider] returning a fixed key.
type StaticKey string

var _ KeyProvider = StaticKey("")

// APIKey implements [KeyProvider].
func (k StaticKey) APIKey(ctx context.Context) (string, error) {
	if k == "" {
		return "", ErrNoAPIKey
	}
	return string(k), nil
}

// DefaultKeyEnv is the environment variable read by default by [EnvKey].
const DefaultKeyEnv = "TMDB_API_KEY"

// EnvKey is a [KeyProvider] reading the key from an environment variable
// on every call.
type EnvKey struct {
	// Name is the environment variable name.
	Name string

	// LookupEnv is the function to read the environment.
	//
	// Set by [NewEnvKey] to [os.LookupEnv].
	LookupEnv func(key string) (string, bool)
}

// NewEnvKey returns a new [*EnvKey] reading the given variable.
func NewEnvKey(name string) *EnvKey {
	return &EnvKey{Name: name, LookupEnv: os.LookupEnv}
}

var _ KeyProvider = &EnvKey{}

// APIKey implements [KeyProvider].
func (k *EnvKey) APIKey(ctx context.Context) (string, error) {
	value, ok := k.LookupEnv(k.Name)
	if !ok || value == "" {
		return "", fmt.Errorf("%w: %s is not set", ErrNoAPIKey, k.Name)
	}
	return value, nil
}
