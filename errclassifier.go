// SPDX-License-Identifier: GPL-3.0-or-later

package apiflow

import (
	"errors"

	"github.com/bassosimone/errclass"
)

// ErrClassifier classifies errors into categorical strings for logging.
type ErrClassifier interface {
	Classify(err error) string
}

// ErrClassifierFunc adapts a function to the [ErrClassifier] interface.
type ErrClassifierFunc func(error) string

var _ ErrClassifier = ErrClassifierFunc(nil)

// Classify implements [ErrClassifier].
func (f ErrClassifierFunc) Classify(err error) string {
	return f(err)
}

// Labels emitted by [DefaultErrClassifier] for pipeline errors.
const (
	EMISSINGFIELD = "EMISSINGFIELD"
	EURL          = "EURL"
	EENCODE       = "EENCODE"
	EDECODE       = "EDECODE"
	ECAST         = "ECAST"
	ECANCELED     = "ECANCELED"
	ENOVALUE      = "ENOVALUE"
)

// DefaultErrClassifier labels pipeline errors and delegates everything
// else, including transport failures, to [errclass.New].
//
// A nil error maps to the empty string.
var DefaultErrClassifier = ErrClassifierFunc(classifyError)

func classifyError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingRequiredField):
		return EMISSINGFIELD
	case errors.Is(err, ErrURLConstruction):
		return EURL
	case errors.Is(err, ErrEncoding):
		return EENCODE
	case errors.Is(err, ErrDecoding):
		return EDECODE
	case errors.Is(err, ErrCast):
		return ECAST
	case errors.Is(err, ErrOperationCanceled):
		return ECANCELED
	case errors.Is(err, ErrStreamCompletedWithoutValue):
		return ENOVALUE
	default:
		return errclass.New(err)
	}
}
