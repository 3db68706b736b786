// SPDX-License-Identifier: GPL-3.0-or-later

package apiflow

import (
	"context"
	"errors"
	"testing"

	"github.com/bassosimone/errclass"
	"github.com/stretchr/testify/assert"
)

func TestDefaultErrClassifier(t *testing.T) {
	tests := []struct {
		// name describes what this test case verifies.
		name string

		// err is the error to classify.
		err error

		// want is the expected label.
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "missing field", err: &MissingFieldError{Name: "path"}, want: EMISSINGFIELD},
		{name: "URL", err: &URLError{Stage: "url"}, want: EURL},
		{name: "encoding", err: &EncodingError{Err: errors.New("x")}, want: EENCODE},
		{name: "decoding", err: &DecodingError{Type: "int", Err: errors.New("x")}, want: EDECODE},
		{name: "cast", err: &CastError{Payload: "array []"}, want: ECAST},
		{name: "canceled", err: &CanceledError{Cause: context.Canceled}, want: ECANCELED},
		{name: "no value", err: ErrStreamCompletedWithoutValue, want: ENOVALUE},
		{name: "timeout", err: context.DeadlineExceeded, want: errclass.ETIMEDOUT},
		{name: "unknown", err: errors.New("unknown error"), want: errclass.EGENERIC},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultErrClassifier.Classify(tt.err))
		})
	}
}
