// SPDX-License-Identifier: GPL-3.0-or-later

package apiflow

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompose2(t *testing.T) {
	t.Run("success path", func(t *testing.T) {
		op1 := FuncAdapter[int, string](func(ctx context.Context, n int) (string, error) {
			return strconv.Itoa(n), nil
		})
		op2 := FuncAdapter[string, int](func(ctx context.Context, s string) (int, error) {
			return len(s), nil
		})

		composed := Compose2(Func[int, string](op1), Func[string, int](op2))
		result, err := composed.Call(context.Background(), 12345)

		require.NoError(t, err)
		assert.Equal(t, 5, result)
	})

	t.Run("first operation fails", func(t *testing.T) {
		wantErr := errors.New("op1 failed")
		op1 := FuncAdapter[int, string](func(ctx context.Context, n int) (string, error) {
			return "", wantErr
		})
		op2 := FuncAdapter[string, int](func(ctx context.Context, s string) (int, error) {
			t.Fatal("op2 should not be called")
			return 0, nil
		})

		composed := Compose2(Func[int, string](op1), Func[string, int](op2))
		_, err := composed.Call(context.Background(), 42)

		require.ErrorIs(t, err, wantErr)
	})

	t.Run("second operation fails", func(t *testing.T) {
		wantErr := errors.New("op2 failed")
		op1 := FuncAdapter[int, string](func(ctx context.Context, n int) (string, error) {
			return "hello", nil
		})
		op2 := FuncAdapter[string, int](func(ctx context.Context, s string) (int, error) {
			return 0, wantErr
		})

		composed := Compose2(Func[int, string](op1), Func[string, int](op2))
		_, err := composed.Call(context.Background(), 42)

		require.ErrorIs(t, err, wantErr)
	})
}

// The stages run in order, each receiving the previous output.
func TestComposeN(t *testing.T) {
	inc := Func[int, int](FuncAdapter[int, int](func(ctx context.Context, n int) (int, error) { return n + 1, nil }))
	double := Func[int, int](FuncAdapter[int, int](func(ctx context.Context, n int) (int, error) { return n * 2, nil }))

	tests := []struct {
		// name describes what this test case verifies.
		name string

		// fn is the composed pipeline.
		fn Func[int, int]

		// want is the expected output for input 1.
		want int
	}{
		{name: "Compose3", fn: Compose3(inc, double, inc), want: 5},
		{name: "Compose4", fn: Compose4(inc, double, inc, double), want: 10},
		{name: "Compose5", fn: Compose5(inc, inc, inc, inc, double), want: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fn.Call(context.Background(), 1)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
