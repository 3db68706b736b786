// SPDX-License-Identifier: GPL-3.0-or-later

package apiflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuncAdapter(t *testing.T) {
	var gotCtx context.Context
	adapter := FuncAdapter[int, string](func(ctx context.Context, input int) (string, error) {
		gotCtx = ctx
		return "result", nil
	})

	ctx := context.Background()
	output, err := adapter.Call(ctx, 42)

	require.NoError(t, err)
	assert.Equal(t, ctx, gotCtx)
	assert.Equal(t, "result", output)
}
