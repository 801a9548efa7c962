package worker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRunsRegisteredOperation(t *testing.T) {
	r := NewRegistry()
	RegisterFunc(r, "double", func(n int) (int, error) { return n * 2, nil })

	call, err := NewCall[int, int]("double", 21)
	require.NoError(t, err)

	var req Request
	require.NoError(t, DecodeFrame(call.requestLine, &req))

	resp := r.Run(req)
	require.Empty(t, resp.Err)

	line, err := EncodeFrame(resp)
	require.NoError(t, err)
	call.responseLine = line

	got, err := call.Result()
	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestRegistryReportsUnknownOperation(t *testing.T) {
	r := NewRegistry()
	resp := r.Run(Request{Op: "nonexistent"})
	assert.NotEmpty(t, resp.Err, "expected an error for an unregistered operation")
}
