package worker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	req := Request{Op: "echo", Arg: []byte("hello")}
	line, err := EncodeFrame(req)
	require.NoError(t, err)

	var got Request
	require.NoError(t, DecodeFrame(line, &got))
	assert.Equal(t, req.Op, got.Op)
	assert.Equal(t, req.Arg, got.Arg)
}

func TestSignalRoundTrip(t *testing.T) {
	line := EncodeSignal(SignalReady)
	got, err := DecodeSignal(line)
	require.NoError(t, err)
	assert.Equal(t, SignalReady, got)
}

func TestDecodeFrameRejectsGarbage(t *testing.T) {
	var req Request
	assert.Error(t, DecodeFrame("not valid base64!!", &req))
}
