package sentinelcmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFireCommandNeverWaits(t *testing.T) {
	c := &fireCommand{instruction: "echo hi"}
	assert.False(t, c.GeneratesOutput(), "fireCommand must never generate output; it is fire-and-forget")
	assert.Equal(t, "echo hi", c.Instruction())
}

func TestProbeCommandRecognizesSentinel(t *testing.T) {
	var out, errAbs LineAbsorber
	sentinel := Sentinel{C: "echo marker", V: "the-marker-value"}
	p := &probeCommand{sentinel: sentinel, out: &out, err: &errAbs}

	assert.False(t, p.IsCompletedStdout("first line of real output"))
	assert.False(t, p.IsCompletedStdout("second line of real output"))
	assert.True(t, p.IsCompletedStdout(sentinel.V), "failed to recognize sentinel value")

	want := []string{"first line of real output", "second line of real output"}
	assert.Equal(t, want, out.Lines())
}

func TestPairProducesTwoPhysicalCommands(t *testing.T) {
	cmds := DiscardCommand("print bus AE000F", Sentinel{C: "echo sentinel-for-print", V: "sentinel-for-print"})
	require.Len(t, cmds, 2)
	assert.Equal(t, "print bus AE000F", cmds[0].Instruction())
	assert.False(t, cmds[0].GeneratesOutput(), "first command must be fire-and-forget")
	assert.Equal(t, "echo sentinel-for-print", cmds[1].Instruction())
	assert.True(t, cmds[1].GeneratesOutput(), "second command must wait for the sentinel")
}
