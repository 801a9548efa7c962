package sentinelcmd

import (
	"io"

	"github.com/monopole/poolshell"
)

// fireCommand writes instruction and moves on immediately, never
// waiting for a reply. It is the first half of a sentinel-guarded
// command pair: the shell must not block waiting for output whose end
// it cannot recognize on its own.
type fireCommand struct{ instruction string }

func (c *fireCommand) Instruction() string           { return c.instruction }
func (c *fireCommand) GeneratesOutput() bool         { return false }
func (c *fireCommand) IsCompletedStdout(string) bool { return false }
func (c *fireCommand) IsCompletedStderr(string) bool { return false }

// probeCommand writes the sentinel's own command right behind the
// real one and absorbs every line until it sees the sentinel's known
// value, forwarding everything else to out/err. By the time the
// sentinel value shows up, the real command's output -- written to
// the same serial stdin -- is guaranteed to have already arrived.
type probeCommand struct {
	sentinel Sentinel
	out, err io.Writer
}

func (c *probeCommand) Instruction() string   { return c.sentinel.C }
func (c *probeCommand) GeneratesOutput() bool { return true }

func (c *probeCommand) IsCompletedStdout(line string) bool {
	if line == c.sentinel.V {
		return true
	}
	_, _ = c.out.Write([]byte(line))
	return false
}

func (c *probeCommand) IsCompletedStderr(line string) bool {
	if line == c.sentinel.V {
		return true
	}
	_, _ = c.err.Write([]byte(line))
	return false
}

// pair builds the two physical poolshell.Command values that
// together make up one logical sentinel-guarded command.
func pair(instruction string, sentinel Sentinel, out, err io.Writer) []poolshell.Command {
	return []poolshell.Command{
		&fireCommand{instruction: instruction},
		&probeCommand{sentinel: sentinel, out: out, err: err},
	}
}
