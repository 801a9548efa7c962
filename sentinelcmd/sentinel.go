// Package sentinelcmd is a concrete poolshell.ProcessManager and
// poolshell.Command built on the "sentinel command" idea the teacher
// package centered on: after a real command is written to a shell's
// stdin, a second, cheap, deterministic command is written right
// behind it. When a line equal to that second command's known output
// arrives, everything the first command produced has necessarily
// already been flushed ahead of it, because the child reads and
// answers its stdin one line at a time.
//
// poolshell's core stays ignorant of any child's protocol; sentinelcmd
// is one opinionated way to bolt completion detection onto a child
// that has no such concept of its own.
package sentinelcmd

import (
	"fmt"
	"log"
)

// Sentinel configures probeCommand, the second of the two physical
// commands pair builds for every sentinel-guarded command: C is the
// instruction probeCommand fires right behind the real one, and V is
// the line probeCommand.IsCompletedStdout/IsCompletedStderr waits to
// see before declaring the pair done. Examples:
//
//	C: echo pink elephants dance
//	V: pink elephants dance
//
//	C: version
//	V: v1.2.3
type Sentinel struct {
	// C is a command that should do very little, do it quickly, and
	// have deterministic, newline terminated output.
	C string

	// V is the line probeCommand compares every line against. The
	// match is exact against one whole line -- V "foo" matches a line
	// containing only "foo", never a line "foo bar" -- since a loose
	// match risks stopping on real output that merely contains V.
	V string
}

const (
	// sentinelValueLenMin rejects sentinel values short enough to
	// plausibly appear as a whole line of a real command's own output,
	// which would make probeCommand stop early and attribute trailing
	// real output to the next command in the submission.
	sentinelValueLenMin = 6
	// sentinelValueLenRecommendedMin triggers a nagging message.
	sentinelValueLenRecommendedMin = 12
	// enableSentinelNagging turns on sentinel nagging.
	enableSentinelNagging = false
)

// Validate returns an error if there's a problem with the Sentinel.
// This validation matters: pair's probeCommand blocks on stdout/stderr
// until it sees V, so an empty or ambiguous value leaves runCommand
// waiting on a line that will never arrive.
func (s Sentinel) Validate() error {
	if s.C == "" {
		return fmt.Errorf("must specify a sentinel command")
	}
	if len(s.V) < sentinelValueLenMin {
		return fmt.Errorf(
			"sentinel value %q too short at len=%d; must be >= %d chars long",
			s.V, len(s.V), sentinelValueLenMin)
	}
	if //goland:noinspection GoBoolExpressions
	enableSentinelNagging && len(s.V) < sentinelValueLenRecommendedMin {
		log.Printf(
			"sentinel value %q very short at len == %d; recommend len >= %d",
			s.V, len(s.V), sentinelValueLenRecommendedMin)
	}
	return nil
}
