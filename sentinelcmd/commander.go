package sentinelcmd

import (
	"os"

	"github.com/monopole/poolshell"
)

// DiscardCommand builds a sentinel-guarded command pair that throws
// away everything the child prints in response.
func DiscardCommand(instruction string, sentinel Sentinel) []poolshell.Command {
	return pair(instruction, sentinel, DevNull, DevNull)
}

// PassThruCommand builds a sentinel-guarded command pair that forwards
// the child's response straight to this process's own stdout/stderr.
func PassThruCommand(instruction string, sentinel Sentinel) []poolshell.Command {
	return pair(instruction, sentinel, os.Stdout, os.Stderr)
}

// LabellingCommand builds a sentinel-guarded command pair that prints
// the child's response to this process's own stdout, each line
// prefixed to say which stream it came from.
func LabellingCommand(instruction string, sentinel Sentinel) []poolshell.Command {
	return pair(instruction, sentinel, &labellingPrinter{"out"}, &labellingPrinter{"err"})
}

// RecallCommand builds a sentinel-guarded command pair that records
// every line of the child's response instead of discarding or
// forwarding it. Read Out/Err only after the submission's future
// resolves.
type RecallCommand struct {
	Out, Err LineAbsorber
	commands []poolshell.Command
}

// NewRecallCommand constructs a RecallCommand wired to instruction.
func NewRecallCommand(instruction string, sentinel Sentinel) *RecallCommand {
	rc := &RecallCommand{}
	rc.commands = pair(instruction, sentinel, &rc.Out, &rc.Err)
	return rc
}

// Commands returns the two physical poolshell.Command values backing
// this RecallCommand.
func (rc *RecallCommand) Commands() []poolshell.Command { return rc.commands }
