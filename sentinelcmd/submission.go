package sentinelcmd

import "github.com/monopole/poolshell"

// Submission is a minimal poolshell.Submission built from one or more
// sentinel-guarded command pairs (see DiscardCommand, PassThruCommand,
// LabellingCommand, NewRecallCommand) or any hand-built
// poolshell.Command list.
type Submission struct {
	list      []poolshell.Command
	terminate bool
}

// NewSubmission flattens one or more command groups -- typically the
// return value of DiscardCommand/PassThruCommand/LabellingCommand, or
// a RecallCommand's Commands() -- into a single Submission.
// terminateAfter marks the shell for teardown once the submission
// finishes (the sentinelcmd analogue of the teacher's "quit" command).
func NewSubmission(terminateAfter bool, groups ...[]poolshell.Command) *Submission {
	var list []poolshell.Command
	for _, g := range groups {
		list = append(list, g...)
	}
	return &Submission{list: list, terminate: terminateAfter}
}

func (s *Submission) Commands() []poolshell.Command    { return s.list }
func (s *Submission) TerminateProcessAfterwards() bool { return s.terminate }
func (s *Submission) OnStartedProcessing()             {}
func (s *Submission) OnFinishedProcessing()            {}
func (s *Submission) IsCancelled() bool                { return false }
