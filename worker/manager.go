package worker

import (
	"os/exec"

	"github.com/monopole/poolshell"
)

// ManagerOptions configures a worker-backed poolshell.ProcessManager.
type ManagerOptions struct {
	// Spawn builds (but does not start) the *exec.Cmd for a worker
	// child -- typically cmd/worker, or any binary that calls
	// worker.Run against its own Registry.
	Spawn func() *exec.Cmd

	// OnReady, if non-nil, is called once the worker has announced
	// readiness.
	OnReady func(shell poolshell.Shell)
}

type manager struct{ opts ManagerOptions }

// NewManagerFactory returns a poolshell.ProcessManagerFactory whose
// shells run a worker child: ready as soon as the worker's READY
// signal arrives, torn down by asking for TERMINATE and waiting for
// TERMINATED -- the Go shape of JavaProcess.java's startup/shutdown
// handshake.
func NewManagerFactory(opts ManagerOptions) poolshell.ProcessManagerFactory {
	return poolshell.ProcessManagerFactoryFunc(func() poolshell.ProcessManager {
		return &manager{opts: opts}
	})
}

func (m *manager) StartProcess() (*exec.Cmd, error) { return m.opts.Spawn(), nil }

func (m *manager) StartsUpInstantly() bool { return false }

func (m *manager) IsStartedUp(line string, isStdout bool) bool {
	return isStdout && line == EncodeSignal(SignalReady)
}

func (m *manager) OnStartup(shell poolshell.Shell) {
	if m.opts.OnReady != nil {
		m.opts.OnReady(shell)
	}
}

func (m *manager) Terminate(shell poolshell.Shell) bool {
	_, err := shell.Execute(&terminateSubmission{})
	return err == nil
}

func (m *manager) OnTermination(int) {}

// terminateSubmission writes TerminateLine through the same
// EncodeSignal framing as every other line on the wire, and waits for
// the worker's TERMINATED signal.
type terminateSubmission struct{}

func (s *terminateSubmission) Instruction() string   { return EncodeSignal(TerminateLine) }
func (s *terminateSubmission) GeneratesOutput() bool { return true }

func (s *terminateSubmission) IsCompletedStdout(line string) bool {
	return line == EncodeSignal(SignalTerminated)
}
func (s *terminateSubmission) IsCompletedStderr(string) bool { return false }

func (s *terminateSubmission) Commands() []poolshell.Command      { return []poolshell.Command{s} }
func (s *terminateSubmission) TerminateProcessAfterwards() bool   { return true }
func (s *terminateSubmission) OnStartedProcessing()               {}
func (s *terminateSubmission) OnFinishedProcessing()               {}
func (s *terminateSubmission) IsCancelled() bool                   { return false }
