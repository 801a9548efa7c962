package poolshell

import "os/exec"

// Command is a single instruction written to a shell's stdin plus the
// predicates that recognize the end of its response.
type Command interface {
	// Instruction is the line written to the child's stdin. It must
	// not contain an embedded newline; the shell appends one.
	Instruction() string

	// IsCompletedStdout is called for every stdout line produced in
	// response to Instruction. Returning true marks the command
	// complete successfully.
	IsCompletedStdout(line string) bool

	// IsCompletedStderr is called for every stderr line produced in
	// response to Instruction. Returning true marks the command
	// complete (clients may use this as an error signal).
	IsCompletedStderr(line string) bool

	// GeneratesOutput reports whether the shell should wait for a
	// completion predicate at all. If false, the command is complete
	// as soon as the instruction is written.
	GeneratesOutput() bool
}

// Submission is an ordered, non-empty sequence of Commands the client
// asks the pool to run on some shell.
type Submission interface {
	// Commands returns the ordered commands to execute.
	Commands() []Command

	// TerminateProcessAfterwards reports whether the shell should be
	// torn down once the submission finishes.
	TerminateProcessAfterwards() bool

	// OnStartedProcessing is invoked once the shell commits to
	// running this submission.
	OnStartedProcessing()

	// OnFinishedProcessing is invoked exactly once, after the last
	// command completes (or the submission is abandoned due to an
	// error).
	OnFinishedProcessing()

	// IsCancelled is polled between commands (and, best-effort,
	// between lines) to decide whether to abort early.
	IsCancelled() bool
}

// ProcessManager is the client-supplied collaborator for one shell's
// lifecycle: how to spawn the child, how to recognize it has started
// up, and how to shut it down.
type ProcessManager interface {
	// StartProcess builds the child's command and returns it without
	// starting it. The returned command must have redirectable
	// Stdin/Stdout/Stderr; the shell wires up their pipes and starts
	// the process itself.
	StartProcess() (*exec.Cmd, error)

	// StartsUpInstantly reports whether the shell may move straight
	// to READY after spawn without waiting for an output line.
	StartsUpInstantly() bool

	// IsStartedUp is consulted per pump line while the shell is
	// STARTING. isStdout is true for stdout lines, false for stderr.
	IsStartedUp(line string, isStdout bool) bool

	// OnStartup is invoked once the shell reaches READY. It may call
	// shell.Execute to run priming commands synchronously.
	OnStartup(shell Shell)

	// Terminate attempts an orderly shutdown (typically writing an
	// exit command) and reports whether it believes that attempt
	// will succeed. On false, the shell force-kills the child.
	Terminate(shell Shell) bool

	// OnTermination is invoked exactly once, after the child has been
	// reaped, with its exit code.
	OnTermination(exitCode int)
}

// ProcessManagerFactory produces a fresh ProcessManager for every new
// shell the pool creates.
type ProcessManagerFactory interface {
	NewProcessManager() ProcessManager
}

// ProcessManagerFactoryFunc adapts a plain function to a
// ProcessManagerFactory.
type ProcessManagerFactoryFunc func() ProcessManager

// NewProcessManager implements ProcessManagerFactory.
func (f ProcessManagerFactoryFunc) NewProcessManager() ProcessManager { return f() }
