package poolshell

// Shell is the pool-owned wrapper around one live child process. A
// shell owns its child's stdin/stdout/stderr and the line pumps that
// read the latter two; at most one submission executes against it at
// any instant (invariant I3).
type Shell interface {
	// ID returns the shell's stable opaque identity.
	ID() string

	// State returns the shell's current lifecycle state.
	State() ShellState

	// Execute attempts to run sub on this shell. accepted is false
	// without any side effect if the shell was not READY or was
	// already executing another submission -- callers should try a
	// different shell. A true accepted with a non-nil err means the
	// submission started but failed partway through; the shell has
	// already begun terminating in that case.
	Execute(sub Submission) (accepted bool, err error)
}
