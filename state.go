package poolshell

// ShellState is a shell's position in the lifecycle described in
// §4.2: NEW -> STARTING -> READY -> BUSY -> {READY|TERMINATING} ->
// TERMINATED. All transitions except NEW->STARTING are driven by pump
// events or by the pool, never directly by a client.
type ShellState int

const (
	// StateNew is the state of a freshly constructed shell with no
	// child yet.
	StateNew ShellState = iota
	// StateStarting is set once the child has been spawned and the
	// shell is awaiting startup confirmation.
	StateStarting
	// StateReady is set when the shell is idle and may accept a
	// submission.
	StateReady
	// StateBusy is set while a submission executes.
	StateBusy
	// StateTerminating is set once orderly termination has been
	// requested or a force-kill is in progress.
	StateTerminating
	// StateTerminated is set once the child has been reaped. The
	// shell is removed from the pool's indices in this state.
	StateTerminated
)

func (s ShellState) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StateStarting:
		return "STARTING"
	case StateReady:
		return "READY"
	case StateBusy:
		return "BUSY"
	case StateTerminating:
		return "TERMINATING"
	case StateTerminated:
		return "TERMINATED"
	default:
		return "UNKNOWN"
	}
}
