package sentinelcmd

import (
	"os"
	"os/exec"

	"github.com/creack/pty"
	"github.com/monopole/poolshell"
)

// Options configures a Manager. Spawn is required; everything else
// has a sensible default.
type Options struct {
	// Spawn builds (but does not start) the *exec.Cmd for one shell's
	// child. Called once per shell.
	Spawn func() *exec.Cmd

	// PTY, when true, runs the child attached to a pseudo-terminal
	// instead of three plain pipes (github.com/creack/pty), for
	// children that refuse to behave without a controlling terminal.
	// Under PTY, stdout and stderr are the same stream.
	PTY bool

	// StartsUpInstantly reports whether the child is ready as soon as
	// it's spawned, with no startup banner to wait for.
	StartsUpInstantly bool

	// IsStartedUp recognizes the child's startup banner line while the
	// shell is STARTING. Ignored if StartsUpInstantly is true. Nil
	// means "never ready", which will hang the shell forever -- callers
	// must supply one unless StartsUpInstantly is true.
	IsStartedUp func(line string, isStdout bool) bool

	// Terminate, if non-nil, is run to request an orderly shutdown
	// (typically Execute-ing a quit command on the shell); returning
	// true tells the pool to wait for the child to exit on its own,
	// false forces an immediate kill.
	Terminate func(shell poolshell.Shell) bool

	// OnReady, if non-nil, is called once the shell reaches READY.
	OnReady func(shell poolshell.Shell)
}

// manager is the sentinelcmd poolshell.ProcessManager used when
// opts.PTY is false. One is created per shell by NewManagerFactory.
type manager struct{ opts Options }

// ptyManager is used instead of manager when opts.PTY is true. It
// adds a StartPTY method so poolshell's shell, which probes for that
// method via an unexported interface, spawns the child behind a
// pseudo-terminal instead of three plain pipes. Keeping this as a
// distinct type (rather than a conditional method on manager) is what
// makes the probe mean anything: a poolshell.ProcessManager built with
// opts.PTY == false never has a StartPTY method to find.
type ptyManager struct{ *manager }

// NewManagerFactory returns a poolshell.ProcessManagerFactory that
// hands every new shell a fresh manager built from opts. Adapted from
// the teacher's scripter.NewShell/execinfra.go startup dance, now
// expressed through poolshell.ProcessManager.IsStartedUp instead of a
// blocking wait on the first line.
func NewManagerFactory(opts Options) poolshell.ProcessManagerFactory {
	return poolshell.ProcessManagerFactoryFunc(func() poolshell.ProcessManager {
		base := &manager{opts: opts}
		if opts.PTY {
			return &ptyManager{manager: base}
		}
		return base
	})
}

func (m *manager) StartProcess() (*exec.Cmd, error) {
	return m.opts.Spawn(), nil
}

// StartPTY implements the optional ptyProcessManager extension
// poolshell looks for; only ptyManager has it.
func (m *ptyManager) StartPTY() (*exec.Cmd, *os.File, error) {
	cmd := m.opts.Spawn()
	master, err := pty.Start(cmd)
	if err != nil {
		return nil, nil, err
	}
	return cmd, master, nil
}

func (m *manager) StartsUpInstantly() bool { return m.opts.StartsUpInstantly }

func (m *manager) IsStartedUp(line string, isStdout bool) bool {
	if m.opts.IsStartedUp == nil {
		return false
	}
	return m.opts.IsStartedUp(line, isStdout)
}

func (m *manager) OnStartup(shell poolshell.Shell) {
	if m.opts.OnReady != nil {
		m.opts.OnReady(shell)
	}
}

func (m *manager) Terminate(shell poolshell.Shell) bool {
	if m.opts.Terminate == nil {
		return false
	}
	return m.opts.Terminate(shell)
}

func (m *manager) OnTermination(int) {}

// QuitTerminator builds an Options.Terminate function that issues
// instruction (e.g. "quit") as a fire-and-forget command and reports
// success, asking the pool to wait for the child to exit on its own
// rather than force-killing it.
func QuitTerminator(instruction string) func(poolshell.Shell) bool {
	return func(shell poolshell.Shell) bool {
		_, err := shell.Execute(&Submission{
			list:      []poolshell.Command{&fireCommand{instruction: instruction}},
			terminate: true,
		})
		return err == nil
	}
}
