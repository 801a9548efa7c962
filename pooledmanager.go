package poolshell

// pooledProcessManager decorates a client-supplied ProcessManager so
// the pool learns about a shell reaching READY or TERMINATED without
// requiring the client to cooperate. Grounded on PSPPool's
// PooledProcessManager, which does the same thing against
// activeShells/the startup latch before delegating to the wrapped
// manager.
type pooledProcessManager struct {
	ProcessManager

	onReady func(Shell)
	onDead  func(Shell, int)

	// shell is filled in by Pool.newShellAndManager once the shellImpl it
	// will be wrapping has been constructed -- the manager must exist
	// before the shell does, so this can't be set at construction
	// time.
	shell Shell
}

func (m *pooledProcessManager) OnStartup(shell Shell) {
	m.onReady(shell)
	m.ProcessManager.OnStartup(shell)
}

func (m *pooledProcessManager) OnTermination(exitCode int) {
	m.onDead(m.shell, exitCode)
	m.ProcessManager.OnTermination(exitCode)
}

// Unwrap exposes the client-supplied manager underneath, so code that
// probes for optional manager extensions (ptyProcessManager) can see
// past this decorator the way errors.Unwrap chains see past wrapping.
func (m *pooledProcessManager) Unwrap() ProcessManager { return m.ProcessManager }
