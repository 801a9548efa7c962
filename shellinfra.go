package poolshell

import (
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/monopole/poolshell/linepump"
)

// ptyProcessManager is an optional extension a ProcessManager may
// additionally implement to drive its child through a pseudo-terminal
// master file instead of three separate pipes, for children that
// refuse to behave without a controlling terminal. sentinelcmd's
// ptyManager implements this; it is used when its PTY option is set.
type ptyProcessManager interface {
	// StartPTY spawns the child with stdin/stdout/stderr all attached
	// to one pty slave, and returns the already-started command plus
	// the pty master file the shell reads and writes through. Because
	// a pty merges stdout and stderr into one stream, the shell treats
	// everything it reads from master as stdout and never calls
	// IsCompletedStderr.
	StartPTY() (*exec.Cmd, *os.File, error)
}

// shellInfra holds the plumbing a shell needs once its child is
// spawned: the live *exec.Cmd, its stdin, and the two line pumps
// reading stdout/stderr. It is grounded on the teacher's execInfra,
// generalized from sentinel-scanning to predicate-driven command
// completion (see sentinelcmd for a sentinel-based Command).
type shellInfra struct {
	owner *shellImpl

	cmd     *exec.Cmd
	stdin   io.WriteCloser
	pumpOut *linepump.Pump
	pumpErr *linepump.Pump
}

// start spawns the child via the shell's manager, wires up the three
// standard streams, and begins pumping stdout/stderr. The shell enters
// STARTING before the spawn is attempted, and moves on to READY at
// once if the manager starts up instantly.
func (sh *shellImpl) start() error {
	if !sh.casState(StateStarting, StateNew) {
		return wrapErr(ErrInvalidConfiguration, "shell %s: start called out of order", sh.id)
	}

	if ptm, ok := asPTYManager(sh.manager); ok {
		return sh.startPTY(ptm)
	}
	return sh.startPipes()
}

// asPTYManager looks for the ptyProcessManager extension on pm,
// unwrapping decorators (such as pooledProcessManager) that expose
// the client-supplied manager underneath via Unwrap, the same way
// errors.Unwrap chains look past wrapped errors.
func asPTYManager(pm ProcessManager) (ptyProcessManager, bool) {
	for {
		if ptm, ok := pm.(ptyProcessManager); ok {
			return ptm, true
		}
		u, ok := pm.(interface{ Unwrap() ProcessManager })
		if !ok {
			return nil, false
		}
		pm = u.Unwrap()
	}
}

// startPTY spawns the child already attached to a pty master/slave
// pair, so stdin and stdout share one *os.File and stderr is never
// separately observed.
func (sh *shellImpl) startPTY(ptm ptyProcessManager) error {
	cmd, master, err := ptm.StartPTY()
	if err != nil {
		return wrapErr(ErrProcessSpawnFailed, "shell %s: pty spawn: %v", sh.id, err)
	}

	infra := &shellInfra{
		owner:   sh,
		cmd:     cmd,
		stdin:   master,
		pumpOut: linepump.Start("pty", master, sh.pumpParams, sh.logger),
		pumpErr: linepump.Start("ptyErr(unused)", strings.NewReader(""), sh.pumpParams, sh.logger),
	}
	sh.infra = infra

	go sh.watchExit()

	if sh.manager.StartsUpInstantly() {
		sh.transitionToReady()
		return nil
	}
	go sh.watchStartup()
	return nil
}

func (sh *shellImpl) startPipes() error {
	cmd, err := sh.manager.StartProcess()
	if err != nil {
		return wrapErr(ErrProcessSpawnFailed, "shell %s: %v", sh.id, err)
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return wrapErr(ErrProcessSpawnFailed, "shell %s: stdin pipe: %v", sh.id, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return wrapErr(ErrProcessSpawnFailed, "shell %s: stdout pipe: %v", sh.id, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return wrapErr(ErrProcessSpawnFailed, "shell %s: stderr pipe: %v", sh.id, err)
	}

	if err := cmd.Start(); err != nil {
		return wrapErr(ErrProcessSpawnFailed, "shell %s: %v", sh.id, err)
	}

	infra := &shellInfra{
		owner:   sh,
		cmd:     cmd,
		stdin:   stdin,
		pumpOut: linepump.Start("stdOut", stdout, sh.pumpParams, sh.logger),
		pumpErr: linepump.Start("stdErr", stderr, sh.pumpParams, sh.logger),
	}
	sh.infra = infra

	go sh.watchExit()

	if sh.manager.StartsUpInstantly() {
		sh.transitionToReady()
		return nil
	}
	go sh.watchStartup()
	return nil
}

// watchStartup consumes pump lines while STARTING, looking for the
// manager's startup confirmation, then hands control to READY.
func (sh *shellImpl) watchStartup() {
	for {
		select {
		case line, ok := <-sh.infra.pumpOut.Lines:
			if !ok {
				return
			}
			if sh.manager.IsStartedUp(line, true) {
				sh.transitionToReady()
				return
			}
		case line, ok := <-sh.infra.pumpErr.Lines:
			if !ok {
				return
			}
			if sh.manager.IsStartedUp(line, false) {
				sh.transitionToReady()
				return
			}
		}
	}
}

func (sh *shellImpl) transitionToReady() {
	if !sh.casState(StateReady, StateStarting) {
		return
	}
	sh.manager.OnStartup(sh)
	sh.armIdleTimer()
}

// watchExit waits for both pumps to finish (so nothing is lost to a
// race between stream closure and process reaping, mirroring
// channeler/start.go's scanWg.Wait() before Cmd.Wait()), reaps the
// child, and moves the shell to TERMINATED.
func (sh *shellImpl) watchExit() {
	errOut := <-sh.infra.pumpOut.Done
	errErr := <-sh.infra.pumpErr.Done
	waitErr := sh.infra.cmd.Wait()

	exitCode := 0
	if waitErr != nil {
		if exitErr, ok := waitErr.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = -1
		}
	}

	sh.mu.Lock()
	sh.exitCode = exitCode
	if sh.idleTimer != nil {
		sh.idleTimer.Stop()
	}
	sh.mu.Unlock()

	sh.setState(StateTerminated)
	sh.logger.Printf("shell %s: terminated, exitCode=%d, pumpOutErr=%v, pumpErrErr=%v",
		sh.id, exitCode, errOut, errErr)

	sh.callOnTermination(exitCode)
	close(sh.terminated)
}

func (sh *shellImpl) callOnTermination(exitCode int) {
	defer func() {
		if r := recover(); r != nil {
			sh.logger.Printf("shell %s: panic in OnTermination: %v", sh.id, r)
		}
	}()
	sh.manager.OnTermination(exitCode)
}

// forceKill is the last resort invoked when the manager's Terminate
// reports it cannot shut the child down on its own.
func (infra *shellInfra) forceKill() {
	infra.owner.logger.Printf("shell %s: force-killing child", infra.owner.id)
	if infra.cmd.Process != nil {
		_ = infra.cmd.Process.Kill()
	}
}

// runCommand writes one command's instruction and waits for a
// completion predicate to fire on either stream, forwarding every
// intervening line to sub's commander-like hooks via cmd itself
// (cmd.IsCompletedStdout/Stderr double as the per-line sink by virtue
// of being called for every line, not just the last).
func (sh *shellImpl) runCommand(cmd Command, sub Submission) error {
	infra := sh.infra
	instruction := cmd.Instruction()
	sh.logger.Printf("shell %s: writing instruction %q", sh.id, linepump.Abbrev(instruction))
	if _, err := io.WriteString(infra.stdin, instruction+"\n"); err != nil {
		return wrapErr(ErrStreamIO, "shell %s: writing instruction: %v", sh.id, err)
	}
	if !cmd.GeneratesOutput() {
		return nil
	}

	linesOut := infra.pumpOut.Lines
	linesErr := infra.pumpErr.Lines
	doneOut := infra.pumpOut.Done
	doneErr := infra.pumpErr.Done
	cancelPoll := time.NewTicker(50 * time.Millisecond)
	defer cancelPoll.Stop()

	for {
		select {
		case line, ok := <-linesOut:
			if !ok {
				return wrapErr(ErrProcessExitedDuringSubmission,
					"shell %s: stdout closed awaiting completion of %q", sh.id, instruction)
			}
			if cmd.IsCompletedStdout(line) {
				return nil
			}
		case line, ok := <-linesErr:
			if !ok {
				return wrapErr(ErrProcessExitedDuringSubmission,
					"shell %s: stderr closed awaiting completion of %q", sh.id, instruction)
			}
			if cmd.IsCompletedStderr(line) {
				return nil
			}
		case <-cancelPoll.C:
			if sub.IsCancelled() {
				return ErrCancelled
			}
		case err := <-doneOut:
			if err != nil {
				return wrapErr(ErrStreamIO, "shell %s: stdout pump ended: %v", sh.id, err)
			}
			// Clean EOF: keep draining buffered lines; the closed
			// Lines channel then reports the exit.
			doneOut = nil
		case err := <-doneErr:
			if err != nil {
				return wrapErr(ErrStreamIO, "shell %s: stderr pump ended: %v", sh.id, err)
			}
			doneErr = nil
		}
	}
}
