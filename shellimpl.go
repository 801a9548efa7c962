package poolshell

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/monopole/poolshell/linepump"
	"golang.org/x/sync/semaphore"
)

// shellImpl is the concrete Shell. Construction and wiring are split
// out into shellinfra.go, mirroring the teacher's execInfra /
// execState split: this file holds the state machine and the
// Execute algorithm, shellinfra.go holds the process-plumbing
// mechanics both states share.
type shellImpl struct {
	id         string
	manager    ProcessManager
	keepAlive  time.Duration
	logger     Logger
	pumpParams linepump.Params

	mu    sync.Mutex
	state ShellState

	infra *shellInfra

	idleTimer *time.Timer

	// execSem is the shell's exclusive, non-blocking execution lock: a
	// weighted semaphore of size one, acquired with TryAcquire so a
	// busy shell never blocks a caller (the source's
	// semaphore-plus-shared-flag rendezvous, expressed directly).
	execSem *semaphore.Weighted

	terminated chan struct{}
	exitCode   int
}

// newShell constructs a shell in the NEW state. Call start to spawn
// its child.
func newShell(manager ProcessManager, keepAlive time.Duration, logger Logger, pumpParams linepump.Params) *shellImpl {
	if logger == nil {
		logger = noopLogger{}
	}
	return &shellImpl{
		id:         uuid.NewString(),
		manager:    manager,
		keepAlive:  keepAlive,
		logger:     logger,
		pumpParams: pumpParams,
		state:      StateNew,
		execSem:    semaphore.NewWeighted(1),
		terminated: make(chan struct{}),
	}
}

func (sh *shellImpl) ID() string { return sh.id }

func (sh *shellImpl) State() ShellState {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return sh.state
}

func (sh *shellImpl) setState(s ShellState) {
	sh.mu.Lock()
	prev := sh.state
	sh.state = s
	sh.mu.Unlock()
	sh.logger.Printf("shell %s: %s -> %s", sh.id, prev, s)
}

// casState transitions to next only if the current state is one of
// from; it reports whether the transition happened.
func (sh *shellImpl) casState(next ShellState, from ...ShellState) bool {
	sh.mu.Lock()
	ok := false
	for _, f := range from {
		if sh.state == f {
			ok = true
			break
		}
	}
	prev := sh.state
	if ok {
		sh.state = next
	}
	sh.mu.Unlock()
	if !ok {
		return false
	}
	sh.logger.Printf("shell %s: %s -> %s", sh.id, prev, next)
	return true
}

// tryAcquire is the non-blocking exclusive-lock half of §4.2's
// execute algorithm, split out so the pool's dispatcher can treat a
// successful acquire as the acceptance signal and hand the rest of
// the submission off to a background goroutine (see Pool.tryAssign),
// rather than blocking the dispatcher for the submission's whole
// duration the way a single synchronous Execute would. The source's
// semaphore-plus-shared-flag rendezvous (§9) is replaced by a
// non-blocking TryAcquire on execSem followed by a READY->BUSY
// casState; acceptance is simply this function's return value.
func (sh *shellImpl) tryAcquire() bool {
	if !sh.execSem.TryAcquire(1) {
		return false
	}
	if !sh.casState(StateBusy, StateReady) {
		sh.execSem.Release(1)
		return false
	}
	return true
}

// Execute implements the algorithm of §4.2 as a single synchronous
// call. See shell.go for the public contract.
func (sh *shellImpl) Execute(sub Submission) (accepted bool, err error) {
	if !sh.tryAcquire() {
		return false, nil
	}
	return true, sh.runAccepted(sub)
}

// runAccepted runs sub's commands to completion against a shell that
// has already been acquired via tryAcquire, and releases the
// exclusive lock before returning.
func (sh *shellImpl) runAccepted(sub Submission) (err error) {
	started := false

	defer sh.execSem.Release(1)
	defer func() {
		if r := recover(); r != nil {
			err = wrapErr(ErrManagerCallbackFailed, "panic while executing submission: %v", r)
		}
		if started {
			sub.OnFinishedProcessing()
		}
		if err != nil || sub.TerminateProcessAfterwards() {
			sh.beginTermination()
		} else {
			sh.casState(StateReady, StateBusy)
			sh.armIdleTimer()
		}
	}()

	sub.OnStartedProcessing()
	started = true
	for _, cmd := range sub.Commands() {
		if sub.IsCancelled() {
			err = ErrCancelled
			break
		}
		if runErr := sh.runCommand(cmd, sub); runErr != nil {
			err = runErr
			break
		}
	}
	return err
}

// armIdleTimer (re)arms the per-shell idle timer on entry to READY.
// keepAlive == 0 means shells live forever (§8 boundary behavior).
func (sh *shellImpl) armIdleTimer() {
	if sh.keepAlive <= 0 {
		return
	}
	sh.mu.Lock()
	if sh.idleTimer != nil {
		sh.idleTimer.Stop()
	}
	sh.idleTimer = time.AfterFunc(sh.keepAlive, sh.onIdleTimeout)
	sh.mu.Unlock()
}

func (sh *shellImpl) onIdleTimeout() {
	if !sh.execSem.TryAcquire(1) {
		// A submission started between the timer firing and this
		// callback running; let it proceed and re-arm on completion.
		return
	}
	defer sh.execSem.Release(1)
	if !sh.casState(StateTerminating, StateReady) {
		return
	}
	sh.logger.Printf("shell %s: idle timeout elapsed, terminating", sh.id)
	sh.doTerminate()
}

// beginTermination moves a BUSY or READY shell into TERMINATING and
// asks the manager to shut the child down in an orderly fashion,
// force-killing it if the manager doesn't believe that will work.
// Pool.Shutdown reaches READY shells this way; a failed or
// terminate-marked submission reaches it from BUSY via runAccepted's
// defer.
func (sh *shellImpl) beginTermination() {
	if !sh.casState(StateTerminating, StateBusy, StateReady) {
		return
	}
	sh.doTerminate()
}

func (sh *shellImpl) doTerminate() {
	ok := sh.callTerminate()
	if !ok {
		sh.infra.forceKill()
	}
	// Reaping (TERMINATING -> TERMINATED) happens in the exit
	// watcher goroutine started by start(), once the process and
	// both pumps have finished.
}

// callTerminate hands the manager a view of the shell that writes its
// termination command straight to the child (terminationShell) rather
// than through Execute's acquire-and-dispatch gate: by the time
// doTerminate runs the shell is already exclusively owned by the
// termination path (either the caller still holds execSem, or the
// state has already left READY/BUSY), so Execute's normal acceptance
// check would always -- and wrongly -- report the command as
// rejected.
func (sh *shellImpl) callTerminate() (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return sh.manager.Terminate(terminationShell{sh: sh})
}

// terminationShell is the Shell view passed to ProcessManager.Terminate.
// Its Execute runs commands directly against the shell's infra, the
// way the teacher's infraStop writes the stop instruction straight to
// stdin instead of going through a Commander.
type terminationShell struct {
	sh *shellImpl
}

func (t terminationShell) ID() string        { return t.sh.ID() }
func (t terminationShell) State() ShellState { return t.sh.State() }

func (t terminationShell) Execute(sub Submission) (accepted bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = wrapErr(ErrManagerCallbackFailed, "panic while executing termination command: %v", r)
		}
		sub.OnFinishedProcessing()
	}()
	sub.OnStartedProcessing()
	for _, cmd := range sub.Commands() {
		if runErr := t.sh.runCommand(cmd, sub); runErr != nil {
			return true, runErr
		}
	}
	return true, nil
}

// Terminated returns a channel that is closed once the shell reaches
// TERMINATED.
func (sh *shellImpl) Terminated() <-chan struct{} { return sh.terminated }

// ExitCode is valid only after Terminated() has fired.
func (sh *shellImpl) ExitCode() int {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return sh.exitCode
}
