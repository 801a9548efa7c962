package poolshell

import (
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monopole/poolshell/linepump"
)

// fireAndForget is a command that writes an instruction and never
// waits for a response, the same shape sentinelcmd.fireCommand uses
// for the real half of a sentinel-guarded pair.
type fireAndForget struct{ instruction string }

func (c *fireAndForget) Instruction() string           { return c.instruction }
func (c *fireAndForget) GeneratesOutput() bool         { return false }
func (c *fireAndForget) IsCompletedStdout(string) bool { return false }
func (c *fireAndForget) IsCompletedStderr(string) bool { return false }

// echoProbe writes "echo <want>" and completes on the first stdout
// line that equals want.
type echoProbe struct {
	want string
	got  string
}

func (c *echoProbe) Instruction() string   { return "echo " + c.want }
func (c *echoProbe) GeneratesOutput() bool { return true }
func (c *echoProbe) IsCompletedStdout(line string) bool {
	c.got = line
	return line == c.want
}
func (c *echoProbe) IsCompletedStderr(string) bool { return false }

type fakeSubmission struct {
	cmds      []Command
	terminate bool
	started   bool
	finished  bool
}

func (s *fakeSubmission) Commands() []Command              { return s.cmds }
func (s *fakeSubmission) TerminateProcessAfterwards() bool { return s.terminate }
func (s *fakeSubmission) OnStartedProcessing()              { s.started = true }
func (s *fakeSubmission) OnFinishedProcessing()             { s.finished = true }
func (s *fakeSubmission) IsCancelled() bool                 { return false }

// fakeManager drives a plain /bin/sh with no startup banner, avoiding
// any dependency on sentinelcmd from within the package's own
// whitebox tests.
type fakeManager struct{}

func (fakeManager) StartProcess() (*exec.Cmd, error) { return exec.Command("/bin/sh"), nil }
func (fakeManager) StartsUpInstantly() bool           { return true }
func (fakeManager) IsStartedUp(string, bool) bool     { return false }
func (fakeManager) OnStartup(Shell)                   {}
func (fakeManager) Terminate(sh Shell) bool {
	_, _ = sh.Execute(&fakeSubmission{
		cmds:      []Command{&fireAndForget{instruction: "exit"}},
		terminate: true,
	})
	return true
}
func (fakeManager) OnTermination(int) {}

// unresponsiveManager models a manager whose graceful termination
// command the child doesn't understand: it sends "quit" (not a /bin/sh
// builtin, so the child just logs an error and keeps running) and
// always reports failure, so doTerminate has no choice but to
// force-kill.
type unresponsiveManager struct{}

func (unresponsiveManager) StartProcess() (*exec.Cmd, error) { return exec.Command("/bin/sh"), nil }
func (unresponsiveManager) StartsUpInstantly() bool           { return true }
func (unresponsiveManager) IsStartedUp(string, bool) bool     { return false }
func (unresponsiveManager) OnStartup(Shell)                   {}
func (unresponsiveManager) Terminate(sh Shell) bool {
	_, _ = sh.Execute(&fakeSubmission{
		cmds:      []Command{&fireAndForget{instruction: "quit"}},
		terminate: true,
	})
	return false
}
func (unresponsiveManager) OnTermination(int) {}

func waitForState(t *testing.T, sh *shellImpl, want ShellState) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if sh.State() == want {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("shell %s: never reached %s, stuck at %s", sh.ID(), want, sh.State())
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func newTestShell(t *testing.T) *shellImpl {
	t.Helper()
	sh := newShell(fakeManager{}, 0, nil, linepump.Params{})
	require.NoError(t, sh.start())
	t.Cleanup(func() {
		sh.beginTermination()
		select {
		case <-sh.Terminated():
		case <-time.After(2 * time.Second):
		}
	})
	waitForState(t, sh, StateReady)
	return sh
}

func TestShellStartReachesReady(t *testing.T) {
	sh := newTestShell(t)
	assert.Equal(t, StateReady, sh.State())
}

func TestShellExecuteRunsCommandAndReturnsToReady(t *testing.T) {
	sh := newTestShell(t)
	probe := &echoProbe{want: "marker_one"}
	sub := &fakeSubmission{cmds: []Command{probe}}

	accepted, err := sh.Execute(sub)
	require.True(t, accepted, "submission not accepted against a READY shell")
	require.NoError(t, err)
	assert.Equal(t, "marker_one", probe.got)
	assert.True(t, sub.started, "OnStartedProcessing not called")
	assert.True(t, sub.finished, "OnFinishedProcessing not called")
	assert.Equal(t, StateReady, sh.State())
}

// TestShellExecuteRejectsWhileBusy exercises invariant I3: a shell
// never runs two submissions at once.
func TestShellExecuteRejectsWhileBusy(t *testing.T) {
	sh := newTestShell(t)
	busy := &fakeSubmission{cmds: []Command{
		&fireAndForget{instruction: "sleep 0.3"},
		&echoProbe{want: "marker_two"},
	}}

	done := make(chan struct{})
	go func() {
		defer close(done)
		accepted, err := sh.Execute(busy)
		assert.True(t, accepted)
		assert.NoError(t, err)
	}()

	time.Sleep(50 * time.Millisecond)
	accepted, err := sh.Execute(&fakeSubmission{cmds: []Command{&echoProbe{want: "marker_three"}}})
	assert.False(t, accepted, "Execute accepted a second submission against a busy shell")
	assert.NoError(t, err)
	<-done
}

func TestShellTerminationReachesTerminated(t *testing.T) {
	sh := newShell(fakeManager{}, 0, nil, linepump.Params{})
	require.NoError(t, sh.start())
	waitForState(t, sh, StateReady)

	require.True(t, sh.casState(StateTerminating, StateReady), "could not move a READY shell to TERMINATING")
	sh.doTerminate()

	select {
	case <-sh.Terminated():
	case <-time.After(2 * time.Second):
		t.Fatal("shell did not terminate")
	}
	assert.Equal(t, StateTerminated, sh.State())
}

// TestShellTerminationForceKillsUnresponsiveChild exercises S3: a
// manager that cannot cleanly shut its child down still gets the
// shell to TERMINATED, via forceKill.
func TestShellTerminationForceKillsUnresponsiveChild(t *testing.T) {
	sh := newShell(unresponsiveManager{}, 0, nil, linepump.Params{})
	require.NoError(t, sh.start())
	waitForState(t, sh, StateReady)

	sh.beginTermination()

	select {
	case <-sh.Terminated():
	case <-time.After(2 * time.Second):
		t.Fatal("unresponsive child was never force-killed")
	}
	assert.Equal(t, StateTerminated, sh.State())
}

// TestShellIdleTimeoutTerminatesShell exercises S4: a shell that sits
// READY past its KeepAlive is torn down on its own, with no submission
// ever touching it.
func TestShellIdleTimeoutTerminatesShell(t *testing.T) {
	sh := newShell(fakeManager{}, 30*time.Millisecond, nil, linepump.Params{})
	require.NoError(t, sh.start())
	waitForState(t, sh, StateReady)

	select {
	case <-sh.Terminated():
	case <-time.After(2 * time.Second):
		t.Fatal("idle shell was never terminated after KeepAlive elapsed")
	}
	assert.Equal(t, StateTerminated, sh.State())
}
