package poolshell_test

import (
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/monopole/poolshell"
	"github.com/monopole/poolshell/sentinelcmd"
)

const (
	timeOutLong  = 4 * time.Second
	timeOutShort = time.Second
)

// echoSentinel marks the end of a command's real output the way
// conch's version command does for the teacher's own root-level
// tests, except here the child is a plain /bin/sh, so the sentinel is
// an echo of a marker no real command output could produce.
var echoSentinel = sentinelcmd.Sentinel{C: "echo sentinel_mark_7x", V: "sentinel_mark_7x"}

// shFactory builds shells around /bin/sh. A bare shell has no startup
// banner, so it is ready the instant it is spawned; "exit" is its own
// orderly-termination command.
func shFactory() poolshell.ProcessManagerFactory {
	return sentinelcmd.NewManagerFactory(sentinelcmd.Options{
		Spawn:             func() *exec.Cmd { return exec.Command("/bin/sh") },
		StartsUpInstantly: true,
		Terminate:         sentinelcmd.QuitTerminator("exit"),
	})
}

// newTestPool spawns a pool over shFactory and arranges for it to be
// shut down when the test completes.
func newTestPool(t *testing.T, cfg poolshell.Config) *poolshell.Pool {
	t.Helper()
	if cfg.StartupDeadline == 0 {
		cfg.StartupDeadline = timeOutLong
	}
	pool, err := poolshell.New(shFactory(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(pool.Shutdown)
	return pool
}

// instructionSubmission runs instruction, then waits on echoSentinel
// to know it has finished, recalling any real output in between.
func instructionSubmission(instruction string) (*sentinelcmd.RecallCommand, *sentinelcmd.Submission) {
	rc := sentinelcmd.NewRecallCommand(instruction, echoSentinel)
	return rc, sentinelcmd.NewSubmission(false, rc.Commands())
}
