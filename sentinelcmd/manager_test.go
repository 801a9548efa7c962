package sentinelcmd_test

import (
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monopole/poolshell"
	"github.com/monopole/poolshell/sentinelcmd"
)

// conchSpawn builds the child command for the "conch" fixture shell,
// the same way the teacher's own examples did: `go run .` against the
// conch directory, which is a separate module and therefore needs no
// pre-built binary. The prompt is disabled because it is written
// without a trailing newline and would otherwise glue itself onto the
// front of the next line a line-oriented pump reads.
func conchSpawn() *exec.Cmd {
	cmd := exec.Command("go", "run", ".", "--disable-prompt")
	cmd.Dir = "../conch"
	return cmd
}

const conchBanner = "conch_ready"

func newConchFactory() poolshell.ProcessManagerFactory {
	return sentinelcmd.NewManagerFactory(sentinelcmd.Options{
		Spawn: conchSpawn,
		IsStartedUp: func(line string, isStdout bool) bool {
			return isStdout && line == conchBanner
		},
		Terminate: sentinelcmd.QuitTerminator("quit"),
	})
}

var versionSentinel = sentinelcmd.Sentinel{C: "version", V: "v1.2.3"}

func TestRecallCommandAgainstConch(t *testing.T) {
	pool, err := poolshell.New(newConchFactory(), poolshell.Config{
		MinPoolSize: 1,
		MaxPoolSize: 1,
	}, nil)
	require.NoError(t, err)
	defer pool.Shutdown()

	rc := sentinelcmd.NewRecallCommand("query limit 3", versionSentinel)
	sub := sentinelcmd.NewSubmission(false, rc.Commands())

	future, err := pool.Submit(sub)
	require.NoError(t, err)
	require.NoError(t, future.AwaitTimeout(10*time.Second))

	got := rc.Out.Lines()
	require.Len(t, got, 3)
	for _, line := range got {
		assert.Contains(t, line, "_|_", "recalled line does not look like a conch query row")
	}
}

func TestDiscardCommandDoesNotHang(t *testing.T) {
	pool, err := poolshell.New(newConchFactory(), poolshell.Config{
		MinPoolSize: 1,
		MaxPoolSize: 1,
	}, nil)
	require.NoError(t, err)
	defer pool.Shutdown()

	sub := sentinelcmd.NewSubmission(false, sentinelcmd.DiscardCommand("status", versionSentinel))
	future, err := pool.Submit(sub)
	require.NoError(t, err)
	require.NoError(t, future.AwaitTimeout(10*time.Second))
}
