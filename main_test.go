package poolshell_test

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain asserts that every goroutine this package's tests start --
// pumps, watchExit, watchStartup, the dispatcher -- has wound down by
// the time the test binary exits, catching the class of bug where a
// shell or pool is left half torn-down.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
