package poolshell

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapErrFormatsMessage(t *testing.T) {
	err := wrapErr(ErrInvalidConfiguration, "shell %s: bad value %d", "abc", 7)
	assert.Equal(t, "shell abc: bad value 7", err.Error())
}

func TestWrapErrIsMatchesKind(t *testing.T) {
	err := wrapErr(ErrProcessSpawnFailed, "could not start %s", "conch")
	assert.ErrorIs(t, err, ErrProcessSpawnFailed)
	assert.False(t, errors.Is(err, ErrStreamIO))
}

func TestWrapErrWithNoArgsKeepsFormatLiteral(t *testing.T) {
	err := wrapErr(ErrPoolClosed, "pool closed mid-dispatch")
	assert.Equal(t, "pool closed mid-dispatch", err.Error())
}

func TestSentinelErrorsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrInvalidConfiguration,
		ErrPoolClosed,
		ErrProcessSpawnFailed,
		ErrStreamIO,
		ErrProcessExitedDuringSubmission,
		ErrCancelled,
		ErrTimeout,
		ErrManagerCallbackFailed,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j {
				assert.False(t, errors.Is(a, b), "sentinel %v unexpectedly matches sentinel %v", a, b)
			}
		}
	}
}
