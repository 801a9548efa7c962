package poolshell

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type noopSubmission struct{}

func (noopSubmission) Commands() []Command              { return []Command{&fireAndForget{instruction: "true"}} }
func (noopSubmission) TerminateProcessAfterwards() bool { return false }
func (noopSubmission) OnStartedProcessing()             {}
func (noopSubmission) OnFinishedProcessing()             {}
func (noopSubmission) IsCancelled() bool                 { return false }

func TestFutureAwaitBlocksUntilMarkedFinished(t *testing.T) {
	sub := newInternalSubmission(noopSubmission{}, time.Now())
	future := &SubmissionFuture{sub: sub}

	done := make(chan error, 1)
	go func() { done <- future.Await() }()

	select {
	case <-done:
		t.Fatal("Await returned before markFinished")
	case <-time.After(30 * time.Millisecond):
	}

	sub.markFinished(time.Now(), nil)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Await did not return after markFinished")
	}
}

func TestFutureAwaitTimeoutExpires(t *testing.T) {
	sub := newInternalSubmission(noopSubmission{}, time.Now())
	future := &SubmissionFuture{sub: sub}

	assert.Equal(t, ErrTimeout, future.AwaitTimeout(20*time.Millisecond))
}

func TestFutureCancelBeforeStart(t *testing.T) {
	sub := newInternalSubmission(noopSubmission{}, time.Now())
	future := &SubmissionFuture{sub: sub}

	assert.True(t, future.Cancel(), "Cancel() should succeed before the submission starts")
	assert.True(t, future.IsCancelled())
	assert.True(t, sub.cancelledBeforeStart())
}

func TestFutureCancelAfterFinishFails(t *testing.T) {
	sub := newInternalSubmission(noopSubmission{}, time.Now())
	future := &SubmissionFuture{sub: sub}

	sub.markFinished(time.Now(), nil)
	assert.False(t, future.Cancel(), "Cancel() should fail after the submission already finished")
	assert.True(t, future.IsDone())
}

func TestFutureLatencyReflectsQueueAndExecutionTime(t *testing.T) {
	received := time.Now()
	sub := newInternalSubmission(noopSubmission{}, received)
	future := &SubmissionFuture{sub: sub}

	submitted := received.Add(10 * time.Millisecond)
	processed := submitted.Add(20 * time.Millisecond)
	sub.markSubmitted(submitted)
	sub.markFinished(processed, nil)

	queued, executing := future.Latency()
	assert.GreaterOrEqual(t, queued, 10*time.Millisecond)
	assert.GreaterOrEqual(t, executing, 20*time.Millisecond)
}
