package poolshell

import "time"

// SubmissionFuture reports the outcome of a submission accepted by
// Pool.Submit. It is grounded on PSPPool's InternalSubmissionFuture,
// adapted from Java's checked-exception Future.get() to an idiomatic
// Go error return.
type SubmissionFuture struct {
	sub *internalSubmission
}

// Await blocks until the submission finishes (successfully, with an
// error, or cancelled) and returns the result error, if any.
func (f *SubmissionFuture) Await() error {
	<-f.sub.finished
	_, err := f.sub.outcome()
	return err
}

// AwaitTimeout blocks until the submission finishes or d elapses,
// whichever comes first. It returns ErrTimeout on expiry.
func (f *SubmissionFuture) AwaitTimeout(d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-f.sub.finished:
		_, err := f.sub.outcome()
		return err
	case <-timer.C:
		return ErrTimeout
	}
}

// Cancel requests that the submission be abandoned. It has no effect
// once the submission has already finished, and reports whether the
// cancellation request was accepted.
func (f *SubmissionFuture) Cancel() bool {
	return f.sub.cancel()
}

// IsCancelled reports whether Cancel was successfully called on this
// future.
func (f *SubmissionFuture) IsCancelled() bool {
	f.sub.mu.Lock()
	defer f.sub.mu.Unlock()
	return f.sub.cancelled
}

// IsDone reports whether the submission has finished, regardless of
// outcome.
func (f *SubmissionFuture) IsDone() bool {
	done, _ := f.sub.outcome()
	return done
}

// Latency reports how long the submission waited in the queue and
// how long it spent executing. queued is zero until a shell has
// accepted the submission, and executing is zero until it has
// finished.
func (f *SubmissionFuture) Latency() (queued, executing time.Duration) {
	return f.sub.latency()
}
