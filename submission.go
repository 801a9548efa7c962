package poolshell

import (
	"sync"
	"time"
)

// internalSubmission wraps a client Submission with the bookkeeping
// the pool needs: timestamps, cancellation, and the future that
// reports completion. Grounded on PSPPool's InternalSubmission: a
// submission moves through receivedTime <= submittedTime <=
// processedTime as it is queued, dispatched, and finished.
type internalSubmission struct {
	Submission

	receivedTime time.Time

	mu            sync.Mutex
	submittedTime time.Time
	processedTime time.Time
	cancelled     bool
	done          bool
	err           error

	finished chan struct{}
}

func newInternalSubmission(sub Submission, now time.Time) *internalSubmission {
	return &internalSubmission{
		Submission:   sub,
		receivedTime: now,
		finished:     make(chan struct{}),
	}
}

// IsCancelled overrides the embedded Submission so that a future's
// Cancel is visible to the shell executing this submission, in
// addition to whatever cancellation logic the client's own
// Submission.IsCancelled implements.
func (s *internalSubmission) IsCancelled() bool {
	s.mu.Lock()
	c := s.cancelled
	s.mu.Unlock()
	return c || s.Submission.IsCancelled()
}

// cancelledBeforeStart reports whether the future's Cancel fired
// while this submission was still queued (S6: a cancelled submission
// must never execute).
func (s *internalSubmission) cancelledBeforeStart() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelled && s.submittedTime.IsZero()
}

func (s *internalSubmission) cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return false
	}
	s.cancelled = true
	return true
}

// markSubmitted records the moment a shell accepted this submission
// (PSPPool's submittedTime).
func (s *internalSubmission) markSubmitted(now time.Time) {
	s.mu.Lock()
	s.submittedTime = now
	s.mu.Unlock()
}

// markFinished records completion and wakes anything awaiting the
// submission's future. Calls after the first are no-ops.
func (s *internalSubmission) markFinished(now time.Time, err error) {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return
	}
	s.processedTime = now
	s.err = err
	s.done = true
	s.mu.Unlock()
	close(s.finished)
}

func (s *internalSubmission) outcome() (done bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done, s.err
}

// latency returns the submission delay and execution time components
// PSPPool reports alongside each completed submission.
func (s *internalSubmission) latency() (queued, executing time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submittedTime.IsZero() {
		return 0, 0
	}
	queued = s.submittedTime.Sub(s.receivedTime)
	if s.processedTime.IsZero() {
		return queued, 0
	}
	return queued, s.processedTime.Sub(s.submittedTime)
}
