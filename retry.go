package poolshell

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	retryInitialInterval = 100 * time.Millisecond
	retryMaxInterval     = 5 * time.Second
	retryMaxElapsed      = 30 * time.Second
)

// spawnBackoff bounds the retry schedule used when a replacement
// shell's spawnShell fails. The source retries replacement shells
// unconditionally on the next sizing pass with no delay; this is the
// one place the ambient stack's exponential backoff dependency is
// wired in, since a spawn failure (the executable momentarily missing
// during a deploy, a transient fork/exec error) is exactly the kind
// of condition that dependency targets.
func spawnBackoff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = retryInitialInterval
	b.MaxInterval = retryMaxInterval
	b.MaxElapsedTime = retryMaxElapsed
	return b
}

// spawnShellWithRetry retries spawnShell with exponential backoff,
// used for replacement shells (unlike the pool's initial shells,
// whose failure is surfaced synchronously from New).
func (p *Pool) spawnShellWithRetry() error {
	var lastErr error
	op := func() error {
		lastErr = p.spawnShell()
		return lastErr
	}
	if err := backoff.Retry(op, spawnBackoff()); err != nil {
		return lastErr
	}
	return nil
}
