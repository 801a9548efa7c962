// Package linepump reads a child process's stdout or stderr stream and
// emits whole lines, in arrival order, to a channel. It generalizes
// the teacher's sentinel-scanning channel plumbing into a plain line
// source with no knowledge of any particular child protocol.
package linepump

import (
	"bufio"
	"fmt"
	"io"
	"time"

	"golang.org/x/text/transform"
)

// Pump reads one stream and delivers whole lines in order. EOF closes
// Lines and reports nil on Done; a read or backpressure failure
// closes Lines and reports a non-nil error on Done.
type Pump struct {
	// Lines yields decoded lines with any trailing \r?\n stripped. A
	// non-empty residual line at EOF (no trailing newline) is
	// delivered before the channel closes.
	Lines <-chan string

	// Done receives exactly one value -- nil on clean stream closure,
	// non-nil on error -- and is then closed.
	Done <-chan error

	name string
}

// Name identifies which stream this pump was started on ("stdOut" or
// "stdErr"), used only for logging and error messages.
func (p *Pump) Name() string { return p.name }

// Start begins pumping lines from r in a new goroutine. name is used
// only in log messages and wrapped errors (conventionally "stdOut" or
// "stdErr").
func Start(name string, r io.Reader, params Params, logger Logger) *Pump {
	params.setDefaults()
	if logger == nil {
		logger = noopLogger{}
	}
	decoded := transform.NewReader(r, params.Charset.NewDecoder())
	scanner := bufio.NewScanner(decoded)

	chLines := make(chan string, params.BuffSize)
	chDone := make(chan error, 1)

	go pump(name, scanner, params.ConsumerTimeout, chLines, chDone, logger)

	return &Pump{Lines: chLines, Done: chDone, name: name}
}

func pump(
	name string,
	scanner *bufio.Scanner,
	consumerTimeout time.Duration,
	chLines chan<- string,
	chDone chan<- error,
	logger Logger,
) {
	defer close(chLines)
	defer close(chDone)
	count := 0
	timer := time.NewTimer(consumerTimeout)
	defer timer.Stop()
	for scanner.Scan() {
		line := scanner.Text()
		count++
		logger.Printf("%s: line #%d: %q", name, count, Abbrev(line))
		if !timer.Stop() {
			<-timer.C
		}
		timer.Reset(consumerTimeout)
		select {
		case chLines <- line:
		case <-timer.C:
			logger.Printf("%s: consumer timeout of %s elapsed", name, consumerTimeout)
			chDone <- fmt.Errorf(
				"%s: consumer timeout of %s elapsed awaiting a consumer for a pumped line", name, consumerTimeout)
			return
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Printf("%s: scan error: %s", name, err.Error())
		chDone <- fmt.Errorf("%s: scan failed: %w", name, err)
		return
	}
	logger.Printf("%s: stream closed after %d lines", name, count)
	chDone <- nil
}
