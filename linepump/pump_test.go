package linepump_test

import (
	"strings"
	"testing"
	"time"

	"github.com/monopole/poolshell/linepump"
	"github.com/stretchr/testify/assert"
)

func drain(t *testing.T, p *linepump.Pump) []string {
	var lines []string
	for line := range p.Lines {
		lines = append(lines, line)
	}
	err := <-p.Done
	assert.NoError(t, err)
	return lines
}

func TestPumpBasicLines(t *testing.T) {
	r := strings.NewReader("alpha\nbeta\r\ngamma\n")
	p := linepump.Start("stdOut", r, linepump.Params{}, nil)
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, drain(t, p))
}

func TestPumpPartialFinalLine(t *testing.T) {
	r := strings.NewReader("alpha\nno-newline-at-eof")
	p := linepump.Start("stdOut", r, linepump.Params{}, nil)
	assert.Equal(t, []string{"alpha", "no-newline-at-eof"}, drain(t, p))
}

func TestPumpEmptyStream(t *testing.T) {
	p := linepump.Start("stdOut", strings.NewReader(""), linepump.Params{}, nil)
	assert.Empty(t, drain(t, p))
}

func TestPumpBackpressureTimeout(t *testing.T) {
	r := strings.NewReader("one\ntwo\n")
	p := linepump.Start("stdOut", r, linepump.Params{
		BuffSize:        1,
		ConsumerTimeout: 20 * time.Millisecond,
	}, nil)
	// Consume nothing; the second line should trip the backpressure
	// timeout once the one-slot buffer fills.
	err := <-p.Done
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "consumer timeout")
}
