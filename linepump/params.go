package linepump

import (
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Params configures a Pump. The zero value is valid and yields the
// spec's default behavior: ISO-8859-1 decoding, generous buffering,
// and a long consumer timeout.
type Params struct {
	// Charset decodes the raw bytes read from the child into text.
	// Defaults to ISO-8859-1, the only single-byte identity mapping
	// that losslessly round-trips arbitrary bytes through a string
	// layer -- important when a child smuggles binary payloads (e.g.
	// base64 frames) through its line protocol. Do not default this
	// to UTF-8.
	Charset encoding.Encoding

	// BuffSize is how many decoded lines can be buffered on the
	// pump's output channel before the reader goroutine blocks.
	BuffSize int

	// ConsumerTimeout bounds how long the pump will wait for a line
	// it produced to be consumed before giving up and reporting a
	// stream error. This is the exit hatch against a wedged listener
	// that would otherwise block the underlying Scan forever.
	ConsumerTimeout time.Duration
}

const (
	defaultBuffSize        = 256
	defaultConsumerTimeout = 30 * time.Second
)

func (p *Params) setDefaults() {
	if p.Charset == nil {
		p.Charset = charmap.ISO8859_1
	}
	if p.BuffSize < 1 {
		p.BuffSize = defaultBuffSize
	}
	if p.ConsumerTimeout <= 0 {
		p.ConsumerTimeout = defaultConsumerTimeout
	}
}
