// Package worker is an optional client layered on top of poolshell: a
// child binary (cmd/worker) that on startup announces readiness, then
// reads one request per line from its stdin and writes one response
// per line to its stdout, so a shell running it can call into
// arbitrary registered Go functions instead of talking to a
// line-oriented CLI. Supplemented from original_source's
// JavaProcess.java/JavaObjectCodec.java: Go has no serializable
// Callable to ship across the wire, so the protocol carries an
// operation NAME plus a gob-encoded argument payload, and the worker
// looks the name up in a Registry shared at compile time between
// client and child.
package worker

import (
	"bytes"
	"encoding/base64"
	"encoding/gob"
	"fmt"
)

// Signal lines the worker prints unprompted, at startup and at exit.
const (
	SignalReady      = "READY"
	SignalTerminated = "TERMINATED"
)

// TerminateLine, like SignalReady and SignalTerminated, is carried as
// an EncodeSignal/DecodeSignal frame rather than a raw line: the
// worker decodes every incoming line the same way (mirroring
// JavaProcess.java, which runs every line through JavaObjectCodec.decode
// before comparing it to Request.TERMINATE) and only falls through to
// a gob Request decode once the signal comparison fails.
const TerminateLine = "TERMINATE"

// EncodeSignal frames a bare signal string the same way a Request or
// Response frame is framed, without the overhead of gob-encoding a
// single constant string.
func EncodeSignal(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

// DecodeSignal reverses EncodeSignal.
func DecodeSignal(line string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(line)
	if err != nil {
		return "", fmt.Errorf("worker: decoding signal: %w", err)
	}
	return string(raw), nil
}

// Request is one call into a registered operation.
type Request struct {
	// Op names an operation registered with a Registry shared between
	// client and worker.
	Op string
	// Arg is the gob-encoded argument payload, interpreted by the
	// named operation.
	Arg []byte
}

// Response is a worker's answer to a Request.
type Response struct {
	// Err is the operation's error, if any, as a plain string --
	// gob cannot carry an arbitrary error value across the wire.
	Err string
	// Result is the gob-encoded result payload.
	Result []byte
}

// EncodeFrame gob-encodes v and wraps it in one line of Base64, the Go
// analogue of JavaObjectCodec's Java-serialization-plus-Base64
// framing, chosen so a frame can never itself contain a newline and
// collide with the line-oriented pump reading it.
func EncodeFrame(v any) (string, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return "", fmt.Errorf("worker: encoding frame: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DecodeFrame reverses EncodeFrame into v, which must be a pointer to
// a Request or Response.
func DecodeFrame(line string, v any) error {
	raw, err := base64.StdEncoding.DecodeString(line)
	if err != nil {
		return fmt.Errorf("worker: decoding base64: %w", err)
	}
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(v); err != nil {
		return fmt.Errorf("worker: decoding gob: %w", err)
	}
	return nil
}
