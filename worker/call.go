package worker

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"

	"github.com/monopole/poolshell"
)

// CallSubmission is a one-shot request/response round trip against a
// worker shell. It implements both poolshell.Submission and
// poolshell.Command itself, since it is always exactly one command: a
// worker answers with exactly one response line per request.
type CallSubmission[Result any] struct {
	requestLine  string
	responseLine string
}

// NewCall builds a CallSubmission that invokes the operation named op
// with arg, gob-encoding arg the way RegisterFunc's wrapper expects to
// gob-decode it on the worker side.
func NewCall[Arg, Result any](op string, arg Arg) (*CallSubmission[Result], error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(arg); err != nil {
		return nil, fmt.Errorf("worker: encoding argument for %q: %w", op, err)
	}
	line, err := EncodeFrame(Request{Op: op, Arg: buf.Bytes()})
	if err != nil {
		return nil, err
	}
	return &CallSubmission[Result]{requestLine: line}, nil
}

// Result decodes the worker's response. Valid only after the
// submission has finished (the owning Shell.Execute returned, or the
// Pool.Submit future resolved).
func (c *CallSubmission[Result]) Result() (Result, error) {
	var zero Result
	var resp Response
	if err := DecodeFrame(c.responseLine, &resp); err != nil {
		return zero, err
	}
	if resp.Err != "" {
		return zero, errors.New(resp.Err)
	}
	var result Result
	if len(resp.Result) > 0 {
		if err := gob.NewDecoder(bytes.NewReader(resp.Result)).Decode(&result); err != nil {
			return zero, fmt.Errorf("worker: decoding result: %w", err)
		}
	}
	return result, nil
}

// Command implementation.

func (c *CallSubmission[Result]) Instruction() string { return c.requestLine }
func (c *CallSubmission[Result]) GeneratesOutput() bool { return true }

func (c *CallSubmission[Result]) IsCompletedStdout(line string) bool {
	c.responseLine = line
	return true
}

func (c *CallSubmission[Result]) IsCompletedStderr(string) bool { return false }

// Submission implementation.

func (c *CallSubmission[Result]) Commands() []poolshell.Command {
	return []poolshell.Command{c}
}
func (c *CallSubmission[Result]) TerminateProcessAfterwards() bool { return false }
func (c *CallSubmission[Result]) OnStartedProcessing()             {}
func (c *CallSubmission[Result]) OnFinishedProcessing()            {}
func (c *CallSubmission[Result]) IsCancelled() bool                 { return false }

// Call runs op against shell synchronously and decodes its result,
// the single-shell convenience counterpart to submitting a
// CallSubmission through a Pool.
func Call[Arg, Result any](shell poolshell.Shell, op string, arg Arg) (Result, error) {
	var zero Result
	call, err := NewCall[Arg, Result](op, arg)
	if err != nil {
		return zero, err
	}
	accepted, err := shell.Execute(call)
	if !accepted {
		return zero, fmt.Errorf("worker: shell was not ready to accept %q", op)
	}
	if err != nil {
		return zero, err
	}
	return call.Result()
}
