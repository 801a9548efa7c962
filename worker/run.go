package worker

import (
	"bufio"
	"fmt"
	"os"
)

// Run is a worker child's entire main loop, the Go shape of
// JavaProcess.main(): print the READY signal, then read one frame per
// line from stdin, execute it against r, and write one response frame
// per line to stdout, until TerminateLine arrives or stdin closes. A
// worker binary's main function is typically nothing but a call to
// Run against a Registry of its own operations.
func Run(r *Registry) {
	fmt.Println(EncodeSignal(SignalReady))

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if signal, err := DecodeSignal(line); err == nil && signal == TerminateLine {
			fmt.Println(EncodeSignal(SignalTerminated))
			return
		}

		var req Request
		var resp Response
		if err := DecodeFrame(line, &req); err != nil {
			resp = Response{Err: err.Error()}
		} else {
			resp = r.Run(req)
		}

		out, err := EncodeFrame(resp)
		if err != nil {
			// EncodeFrame only fails if Response itself can't be
			// gob-encoded, which can't happen for our own struct; fall
			// back to a message that at least decodes cleanly.
			out, _ = EncodeFrame(Response{Err: "worker: failed to encode response: " + err.Error()})
		}
		fmt.Println(out)
	}
}
