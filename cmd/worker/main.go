// Command worker is a small demonstration worker child: it registers
// a few trivial operations and then hands control to worker.Run,
// which speaks poolshell's worker auxiliary protocol over stdin and
// stdout. Real users of the worker package register their own
// operations and write their own equally thin main.
package main

import (
	"fmt"
	"time"

	"github.com/monopole/poolshell/worker"
)

func main() {
	registry := worker.NewRegistry()

	worker.RegisterFunc(registry, "echo", func(s string) (string, error) {
		return s, nil
	})

	worker.RegisterFunc(registry, "add", func(pair [2]int) (int, error) {
		return pair[0] + pair[1], nil
	})

	worker.RegisterFunc(registry, "sleepMillis", func(ms int) (string, error) {
		if ms < 0 {
			return "", fmt.Errorf("sleepMillis: negative duration %d", ms)
		}
		time.Sleep(time.Duration(ms) * time.Millisecond)
		return "awake", nil
	})

	worker.Run(registry)
}
