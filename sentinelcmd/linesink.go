package sentinelcmd

import "fmt"

// labellingPrinter prefixes every line it sees and prints it to the
// calling process's own stdout, so output from several shells can be
// told apart on one console.
type labellingPrinter struct{ prefix string }

func (sp *labellingPrinter) Close() error { return nil }

func (sp *labellingPrinter) Write(data []byte) (int, error) {
	if sp.prefix == "" {
		_, err := fmt.Println(string(data))
		return len(data), err
	}
	_, err := fmt.Printf("%s: %s\n", sp.prefix, string(data))
	return len(data), err
}

// LineAbsorber remembers every non-empty line it sees, in order.
type LineAbsorber struct{ data []string }

// Reset discards everything absorbed so far.
func (ab *LineAbsorber) Reset() { ab.data = nil }

// Lines returns the absorbed lines, in the order they were seen.
func (ab *LineAbsorber) Lines() []string { return ab.data }

func (ab *LineAbsorber) Close() error { return nil }

func (ab *LineAbsorber) Write(data []byte) (int, error) {
	if len(data) > 0 {
		ab.data = append(ab.data, string(data))
	}
	return len(data), nil
}
