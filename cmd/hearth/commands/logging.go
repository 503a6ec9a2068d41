package commands

import (
	"bytes"
	"io"
)

// levelWriter drops [DEBUG] log lines unless verbose output is on.
// The log package issues one Write per entry, so filtering per Write is
// filtering per line.
type levelWriter struct {
	out     io.Writer
	verbose bool
}

func newLevelWriter(out io.Writer, verbose bool) *levelWriter {
	return &levelWriter{out: out, verbose: verbose}
}

var debugTag = []byte("[DEBUG]")

func (w *levelWriter) Write(p []byte) (int, error) {
	if !w.verbose && bytes.Contains(p, debugTag) {
		return len(p), nil
	}
	return w.out.Write(p)
}
