package kfmt

import "io"

// PrefixWriter is an io.Writer that wraps another io.Writer and injects a
// prefix at the beginning of each line.
type PrefixWriter struct {
	// A writer where all writes get sent to.
	Sink io.Writer

	// The prefix injected at the beginning of each line.
	Prefix []byte

	midLine bool
}

// Write writes len(p) bytes from p to the underlying writer. The prefix is
// emitted lazily, right before the first byte of each line, and is not
// included in the returned byte count.
func (w *PrefixWriter) Write(p []byte) (int, error) {
	var written int

	for len(p) != 0 {
		if !w.midLine {
			if _, err := w.Sink.Write(w.Prefix); err != nil {
				return written, err
			}
			w.midLine = true
		}

		end := len(p)
		for i := 0; i < len(p); i++ {
			if p[i] == '\n' {
				end = i + 1
				break
			}
		}

		n, err := w.Sink.Write(p[:end])
		written += n
		if err != nil {
			return written, err
		}

		if p[end-1] == '\n' {
			w.midLine = false
		}
		p = p[end:]
	}

	return written, nil
}
