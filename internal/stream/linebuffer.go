// Package stream splits raw worker output into newline-delimited lines.
package stream

import (
	"bytes"
	"iter"
)

// LineBuffer demultiplexes a byte stream into lines.
//
// Workers write one document per line, but the OS delivers output in
// arbitrary chunks: a single read may carry a fragment of a line, several
// lines, or both. Feed appends each chunk to a residual buffer and Next
// drains complete lines in arrival order. Content after the last newline
// stays buffered until a later chunk completes it.
//
// A line is terminated by '\n'; a trailing '\r' is stripped so CRLF
// workers behave identically. No line-length limit is imposed.
//
// LineBuffer is not safe for concurrent use. Each stream gets its own
// instance; stdout and stderr are never mixed in one buffer.
type LineBuffer struct {
	buf []byte
}

// Feed appends a chunk of raw stream data to the buffer.
func (b *LineBuffer) Feed(p []byte) {
	b.buf = append(b.buf, p...)
}

// Next returns the earliest complete line, with the terminator (and any
// trailing '\r') removed, or ok=false when no complete line is buffered.
// The returned slice is a copy and remains valid across later Feed calls.
func (b *LineBuffer) Next() ([]byte, bool) {
	i := bytes.IndexByte(b.buf, '\n')
	if i < 0 {
		return nil, false
	}

	line := b.buf[:i]
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}

	out := make([]byte, len(line))
	copy(out, line)

	b.buf = b.buf[i+1:]

	return out, true
}

// Lines iterates over all complete lines currently buffered. Equivalent to
// calling Next until it reports ok=false.
func (b *LineBuffer) Lines() iter.Seq[[]byte] {
	return func(yield func([]byte) bool) {
		for {
			line, ok := b.Next()
			if !ok {
				return
			}

			if !yield(line) {
				return
			}
		}
	}
}

// Buffered reports how many bytes of unterminated content are waiting for
// a newline. Useful at stream end to detect a discarded trailing fragment.
func (b *LineBuffer) Buffered() int {
	return len(b.buf)
}
