package stream

import (
	"bytes"
	"strings"
)

// Framer reassembles newline-delimited messages from arbitrary read chunks.
// It is not safe for concurrent use; each connection owns its own Framer.
type Framer struct {
	buf        []byte
	max        int
	discarding bool
}

// NewFramer returns a Framer that drops any single line longer than maxLine
// bytes. maxLine <= 0 disables the limit.
func NewFramer(maxLine int) *Framer {
	return &Framer{max: maxLine}
}

// Feed appends p and returns every complete, trimmed, non-empty line.
// overflowed reports that the pending partial line outgrew the limit and was
// discarded; the rest of that line, up to its newline, is skipped as well.
func (f *Framer) Feed(p []byte) (lines []string, overflowed bool) {
	f.buf = append(f.buf, p...)
	for {
		i := bytes.IndexByte(f.buf, '\n')
		if i < 0 {
			break
		}
		raw := f.buf[:i]
		f.buf = f.buf[i+1:]
		if f.discarding {
			f.discarding = false
			continue
		}
		if line := strings.TrimSpace(string(raw)); line != "" {
			lines = append(lines, line)
		}
	}

	if f.max > 0 && len(f.buf) > f.max {
		f.buf = nil
		f.discarding = true
		overflowed = true
	}
	if len(f.buf) == 0 {
		f.buf = nil
	}
	return lines, overflowed
}

// Pending returns the number of buffered bytes not yet terminated by a newline.
func (f *Framer) Pending() int { return len(f.buf) }
