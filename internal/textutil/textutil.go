// Package textutil holds byte-level line helpers shared by the chunk parser
// and the write-back path. Lines always keep their original terminator so
// that joining them again reproduces the input exactly.
package textutil

import "bytes"

// SplitLinesKeepEOL splits b after every '\n'. A final line without a
// terminator is returned as-is; empty input yields no lines.
func SplitLinesKeepEOL(b []byte) [][]byte {
	if len(b) == 0 {
		return nil
	}
	return bytes.SplitAfter(b, []byte("\n"))[:countLines(b)]
}

// countLines returns the number of lines SplitAfter produces, dropping the
// empty trailing element that follows a final '\n'.
func countLines(b []byte) int {
	n := bytes.Count(b, []byte("\n"))
	if b[len(b)-1] != '\n' {
		n++
	}
	return n
}

// TrimEOL strips one trailing "\n" or "\r\n" and returns the body together
// with the terminator that was removed.
func TrimEOL(line []byte) (body, eol []byte) {
	switch {
	case bytes.HasSuffix(line, []byte("\r\n")):
		return line[:len(line)-2], line[len(line)-2:]
	case bytes.HasSuffix(line, []byte("\n")):
		return line[:len(line)-1], line[len(line)-1:]
	}
	return line, nil
}

// Join concatenates lines verbatim.
func Join(lines [][]byte) []byte {
	n := 0
	for _, l := range lines {
		n += len(l)
	}
	out := make([]byte, 0, n)
	for _, l := range lines {
		out = append(out, l...)
	}
	return out
}
