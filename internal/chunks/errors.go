package chunks

import "fmt"

// MalformedBlockError reports a chunk (or plain fence) whose end marker is
// missing. Line is the 1-based line of the offending start marker.
type MalformedBlockError struct {
	Path   string
	Line   int
	Reason string
}

func (e *MalformedBlockError) Error() string {
	return fmt.Sprintf("%s:%d: malformed chunk: %s", e.Path, e.Line, e.Reason)
}
