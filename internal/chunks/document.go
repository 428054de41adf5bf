package chunks

import (
	"bytes"
	"fmt"

	"chunk-namer/internal/textutil"
)

// CodeBlock is one chunk inside a Document. Start and End are 0-based line
// indices of the start and end markers; Seq is the 1-based position of the
// chunk within its document.
type CodeBlock struct {
	Header Header
	Start  int
	End    int
	Seq    int
}

// Document is a chapter file split into lines (terminators kept) and the
// chunks found in it.
type Document struct {
	Path   string
	Stem   string
	Lines  [][]byte
	Blocks []CodeBlock
}

type scanState int

const (
	outside scanState = iota
	inChunk
	inFence
)

// Parse splits data into lines and locates every chunk. Chunks do not nest:
// a start marker inside an open chunk is an error, as is a chunk or fence
// left open at end of file.
func Parse(path string, data []byte) (*Document, error) {
	doc := &Document{
		Path:  path,
		Stem:  Stem(path),
		Lines: textutil.SplitLinesKeepEOL(data),
	}

	var (
		state     = outside
		open      int
		openHdr   Header
		fenceChar byte
		fenceLen  int
	)
	for i, raw := range doc.Lines {
		line, _ := textutil.TrimEOL(raw)
		switch state {
		case outside:
			if h, ok := ParseHeader(line); ok {
				state, open, openHdr = inChunk, i, h
			} else if c, n, ok := fenceOpen(line); ok {
				state, open, fenceChar, fenceLen = inFence, i, c, n
			}
		case inChunk:
			if IsChunkEnd(line) {
				doc.Blocks = append(doc.Blocks, CodeBlock{
					Header: openHdr,
					Start:  open,
					End:    i,
					Seq:    len(doc.Blocks) + 1,
				})
				state = outside
			} else if _, ok := ParseHeader(line); ok {
				return nil, &MalformedBlockError{
					Path:   path,
					Line:   open + 1,
					Reason: fmt.Sprintf("chunk is not closed before the next chunk starts at line %d", i+1),
				}
			}
		case inFence:
			if fenceCloses(line, fenceChar, fenceLen) {
				state = outside
			}
		}
	}

	switch state {
	case inChunk:
		return nil, &MalformedBlockError{Path: path, Line: open + 1, Reason: "chunk is not closed before end of file"}
	case inFence:
		return nil, &MalformedBlockError{Path: path, Line: open + 1, Reason: "code fence is not closed before end of file"}
	}
	return doc, nil
}

// Relabel renders doc with every chunk labeled by lab in document order.
// relabeled counts the chunks whose start marker actually changed.
func Relabel(doc *Document, lab Labeler) (out []byte, relabeled int) {
	lines := make([][]byte, len(doc.Lines))
	copy(lines, doc.Lines)
	for _, b := range doc.Blocks {
		_, eol := textutil.TrimEOL(lines[b.Start])
		next := append(b.Header.WithLabel(lab.Label(b.Seq)), eol...)
		if !bytes.Equal(next, lines[b.Start]) {
			lines[b.Start] = next
			relabeled++
		}
	}
	return textutil.Join(lines), relabeled
}
