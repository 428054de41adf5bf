// Package validate checks relabeled documents against what the book
// renderer accepts: every chunk carries a label, labels are identifier-safe
// tokens, and no label repeats within a document.
//
// The check parses the document as Markdown with goldmark rather than
// reusing the line scanner, so it sees chunks exactly where a CommonMark
// reader sees fenced code blocks. Issues are aggregated into one error.
package validate

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"chunk-namer/internal/chunks"
)

var reLabel = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Chunk is a labeled fenced block as seen by the Markdown parser.
type Chunk struct {
	Engine string
	Label  string
	Line   int  // 1-based line of the start marker
	Extra  bool // a label= option repeats the label
}

// Chunks returns the knitr chunks goldmark finds in src, in document order.
func Chunks(src []byte) []Chunk {
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	var out []Chunk
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fb, ok := n.(*ast.FencedCodeBlock)
		if !ok || fb.Info == nil {
			return ast.WalkContinue, nil
		}
		seg := fb.Info.Segment
		h, ok := chunks.ParseHeader(append([]byte("```"), seg.Value(src)...))
		if !ok {
			return ast.WalkSkipChildren, nil
		}
		out = append(out, Chunk{
			Engine: h.Engine,
			Label:  h.Label,
			Line:   1 + bytes.Count(src[:seg.Start], []byte("\n")),
			Extra:  h.Redundant(),
		})
		return ast.WalkSkipChildren, nil
	})
	return out
}

// Labels validates the chunk labels of one document. path is used only in
// messages.
func Labels(path string, src []byte) error {
	var errs errlist
	seen := make(map[string]int)
	for _, c := range Chunks(src) {
		prefix := fmt.Sprintf("%s:%d", path, c.Line)
		switch {
		case c.Label == "":
			errs.add("%s: chunk has no label", prefix)
			continue
		case !reLabel.MatchString(c.Label):
			errs.add("%s: label %q is not identifier-safe", prefix, c.Label)
		case c.Extra:
			errs.add("%s: chunk has more than one label", prefix)
		}
		if first, dup := seen[c.Label]; dup {
			errs.add("%s: duplicate label %q (first used at line %d)", prefix, c.Label, first)
			continue
		}
		seen[c.Label] = c.Line
	}
	return errs.err()
}

// errlist aggregates multiple validation issues into a single error.
type errlist struct {
	msgs []string
}

func (e *errlist) add(format string, args ...any) {
	e.msgs = append(e.msgs, fmt.Sprintf(format, args...))
}

func (e *errlist) err() error {
	if len(e.msgs) == 0 {
		return nil
	}
	return errors.New(strings.Join(e.msgs, "\n"))
}
