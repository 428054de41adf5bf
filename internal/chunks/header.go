// Package chunks parses knitr code chunks out of R Markdown documents and
// rewrites their labels.
//
// A chunk is delimited by a start marker and an end marker:
//
//	```{r label, echo=FALSE}
//	... code ...
//	```
//
// The start marker may be indented with spaces, tabs or blockquote '>'
// prefixes. The label is either the first positional token after the engine
// or the value of a label= option. Plain Markdown fences (```r, ~~~,
// ```{=html}) are not chunks; their bodies are skipped verbatim.
package chunks

import (
	"regexp"
	"strings"
)

var (
	// reChunkStart mirrors knitr's md chunk.begin pattern.
	reChunkStart = regexp.MustCompile("^[\t >]*(`{3,})[ \t]*\\{([A-Za-z0-9_]+)([ \t,].*)?\\}[ \t]*$")
	reChunkEnd   = regexp.MustCompile("^[\t >]*`{3,}[ \t]*$")
	// Plain fences follow CommonMark: at most three spaces of indentation,
	// optionally inside blockquotes. A deeper line is indented code.
	reFenceOpen  = regexp.MustCompile("^(?: {0,3}> ?)* {0,3}(`{3,}|~{3,})(.*)$")
	reFenceClose = regexp.MustCompile("^(?: {0,3}> ?)* {0,3}(`{3,}|~{3,})[ \t]*$")
)

// Header is a parsed chunk start marker. Offsets index into the marker line
// without its terminator.
type Header struct {
	Engine  string
	Label   string // existing label, unquoted; empty when the chunk is unlabeled
	Options string // everything after the label (or engine) up to '}', verbatim

	line        []byte
	engineEnd   int
	innerEnd    int
	labelStart  int // -1 when there is no label
	labelEnd    int
	labelOption bool   // label came from label=...
	redundant   []span // extra label= options, comma included; dropped on rewrite
}

// HasLabel reports whether the header carries a label.
func (h Header) HasLabel() bool { return h.labelStart >= 0 }

// Redundant reports whether the header carries more than one label, e.g.
// {r foo, label="bar"}.
func (h Header) Redundant() bool { return len(h.redundant) > 0 }

// LabelFromOption reports whether the label was given as label=... instead
// of positionally.
func (h Header) LabelFromOption() bool { return h.labelOption }

// ParseHeader recognises a chunk start marker. line must not include its
// terminator.
func ParseHeader(line []byte) (Header, bool) {
	m := reChunkStart.FindSubmatchIndex(line)
	if m == nil {
		return Header{}, false
	}
	h := Header{
		Engine:     string(line[m[4]:m[5]]),
		line:       line,
		engineEnd:  m[5],
		innerEnd:   closingBrace(line),
		labelStart: -1,
		labelEnd:   -1,
	}
	rest := string(line[h.engineEnd:h.innerEnd])
	toks := splitTopLevel(rest)
	optStart := h.engineEnd

	if len(toks) > 0 {
		s, e := trimSpan(rest, toks[0])
		first := rest[s:e]
		from := 0
		if first != "" && (isQuoted(first) || !strings.Contains(first, "=")) {
			h.labelStart, h.labelEnd = h.engineEnd+s, h.engineEnd+e
			h.Label = unquote(first)
			optStart = h.labelEnd
			from = 1
		}
		h.scanLabelOptions(rest, toks, from)
	}
	h.Options = string(line[optStart:h.innerEnd])
	return h, true
}

// scanLabelOptions looks for label=value among toks[from:]. The first one
// becomes the label when there is no positional label; every other one is
// recorded as redundant. For quoted values the label span covers only the
// text between the quotes.
func (h *Header) scanLabelOptions(rest string, toks []span, from int) {
	for i := from; i < len(toks); i++ {
		s, e := trimSpan(rest, toks[i])
		tok := rest[s:e]
		eq := strings.IndexByte(tok, '=')
		if eq < 0 || strings.TrimSpace(tok[:eq]) != "label" {
			continue
		}
		vs := s + eq + 1
		for vs < e && (rest[vs] == ' ' || rest[vs] == '\t') {
			vs++
		}
		if vs == e {
			continue
		}
		if h.HasLabel() {
			// i > 0, so the token is preceded by its separating comma
			h.redundant = append(h.redundant, span{h.engineEnd + toks[i].start - 1, h.engineEnd + toks[i].end})
			continue
		}
		if val := rest[vs:e]; isQuoted(val) {
			vs, e = vs+1, e-1
		}
		h.labelStart, h.labelEnd = h.engineEnd+vs, h.engineEnd+e
		h.Label = rest[vs:e]
		h.labelOption = true
	}
}

// WithLabel returns the marker line with its label replaced by label. An
// unlabeled header gets the label inserted right after the engine. Redundant
// label= options are removed; every other byte of the line is kept.
func (h Header) WithLabel(label string) []byte {
	line := h.line
	out := make([]byte, 0, len(line)+len(label)+2)
	if h.HasLabel() {
		out = append(out, line[:h.labelStart]...)
		out = append(out, label...)
		pos := h.labelEnd
		for _, d := range h.redundant {
			out = append(out, line[pos:d.start]...)
			pos = d.end
		}
		return append(out, line[pos:]...)
	}
	rest := line[h.engineEnd:h.innerEnd]
	k := 0
	for k < len(rest) && (rest[k] == ' ' || rest[k] == '\t') {
		k++
	}
	out = append(out, line[:h.engineEnd]...)
	out = append(out, ' ')
	out = append(out, label...)
	switch {
	case k == len(rest):
		// {r} or {r  }
		return append(out, line[h.innerEnd:]...)
	case rest[k] == ',':
		return append(out, line[h.engineEnd+k:]...)
	default:
		out = append(out, ',')
		return append(out, line[h.engineEnd:]...)
	}
}

// IsChunkEnd reports whether line closes a chunk.
func IsChunkEnd(line []byte) bool {
	return reChunkEnd.Match(line)
}

// fenceOpen reports whether line opens a plain Markdown fence and returns
// its fence character and length.
func fenceOpen(line []byte) (byte, int, bool) {
	m := reFenceOpen.FindSubmatchIndex(line)
	if m == nil {
		return 0, 0, false
	}
	c := line[m[2]]
	if c == '`' && strings.ContainsRune(string(line[m[4]:m[5]]), '`') {
		// ```foo``` on one line is inline code, not a fence
		return 0, 0, false
	}
	return c, m[3] - m[2], true
}

// fenceCloses reports whether line closes a fence opened with n copies of c.
func fenceCloses(line []byte, c byte, n int) bool {
	m := reFenceClose.FindSubmatchIndex(line)
	if m == nil {
		return false
	}
	return line[m[2]] == c && m[3]-m[2] >= n
}

func closingBrace(line []byte) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i] == '}' {
			return i
		}
	}
	return len(line)
}

type span struct{ start, end int }

// splitTopLevel splits s on commas that are outside quotes and brackets.
func splitTopLevel(s string) []span {
	var (
		out   []span
		depth int
		quote byte
		start int
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				out = append(out, span{start, i})
				start = i + 1
			}
		}
	}
	return append(out, span{start, len(s)})
}

func trimSpan(s string, sp span) (int, int) {
	a, b := sp.start, sp.end
	for a < b && (s[a] == ' ' || s[a] == '\t') {
		a++
	}
	for b > a && (s[b-1] == ' ' || s[b-1] == '\t') {
		b--
	}
	return a, b
}

func isQuoted(s string) bool {
	if len(s) < 2 {
		return false
	}
	q := s[0]
	return (q == '"' || q == '\'') && s[len(s)-1] == q
}

func unquote(s string) string {
	if isQuoted(s) {
		return s[1 : len(s)-1]
	}
	return s
}
