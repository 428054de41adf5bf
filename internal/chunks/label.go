package chunks

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

const (
	// DefaultPattern selects R Markdown chapters.
	DefaultPattern = "*.Rmd"
	// DefaultPadWidth is the zero-padding width of the sequence number.
	DefaultPadWidth = 3
)

// Labeler produces labels of the form <stem>-<seq>.
type Labeler struct {
	stem  string
	width int
}

// NewLabeler returns a Labeler for stem. width <= 0 disables zero padding.
func NewLabeler(stem string, width int) Labeler {
	if width < 0 {
		width = 0
	}
	return Labeler{stem: stem, width: width}
}

// Label returns the label for the 1-based sequence number seq.
func (l Labeler) Label(seq int) string {
	return fmt.Sprintf("%s-%0*d", l.stem, l.width, seq)
}

// Stem derives the label stem from a document path: the base name without
// its extension, restricted to [A-Za-z0-9_-]. Other runes become '-'.
func Stem(p string) string {
	base := filepath.Base(p)
	return sanitize(strings.TrimSuffix(base, filepath.Ext(base)))
}

// PathStem derives the stem from a root-relative, slash-separated path.
// Directories become part of the stem ("parts/intro.Rmd" gives
// "parts-intro"), so documents sharing a base name in different directories
// still get distinct labels. For a top-level document it equals Stem.
func PathStem(rel string) string {
	rel = strings.TrimPrefix(path.Clean(filepath.ToSlash(rel)), "./")
	rel = strings.TrimSuffix(rel, path.Ext(rel))
	return sanitize(strings.ReplaceAll(rel, "/", "-"))
}

func sanitize(s string) string {
	stem := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		}
		return '-'
	}, s)
	if stem == "" {
		return "chunk"
	}
	return stem
}
