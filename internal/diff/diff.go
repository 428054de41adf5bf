// Package diff renders unified patches that preview a relabeling pass.
// It uses github.com/pmezard/go-difflib/difflib for the classic ---/+++
// and @@ hunk format.
package diff

import (
	"fmt"
	"strings"

	difflib "github.com/pmezard/go-difflib/difflib"
)

const defaultContext = 3

// Options controls patch generation.
type Options struct {
	// MaxBytes caps len(old)+len(new). Larger inputs get a placeholder
	// patch and oversize=true. 0 means no limit.
	MaxBytes int

	// Context is the number of context lines per hunk; <= 0 means 3.
	Context int

	// NoPrefix drops the "a/" and "b/" path prefixes.
	NoPrefix bool
}

// Document returns the patch turning prev into next for the document at
// rel. An empty string means the contents are identical.
func Document(rel string, prev, next []byte, opt Options) (body string, oversize bool) {
	if string(prev) == string(next) {
		return "", false
	}
	aName, bName := "a/"+rel, "b/"+rel
	if opt.NoPrefix {
		aName, bName = rel, rel
	}
	return Unified(aName, bName, prev, next, opt)
}

// Unified produces a unified patch for a↦b.
func Unified(aName, bName string, a, b []byte, opt Options) (body string, oversize bool) {
	if opt.MaxBytes > 0 && len(a)+len(b) > opt.MaxBytes {
		return omitted(aName, bName), true
	}
	ctx := opt.Context
	if ctx <= 0 {
		ctx = defaultContext
	}
	u := difflib.UnifiedDiff{
		A:        splitLinesKeepNL(string(a)),
		B:        splitLinesKeepNL(string(b)),
		FromFile: aName,
		ToFile:   bName,
		Context:  ctx,
	}
	s, err := difflib.GetUnifiedDiffString(u)
	if err != nil {
		return omitted(aName, bName), false
	}
	return s, false
}

// splitLinesKeepNL keeps the '\n' on every line so hunks reproduce the
// original line endings.
func splitLinesKeepNL(s string) []string {
	if s == "" {
		return []string{}
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func omitted(aName, bName string) string {
	return fmt.Sprintf("--- %s\n+++ %s\n@@\n# diff omitted (oversize)\n", aName, bName)
}
