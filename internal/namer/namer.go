// Package namer runs the chunk-naming pass over a book source tree.
//
// Documents are processed one at a time in lexicographic order. Each chunk
// gets the label <stem>-<seq>; the previous labels are discarded rather than
// merged, so re-running the pass converges on the same content. A document
// that fails to read, parse or write is reported and left untouched while
// the pass moves on to the next one.
package namer

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"chunk-namer/internal/chunks"
	"chunk-namer/internal/diff"
	"chunk-namer/internal/rewrite"
	"chunk-namer/internal/validate"
	"chunk-namer/internal/walkwalk"
)

// DefaultMaxDiffBytes caps the input size of one diff preview.
const DefaultMaxDiffBytes = 2_000_000

// Options configures one pass.
type Options struct {
	Root         string
	Pattern      string // glob, chunks.DefaultPattern when empty
	Exclude      []string
	UseGitignore bool
	PadWidth     int  // zero-padding of the sequence number; 0 disables
	DryRun       bool // compute everything, write nothing
	Diff         bool // attach a unified diff to every changed result
	Verify       bool // check labels with the Markdown parser, changed or not
	MaxDiffBytes int  // diff size cap; 0 means DefaultMaxDiffBytes, < 0 no cap
	Logger       *slog.Logger
}

// RenameChunks relabels every chunk of the documents under root matching
// pattern, using the default padding and verification.
func RenameChunks(root, pattern string) (*Report, error) {
	return Run(Options{
		Root:     root,
		Pattern:  pattern,
		Exclude:  walkwalk.DefaultExclude,
		PadWidth: chunks.DefaultPadWidth,
		Verify:   true,
	})
}

// Run executes the pass. The returned error is non-nil only when the
// document set cannot be collected; per-document failures are in the
// report.
func Run(opts Options) (*Report, error) {
	if opts.Pattern == "" {
		opts.Pattern = chunks.DefaultPattern
	}
	if opts.MaxDiffBytes == 0 {
		opts.MaxDiffBytes = DefaultMaxDiffBytes
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	files, err := walkwalk.CollectFiles(walkwalk.Config{
		Root:         opts.Root,
		Pattern:      opts.Pattern,
		Exclude:      opts.Exclude,
		UseGitignore: opts.UseGitignore,
	})
	if err != nil {
		return nil, fmt.Errorf("collect documents under %s: %w", opts.Root, err)
	}
	log.Debug("documents collected", "root", opts.Root, "pattern", opts.Pattern, "count", len(files))

	rep := &Report{DryRun: opts.DryRun}
	stems := make(map[string]string, len(files))
	for _, f := range files {
		var res Result
		stem := chunks.PathStem(f.RelPath)
		if first, dup := stems[stem]; dup {
			res = Result{Path: f.RelPath, Err: fmt.Errorf("%s: label stem %q is already used by %s", f.RelPath, stem, first)}
		} else {
			stems[stem] = f.RelPath
			res = processFile(f, opts)
		}
		switch {
		case res.Err != nil:
			log.Error("document failed", "path", res.Path, "error", res.Err)
		case res.Written:
			log.Info("document relabeled", "path", res.Path, "chunks", res.Blocks, "relabeled", res.Relabeled)
		case res.DiffOversize:
			log.Warn("diff omitted, document too large", "path", res.Path, "max_bytes", opts.MaxDiffBytes)
		default:
			log.Debug("document scanned", "path", res.Path, "chunks", res.Blocks, "changed", res.Changed)
		}
		rep.add(res)
	}
	return rep, nil
}

func processFile(f walkwalk.FileInfo, opts Options) Result {
	res := Result{Path: f.RelPath}

	data, err := os.ReadFile(f.AbsPath)
	if err != nil {
		res.Err = &IOError{Op: "read", Path: f.RelPath, Err: err}
		return res
	}

	next, blocks, relabeled, err := Relabel(f.RelPath, data, opts.PadWidth)
	if err != nil {
		res.Err = err
		return res
	}
	res.Blocks, res.Relabeled = blocks, relabeled
	res.Changed = string(next) != string(data)

	// An unchanged document is checked too: the scanner and the Markdown
	// reader may disagree on where chunks are.
	if opts.Verify {
		if err := validate.Labels(f.RelPath, next); err != nil {
			res.Err = fmt.Errorf("%s fails label check: %w", f.RelPath, err)
			return res
		}
	}
	if !res.Changed {
		return res
	}
	if opts.Diff {
		res.Diff, res.DiffOversize = diff.Document(f.RelPath, data, next, diff.Options{MaxBytes: max(opts.MaxDiffBytes, 0)})
	}
	if opts.DryRun {
		return res
	}

	wrote, err := rewrite.WriteIfChanged(f.AbsPath, data, next, f.Mode)
	if err != nil {
		res.Err = &IOError{Op: "write", Path: f.RelPath, Err: err}
		return res
	}
	res.Written = wrote
	return res
}

// Relabel parses one document and returns its relabeled content together
// with the number of chunks found and the number whose header changed. path
// is root-relative; its directories are part of the label stem. It does not
// touch the filesystem.
func Relabel(path string, data []byte, padWidth int) (out []byte, blocks, relabeled int, err error) {
	doc, err := chunks.Parse(path, data)
	if err != nil {
		return nil, 0, 0, err
	}
	out, relabeled = chunks.Relabel(doc, chunks.NewLabeler(chunks.PathStem(path), padWidth))
	return out, len(doc.Blocks), relabeled, nil
}
