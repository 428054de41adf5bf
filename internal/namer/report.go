package namer

import (
	"errors"
	"fmt"
)

// Result describes what happened to one document.
type Result struct {
	Path         string // root-relative, forward slashes
	Blocks       int    // chunks found
	Relabeled    int    // chunks whose header changed
	Changed      bool   // content differs after relabeling
	Written      bool   // the file was rewritten
	Diff         string // unified diff, when requested
	DiffOversize bool   // Diff is a placeholder; the document exceeded the size cap
	Err          error
}

// Report aggregates a pass. Modified counts documents whose content
// changed (written, or would be written in a dry run).
type Report struct {
	Results   []Result
	DryRun    bool
	Scanned   int
	Modified  int
	Relabeled int
	Failed    int
}

func (r *Report) add(res Result) {
	r.Results = append(r.Results, res)
	r.Scanned++
	if res.Err != nil {
		r.Failed++
		return
	}
	if res.Changed {
		r.Modified++
		r.Relabeled += res.Relabeled
	}
}

// Err joins the per-document errors, nil when every document succeeded.
func (r *Report) Err() error {
	var errs []error
	for _, res := range r.Results {
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
	}
	return errors.Join(errs...)
}

// Summary renders the one-line outcome of the pass.
func (r *Report) Summary() string {
	verb := "Relabeled"
	if r.DryRun {
		verb = "Would relabel"
	}
	return fmt.Sprintf("%s %d chunks in %d documents (scanned=%d, failed=%d)",
		verb, r.Relabeled, r.Modified, r.Scanned, r.Failed)
}
