// Package main provides the chunk-namer CLI. It assigns every knitr chunk of
// the R Markdown chapters under a bookdown source root a label of the form
// <chapter-stem>-<seq> and rewrites the chunk headers in place.
//
// Usage:
//
//	chunk-namer [flags] [root]
//
// Modes:
//   - default : relabel and write back changed documents
//   - -n      : dry run, report what would change
//   - -diff   : dry run, print a unified diff per changed document
//   - -check  : dry run, exit 1 if any document is not canonically labeled
//
// Exit status is 0 on success, 1 when any document failed (or -check found
// pending changes) and 2 on usage errors.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"chunk-namer/internal/config"
	"chunk-namer/internal/namer"
)

// Config holds the parsed command line.
type Config struct {
	root         string
	pattern      string
	pad          int
	exclude      string
	useGitignore bool
	dryRun       bool
	diff         bool
	check        bool
	maxDiffBytes int
	verbose      bool
	logLevel     string
}

var errUsage = errors.New("usage")

// parseFlags parses args (without the program name) on top of the
// environment defaults.
func parseFlags(args []string, stderr io.Writer) (Config, error) {
	env := config.Load()

	fs := flag.NewFlagSet("chunk-namer", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage:\n  %s [flags] [root]\n", filepath.Base(os.Args[0]))
		fmt.Fprintf(stderr, "  root defaults to $CHUNK_NAMER_ROOT or %q\n\nFlags:\n", env.Root)
		fs.PrintDefaults()
	}

	var cfg Config
	fs.StringVar(&cfg.pattern, "pattern", env.Pattern, "glob selecting documents (matched against the base name, or the relative path if it contains '/')")
	fs.IntVar(&cfg.pad, "pad", env.PadWidth, "zero-padding width of chunk sequence numbers (0 = none)")
	fs.StringVar(&cfg.exclude, "exclude", strings.Join(env.Exclude, ","), "comma-separated dir/file prefixes to skip")
	fs.BoolVar(&cfg.useGitignore, "use-gitignore", true, "honor the root .gitignore during the walk")
	fs.BoolVar(&cfg.dryRun, "n", false, "dry run: do not write any file")
	fs.BoolVar(&cfg.diff, "diff", false, "print a unified diff for every document that would change (implies -n)")
	fs.BoolVar(&cfg.check, "check", false, "exit 1 if any document would change or fails the label check (implies -n)")
	fs.IntVar(&cfg.maxDiffBytes, "max-diff-bytes", namer.DefaultMaxDiffBytes, "skip diffs of documents larger than this many bytes (old+new); <0 disables the cap")
	fs.BoolVar(&cfg.verbose, "v", false, "verbose logging")
	cfg.logLevel = env.LogLevel

	if err := fs.Parse(args); err != nil {
		return Config{}, errUsage
	}
	switch fs.NArg() {
	case 0:
		cfg.root = env.Root
	case 1:
		cfg.root = fs.Arg(0)
	default:
		fs.Usage()
		return Config{}, errUsage
	}
	if cfg.verbose {
		cfg.logLevel = "debug"
	}
	if cfg.diff || cfg.check {
		cfg.dryRun = true
	}

	check := config.Config{
		Root:     cfg.root,
		Pattern:  cfg.pattern,
		PadWidth: cfg.pad,
		LogLevel: cfg.logLevel,
	}
	if err := check.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func buildOptions(cfg Config, log *slog.Logger) namer.Options {
	return namer.Options{
		Root:         cfg.root,
		Pattern:      cfg.pattern,
		Exclude:      config.SplitList(cfg.exclude),
		UseGitignore: cfg.useGitignore,
		PadWidth:     cfg.pad,
		DryRun:       cfg.dryRun,
		Diff:         cfg.diff,
		Verify:       true,
		MaxDiffBytes: cfg.maxDiffBytes,
		Logger:       log,
	}
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := parseFlags(args, stderr)
	if err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintln(stderr, "ERROR:", err)
		}
		return 2
	}
	level, _ := config.ParseLevel(cfg.logLevel)
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	rep, err := namer.Run(buildOptions(cfg, log))
	if err != nil {
		log.Error("chunk naming failed", "error", err)
		return 1
	}

	if cfg.diff {
		for _, res := range rep.Results {
			if res.Diff != "" {
				fmt.Fprint(stdout, res.Diff)
			}
		}
	}
	fmt.Fprintln(stdout, rep.Summary())

	if rep.Failed > 0 {
		return 1
	}
	if cfg.check && rep.Modified > 0 {
		for _, res := range rep.Results {
			if res.Changed {
				log.Warn("document is not canonically labeled", "path", res.Path, "relabel", res.Relabeled)
			}
		}
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
