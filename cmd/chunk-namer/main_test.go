package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlagsBasic(t *testing.T) {
	args := []string{"-pattern", "0*.Rmd", "-pad", "2", "-exclude", "_book, drafts", "-diff", "book"}
	cfg, err := parseFlags(args, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "book", cfg.root)
	assert.Equal(t, "0*.Rmd", cfg.pattern)
	assert.Equal(t, 2, cfg.pad)
	assert.True(t, cfg.diff)
	assert.True(t, cfg.dryRun, "-diff implies a dry run")

	opt := buildOptions(cfg, nil)
	assert.Equal(t, []string{"_book", "drafts"}, opt.Exclude)
	assert.Equal(t, 2_000_000, opt.MaxDiffBytes)
	assert.True(t, opt.Verify)
	assert.True(t, opt.DryRun)
}

func TestParseFlagsRootFromEnv(t *testing.T) {
	t.Setenv("CHUNK_NAMER_ROOT", "chapters")
	cfg, err := parseFlags(nil, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "chapters", cfg.root)
	assert.Equal(t, "*.Rmd", cfg.pattern)
}

func TestParseFlagsErrors(t *testing.T) {
	_, err := parseFlags([]string{"a", "b"}, io.Discard)
	assert.Error(t, err)

	_, err = parseFlags([]string{"-pad", "-1", "."}, io.Discard)
	assert.Error(t, err)

	_, err = parseFlags([]string{"-no-such-flag", "."}, io.Discard)
	assert.Error(t, err)
}

func TestRunExitCodes(t *testing.T) {
	root := t.TempDir()
	good := filepath.Join(root, "01-intro.Rmd")
	bad := filepath.Join(root, "02-broken.Rmd")
	require.NoError(t, os.WriteFile(good, []byte("```{r}\n1\n```\n"), 0o644))

	var stdout, stderr bytes.Buffer
	code := run([]string{"-check", root}, &stdout, &stderr)
	assert.Equal(t, 1, code, "pending changes fail -check")
	assert.Contains(t, stdout.String(), "Would relabel 1 chunks in 1 documents")

	stdout.Reset()
	code = run([]string{"-diff", root}, &stdout, &stderr)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "+```{r 01-intro-001}")

	stdout.Reset()
	code = run([]string{root}, &stdout, &stderr)
	assert.Equal(t, 0, code)
	b, err := os.ReadFile(good)
	require.NoError(t, err)
	assert.Equal(t, "```{r 01-intro-001}\n1\n```\n", string(b))

	stdout.Reset()
	code = run([]string{"-check", root}, &stdout, &stderr)
	assert.Equal(t, 0, code)

	require.NoError(t, os.WriteFile(bad, []byte("```{r}\n1\n"), 0o644))
	stdout.Reset()
	stderr.Reset()
	code = run([]string{root}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout.String(), "failed=1")
	assert.True(t, strings.Contains(stderr.String(), "02-broken.Rmd:1: malformed chunk"), stderr.String())

	assert.Equal(t, 2, run([]string{"a", "b"}, &stdout, &stderr))
}

func TestRunCheckFailsUnchangedInvalidDocument(t *testing.T) {
	root := t.TempDir()
	p := filepath.Join(root, "x.Rmd")
	body := "<div>\n```\n</div>\n\n```{r}\nx\n```\n"
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))

	var stdout, stderr bytes.Buffer
	code := run([]string{"-check", root}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout.String(), "failed=1")
	assert.Contains(t, stderr.String(), "chunk has no label")
}

func TestRunDiffOversizePlaceholder(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.Rmd"), []byte("```{r}\n1\n```\n"), 0o644))

	var stdout, stderr bytes.Buffer
	code := run([]string{"-diff", "-max-diff-bytes", "8", root}, &stdout, &stderr)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "# diff omitted (oversize)")
	assert.Contains(t, stderr.String(), "diff omitted")
}
