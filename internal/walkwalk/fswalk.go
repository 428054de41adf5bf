// Package walkwalk provides a deterministic, filterable filesystem walker
// used to gather the chapter documents of a book source tree.
package walkwalk

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"chunk-namer/internal/sortutil"
)

// DefaultExclude lists base-name prefixes that never hold chapter sources:
// VCS metadata, bookdown build output and the renv library.
var DefaultExclude = []string{".git", "_book", "_bookdown_files", "renv", "node_modules"}

// FileInfo is a minimal, deterministic descriptor of a collected document.
type FileInfo struct {
	RelPath string      // root-relative path with forward slashes
	AbsPath string      // absolute filesystem path
	Size    int64       // size in bytes
	Mode    fs.FileMode // permission bits, kept on rewrite
}

// Config selects which documents CollectFiles returns.
type Config struct {
	Root           string
	Pattern        string   // glob; matched against the base name, or the relative path when it contains '/'
	Exclude        []string // base-name prefixes to skip (dirs and files)
	UseGitignore   bool
	FollowSymlinks bool
}

type walkState struct {
	cfg      Config
	root     string
	exclude  map[string]struct{}
	patterns []gitPattern
	files    []FileInfo
}

// CollectFiles walks cfg.Root and returns matching regular files sorted by
// relative path.
func CollectFiles(cfg Config) ([]FileInfo, error) {
	if cfg.Pattern == "" {
		return nil, errors.New("walkwalk: empty pattern")
	}
	if _, err := path.Match(cfg.Pattern, ""); err != nil {
		return nil, fmt.Errorf("walkwalk: pattern %q: %w", cfg.Pattern, err)
	}
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, err
	}
	st, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("walkwalk: %s is not a directory", cfg.Root)
	}

	ws := &walkState{cfg: cfg, root: root, exclude: toSet(cfg.Exclude)}
	if cfg.UseGitignore {
		// a missing or unreadable .gitignore means no patterns
		ws.patterns, _ = parseGitignore(filepath.Join(root, ".gitignore"))
	}
	if err := filepath.WalkDir(root, ws.visit); err != nil {
		return nil, err
	}
	sortutil.ByKey(ws.files, func(f FileInfo) string { return f.RelPath })
	return ws.files, nil
}

func (ws *walkState) visit(p string, d fs.DirEntry, err error) error {
	if err != nil {
		if p == ws.root {
			return err
		}
		return nil
	}
	rel, ok := ws.relative(p)
	if !ok || rel == "." {
		return nil
	}
	if ws.shouldSkip(rel, d) {
		if d.IsDir() {
			return filepath.SkipDir
		}
		return nil
	}
	if d.IsDir() {
		return nil
	}
	return ws.handleFile(p, rel, d)
}

func (ws *walkState) relative(p string) (string, bool) {
	rel, err := filepath.Rel(ws.root, p)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if strings.HasPrefix(rel, "../") || rel == ".." {
		return "", false
	}
	return rel, true
}

func (ws *walkState) shouldSkip(rel string, d fs.DirEntry) bool {
	base := path.Base(rel)
	if hasExcludedPrefix(base, ws.exclude) {
		return true
	}
	return ws.cfg.UseGitignore && matchGitignore(ws.patterns, rel, d.IsDir())
}

func (ws *walkState) handleFile(p, rel string, d fs.DirEntry) error {
	if !ws.cfg.FollowSymlinks && isSymlink(d) {
		return nil
	}
	if !matchPattern(ws.cfg.Pattern, rel) {
		return nil
	}
	info, err := os.Stat(p)
	if err != nil || !info.Mode().IsRegular() {
		return nil
	}
	ws.files = append(ws.files, FileInfo{
		RelPath: rel,
		AbsPath: p,
		Size:    info.Size(),
		Mode:    info.Mode().Perm(),
	})
	return nil
}

// matchPattern matches pattern against the base name of rel, or against the
// whole relative path when the pattern names directories.
func matchPattern(pattern, rel string) bool {
	target := path.Base(rel)
	if strings.Contains(pattern, "/") {
		target = rel
	}
	ok, _ := path.Match(pattern, target)
	return ok
}

func isSymlink(d fs.DirEntry) bool {
	return d.Type()&fs.ModeSymlink != 0
}

// hasExcludedPrefix reports whether base begins with any of the exclude keys.
func hasExcludedPrefix(base string, exclude map[string]struct{}) bool {
	if _, ok := exclude[base]; ok {
		return true
	}
	for k := range exclude {
		if strings.HasPrefix(base, k) {
			return true
		}
	}
	return false
}

func toSet(list []string) map[string]struct{} {
	m := make(map[string]struct{}, len(list))
	for _, v := range list {
		if v = strings.TrimSpace(v); v != "" {
			m[v] = struct{}{}
		}
	}
	return m
}

// ---------------- .gitignore support ----------------

type gitPattern struct {
	neg     bool // pattern starts with '!'
	dirOnly bool // pattern ends with '/'
	rx      *regexp.Regexp
}

// parseGitignore reads a root .gitignore. Supported: comments, blank lines,
// '!' negation, leading '/' anchoring, trailing '/' for directories, '**'
// across directories, '*' and '?' within one segment.
func parseGitignore(p string) ([]gitPattern, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var res []gitPattern
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		var gp gitPattern
		if strings.HasPrefix(line, "!") {
			gp.neg = true
			if line = strings.TrimSpace(line[1:]); line == "" {
				continue
			}
		}
		if strings.HasSuffix(line, "/") {
			gp.dirOnly = true
			line = strings.TrimSuffix(line, "/")
		}
		anchored := strings.HasPrefix(line, "/")
		gp.rx = compileGitGlob(strings.TrimPrefix(line, "/"), anchored)
		res = append(res, gp)
	}
	return res, s.Err()
}

func compileGitGlob(glob string, anchored bool) *regexp.Regexp {
	esc := regexp.QuoteMeta(glob)
	esc = strings.ReplaceAll(esc, `\*\*`, "\x00")
	esc = strings.ReplaceAll(esc, `\*`, "[^/]*")
	esc = strings.ReplaceAll(esc, `\?`, "[^/]")
	esc = strings.ReplaceAll(esc, "\x00", ".*")
	if anchored {
		return regexp.MustCompile("^" + esc + "$")
	}
	return regexp.MustCompile("(^|.*/)" + esc + "$")
}

// matchGitignore applies patterns in order; the last match wins.
func matchGitignore(pats []gitPattern, rel string, isDir bool) bool {
	ignored := false
	for _, p := range pats {
		if p.dirOnly && !isDir {
			continue
		}
		if p.rx.MatchString(rel) {
			ignored = !p.neg
		}
	}
	return ignored
}
