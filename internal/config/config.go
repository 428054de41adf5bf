// Package config resolves the environment-backed defaults of chunk-namer.
// Command-line flags override every value loaded here.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"chunk-namer/internal/chunks"
	"chunk-namer/internal/walkwalk"
)

// Config holds the defaults a run starts from before flags are applied.
type Config struct {
	// Root is the bookdown source directory.
	Root string
	// Pattern selects the documents to relabel.
	Pattern string
	// PadWidth is the zero-padding of chunk sequence numbers.
	PadWidth int
	// Exclude lists base-name prefixes the walk skips.
	Exclude []string
	// LogLevel is one of debug, info, warn, error.
	LogLevel string
}

// Load reads the CHUNK_NAMER_* environment variables. Unset variables and
// unparsable numbers fall back to the built-in defaults; call Validate on
// the result.
func Load() Config {
	return Config{
		Root:     envOr("CHUNK_NAMER_ROOT", "bookdown"),
		Pattern:  envOr("CHUNK_NAMER_PATTERN", chunks.DefaultPattern),
		PadWidth: envInt("CHUNK_NAMER_PAD", chunks.DefaultPadWidth),
		Exclude:  envList("CHUNK_NAMER_EXCLUDE", walkwalk.DefaultExclude),
		LogLevel: envOr("CHUNK_NAMER_LOG_LEVEL", "info"),
	}
}

// Validate reports the first setting that cannot drive a run.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Root) == "" {
		return fmt.Errorf("root directory is required")
	}
	if strings.TrimSpace(c.Pattern) == "" {
		return fmt.Errorf("pattern must be non-empty")
	}
	if c.PadWidth < 0 || c.PadWidth > 9 {
		return fmt.Errorf("pad width must be between 0 and 9, got %d", c.PadWidth)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps a level name onto slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return l, nil
}

// SplitList splits a comma-separated list, dropping empty items.
func SplitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v, ok := os.LookupEnv(key); ok {
		return SplitList(v)
	}
	return append([]string(nil), fallback...)
}
