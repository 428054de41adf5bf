package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CHUNK_NAMER_ROOT", "")
	t.Setenv("CHUNK_NAMER_PATTERN", "")
	t.Setenv("CHUNK_NAMER_PAD", "")
	t.Setenv("CHUNK_NAMER_LOG_LEVEL", "")

	cfg := Load()
	assert.Equal(t, "bookdown", cfg.Root)
	assert.Equal(t, "*.Rmd", cfg.Pattern)
	assert.Equal(t, 3, cfg.PadWidth)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Contains(t, cfg.Exclude, "_book")
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CHUNK_NAMER_ROOT", "book")
	t.Setenv("CHUNK_NAMER_PATTERN", "0*.Rmd")
	t.Setenv("CHUNK_NAMER_PAD", "2")
	t.Setenv("CHUNK_NAMER_EXCLUDE", "_book, drafts,,")
	t.Setenv("CHUNK_NAMER_LOG_LEVEL", "debug")

	cfg := Load()
	assert.Equal(t, "book", cfg.Root)
	assert.Equal(t, "0*.Rmd", cfg.Pattern)
	assert.Equal(t, 2, cfg.PadWidth)
	assert.Equal(t, []string{"_book", "drafts"}, cfg.Exclude)
	require.NoError(t, cfg.Validate())

	l, err := ParseLevel(cfg.LogLevel)
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, l)
}

func TestLoadIgnoresBadPad(t *testing.T) {
	t.Setenv("CHUNK_NAMER_PAD", "wide")
	assert.Equal(t, 3, Load().PadWidth)
}

func TestValidate(t *testing.T) {
	base := Config{Root: "b", Pattern: "*.Rmd", PadWidth: 3, LogLevel: "info"}
	assert.NoError(t, base.Validate())

	c := base
	c.Root = " "
	assert.Error(t, c.Validate())

	c = base
	c.Pattern = ""
	assert.Error(t, c.Validate())

	c = base
	c.PadWidth = 12
	assert.Error(t, c.Validate())

	c = base
	c.LogLevel = "loud"
	assert.Error(t, c.Validate())
}
