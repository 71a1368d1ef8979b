package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/neurogym/internal/difficulty"
	"github.com/abhisek/neurogym/internal/exercise"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "neurogym.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, k := range []string{"NEUROGYM_DB", "NEUROGYM_LOG_LEVEL", "NEUROGYM_LOG_FORMAT",
		"NEUROGYM_WORDS_SOURCE", "NEUROGYM_WORDS_THEME"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, WordsStatic, cfg.Words.Source)
	assert.Empty(t, cfg.DB)
	assert.Empty(t, cfg.File)

	d, err := cfg.Descriptor(exercise.DigitSpan)
	require.NoError(t, err)
	want, _ := exercise.Lookup(exercise.DigitSpan)
	assert.Equal(t, want.Difficulty, d.Difficulty)
}

func TestLoadFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
db: /tmp/ng.db
log:
  level: debug
  format: json
words:
  source: llm
  theme: animals
exercises:
  digit-span:
    initial: 5
    max: 12
    total_trials: 20
  stroop:
    step: 100
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.File)
	assert.Equal(t, "/tmp/ng.db", cfg.DB)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, WordsLLM, cfg.Words.Source)
	assert.Equal(t, "animals", cfg.Words.Theme)

	span, err := cfg.Descriptor(exercise.DigitSpan)
	require.NoError(t, err)
	assert.Equal(t, 5, span.Difficulty.Initial)
	assert.Equal(t, 3, span.Difficulty.Min)
	assert.Equal(t, 12, span.Difficulty.Max)
	assert.Equal(t, 20, span.TotalTrials)

	stroop, err := cfg.Descriptor(exercise.Stroop)
	require.NoError(t, err)
	assert.Equal(t, 100, stroop.Difficulty.Step)
	assert.Equal(t, difficulty.Inverted, stroop.Difficulty.Direction)

	all, err := cfg.Descriptors()
	require.NoError(t, err)
	assert.Len(t, all, len(exercise.All()))
	assert.Equal(t, 5, all[0].Difficulty.Initial)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, "log:\n  level: debug\n")
	t.Setenv("NEUROGYM_LOG_LEVEL", "error")
	t.Setenv("NEUROGYM_DB", "/data/env.db")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, "/data/env.db", cfg.DB)
}

func TestLoadDefaultLocation(t *testing.T) {
	isolate(t)
	dir := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "neurogym")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("words:\n  theme: food\n"), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "food", cfg.Words.Theme)
	assert.NotEmpty(t, cfg.File)
}

func TestLoadErrors(t *testing.T) {
	isolate(t)

	t.Run("missing explicit file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("unknown exercise", func(t *testing.T) {
		_, err := Load(writeConfig(t, "exercises:\n  juggling:\n    initial: 3\n"))
		assert.ErrorIs(t, err, exercise.ErrUnknownExercise)
	})

	t.Run("invalid bounds", func(t *testing.T) {
		_, err := Load(writeConfig(t, "exercises:\n  digit-span:\n    min: 9\n    max: 3\n"))
		assert.ErrorIs(t, err, difficulty.ErrInvalidConfig)

		var cerr *difficulty.ConfigError
		assert.True(t, errors.As(err, &cerr))
	})

	t.Run("bad words source", func(t *testing.T) {
		_, err := Load(writeConfig(t, "words:\n  source: telepathy\n"))
		assert.Error(t, err)
	})
}
