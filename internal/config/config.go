// Package config loads neurogym settings from an optional config file and
// NEUROGYM_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/viper"

	"github.com/abhisek/neurogym/internal/exercise"
	"github.com/abhisek/neurogym/internal/logging"
)

// Word pair sources.
const (
	WordsStatic = "static"
	WordsLLM    = "llm"
)

// Config is the merged configuration.
type Config struct {
	DB    string         `mapstructure:"db"`
	Log   logging.Config `mapstructure:"log"`
	Words WordsConfig    `mapstructure:"words"`

	// Exercises maps exercise IDs to descriptor overrides.
	Exercises map[string]exercise.Override `mapstructure:"exercises"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-"`
}

// WordsConfig selects where word-pairs content comes from.
type WordsConfig struct {
	Source string `mapstructure:"source"`
	Theme  string `mapstructure:"theme"`
}

// Load reads the config file at path, or the default location when path
// is empty, and merges NEUROGYM_* environment variables over it. A missing
// default file is not an error; a missing explicit file is.
func Load(path string) (*Config, error) {
	v := viper.New()

	def := logging.DefaultConfig()
	v.SetDefault("log.level", def.Level)
	v.SetDefault("log.format", def.Format)
	v.SetDefault("words.source", WordsStatic)

	v.BindEnv("db", "NEUROGYM_DB")
	v.BindEnv("log.level", "NEUROGYM_LOG_LEVEL")
	v.BindEnv("log.format", "NEUROGYM_LOG_FORMAT")
	v.BindEnv("log.file", "NEUROGYM_LOG_FILE")
	v.BindEnv("words.source", "NEUROGYM_WORDS_SOURCE")
	v.BindEnv("words.theme", "NEUROGYM_WORDS_THEME")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if dir, err := defaultDir(); err == nil {
		v.SetConfigName("config")
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Words.Source {
	case WordsStatic, WordsLLM:
	default:
		return fmt.Errorf("words.source %q: must be %q or %q", c.Words.Source, WordsStatic, WordsLLM)
	}

	ids := make([]string, 0, len(c.Exercises))
	for id := range c.Exercises {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if _, err := c.Descriptor(id); err != nil {
			return fmt.Errorf("exercises.%s: %w", id, err)
		}
	}
	return nil
}

// Descriptor returns the catalog descriptor for id with any configured
// override applied.
func (c *Config) Descriptor(id string) (exercise.Descriptor, error) {
	d, err := exercise.Lookup(id)
	if err != nil {
		return exercise.Descriptor{}, err
	}
	o, ok := c.Exercises[id]
	if !ok || o.IsZero() {
		return d, nil
	}
	return d.WithOverride(o)
}

// Descriptors returns every catalog exercise with overrides applied, in
// catalog order.
func (c *Config) Descriptors() ([]exercise.Descriptor, error) {
	all := exercise.All()
	out := make([]exercise.Descriptor, 0, len(all))
	for _, d := range all {
		od, err := c.Descriptor(d.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, od)
	}
	return out, nil
}

// defaultDir returns $XDG_CONFIG_HOME/neurogym or ~/.config/neurogym.
func defaultDir() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "neurogym"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "neurogym"), nil
}
