package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/neurogym/internal/app"
	"github.com/abhisek/neurogym/internal/config"
	"github.com/abhisek/neurogym/internal/llm"
	"github.com/abhisek/neurogym/internal/logging"
	"github.com/abhisek/neurogym/internal/session"
	"github.com/abhisek/neurogym/internal/stimulus"
	"github.com/abhisek/neurogym/internal/store"
	"github.com/abhisek/neurogym/internal/tracker"
	"github.com/abhisek/neurogym/internal/wordpairs"
)

// env is what most commands need: merged config, a logger and the store.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *store.Store
	dbPath string
}

// openEnv loads config, builds the logger and opens the store. toFile sends
// logs to a file next to the database, for commands that own the terminal.
func openEnv(cmd *cobra.Command, toFile bool) (*env, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}

	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	if toFile && cfg.Log.File == "" {
		cfg.Log.File = filepath.Join(filepath.Dir(dbPath), "neurogym.log")
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(dbPath)
	if err != nil {
		logger.Sync()
		return nil, fmt.Errorf("open store: %w", err)
	}
	logger.Debug("store opened", zap.String("path", dbPath), zap.String("config", cfg.File))
	return &env{cfg: cfg, logger: logger, store: st, dbPath: dbPath}, nil
}

func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		e.logger.Warn("close store", zap.Error(err))
	}
	e.logger.Sync()
}

func (e *env) tracker() *tracker.Tracker {
	return tracker.New(e.store.EventRepo(), e.store.SnapshotRepo(), e.logger)
}

// wordSource returns the configured word-pair source. The LLM source falls
// back to the built-in list, and is skipped entirely when no provider is
// configured.
func (e *env) wordSource(ctx context.Context) wordpairs.Source {
	static := wordpairs.NewStaticSource(nil)
	if e.cfg.Words.Source != config.WordsLLM {
		return static
	}

	lcfg, ok := llm.Resolve()
	if !ok {
		e.logger.Warn("words.source is llm but no LLM provider is configured; using built-in word pairs")
		return static
	}
	provider, err := llm.NewProvider(ctx, lcfg, e.store.EventRepo(), e.logger)
	if err != nil {
		e.logger.Warn("LLM provider unavailable; using built-in word pairs", zap.Error(err))
		return static
	}

	wcfg := wordpairs.DefaultConfig()
	wcfg.Theme = e.cfg.Words.Theme
	return wordpairs.NewLLMSource(provider, static, wcfg, e.logger)
}

// runApp launches the TUI, opening exerciseID right away when set.
func runApp(cmd *cobra.Command, exerciseID string) error {
	e, err := openEnv(cmd, true)
	if err != nil {
		return err
	}
	defer e.Close()

	exercises, err := e.cfg.Descriptors()
	if err != nil {
		return err
	}
	trials, _ := cmd.Flags().GetInt("trials")
	tr := e.tracker()
	events := e.store.EventRepo()

	deps := app.Deps{
		Exercises: exercises,
		Recorder:  tr,
		Levels:    tr,
		Presenter: stimulus.NewBuilder(nil, e.wordSource(cmd.Context())),
		Events:    events,
		Planner:   session.NewPlanner(events, exercises),
		Logger:    e.logger,
		Trials:    trials,
	}
	if exerciseID != "" {
		d, err := e.cfg.Descriptor(exerciseID)
		if err != nil {
			return err
		}
		deps.Start = &d
	}
	return app.Run(deps)
}
