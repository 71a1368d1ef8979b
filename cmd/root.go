package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/neurogym/internal/config"
	"github.com/abhisek/neurogym/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "neurogym",
	Short: "Adaptive cognitive training in the terminal",
	Long: "neurogym runs short cognitive-training exercises (memory span, n-back,\n" +
		"visual search, Stroop, task switching, UFOV, word pairs) whose difficulty\n" +
		"adapts to your performance trial by trial.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, "")
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides NEUROGYM_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default $XDG_CONFIG_HOME/neurogym/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.Flags().Int("trials", 0, "Trials per session (default: per exercise)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(exercisesCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(wordsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the config file or NEUROGYM_DB, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg *config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg != nil && cfg.DB != "" {
		return cfg.DB, store.EnsureDir(cfg.DB)
	}
	return store.DefaultDBPath()
}
