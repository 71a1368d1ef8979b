package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/neurogym/internal/config"
)

var wordsCmd = &cobra.Command{
	Use:   "words",
	Short: "Preview word pairs for the paired-associates exercise",
	RunE: func(cmd *cobra.Command, args []string) error {
		n, _ := cmd.Flags().GetInt("count")
		if n < 1 {
			return fmt.Errorf("--count must be positive, got %d", n)
		}

		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		if theme, _ := cmd.Flags().GetString("theme"); theme != "" {
			e.cfg.Words.Theme = theme
		}
		if cmd.Flags().Changed("llm") {
			if useLLM, _ := cmd.Flags().GetBool("llm"); useLLM {
				e.cfg.Words.Source = config.WordsLLM
			} else {
				e.cfg.Words.Source = config.WordsStatic
			}
		}

		pairs, err := e.wordSource(cmd.Context()).Pairs(cmd.Context(), n)
		if err != nil {
			return fmt.Errorf("generate pairs: %w", err)
		}
		for i, p := range pairs {
			fmt.Printf("%2d. %s\n", i+1, p)
		}
		return nil
	},
}

func init() {
	wordsCmd.Flags().IntP("count", "n", 6, "Number of pairs")
	wordsCmd.Flags().StringP("theme", "t", "", "Theme for generated pairs (LLM source only)")
	wordsCmd.Flags().Bool("llm", false, "Generate with the configured LLM instead of the built-in list")
}
