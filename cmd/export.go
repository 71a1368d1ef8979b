package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/neurogym/internal/exercise"
	"github.com/abhisek/neurogym/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export sessions and trials to an Excel workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		id, _ := cmd.Flags().GetString("exercise")
		fromFlag, _ := cmd.Flags().GetString("from")
		toFlag, _ := cmd.Flags().GetString("to")

		from, err := parseDate(fromFlag, false)
		if err != nil {
			return err
		}
		to, err := parseDate(toFlag, true)
		if err != nil {
			return err
		}
		if id != "" {
			if _, err := exercise.Lookup(id); err != nil {
				return err
			}
		}

		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		res, err := export.WriteFile(cmd.Context(), e.store.EventRepo(), out, export.Options{Exercise: id, From: from, To: to})
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		fmt.Printf("Wrote %d sessions and %d trials to %s\n", res.Sessions, res.Trials, out)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("out", "o", "neurogym.xlsx", "Output file")
	exportCmd.Flags().StringP("exercise", "e", "", "Only sessions of this exercise")
	exportCmd.Flags().String("from", "", "Only sessions finished on or after this date (YYYY-MM-DD)")
	exportCmd.Flags().String("to", "", "Only sessions finished on or before this date (YYYY-MM-DD)")
}
