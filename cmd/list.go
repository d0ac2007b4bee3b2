package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-poi-metrics/internal/report"
)

var listCmd = &cobra.Command{
	Use:     "runs",
	Aliases: []string{"list"},
	Short:   "List all stored analysis runs",
	Args:    cobra.NoArgs,
	RunE:    runList,
}

func runList(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.ListRuns()
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stdout, "No runs stored yet. Run 'poimetrics analyze --save' to add one.")
		return nil
	}
	report.PrintRuns(os.Stdout, runs)
	return nil
}
