package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-poi-metrics/internal/report"
)

var showFocus string

var showCmd = &cobra.Command{
	Use:   "show <run-id-prefix>",
	Short: "Show a stored run's POI tables by id prefix",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().StringVar(&showFocus, "region", "", "highlight this region in the tables")
}

func runShow(cmd *cobra.Command, args []string) error {
	prefix := args[0]

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	run, err := db.GetRunByPrefix(prefix)
	if err != nil {
		return fmt.Errorf("query run: %w", err)
	}
	if run == nil {
		fmt.Fprintf(os.Stderr, "No run found with id prefix %q\n", prefix)
		return nil
	}

	landings, err := db.GetLandingSummaries(run.RunID)
	if err != nil {
		return fmt.Errorf("get landing summaries: %w", err)
	}
	deaths, err := db.GetDeathSummaries(run.RunID)
	if err != nil {
		return fmt.Errorf("get death summaries: %w", err)
	}

	report.PrintRunHeader(os.Stdout, *run)
	report.PrintHotspots(os.Stdout, landings, showFocus)
	report.PrintSafest(os.Stdout, landings, showFocus)
	report.PrintDeadliest(os.Stdout, deaths, showFocus)
	return nil
}
