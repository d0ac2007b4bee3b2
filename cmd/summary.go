package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
)

// summaryCmd is the cobra command for displaying a high-level database overview.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show a high-level overview of the database",
	Long: `Display aggregate statistics about the stored data: sample, player and
match counts, the region table size, and the most recent analysis runs.`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

func runSummary(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	ov, err := db.CountSamples()
	if err != nil {
		return fmt.Errorf("count samples: %w", err)
	}
	defs, err := db.LoadRegions()
	if err != nil {
		return fmt.Errorf("load regions: %w", err)
	}
	runs, err := db.ListRuns()
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if ov.Samples == 0 && len(defs) == 0 && len(runs) == 0 {
		fmt.Fprintln(os.Stdout, "Database is empty. Run 'poimetrics ingest <breadcrumbs.csv>' to add telemetry.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "\n=== Database Summary ===\n\n")
	fmt.Fprintf(os.Stdout, "  Samples stored : %d\n", ov.Samples)
	fmt.Fprintf(os.Stdout, "  Matches        : %d\n", ov.Matches)
	fmt.Fprintf(os.Stdout, "  Players        : %d\n", ov.Players)
	fmt.Fprintf(os.Stdout, "  Regions        : %d\n", len(defs))
	fmt.Fprintf(os.Stdout, "  Runs           : %d\n", len(runs))

	if len(runs) == 0 {
		return nil
	}

	// Latest runs, newest first.
	fmt.Fprintf(os.Stdout, "\n--- Recent Runs ---\n\n")
	rt := tablewriter.NewTable(os.Stdout, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))
	rt.Header("RUN", "CREATED", "PLAYERS", "OTHER LAND%", "OTHER DEATH%")
	for i, r := range runs {
		if i == 5 {
			break
		}
		rt.Append(
			r.RunID[:min(8, len(r.RunID))],
			r.CreatedAt,
			strconv.Itoa(r.Players),
			pct(r.UnclassifiedLand, r.Players),
			pct(r.UnclassifiedDead, r.Players),
		)
	}
	rt.Render()
	return nil
}

func pct(n, total int) string {
	if total == 0 {
		return "-"
	}
	return fmt.Sprintf("%.0f%%", 100*float64(n)/float64(total))
}
