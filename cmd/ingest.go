package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-poi-metrics/internal/telemetry"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <breadcrumbs.csv>",
	Short: "Load breadcrumb telemetry into the database",
	Long: `Read a breadcrumb CSV (match_id, player_id, time_step, pos_x, pos_y, pos_z, life)
and store it. Files ending in .gz or .zst are decompressed on the fly.
Re-ingesting a file replaces matching rows instead of duplicating them.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	path := args[0]

	fmt.Fprintf(os.Stderr, "Reading %s...\n", path)
	samples, err := telemetry.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read telemetry: %w", err)
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	err = db.InsertSamples(samples, func(players int) {
		fmt.Fprintf(os.Stderr, "  --> committed players up to %d\n", players)
	})
	if err != nil {
		return fmt.Errorf("store samples: %w", err)
	}

	ov, err := db.CountSamples()
	if err != nil {
		return fmt.Errorf("count samples: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Stored %d samples from %s. Database now holds %d samples, %d players across %d matches.\n",
		len(samples), path, ov.Samples, ov.Players, ov.Matches)
	return nil
}
