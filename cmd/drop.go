package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-poi-metrics/internal/storage"
)

var dropForce bool

// dropCmd deletes the metrics database file.
var dropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Delete the metrics database",
	Long: `Permanently delete the SQLite metrics database: ingested samples, the
region table and every saved analysis run. Re-ingest telemetry and re-import
regions afterwards to rebuild.`,
	Args: cobra.NoArgs,
	RunE: runDrop,
}

func init() {
	dropCmd.Flags().BoolVarP(&dropForce, "force", "f", false, "skip confirmation prompt")
}

func runDrop(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Fprintln(os.Stdout, "Database does not exist, nothing to drop.")
		return nil
	}

	if !dropForce {
		fmt.Fprintf(os.Stderr, "This will permanently delete: %s\n", dbPath)
		if contents, err := describeDB(); err == nil {
			fmt.Fprintf(os.Stderr, "  %s\n", contents)
		}
		fmt.Fprintf(os.Stderr, "Re-run with --force to confirm.\n")
		return nil
	}

	// WAL mode leaves side files next to the database.
	for _, p := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", p, err)
		}
	}
	fmt.Fprintf(os.Stdout, "Deleted: %s\n", dbPath)
	return nil
}

// describeDB summarizes what the database holds for the confirmation prompt.
func describeDB() (string, error) {
	db, err := storage.Open(dbPath)
	if err != nil {
		return "", err
	}
	defer db.Close()

	ov, err := db.CountSamples()
	if err != nil {
		return "", err
	}
	defs, err := db.LoadRegions()
	if err != nil {
		return "", err
	}
	runs, err := db.ListRuns()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d samples (%d players, %d matches), %d regions, %d runs",
		ov.Samples, ov.Players, ov.Matches, len(defs), len(runs)), nil
}
