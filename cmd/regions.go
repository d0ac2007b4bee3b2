package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-poi-metrics/internal/region"
	"github.com/pable/go-poi-metrics/internal/report"
)

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "Manage the POI region table",
}

var regionsImportCmd = &cobra.Command{
	Use:   "import <regions.csv|regions.xlsx|regions.yaml>",
	Short: "Replace the stored regions with a boundary file",
	Long: `Import POI boundaries. CSV files use the columns Name, Shape and
Coordinate 1..Coordinate 9, each coordinate cell holding an "x, y" pair.
XLSX workbooks use the same columns on their first sheet.
YAML files list regions with name, label and boundary [[x, y], ...].
Row order is kept: a point inside overlapping regions belongs to the first one.`,
	Args: cobra.ExactArgs(1),
	RunE: runRegionsImport,
}

var regionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored regions in classification order",
	Args:  cobra.NoArgs,
	RunE:  runRegionsList,
}

func init() {
	regionsCmd.AddCommand(regionsImportCmd)
	regionsCmd.AddCommand(regionsListCmd)
}

func runRegionsImport(cmd *cobra.Command, args []string) error {
	defs, err := region.LoadFile(args[0])
	if err != nil {
		return err
	}
	set, dropped := region.NewSet(defs)
	for _, name := range dropped {
		fmt.Fprintf(os.Stderr, "  - skipping region %q: fewer than %d vertices, duplicate or reserved name\n", name, region.MinVertices)
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.ReplaceRegions(defs); err != nil {
		return fmt.Errorf("store regions: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Stored %d regions (%d usable).\n", len(defs), set.Len())
	return nil
}

func runRegionsList(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	defs, err := db.LoadRegions()
	if err != nil {
		return fmt.Errorf("load regions: %w", err)
	}
	if len(defs) == 0 {
		fmt.Fprintln(os.Stdout, "No regions stored yet. Run 'poimetrics regions import <file>' to add some.")
		return nil
	}
	set, _ := region.NewSet(defs)
	report.PrintRegions(os.Stdout, set)
	return nil
}
