package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/pable/go-poi-metrics/internal/analysis"
	"github.com/pable/go-poi-metrics/internal/config"
	"github.com/pable/go-poi-metrics/internal/metrics"
	"github.com/pable/go-poi-metrics/internal/region"
	"github.com/pable/go-poi-metrics/internal/report"
	"github.com/pable/go-poi-metrics/internal/storage"
	"github.com/pable/go-poi-metrics/internal/telemetry"
)

var (
	analyzeTelemetry   string
	analyzeRegions     string
	analyzeWindow      int64
	analyzeWorkers     int
	analyzeBins        int
	analyzeTopCells    int
	analyzeSave        bool
	analyzeOutDir      string
	analyzeMetricsFile string
	analyzeFocus       string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Compute landing, survival and death statistics per POI",
	Long: `Run the landing/death analysis and print three rankings:
landing hotspots (player count), safest landings (survival score 0-100)
and deadliest POIs (death count), followed by the raw death density.

Telemetry comes from --telemetry or, when omitted, from samples ingested
into the database. Regions come from --regions or the stored region table.

Per player: the landing is the lowest point within the landing window after
the first active sample, survival time is the last active time step, and the
death location is the sample with the highest life value.`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVar(&analyzeTelemetry, "telemetry", "", "breadcrumb CSV (.csv, .csv.gz, .csv.zst); default: ingested samples")
	f.StringVar(&analyzeRegions, "regions", "", "region boundary file (.csv or .yaml); default: stored regions")
	f.Int64Var(&analyzeWindow, "window", 0, "landing window in time steps (overrides config)")
	f.IntVar(&analyzeWorkers, "workers", 0, "concurrent extraction workers (overrides config)")
	f.IntVar(&analyzeBins, "bins", 0, "death density bins per axis (overrides config)")
	f.IntVar(&analyzeTopCells, "top-cells", 0, "density cells to list (overrides config)")
	f.BoolVar(&analyzeSave, "save", false, "store the run and its summaries in the database")
	f.StringVar(&analyzeOutDir, "out-dir", "", "write landing_summary.csv and death_summary.csv here")
	f.StringVar(&analyzeMetricsFile, "metrics-file", "", "write run metrics in Prometheus text format")
	f.StringVar(&analyzeFocus, "region", "", "highlight this region in the tables")
}

// analyzeConfig applies flags the user set explicitly on top of the layered config.
func analyzeConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("window") {
		cfg.LandingWindow = analyzeWindow
	}
	if flags.Changed("workers") {
		cfg.Workers = analyzeWorkers
	}
	if flags.Changed("bins") {
		cfg.DensityBins = analyzeBins
	}
	if flags.Changed("top-cells") {
		cfg.TopCells = analyzeTopCells
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := analyzeConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// The database is only needed when an input is missing or the run is saved.
	var db *storage.DB
	if analyzeTelemetry == "" || analyzeRegions == "" || analyzeSave {
		if db, err = openDB(); err != nil {
			return err
		}
		defer db.Close()
	}

	in, err := loadAnalysisInput(db)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Analyzing %d samples against %d region definitions...\n", len(in.Samples), len(in.Regions))

	m := metrics.NewRun()
	res, err := analysis.Run(ctx, in, analysis.Options{
		LandingWindow: cfg.LandingWindow,
		Workers:       cfg.Workers,
		DensityBins:   cfg.DensityBins,
		MapExtent:     cfg.MapExtent,
		Metrics:       m,
	})
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}
	for _, name := range res.DroppedRegions {
		fmt.Fprintf(os.Stderr, "  - skipped region %q: fewer than %d vertices, duplicate or reserved name\n", name, region.MinVertices)
	}
	fmt.Fprintf(os.Stderr, "Found landing data for %d players (%d without active samples).\n",
		res.Run.Players, res.Run.SkippedPlayers)

	report.PrintRunHeader(os.Stdout, res.Run)
	report.PrintHotspots(os.Stdout, res.Landings, analyzeFocus)
	report.PrintSafest(os.Stdout, res.Landings, analyzeFocus)
	report.PrintDeadliest(os.Stdout, res.Deaths, analyzeFocus)
	report.PrintDensity(os.Stdout, res.DeathDensity, cfg.TopCells)

	if analyzeOutDir != "" {
		if err := report.WriteCSVFiles(analyzeOutDir, res.Landings, res.Deaths); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Wrote summaries to %s\n", analyzeOutDir)
	}
	if analyzeSave {
		if err := db.InsertRun(res.Run, res.Landings, res.Deaths); err != nil {
			return fmt.Errorf("save run: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Saved run %s\n", res.Run.RunID)
	}
	if analyzeMetricsFile != "" {
		if err := m.WriteTextfile(analyzeMetricsFile); err != nil {
			return err
		}
	}
	return nil
}

// loadAnalysisInput reads each input from its file flag, falling back to the database.
func loadAnalysisInput(db *storage.DB) (analysis.Input, error) {
	if analyzeTelemetry != "" && analyzeRegions != "" {
		fmt.Fprintf(os.Stderr, "Reading %s...\n", analyzeTelemetry)
		return analysis.LoadFiles(analyzeTelemetry, analyzeRegions)
	}

	var in analysis.Input
	var err error
	if analyzeTelemetry != "" {
		fmt.Fprintf(os.Stderr, "Reading %s...\n", analyzeTelemetry)
		if in.Samples, err = telemetry.ReadFile(analyzeTelemetry); err != nil {
			return in, fmt.Errorf("read telemetry: %w", err)
		}
		in.Source = analyzeTelemetry
	} else {
		if in.Samples, err = db.LoadSamples(); err != nil {
			return in, fmt.Errorf("load samples: %w", err)
		}
		if len(in.Samples) == 0 {
			return in, fmt.Errorf("no samples stored: run 'poimetrics ingest <breadcrumbs.csv>' or pass --telemetry")
		}
		in.Source = "db"
	}

	if analyzeRegions != "" {
		if in.Regions, err = region.LoadFile(analyzeRegions); err != nil {
			return in, fmt.Errorf("read regions: %w", err)
		}
	} else {
		if in.Regions, err = db.LoadRegions(); err != nil {
			return in, fmt.Errorf("load regions: %w", err)
		}
		if len(in.Regions) == 0 {
			return in, fmt.Errorf("no regions stored: run 'poimetrics regions import <file>' or pass --regions")
		}
	}
	return in, nil
}
