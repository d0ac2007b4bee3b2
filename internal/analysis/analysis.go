// Package analysis wires extraction, classification, aggregation and density
// binning into one batch run over in-memory inputs.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang/geo/r2"
	"github.com/google/uuid"

	"github.com/pable/go-poi-metrics/internal/aggregator"
	"github.com/pable/go-poi-metrics/internal/density"
	"github.com/pable/go-poi-metrics/internal/extractor"
	"github.com/pable/go-poi-metrics/internal/metrics"
	"github.com/pable/go-poi-metrics/internal/model"
	"github.com/pable/go-poi-metrics/internal/region"
	"github.com/pable/go-poi-metrics/internal/telemetry"
)

// Fatal input conditions. Everything else is recorded in the Result.
var (
	ErrNoSamples = errors.New("no telemetry samples")
	ErrNoRegions = errors.New("no region definitions")
)

// Input is everything a run reads. Source names the telemetry origin for the run record.
type Input struct {
	Samples []model.Sample
	Regions []model.RegionDef
	Source  string
}

// Options tunes a run. Zero values fall back to package defaults.
type Options struct {
	LandingWindow int64
	Workers       int
	DensityBins   int
	MapExtent     float64

	Metrics *metrics.Run     // optional
	Now     func() time.Time // optional, for tests
}

// Result holds the summaries and the intermediate events of one run.
type Result struct {
	Run            model.RunSummary
	Regions        *region.Set
	DroppedRegions []string
	Landings       []model.LandingSummary
	Deaths         []model.DeathSummary
	LandingEvents  []model.LandingEvent
	DeathEvents    []model.DeathEvent
	DeathDensity   *density.Grid
}

// Run executes one analysis pass.
func Run(ctx context.Context, in Input, opts Options) (*Result, error) {
	if len(in.Samples) == 0 {
		return nil, ErrNoSamples
	}
	if len(in.Regions) == 0 {
		return nil, ErrNoRegions
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	window := opts.LandingWindow
	if window == 0 {
		window = model.DefaultLandingWindow
	}
	started := now()

	set, dropped := region.NewSet(in.Regions)

	ex, err := extractor.ExtractAll(ctx, telemetry.Group(in.Samples), extractor.Options{
		Window:  window,
		Workers: opts.Workers,
	})
	if err != nil {
		return nil, err
	}

	landEvents, deathEvents := aggregator.Classify(ex.Trajectories, set)
	landings, deaths := aggregator.Aggregate(landEvents, deathEvents)
	aggregator.ApplyLabels(landings, deaths, set)

	deathPts := make([]r2.Point, len(deathEvents))
	for i, e := range deathEvents {
		deathPts[i] = r2.Point{X: e.X, Y: e.Y}
	}
	grid := density.Bin(deathPts, opts.DensityBins, opts.MapExtent)

	res := &Result{
		Regions:        set,
		DroppedRegions: dropped,
		Landings:       landings,
		Deaths:         deaths,
		LandingEvents:  landEvents,
		DeathEvents:    deathEvents,
		DeathDensity:   grid,
		Run: model.RunSummary{
			RunID:            uuid.NewString(),
			CreatedAt:        started.UTC().Format(time.RFC3339),
			Source:           in.Source,
			LandingWindow:    window,
			Regions:          set.Len(),
			Players:          len(ex.Trajectories),
			SkippedPlayers:   len(ex.Skipped),
			UnclassifiedLand: countLand(landEvents),
			UnclassifiedDead: countDead(deathEvents),
		},
	}

	if m := opts.Metrics; m != nil {
		m.SamplesRead.Add(float64(len(in.Samples)))
		m.PlayersExtracted.Add(float64(res.Run.Players))
		m.PlayersSkipped.Add(float64(res.Run.SkippedPlayers))
		m.RegionsLoaded.Set(float64(set.Len()))
		m.RegionsDropped.Add(float64(len(dropped)))
		m.UnclassifiedEvent.WithLabelValues("landing").Add(float64(res.Run.UnclassifiedLand))
		m.UnclassifiedEvent.WithLabelValues("death").Add(float64(res.Run.UnclassifiedDead))
		m.Finish(started, now())
	}
	return res, nil
}

func countLand(events []model.LandingEvent) int {
	n := 0
	for _, e := range events {
		if e.Region == model.Unclassified {
			n++
		}
	}
	return n
}

func countDead(events []model.DeathEvent) int {
	n := 0
	for _, e := range events {
		if e.Region == model.Unclassified {
			n++
		}
	}
	return n
}

// LoadFiles reads telemetry and region files into an Input. A missing or
// unreadable file is fatal for the run.
func LoadFiles(telemetryPath, regionsPath string) (Input, error) {
	samples, err := telemetry.ReadFile(telemetryPath)
	if err != nil {
		return Input{}, fmt.Errorf("read telemetry: %w", err)
	}
	defs, err := region.LoadFile(regionsPath)
	if err != nil {
		return Input{}, fmt.Errorf("read regions: %w", err)
	}
	return Input{Samples: samples, Regions: defs, Source: telemetryPath}, nil
}
