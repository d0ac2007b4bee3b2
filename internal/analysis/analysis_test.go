package analysis

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/pable/go-poi-metrics/internal/metrics"
	"github.com/pable/go-poi-metrics/internal/model"
)

func squareDef(name, label string, x0, y0, x1, y1 float64) model.RegionDef {
	return model.RegionDef{Name: name, Label: label, Boundary: []model.Vertex{
		{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1},
	}}
}

// fixture: three players in match 7.
//   1 lands in Docks, survives to 400, dies in Farm.
//   2 lands in Farm, survives to 100, dies outside.
//   3 never becomes active.
func fixture() Input {
	s := func(p, t int64, x, y, z float64, life int64) model.Sample {
		return model.Sample{MatchID: 7, PlayerID: p, TimeStep: t, X: x, Y: y, Z: z, Life: life}
	}
	return Input{
		Source: "fixture",
		Samples: []model.Sample{
			s(1, 0, 50, 50, 9000, -1),
			s(1, 5, 50, 50, 10, 0),
			s(1, 400, 1050, 1050, 10, 3),
			s(2, 1, 1100, 1100, 4000, 0),
			s(2, 20, 1100, 1100, 5, 0),
			s(2, 100, 90000, 0, 5, 1),
			s(3, 1, 0, 0, 0, -1),
		},
		Regions: []model.RegionDef{
			squareDef("Docks", "A", 0, 0, 200, 200),
			squareDef("Farm", "B", 1000, 1000, 1200, 1200),
			{Name: "Broken", Label: "X", Boundary: []model.Vertex{{X: 1, Y: 1}}},
		},
	}
}

func TestRun(t *testing.T) {
	m := metrics.NewRun()
	clock := time.Date(2025, 6, 20, 15, 44, 1, 0, time.UTC)
	res, err := Run(context.Background(), fixture(), Options{
		Workers:     4,
		DensityBins: 10,
		MapExtent:   70000,
		Metrics:     m,
		Now:         func() time.Time { return clock },
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.Run.Players != 2 || res.Run.SkippedPlayers != 1 {
		t.Errorf("players=%d skipped=%d, want 2/1", res.Run.Players, res.Run.SkippedPlayers)
	}
	if res.Run.Regions != 2 || len(res.DroppedRegions) != 1 || res.DroppedRegions[0] != "Broken" {
		t.Errorf("regions=%d dropped=%v", res.Run.Regions, res.DroppedRegions)
	}
	if res.Run.UnclassifiedLand != 0 || res.Run.UnclassifiedDead != 1 {
		t.Errorf("unclassified land=%d dead=%d, want 0/1", res.Run.UnclassifiedLand, res.Run.UnclassifiedDead)
	}
	if res.Run.CreatedAt != "2025-06-20T15:44:01Z" || res.Run.LandingWindow != 45 || res.Run.RunID == "" {
		t.Errorf("run record: %+v", res.Run)
	}

	want := map[string]model.LandingSummary{
		"Docks": {Region: "Docks", Label: "A", PlayerCount: 1, AvgSurvivalTime: 400, SurvivalScore: 100},
		"Farm":  {Region: "Farm", Label: "B", PlayerCount: 1, AvgSurvivalTime: 100, SurvivalScore: 0},
	}
	if len(res.Landings) != 2 {
		t.Fatalf("want 2 landing rows, got %+v", res.Landings)
	}
	for _, l := range res.Landings {
		if l != want[l.Region] {
			t.Errorf("landing %s: got %+v want %+v", l.Region, l, want[l.Region])
		}
	}
	if len(res.Deaths) != 1 || res.Deaths[0] != (model.DeathSummary{Region: "Farm", Label: "B", DeathCount: 1}) {
		t.Errorf("deaths: %+v", res.Deaths)
	}

	// Player 2 died beyond the map extent.
	if res.DeathDensity.Total != 1 || res.DeathDensity.Outside != 1 {
		t.Errorf("density total=%d outside=%d", res.DeathDensity.Total, res.DeathDensity.Outside)
	}

	if got := testutil.ToFloat64(m.PlayersSkipped); got != 1 {
		t.Errorf("metrics skipped: %v", got)
	}
	if got := testutil.ToFloat64(m.SamplesRead); got != 7 {
		t.Errorf("metrics samples: %v", got)
	}
	if got := testutil.ToFloat64(m.UnclassifiedEvent.WithLabelValues("death")); got != 1 {
		t.Errorf("metrics unclassified deaths: %v", got)
	}
}

func TestRun_FatalInputs(t *testing.T) {
	in := fixture()
	in.Samples = nil
	if _, err := Run(context.Background(), in, Options{}); !errors.Is(err, ErrNoSamples) {
		t.Errorf("want ErrNoSamples, got %v", err)
	}
	in = fixture()
	in.Regions = nil
	if _, err := Run(context.Background(), in, Options{}); !errors.Is(err, ErrNoRegions) {
		t.Errorf("want ErrNoRegions, got %v", err)
	}
}

func TestRun_AllRegionsMalformedIsNotFatal(t *testing.T) {
	in := fixture()
	in.Regions = []model.RegionDef{{Name: "Line", Boundary: []model.Vertex{{X: 0, Y: 0}, {X: 5, Y: 5}}}}
	res, err := Run(context.Background(), in, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Landings) != 0 || len(res.Deaths) != 0 {
		t.Errorf("want empty summaries, got %+v / %+v", res.Landings, res.Deaths)
	}
	if res.Run.UnclassifiedLand != 2 {
		t.Errorf("every landing should be unclassified, got %d", res.Run.UnclassifiedLand)
	}
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	crumbs := filepath.Join(dir, "breadcrumbs.csv")
	regions := filepath.Join(dir, "regions.yaml")
	os.WriteFile(crumbs, []byte("match_id,player_id,time_step,pos_x,pos_y,pos_z,life\n1,1,0,10,10,1,0\n"), 0o644)
	os.WriteFile(regions, []byte("regions:\n  - name: Docks\n    label: A\n    boundary: [[0,0],[20,0],[20,20],[0,20]]\n"), 0o644)

	in, err := LoadFiles(crumbs, regions)
	if err != nil {
		t.Fatalf("LoadFiles: %v", err)
	}
	if len(in.Samples) != 1 || len(in.Regions) != 1 || in.Source != crumbs {
		t.Fatalf("unexpected input: %+v", in)
	}
	res, err := Run(context.Background(), in, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Landings) != 1 || res.Landings[0].Region != "Docks" {
		t.Errorf("landings: %+v", res.Landings)
	}

	if _, err := LoadFiles(filepath.Join(dir, "missing.csv"), regions); err == nil {
		t.Error("expected error for missing telemetry")
	}
	if _, err := LoadFiles(crumbs, filepath.Join(dir, "missing.csv")); err == nil {
		t.Error("expected error for missing regions")
	}
}
