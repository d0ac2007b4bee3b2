package storage

import (
	"testing"

	"github.com/pable/go-poi-metrics/internal/extractor"
	"github.com/pable/go-poi-metrics/internal/model"
	"github.com/pable/go-poi-metrics/internal/telemetry"
)

func openMemDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// trail builds n samples for one player starting at time step 0.
func trail(match, player int64, n int) []model.Sample {
	out := make([]model.Sample, n)
	for i := range out {
		out[i] = model.Sample{
			MatchID: match, PlayerID: player, TimeStep: int64(i),
			X: float64(i), Y: float64(-i), Z: 100 - float64(i), Life: int64(i % 2),
		}
	}
	return out
}

func TestInsertAndLoadSamples(t *testing.T) {
	db := openMemDB(t)

	var samples []model.Sample
	samples = append(samples, trail(2, 1, 3)...)
	samples = append(samples, trail(1, 5, 2)...)
	if err := db.InsertSamples(samples, nil); err != nil {
		t.Fatalf("InsertSamples: %v", err)
	}

	got, err := db.LoadSamples()
	if err != nil {
		t.Fatalf("LoadSamples: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("want 5 samples, got %d", len(got))
	}
	// Ordered by match first; match 1 rows come back first.
	if got[0].MatchID != 1 || got[0].PlayerID != 5 {
		t.Errorf("first row: %+v", got[0])
	}
	if got[4] != samples[2] {
		t.Errorf("round trip mismatch: want %+v, got %+v", samples[2], got[4])
	}

	ov, err := db.CountSamples()
	if err != nil {
		t.Fatalf("CountSamples: %v", err)
	}
	if ov.Samples != 5 || ov.Matches != 2 || ov.Players != 2 {
		t.Errorf("overview: %+v", ov)
	}
}

func TestInsertSamples_ChunksAndIdempotency(t *testing.T) {
	db := openMemDB(t)

	var samples []model.Sample
	for p := int64(1); p <= IngestChunkPlayers+50; p++ {
		samples = append(samples, trail(1, p, 2)...)
	}
	var commits []int
	if err := db.InsertSamples(samples, func(n int) { commits = append(commits, n) }); err != nil {
		t.Fatalf("InsertSamples: %v", err)
	}
	if len(commits) != 2 || commits[0] != IngestChunkPlayers || commits[1] != IngestChunkPlayers+50 {
		t.Errorf("commit progress: %v", commits)
	}

	// Second ingest of the same file replaces instead of duplicating.
	if err := db.InsertSamples(samples, nil); err != nil {
		t.Fatalf("re-ingest: %v", err)
	}
	ov, _ := db.CountSamples()
	if ov.Samples != len(samples) {
		t.Errorf("want %d samples after re-ingest, got %d", len(samples), ov.Samples)
	}
}

func TestInsertSamples_KeepsSharedTimeSteps(t *testing.T) {
	db := openMemDB(t)

	samples := []model.Sample{
		{MatchID: 1, PlayerID: 1, TimeStep: 10, X: 900, Y: 900, Z: 50, Life: 0},
		{MatchID: 1, PlayerID: 1, TimeStep: 10, X: 100, Y: 100, Z: 5, Life: 0},
		{MatchID: 1, PlayerID: 1, TimeStep: 10, X: 300, Y: 300, Z: 5, Life: 0},
	}
	if err := db.InsertSamples(samples, nil); err != nil {
		t.Fatalf("InsertSamples: %v", err)
	}
	got, err := db.LoadSamples()
	if err != nil {
		t.Fatalf("LoadSamples: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("want 3 samples, got %d", len(got))
	}
	for i := range samples {
		if got[i] != samples[i] {
			t.Errorf("row %d: want %+v, got %+v", i, samples[i], got[i])
		}
	}

	// The stored trajectory must extract exactly like the file it came from.
	key := model.PlayerKey{MatchID: 1, PlayerID: 1}
	fromFile, _ := extractor.Extract(telemetry.Group(samples)[key], 45)
	fromDB, _ := extractor.Extract(telemetry.Group(got)[key], 45)
	if fromDB != fromFile {
		t.Errorf("db trajectory %+v differs from file trajectory %+v", fromDB, fromFile)
	}
	if fromDB.Landing.X != 100 {
		t.Errorf("landing: want x=100, got %v", fromDB.Landing.X)
	}
}

func TestInsertSamples_ReplacesPlayerTrajectory(t *testing.T) {
	db := openMemDB(t)

	if err := db.InsertSamples(append(trail(1, 1, 5), trail(1, 2, 3)...), nil); err != nil {
		t.Fatalf("InsertSamples: %v", err)
	}
	// A shorter re-ingest of player 1 drops its stale rows and leaves player 2 alone.
	if err := db.InsertSamples(trail(1, 1, 2), nil); err != nil {
		t.Fatalf("re-ingest: %v", err)
	}
	ov, err := db.CountSamples()
	if err != nil {
		t.Fatalf("CountSamples: %v", err)
	}
	if ov.Samples != 5 || ov.Players != 2 {
		t.Errorf("overview after re-ingest: %+v", ov)
	}
}

func TestReplaceRegionsKeepsOrder(t *testing.T) {
	db := openMemDB(t)

	defs := []model.RegionDef{
		{Name: "Zulu", Label: "Z", Boundary: []model.Vertex{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}}},
		{Name: "Alpha", Label: "A", Boundary: []model.Vertex{{X: -5.5, Y: 2}, {X: 3, Y: 4}, {X: 7, Y: -1}, {X: 0, Y: 9}}},
	}
	if err := db.ReplaceRegions(defs); err != nil {
		t.Fatalf("ReplaceRegions: %v", err)
	}
	got, err := db.LoadRegions()
	if err != nil {
		t.Fatalf("LoadRegions: %v", err)
	}
	if len(got) != 2 || got[0].Name != "Zulu" || got[1].Name != "Alpha" {
		t.Fatalf("order not preserved: %+v", got)
	}
	if got[1].Boundary[0] != (model.Vertex{X: -5.5, Y: 2}) || len(got[1].Boundary) != 4 {
		t.Errorf("boundary round trip: %+v", got[1].Boundary)
	}

	// Replacing drops the previous table.
	if err := db.ReplaceRegions(defs[1:]); err != nil {
		t.Fatalf("ReplaceRegions: %v", err)
	}
	got, _ = db.LoadRegions()
	if len(got) != 1 || got[0].Name != "Alpha" {
		t.Errorf("after replace: %+v", got)
	}
}

func TestReplaceRegionsKeepsDuplicates(t *testing.T) {
	db := openMemDB(t)

	sq := []model.Vertex{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}}
	defs := []model.RegionDef{
		{Name: "Docks", Label: "A", Boundary: sq},
		{Name: "Docks", Label: "B", Boundary: sq},
	}
	if err := db.ReplaceRegions(defs); err != nil {
		t.Fatalf("ReplaceRegions: %v", err)
	}
	got, err := db.LoadRegions()
	if err != nil {
		t.Fatalf("LoadRegions: %v", err)
	}
	if len(got) != 2 || got[0].Label != "A" || got[1].Label != "B" {
		t.Errorf("duplicates should be stored as given: %+v", got)
	}
}

func TestRunRoundTrip(t *testing.T) {
	db := openMemDB(t)

	run := model.RunSummary{
		RunID: "7f1c2a90-0000-4000-8000-000000000001", CreatedAt: "2025-06-20T15:44:01Z",
		Source: "caldera_breadcrumbs.csv", LandingWindow: 45, Regions: 3, Players: 10,
		SkippedPlayers: 1, UnclassifiedLand: 2, UnclassifiedDead: 4,
	}
	landings := []model.LandingSummary{
		{Region: "Docks", Label: "A", PlayerCount: 5, AvgSurvivalTime: 275.5, SurvivalScore: 100},
		{Region: "Farm", Label: "B", PlayerCount: 3, AvgSurvivalTime: 120, SurvivalScore: 0},
	}
	deaths := []model.DeathSummary{{Region: "Farm", Label: "B", DeathCount: 6}}

	if err := db.InsertRun(run, landings, deaths); err != nil {
		t.Fatalf("InsertRun: %v", err)
	}

	got, err := db.GetRunByPrefix("7f1c")
	if err != nil {
		t.Fatalf("GetRunByPrefix: %v", err)
	}
	if got == nil || *got != run {
		t.Fatalf("run mismatch: %+v", got)
	}
	none, err := db.GetRunByPrefix("ffff")
	if err != nil || none != nil {
		t.Errorf("unknown prefix: got %+v, %v", none, err)
	}

	ls, err := db.GetLandingSummaries(run.RunID)
	if err != nil {
		t.Fatalf("GetLandingSummaries: %v", err)
	}
	if len(ls) != 2 || ls[0] != landings[0] || ls[1] != landings[1] {
		t.Errorf("landing summaries: %+v", ls)
	}
	ds, err := db.GetDeathSummaries(run.RunID)
	if err != nil {
		t.Fatalf("GetDeathSummaries: %v", err)
	}
	if len(ds) != 1 || ds[0] != deaths[0] {
		t.Errorf("death summaries: %+v", ds)
	}

	runs, err := db.ListRuns()
	if err != nil || len(runs) != 1 {
		t.Errorf("ListRuns: %d runs, err=%v", len(runs), err)
	}
}

func TestQueryRaw(t *testing.T) {
	db := openMemDB(t)
	db.InsertSamples(trail(1, 1, 3), nil)

	cols, rows, err := db.QueryRaw("SELECT player_id, COUNT(1) AS n, NULL AS nothing FROM samples GROUP BY player_id")
	if err != nil {
		t.Fatalf("QueryRaw: %v", err)
	}
	if len(cols) != 3 || cols[1] != "n" {
		t.Errorf("columns: %v", cols)
	}
	if len(rows) != 1 || rows[0][0] != "1" || rows[0][1] != "3" || rows[0][2] != "NULL" {
		t.Errorf("rows: %v", rows)
	}

	if _, _, err := db.QueryRaw("SELECT * FROM no_such_table"); err == nil {
		t.Error("expected error for unknown table")
	}
}
