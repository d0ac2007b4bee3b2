package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pable/go-poi-metrics/internal/density"
	"github.com/pable/go-poi-metrics/internal/model"
	"github.com/pable/go-poi-metrics/internal/region"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))
}

func marker(name, focus string) string {
	if focus != "" && name == focus {
		return ">"
	}
	return " "
}

// PrintRunHeader prints a one-line summary header for a run.
func PrintRunHeader(w io.Writer, r model.RunSummary) {
	id := r.RunID
	if len(id) > 8 {
		id = id[:8]
	}
	fmt.Fprintf(w, "\nRun: %s  |  %s  |  Source: %s  |  Players: %d (skipped %d)  |  Regions: %d  |  Window: %d\n\n",
		id, r.CreatedAt, r.Source, r.Players, r.SkippedPlayers, r.Regions, r.LandingWindow)
}

// SortByPlayerCount orders landing rows most popular first, then by name.
func SortByPlayerCount(rows []model.LandingSummary) []model.LandingSummary {
	out := append([]model.LandingSummary(nil), rows...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PlayerCount != out[j].PlayerCount {
			return out[i].PlayerCount > out[j].PlayerCount
		}
		return out[i].Region < out[j].Region
	})
	return out
}

// SortBySurvivalScore orders landing rows safest first, then by name.
func SortBySurvivalScore(rows []model.LandingSummary) []model.LandingSummary {
	out := append([]model.LandingSummary(nil), rows...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SurvivalScore != out[j].SurvivalScore {
			return out[i].SurvivalScore > out[j].SurvivalScore
		}
		return out[i].Region < out[j].Region
	})
	return out
}

// SortByDeathCount orders death rows deadliest first, then by name.
func SortByDeathCount(rows []model.DeathSummary) []model.DeathSummary {
	out := append([]model.DeathSummary(nil), rows...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DeathCount != out[j].DeathCount {
			return out[i].DeathCount > out[j].DeathCount
		}
		return out[i].Region < out[j].Region
	})
	return out
}

// PrintHotspots prints landing regions by popularity.
// If focus is non-empty, that region's row is marked with ">".
func PrintHotspots(w io.Writer, rows []model.LandingSummary, focus string) {
	fmt.Fprintln(w, "--- Landing Hotspots (Most Popular) ---")
	table := newTable(w)
	table.Header(" ", "POI", "NAME", "PLAYERS", "AVG_SURVIVAL")
	for _, r := range SortByPlayerCount(rows) {
		table.Append(
			marker(r.Region, focus),
			r.Label,
			r.Region,
			strconv.Itoa(r.PlayerCount),
			fmt.Sprintf("%.1f", r.AvgSurvivalTime),
		)
	}
	table.Render()
}

// PrintSafest prints landing regions by survival score.
func PrintSafest(w io.Writer, rows []model.LandingSummary, focus string) {
	fmt.Fprintln(w, "\n--- Safest Landing Spots (Best Survival) ---")
	table := newTable(w)
	table.Header(" ", "POI", "NAME", "SCORE", "AVG_SURVIVAL", "PLAYERS")
	for _, r := range SortBySurvivalScore(rows) {
		table.Append(
			marker(r.Region, focus),
			r.Label,
			r.Region,
			strconv.Itoa(r.SurvivalScore),
			fmt.Sprintf("%.1f", r.AvgSurvivalTime),
			strconv.Itoa(r.PlayerCount),
		)
	}
	table.Render()
}

// PrintDeadliest prints regions by death count.
func PrintDeadliest(w io.Writer, rows []model.DeathSummary, focus string) {
	fmt.Fprintln(w, "\n--- Deadliest POIs (Most Deaths) ---")
	table := newTable(w)
	table.Header(" ", "POI", "NAME", "DEATHS")
	for _, r := range SortByDeathCount(rows) {
		table.Append(marker(r.Region, focus), r.Label, r.Region, strconv.Itoa(r.DeathCount))
	}
	table.Render()
}

// PrintDensity prints the densest death cells with their world bounds.
func PrintDensity(w io.Writer, g *density.Grid, n int) {
	fmt.Fprintf(w, "\n--- Death Density (%dx%d cells over ±%.0f, %d outside) ---\n",
		g.Bins, g.Bins, g.Extent, g.Outside)
	if n == 0 {
		return
	}
	cells := g.Top(n)
	if len(cells) == 0 {
		fmt.Fprintln(w, "(no deaths inside the map extent)")
		return
	}
	table := newTable(w)
	table.Header("CELL", "X_RANGE", "Y_RANGE", "DEATHS")
	for _, c := range cells {
		table.Append(
			fmt.Sprintf("%d,%d", c.I, c.J),
			fmt.Sprintf("%.0f..%.0f", c.Bounds.X.Lo, c.Bounds.X.Hi),
			fmt.Sprintf("%.0f..%.0f", c.Bounds.Y.Lo, c.Bounds.Y.Hi),
			strconv.Itoa(c.Count),
		)
	}
	table.Render()
}

// PrintRegions prints the region set in classification order.
func PrintRegions(w io.Writer, set *region.Set) {
	table := newTable(w)
	table.Header("#", "POI", "NAME", "VERTICES", "CENTROID")
	for i, r := range set.Regions() {
		c := region.Centroid(r.Boundary)
		table.Append(
			strconv.Itoa(i+1),
			r.Label,
			r.Name,
			strconv.Itoa(len(r.Boundary)),
			fmt.Sprintf("(%.0f, %.0f)", c.X, c.Y),
		)
	}
	table.Render()
}

// PrintRuns prints stored runs, newest first.
func PrintRuns(w io.Writer, runs []model.RunSummary) {
	table := newTable(w)
	table.Header("RUN", "CREATED", "SOURCE", "PLAYERS", "SKIPPED", "REGIONS", "OTHER_LAND", "OTHER_DEATH")
	for _, r := range runs {
		id := r.RunID
		if len(id) > 8 {
			id = id[:8]
		}
		table.Append(
			id,
			r.CreatedAt,
			r.Source,
			strconv.Itoa(r.Players),
			strconv.Itoa(r.SkippedPlayers),
			strconv.Itoa(r.Regions),
			strconv.Itoa(r.UnclassifiedLand),
			strconv.Itoa(r.UnclassifiedDead),
		)
	}
	table.Render()
}
