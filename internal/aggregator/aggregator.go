package aggregator

import (
	"math"
	"sort"

	"github.com/pable/go-poi-metrics/internal/model"
)

// Classifier maps a coordinate to a region name, or model.Unclassified.
type Classifier interface {
	Classify(x, y float64) string
}

// Labeler maps a region name to its display label.
type Labeler interface {
	Label(name string) string
}

// Classify attributes every trajectory's landing and death coordinates to a region.
func Classify(trajs []model.Trajectory, c Classifier) ([]model.LandingEvent, []model.DeathEvent) {
	landings := make([]model.LandingEvent, 0, len(trajs))
	deaths := make([]model.DeathEvent, 0, len(trajs))
	for _, t := range trajs {
		landings = append(landings, model.LandingEvent{
			Key:          t.Key,
			X:            t.Landing.X,
			Y:            t.Landing.Y,
			SurvivalTime: t.SurvivalTime,
			Region:       c.Classify(t.Landing.X, t.Landing.Y),
		})
		deaths = append(deaths, model.DeathEvent{
			Key:    t.Key,
			X:      t.Death.X,
			Y:      t.Death.Y,
			Region: c.Classify(t.Death.X, t.Death.Y),
		})
	}
	return landings, deaths
}

// Aggregate reduces classified events into per-region landing and death
// summaries. Unclassified events are dropped. Rows are ordered by region name.
func Aggregate(landings []model.LandingEvent, deaths []model.DeathEvent) ([]model.LandingSummary, []model.DeathSummary) {
	// ---- Landing: count and survival sum per region. ----

	type landAccum struct {
		count       int
		survivalSum float64
	}
	land := make(map[string]*landAccum)
	for _, e := range landings {
		if e.Region == model.Unclassified {
			continue
		}
		a := land[e.Region]
		if a == nil {
			a = &landAccum{}
			land[e.Region] = a
		}
		a.count++
		a.survivalSum += float64(e.SurvivalTime)
	}

	landingOut := make([]model.LandingSummary, 0, len(land))
	for name, a := range land {
		landingOut = append(landingOut, model.LandingSummary{
			Region:          name,
			PlayerCount:     a.count,
			AvgSurvivalTime: a.survivalSum / float64(a.count),
		})
	}
	sort.Slice(landingOut, func(i, j int) bool { return landingOut[i].Region < landingOut[j].Region })
	Score(landingOut)

	// ---- Death: count per region. ----

	dead := make(map[string]int)
	for _, e := range deaths {
		if e.Region == model.Unclassified {
			continue
		}
		dead[e.Region]++
	}
	deathOut := make([]model.DeathSummary, 0, len(dead))
	for name, n := range dead {
		deathOut = append(deathOut, model.DeathSummary{Region: name, DeathCount: n})
	}
	sort.Slice(deathOut, func(i, j int) bool { return deathOut[i].Region < deathOut[j].Region })

	return landingOut, deathOut
}

// Score sets SurvivalScore on each row by min-max normalizing
// AvgSurvivalTime onto 0..100. When every row has the same average, all
// scores are 100.
func Score(rows []model.LandingSummary) {
	if len(rows) == 0 {
		return
	}
	lo, hi := rows[0].AvgSurvivalTime, rows[0].AvgSurvivalTime
	for _, r := range rows[1:] {
		lo = math.Min(lo, r.AvgSurvivalTime)
		hi = math.Max(hi, r.AvgSurvivalTime)
	}
	span := hi - lo
	for i := range rows {
		if span <= 0 {
			rows[i].SurvivalScore = 100
			continue
		}
		s := int(math.Round(100 * (rows[i].AvgSurvivalTime - lo) / span))
		rows[i].SurvivalScore = min(max(s, 0), 100)
	}
}

// ApplyLabels fills the display label of every summary row.
func ApplyLabels(landings []model.LandingSummary, deaths []model.DeathSummary, l Labeler) {
	for i := range landings {
		landings[i].Label = l.Label(landings[i].Region)
	}
	for i := range deaths {
		deaths[i].Label = l.Label(deaths[i].Region)
	}
}
