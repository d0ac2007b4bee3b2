package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pable/go-poi-metrics/internal/model"
)

// WriteLandingCSV writes landing rows, most popular first.
func WriteLandingCSV(w io.Writer, rows []model.LandingSummary) error {
	cw := csv.NewWriter(w)
	cw.Write([]string{"POI", "Name", "player_count", "avg_survival_time", "survival_score"})
	for _, r := range SortByPlayerCount(rows) {
		cw.Write([]string{
			r.Label,
			r.Region,
			strconv.Itoa(r.PlayerCount),
			strconv.FormatFloat(r.AvgSurvivalTime, 'f', -1, 64),
			strconv.Itoa(r.SurvivalScore),
		})
	}
	cw.Flush()
	return cw.Error()
}

// WriteDeathCSV writes death rows, deadliest first.
func WriteDeathCSV(w io.Writer, rows []model.DeathSummary) error {
	cw := csv.NewWriter(w)
	cw.Write([]string{"POI", "Name", "death_count"})
	for _, r := range SortByDeathCount(rows) {
		cw.Write([]string{r.Label, r.Region, strconv.Itoa(r.DeathCount)})
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFiles writes landing_summary.csv and death_summary.csv into dir.
func WriteCSVFiles(dir string, landings []model.LandingSummary, deaths []model.DeathSummary) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := writeFile(filepath.Join(dir, "landing_summary.csv"), func(w io.Writer) error {
		return WriteLandingCSV(w, landings)
	}); err != nil {
		return err
	}
	return writeFile(filepath.Join(dir, "death_summary.csv"), func(w io.Writer) error {
		return WriteDeathCSV(w, deaths)
	})
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
