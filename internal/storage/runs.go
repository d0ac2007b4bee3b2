package storage

import (
	"database/sql"
	"fmt"

	"github.com/pable/go-poi-metrics/internal/model"
)

// InsertRun stores a run row and both of its summary tables in one transaction.
func (db *DB) InsertRun(run model.RunSummary, landings []model.LandingSummary, deaths []model.DeathSummary) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT OR REPLACE INTO runs(id, created_at, source, landing_window, regions, players,
			skipped_players, unclassified_landings, unclassified_deaths)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.CreatedAt, run.Source, run.LandingWindow, run.Regions, run.Players,
		run.SkippedPlayers, run.UnclassifiedLand, run.UnclassifiedDead,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	landStmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO landing_summaries(run_id, region, label, player_count, avg_survival_time, survival_score)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer landStmt.Close()
	for _, l := range landings {
		if _, err := landStmt.Exec(run.RunID, l.Region, l.Label, l.PlayerCount, l.AvgSurvivalTime, l.SurvivalScore); err != nil {
			return fmt.Errorf("insert landing summary %s: %w", l.Region, err)
		}
	}

	deathStmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO death_summaries(run_id, region, label, death_count)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer deathStmt.Close()
	for _, d := range deaths {
		if _, err := deathStmt.Exec(run.RunID, d.Region, d.Label, d.DeathCount); err != nil {
			return fmt.Errorf("insert death summary %s: %w", d.Region, err)
		}
	}
	return tx.Commit()
}

const runColumns = `id, created_at, source, landing_window, regions, players,
	skipped_players, unclassified_landings, unclassified_deaths`

func scanRun(sc interface{ Scan(...any) error }) (model.RunSummary, error) {
	var r model.RunSummary
	err := sc.Scan(&r.RunID, &r.CreatedAt, &r.Source, &r.LandingWindow, &r.Regions, &r.Players,
		&r.SkippedPlayers, &r.UnclassifiedLand, &r.UnclassifiedDead)
	return r, err
}

// ListRuns returns stored runs, newest first.
func (db *DB) ListRuns() ([]model.RunSummary, error) {
	rows, err := db.conn.Query(`SELECT ` + runColumns + ` FROM runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.RunSummary
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetRunByPrefix finds the first run whose id starts with prefix, or nil.
func (db *DB) GetRunByPrefix(prefix string) (*model.RunSummary, error) {
	r, err := scanRun(db.conn.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id LIKE ? ORDER BY id LIMIT 1`, prefix+"%"))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// GetLandingSummaries returns the landing table stored for a run.
func (db *DB) GetLandingSummaries(runID string) ([]model.LandingSummary, error) {
	rows, err := db.conn.Query(`
		SELECT region, label, player_count, avg_survival_time, survival_score
		FROM landing_summaries WHERE run_id = ? ORDER BY region`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.LandingSummary
	for rows.Next() {
		var l model.LandingSummary
		if err := rows.Scan(&l.Region, &l.Label, &l.PlayerCount, &l.AvgSurvivalTime, &l.SurvivalScore); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// GetDeathSummaries returns the death table stored for a run.
func (db *DB) GetDeathSummaries(runID string) ([]model.DeathSummary, error) {
	rows, err := db.conn.Query(`
		SELECT region, label, death_count
		FROM death_summaries WHERE run_id = ? ORDER BY region`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.DeathSummary
	for rows.Next() {
		var d model.DeathSummary
		if err := rows.Scan(&d.Region, &d.Label, &d.DeathCount); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// QueryRaw runs an arbitrary query and returns column names and stringified rows.
func (db *DB) QueryRaw(query string) ([]string, [][]string, error) {
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}
	var out [][]string
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			switch x := v.(type) {
			case nil:
				row[i] = "NULL"
			case []byte:
				row[i] = string(x)
			default:
				row[i] = fmt.Sprint(x)
			}
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}
