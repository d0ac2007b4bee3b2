package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/pable/go-poi-metrics/internal/model"
)

// IngestChunkPlayers is the number of distinct players committed per transaction.
const IngestChunkPlayers = 200

// InsertSamples stores breadcrumb samples, committing every IngestChunkPlayers
// distinct players. A player's previously stored trajectory is replaced by the
// rows in samples, so re-ingesting a file is idempotent while samples sharing
// a time step are all kept. progress, when non-nil, is called after each
// commit with the running player count.
func (db *DB) InsertSamples(samples []model.Sample, progress func(players int)) error {
	var (
		tx      *sql.Tx
		del     *sql.Stmt
		insert  *sql.Stmt
		err     error
		seen    = make(map[model.PlayerKey]struct{})
		inChunk int
	)
	begin := func() error {
		if tx, err = db.conn.Begin(); err != nil {
			return err
		}
		if del, err = tx.Prepare(`DELETE FROM samples WHERE match_id = ? AND player_id = ?`); err != nil {
			tx.Rollback()
			return err
		}
		insert, err = tx.Prepare(`
			INSERT INTO samples(input_seq, match_id, player_id, time_step, pos_x, pos_y, pos_z, life)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			del.Close()
			tx.Rollback()
		}
		return err
	}
	abort := func() {
		del.Close()
		insert.Close()
		tx.Rollback()
	}
	commit := func() error {
		del.Close()
		insert.Close()
		if err := tx.Commit(); err != nil {
			return err
		}
		if progress != nil {
			progress(len(seen))
		}
		inChunk = 0
		return nil
	}

	if err := begin(); err != nil {
		return fmt.Errorf("begin ingest: %w", err)
	}
	for seq, s := range samples {
		k := s.Key()
		if _, ok := seen[k]; !ok {
			if inChunk == IngestChunkPlayers {
				if err := commit(); err != nil {
					return fmt.Errorf("commit chunk: %w", err)
				}
				if err := begin(); err != nil {
					return fmt.Errorf("begin chunk: %w", err)
				}
			}
			if _, err := del.Exec(k.MatchID, k.PlayerID); err != nil {
				abort()
				return fmt.Errorf("clear samples for %s: %w", k, err)
			}
			seen[k] = struct{}{}
			inChunk++
		}
		if _, err := insert.Exec(seq, s.MatchID, s.PlayerID, s.TimeStep, s.X, s.Y, s.Z, s.Life); err != nil {
			abort()
			return fmt.Errorf("insert sample for %s: %w", k, err)
		}
	}
	if err := commit(); err != nil {
		return fmt.Errorf("commit chunk: %w", err)
	}
	return nil
}

// LoadSamples returns every stored sample ordered by match, player and time
// step. Samples sharing a time step come back in ingest order.
func (db *DB) LoadSamples() ([]model.Sample, error) {
	rows, err := db.conn.Query(`
		SELECT match_id, player_id, time_step, pos_x, pos_y, pos_z, life
		FROM samples ORDER BY match_id, player_id, time_step, input_seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Sample
	for rows.Next() {
		var s model.Sample
		if err := rows.Scan(&s.MatchID, &s.PlayerID, &s.TimeStep, &s.X, &s.Y, &s.Z, &s.Life); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// SampleOverview summarizes the samples table.
type SampleOverview struct {
	Samples int
	Matches int
	Players int
}

// CountSamples returns row, match and player totals for the samples table.
func (db *DB) CountSamples() (SampleOverview, error) {
	var ov SampleOverview
	err := db.conn.QueryRow(`
		SELECT COUNT(1),
		       COUNT(DISTINCT match_id),
		       (SELECT COUNT(1) FROM (SELECT DISTINCT match_id, player_id FROM samples))
		FROM samples`).Scan(&ov.Samples, &ov.Matches, &ov.Players)
	return ov, err
}

// ReplaceRegions swaps the stored region table for defs, keeping their order.
func (db *DB) ReplaceRegions(defs []model.RegionDef) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM regions`); err != nil {
		return fmt.Errorf("clear regions: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO regions(position, name, label, boundary) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, d := range defs {
		pts := make([][2]float64, len(d.Boundary))
		for j, v := range d.Boundary {
			pts[j] = [2]float64{v.X, v.Y}
		}
		raw, err := json.Marshal(pts)
		if err != nil {
			return fmt.Errorf("encode boundary for %s: %w", d.Name, err)
		}
		if _, err := stmt.Exec(i, d.Name, d.Label, string(raw)); err != nil {
			return fmt.Errorf("insert region %s: %w", d.Name, err)
		}
	}
	return tx.Commit()
}

// LoadRegions returns stored region definitions in their original order.
func (db *DB) LoadRegions() ([]model.RegionDef, error) {
	rows, err := db.conn.Query(`SELECT name, label, boundary FROM regions ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.RegionDef
	for rows.Next() {
		var (
			d   model.RegionDef
			raw string
			pts [][2]float64
		)
		if err := rows.Scan(&d.Name, &d.Label, &raw); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(raw), &pts); err != nil {
			return nil, fmt.Errorf("decode boundary for %s: %w", d.Name, err)
		}
		for _, p := range pts {
			d.Boundary = append(d.Boundary, model.Vertex{X: p[0], Y: p[1]})
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
