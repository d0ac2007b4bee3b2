// Package telemetry reads breadcrumb samples produced by the scene extractor.
package telemetry

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/pable/go-poi-metrics/internal/model"
)

// Columns are the required breadcrumb headers.
var Columns = []string{"match_id", "player_id", "time_step", "pos_x", "pos_y", "pos_z", "life"}

// ErrEmpty is returned when a breadcrumb file has a header but no rows.
var ErrEmpty = errors.New("telemetry: no samples")

// Open opens a breadcrumb file, decompressing .gz and .zst transparently.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open telemetry: %w", err)
	}
	switch {
	case strings.HasSuffix(path, ".zst"):
		dec, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("zstd: %w", err)
		}
		return &stackedCloser{Reader: dec, closers: []func() error{
			func() error { dec.Close(); return nil }, f.Close,
		}}, nil
	case strings.HasSuffix(path, ".gz"):
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("gzip: %w", err)
		}
		return &stackedCloser{Reader: gz, closers: []func() error{gz.Close, f.Close}}, nil
	}
	return f, nil
}

type stackedCloser struct {
	io.Reader
	closers []func() error
}

func (s *stackedCloser) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// ReadFile opens and parses a breadcrumb file.
func ReadFile(path string) ([]model.Sample, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return ReadCSV(rc)
}

// ReadCSV parses breadcrumb rows addressed by header name. Extra columns are
// ignored. Any malformed row fails the whole read.
func ReadCSV(r io.Reader) ([]model.Sample, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("telemetry header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	pos := make([]int, len(Columns))
	for i, c := range Columns {
		j, ok := idx[c]
		if !ok {
			return nil, fmt.Errorf("telemetry header: missing column %q", c)
		}
		pos[i] = j
	}

	var out []model.Sample
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("telemetry line %d: %w", line, err)
		}
		s, err := parseRow(rec, pos)
		if err != nil {
			return nil, fmt.Errorf("telemetry line %d: %w", line, err)
		}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil, ErrEmpty
	}
	return out, nil
}

func parseRow(rec []string, pos []int) (model.Sample, error) {
	var s model.Sample
	var err error
	if s.MatchID, err = parseOrdinal(rec[pos[0]]); err != nil {
		return s, fmt.Errorf("match_id: %w", err)
	}
	if s.PlayerID, err = parseOrdinal(rec[pos[1]]); err != nil {
		return s, fmt.Errorf("player_id: %w", err)
	}
	if s.TimeStep, err = parseOrdinal(rec[pos[2]]); err != nil {
		return s, fmt.Errorf("time_step: %w", err)
	}
	if s.X, err = parseCoord(rec[pos[3]]); err != nil {
		return s, fmt.Errorf("pos_x: %w", err)
	}
	if s.Y, err = parseCoord(rec[pos[4]]); err != nil {
		return s, fmt.Errorf("pos_y: %w", err)
	}
	if s.Z, err = parseCoord(rec[pos[5]]); err != nil {
		return s, fmt.Errorf("pos_z: %w", err)
	}
	if s.Life, err = parseOrdinal(rec[pos[6]]); err != nil {
		return s, fmt.Errorf("life: %w", err)
	}
	return s, nil
}

// parseOrdinal accepts integers and float-formatted integers ("12.0"); the
// extractor writes USD time codes as floats. Fractions are floored so the sign
// of a value such as life -0.5 survives. NaN and infinities are rejected.
func parseOrdinal(v string) (int64, error) {
	v = strings.TrimSpace(v)
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("non-finite value %q", v)
	}
	f = math.Floor(f)
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("value %q out of range", v)
	}
	return int64(f), nil
}

// parseCoord parses a position component, rejecting NaN and infinities.
func parseCoord(v string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("non-finite value %q", v)
	}
	return f, nil
}

// Group splits samples into per-player trajectories, each ordered by
// time_step. Samples sharing a time_step keep their input order.
func Group(samples []model.Sample) map[model.PlayerKey][]model.Sample {
	groups := make(map[model.PlayerKey][]model.Sample)
	for _, s := range samples {
		k := s.Key()
		groups[k] = append(groups[k], s)
	}
	for _, g := range groups {
		sort.SliceStable(g, func(i, j int) bool { return g[i].TimeStep < g[j].TimeStep })
	}
	return groups
}

// Keys returns the group keys ordered by match, then player.
func Keys(groups map[model.PlayerKey][]model.Sample) []model.PlayerKey {
	keys := make([]model.PlayerKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}
