// Package extractor reduces a player's breadcrumb stream to one landing
// sample, one death sample and a survival time.
package extractor

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/pable/go-poi-metrics/internal/model"
	"github.com/pable/go-poi-metrics/internal/telemetry"
)

// Extract selects the landing and death samples for one player's samples.
// It returns false when no sample is active (life >= 0).
//
// Landing is the lowest-altitude active sample within window time steps of
// the first active sample. Death is the sample with the highest life value
// over all samples, active or not. Survival time is the last active time
// step. Ties on altitude or life go to the earlier time step, then to the
// earlier position in samples.
func Extract(samples []model.Sample, window int64) (model.Trajectory, bool) {
	var (
		start      int64
		survival   int64
		haveActive bool
	)
	for _, s := range samples {
		if !s.Active() {
			continue
		}
		if !haveActive || s.TimeStep < start {
			start = s.TimeStep
		}
		if !haveActive || s.TimeStep > survival {
			survival = s.TimeStep
		}
		haveActive = true
	}
	if !haveActive {
		return model.Trajectory{}, false
	}

	landing := -1
	for i, s := range samples {
		if !s.Active() || s.TimeStep > start+window {
			continue
		}
		if landing < 0 || lowerLanding(s, samples[landing]) {
			landing = i
		}
	}

	death := 0
	for i := 1; i < len(samples); i++ {
		if laterDeath(samples[i], samples[death]) {
			death = i
		}
	}

	return model.Trajectory{
		Key:          samples[landing].Key(),
		Landing:      samples[landing],
		Death:        samples[death],
		SurvivalTime: survival,
	}, true
}

// lowerLanding reports whether a should replace the current landing pick b.
func lowerLanding(a, b model.Sample) bool {
	if a.Z != b.Z {
		return a.Z < b.Z
	}
	return a.TimeStep < b.TimeStep
}

// laterDeath reports whether a should replace the current death pick b.
func laterDeath(a, b model.Sample) bool {
	if a.Life != b.Life {
		return a.Life > b.Life
	}
	return a.TimeStep < b.TimeStep
}

// Options controls ExtractAll.
type Options struct {
	// Window is the landing window in time steps; zero means model.DefaultLandingWindow.
	Window int64
	// Workers bounds concurrent extraction; values below 2 run sequentially.
	Workers int
}

// Result is the output of ExtractAll.
type Result struct {
	Trajectories []model.Trajectory // ordered by PlayerKey
	Skipped      []model.PlayerKey  // players with no active sample
}

// ExtractAll runs Extract for every player. Output order depends only on the
// player keys, never on scheduling.
func ExtractAll(ctx context.Context, groups map[model.PlayerKey][]model.Sample, opts Options) (*Result, error) {
	window := opts.Window
	if window == 0 {
		window = model.DefaultLandingWindow
	}
	if window < 0 {
		return nil, fmt.Errorf("landing window must be positive, got %d", window)
	}

	keys := telemetry.Keys(groups)
	trajs := make([]model.Trajectory, len(keys))
	ok := make([]bool, len(keys))

	g, ctx := errgroup.WithContext(ctx)
	if opts.Workers > 1 {
		g.SetLimit(opts.Workers)
	} else {
		g.SetLimit(1)
	}
	for i, k := range keys {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			trajs[i], ok[i] = Extract(groups[k], window)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("extract trajectories: %w", err)
	}

	res := &Result{Trajectories: make([]model.Trajectory, 0, len(keys))}
	for i, k := range keys {
		if ok[i] {
			res.Trajectories = append(res.Trajectories, trajs[i])
		} else {
			res.Skipped = append(res.Skipped, k)
		}
	}
	return res, nil
}
