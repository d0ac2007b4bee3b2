// Package metrics records per-run counters and writes them in the Prometheus
// text format for a node-exporter textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "poimetrics"

// Run holds the counters for one analysis run on a private registry.
type Run struct {
	registry *prometheus.Registry

	SamplesRead       prometheus.Counter
	PlayersExtracted  prometheus.Counter
	PlayersSkipped    prometheus.Counter
	RegionsLoaded     prometheus.Gauge
	RegionsDropped    prometheus.Counter
	UnclassifiedEvent *prometheus.CounterVec // label: event=landing|death
	Duration          prometheus.Gauge
	LastSuccess       prometheus.Gauge
}

// NewRun creates and registers a fresh set of run metrics.
func NewRun() *Run {
	r := &Run{
		registry: prometheus.NewRegistry(),
		SamplesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "samples_read_total",
			Help: "Breadcrumb samples read for the run.",
		}),
		PlayersExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "players_extracted_total",
			Help: "Players that produced a landing and a death event.",
		}),
		PlayersSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "players_skipped_total",
			Help: "Players with no active sample.",
		}),
		RegionsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "regions",
			Help: "Regions in the region set.",
		}),
		RegionsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "regions_dropped_total",
			Help: "Region definitions rejected as degenerate or duplicate.",
		}),
		UnclassifiedEvent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "unclassified_events_total",
			Help: "Events outside every region.",
		}, []string{"event"}),
		Duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "run_duration_seconds",
			Help: "Wall time of the last run.",
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "last_success_timestamp_seconds",
			Help: "Unix time the last run completed.",
		}),
	}
	r.registry.MustRegister(
		r.SamplesRead, r.PlayersExtracted, r.PlayersSkipped,
		r.RegionsLoaded, r.RegionsDropped, r.UnclassifiedEvent,
		r.Duration, r.LastSuccess,
	)
	return r
}

// Finish records the run duration and completion time.
func (r *Run) Finish(started, now time.Time) {
	r.Duration.Set(now.Sub(started).Seconds())
	r.LastSuccess.Set(float64(now.Unix()))
}

// Registry exposes the underlying registry as a gatherer.
func (r *Run) Registry() prometheus.Gatherer { return r.registry }

// WriteTextfile writes all run metrics to path atomically.
func (r *Run) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
