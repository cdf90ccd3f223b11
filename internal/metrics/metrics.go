// Package metrics records counters and gauges for the node_exporter
// textfile collector. twt is a short-lived CLI, so instead of serving
// /metrics it writes the registry to a file when a command finishes.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Tiliavir/trivial-water-tracker/internal/config"
)

// Recorder is what the rest of the application reports to.
type Recorder interface {
	IncCacheHits()
	IncCacheMisses()
	IncStorageErrors(op, key string)
	AddWater(ml int)
	IncGoalReached()
	SetToday(amount, goal int)
	SetHistoryRecords(n int)
	// Flush writes the current values out. It is a no-op when disabled.
	Flush() error
}

// Provider is the Prometheus-backed Recorder.
type Provider struct {
	registry *prometheus.Registry
	textfile string

	cacheHits      prometheus.Counter
	cacheMisses    prometheus.Counter
	storageErrors  *prometheus.CounterVec
	waterAdded     prometheus.Counter
	goalReached    prometheus.Counter
	todayAmount    prometheus.Gauge
	todayGoal      prometheus.Gauge
	historyRecords prometheus.Gauge
}

// NewProvider returns a Provider, or a no-op Recorder when metrics are off.
func NewProvider(conf config.MetricsConfig) Recorder {
	if !conf.Enabled || conf.Textfile == "" {
		return &noopMetrics{}
	}

	p := &Provider{
		registry: prometheus.NewRegistry(),
		textfile: conf.Textfile,
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "twt_cache_hits_total",
			Help: "Store reads served from the in-process cache",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "twt_cache_misses_total",
			Help: "Store reads that went to the backend",
		}),
		storageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "twt_storage_errors_total",
			Help: "Failed store operations by operation and key",
		}, []string{"op", "key"}),
		waterAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "twt_water_added_ml_total",
			Help: "Water added in this run, in ml",
		}),
		goalReached: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "twt_goal_reached_total",
			Help: "Adds that crossed the daily goal",
		}),
		todayAmount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "twt_today_amount_ml",
			Help: "Water drunk today, in ml",
		}),
		todayGoal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "twt_today_goal_ml",
			Help: "Today's goal, in ml",
		}),
		historyRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "twt_history_records",
			Help: "Days currently kept in the history log",
		}),
	}
	p.registry.MustRegister(
		p.cacheHits, p.cacheMisses, p.storageErrors, p.waterAdded,
		p.goalReached, p.todayAmount, p.todayGoal, p.historyRecords,
	)
	return p
}

func (p *Provider) IncCacheHits()   { p.cacheHits.Inc() }
func (p *Provider) IncCacheMisses() { p.cacheMisses.Inc() }
func (p *Provider) IncGoalReached() { p.goalReached.Inc() }

func (p *Provider) IncStorageErrors(op, key string) {
	p.storageErrors.WithLabelValues(op, key).Inc()
}

func (p *Provider) AddWater(ml int) {
	if ml > 0 {
		p.waterAdded.Add(float64(ml))
	}
}

func (p *Provider) SetToday(amount, goal int) {
	p.todayAmount.Set(float64(amount))
	p.todayGoal.Set(float64(goal))
}

func (p *Provider) SetHistoryRecords(n int) {
	p.historyRecords.Set(float64(n))
}

// Registry exposes the underlying registry.
func (p *Provider) Registry() *prometheus.Registry { return p.registry }

func (p *Provider) Flush() error {
	if err := os.MkdirAll(filepath.Dir(p.textfile), 0o700); err != nil {
		return fmt.Errorf("creating metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(p.textfile, p.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}

type noopMetrics struct{}

func (n *noopMetrics) IncCacheHits()                {}
func (n *noopMetrics) IncCacheMisses()              {}
func (n *noopMetrics) IncStorageErrors(_, _ string) {}
func (n *noopMetrics) AddWater(_ int)               {}
func (n *noopMetrics) IncGoalReached()              {}
func (n *noopMetrics) SetToday(_, _ int)            {}
func (n *noopMetrics) SetHistoryRecords(_ int)      {}
func (n *noopMetrics) Flush() error                 { return nil }
