// Package di assembles the application graph with google/wire.
package di

import (
	"github.com/Tiliavir/trivial-water-tracker/internal/config"
	"github.com/Tiliavir/trivial-water-tracker/internal/kv"
	"github.com/Tiliavir/trivial-water-tracker/internal/logging"
	"github.com/Tiliavir/trivial-water-tracker/internal/metrics"
	"github.com/Tiliavir/trivial-water-tracker/internal/snapshot"
	"github.com/Tiliavir/trivial-water-tracker/internal/water"
)

// App is everything a command needs.
type App struct {
	Config    config.Config
	Logger    *logging.Logger
	Store     kv.Store
	Metrics   metrics.Recorder
	Service   *water.Service
	Snapshots *snapshot.Manager
}

func NewApp(cfg config.Config, logger *logging.Logger, store kv.Store, rec metrics.Recorder, svc *water.Service, snapshots *snapshot.Manager) *App {
	return &App{
		Config:    cfg,
		Logger:    logger,
		Store:     store,
		Metrics:   rec,
		Service:   svc,
		Snapshots: snapshots,
	}
}

// FlushMetrics writes the metrics textfile. Failures are only logged.
func (a *App) FlushMetrics() {
	if err := a.Metrics.Flush(); err != nil {
		a.Logger.Warn().Err(err).Str("textfile", a.Config.Metrics.Textfile).Msg("could not write metrics")
	}
}
