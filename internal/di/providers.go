package di

import (
	"context"

	"github.com/Tiliavir/trivial-water-tracker/internal/config"
	"github.com/Tiliavir/trivial-water-tracker/internal/history"
	"github.com/Tiliavir/trivial-water-tracker/internal/kv"
	"github.com/Tiliavir/trivial-water-tracker/internal/logging"
	"github.com/Tiliavir/trivial-water-tracker/internal/metrics"
	"github.com/Tiliavir/trivial-water-tracker/internal/snapshot"
	"github.com/Tiliavir/trivial-water-tracker/internal/storage"
	"github.com/Tiliavir/trivial-water-tracker/internal/timecalc"
	"github.com/Tiliavir/trivial-water-tracker/internal/water"
)

func provideLogger(cfg config.Config) (*logging.Logger, func(), error) {
	logger, err := logging.New(cfg.Logger, cfg.Debug)
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = logger.Close() }, nil
}

func provideMetrics(cfg config.Config) metrics.Recorder {
	return metrics.NewProvider(cfg.Metrics)
}

func provideStore(ctx context.Context, cfg config.Config, rec metrics.Recorder, logger *logging.Logger) (kv.Store, func(), error) {
	l := logger.Component("kv")
	store, err := kv.Open(ctx, cfg.Storage, cfg.Cache, rec, l)
	if err != nil {
		return nil, nil, err
	}
	return store, func() {
		if err := store.Close(); err != nil {
			l.Warn().Err(err).Msg("closing store")
		}
	}, nil
}

func provideRepository(store kv.Store, logger *logging.Logger) *storage.Repository {
	return storage.NewRepository(store, logger.Component("storage"))
}

func provideHistory(cfg config.Config) *history.Store {
	return history.NewStore(cfg.History.Policy())
}

func provideService(repo *storage.Repository, hist *history.Store, clock timecalc.Clock, logger *logging.Logger, rec metrics.Recorder) *water.Service {
	return water.NewService(repo, hist, clock, logger.Component("water"), rec)
}

func provideSnapshots(store kv.Store, logger *logging.Logger) (*snapshot.Manager, func(), error) {
	m, err := snapshot.NewManager(store, logger.Component("snapshot"))
	if err != nil {
		return nil, nil, err
	}
	return m, m.Close, nil
}
