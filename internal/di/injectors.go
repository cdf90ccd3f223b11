//go:build wireinject
// +build wireinject

package di

import (
	"context"

	wire "github.com/google/wire"

	"github.com/Tiliavir/trivial-water-tracker/internal/config"
	"github.com/Tiliavir/trivial-water-tracker/internal/timecalc"
)

func InitApp(ctx context.Context, cfg config.Config, clock timecalc.Clock) (*App, func(), error) {

	wire.Build(
		provideLogger,
		provideMetrics,
		provideStore,
		provideRepository,
		provideHistory,
		provideService,
		provideSnapshots,
		NewApp,
	)

	return nil, nil, nil
}
