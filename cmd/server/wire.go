//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"jan-server/services/report-api/internal/app"
	"jan-server/services/report-api/internal/config"
	"jan-server/services/report-api/internal/domain/classifier"
	"jan-server/services/report-api/internal/infrastructure/auth"
	"jan-server/services/report-api/internal/infrastructure/logger"
	"jan-server/services/report-api/internal/interfaces/httpserver"
	"jan-server/services/report-api/internal/interfaces/httpserver/handlers"
	middleware "jan-server/services/report-api/internal/interfaces/httpserver/middlewares"
)

var reportSet = wire.NewSet(
	app.NewStorage,
	app.NewRegistry,
	app.NewClassifierHolder,
	app.NewIntentClassifier,
	app.NewBuilder,
	app.NewExecutor,
	app.NewUsageLogger,
	app.NewReportService,
)

var httpSet = wire.NewSet(
	newAuthValidator,
	wire.Bind(new(middleware.Authenticator), new(*auth.Validator)),
	wire.Bind(new(handlers.ModelReloader), new(*classifier.Holder)),
	handlers.NewProvider,
	newReadinessCheck,
	httpserver.New,
)

// BuildApplication assembles the report service with Wire.
func BuildApplication(ctx context.Context) (*Application, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		newClock,
		reportSet,
		httpSet,
		NewApplication,
	)
	return nil, nil, nil
}

func newClock() clockwork.Clock {
	return clockwork.NewRealClock()
}

func newReadinessCheck(storage *app.Storage) httpserver.ReadinessCheck {
	return storage.Ready
}

func newAuthValidator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*auth.Validator, func(), error) {
	v, err := auth.NewValidator(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return v, v.Close, nil
}
