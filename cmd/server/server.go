package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"jan-server/services/report-api/internal/app"
	"jan-server/services/report-api/internal/config"
	"jan-server/services/report-api/internal/infrastructure/auth"
	"jan-server/services/report-api/internal/infrastructure/logger"
	"jan-server/services/report-api/internal/infrastructure/observability"
	"jan-server/services/report-api/internal/interfaces/httpserver"
	"jan-server/services/report-api/internal/interfaces/httpserver/handlers"
)

// @title Report API
// @version 1.0
// @description Spanish prompt-to-report engine over sales and catalog data
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
type Application struct {
	httpServer *httpserver.HttpServer
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	pipeline, cleanup, err := app.NewPipeline(ctx, cfg, clockwork.NewRealClock(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize report pipeline")
	}
	defer cleanup()

	authValidator, err := auth.NewValidator(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize auth validator")
	}
	defer authValidator.Close()

	handlerProvider := handlers.NewProvider(pipeline.Service, pipeline.Classifier, log)
	httpServer := httpserver.New(cfg, log, handlerProvider, authValidator, pipeline.Storage.Ready)
	application := NewApplication(httpServer, log)

	if err := application.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
