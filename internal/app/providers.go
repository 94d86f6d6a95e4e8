// Package app assembles the report pipeline from configuration. The server
// and the reportctl CLI share these providers.
package app

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"jan-server/services/report-api/internal/config"
	"jan-server/services/report-api/internal/domain/classifier"
	"jan-server/services/report-api/internal/domain/report"
	"jan-server/services/report-api/internal/infrastructure/database"
	"jan-server/services/report-api/internal/infrastructure/export"
	"jan-server/services/report-api/internal/infrastructure/metrics"
	"jan-server/services/report-api/internal/infrastructure/repository/promptlog"
	reportrepo "jan-server/services/report-api/internal/infrastructure/repository/report"
	"jan-server/services/report-api/pkg/telemetry"
)

// Storage bundles the read store, the prompt log and a readiness probe.
type Storage struct {
	Reports report.Store
	Usage   report.UsageRepository
	Ready   func(ctx context.Context) error
	DB      *gorm.DB
}

func NewDatabaseConfig(cfg *config.Config) database.Config {
	return database.Config{
		DSN:             cfg.DatabaseURL,
		ReadDSN:         cfg.DatabaseReadURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	}
}

// NewStorage connects to PostgreSQL, or builds the in-memory demo store when
// REPORT_STORE=memory. The cleanup closes the pool.
func NewStorage(ctx context.Context, cfg *config.Config, clock clockwork.Clock, log zerolog.Logger) (*Storage, func(), error) {
	if cfg.ReportStore == config.StoreMemory {
		log.Warn().Msg("using in-memory demo store")
		data := reportrepo.DemoDataset(clock.Now(), cfg.Location())
		return &Storage{
			Reports: reportrepo.NewInMemoryRepository(data),
			Usage:   promptlog.NewInMemoryRepository(),
			Ready:   func(context.Context) error { return nil },
		}, func() {}, nil
	}

	db, err := database.Connect(NewDatabaseConfig(cfg))
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	cleanup := func() {
		if err := database.Close(db); err != nil {
			log.Error().Err(err).Msg("close database")
		}
	}
	if err := database.AutoMigrate(ctx, db, log); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("migrate database: %w", err)
	}
	return &Storage{
		Reports: reportrepo.NewPostgresRepository(db),
		Usage:   promptlog.NewPostgresRepository(db),
		Ready:   func(context.Context) error { return database.Ping(db) },
		DB:      db,
	}, cleanup, nil
}

func NewRegistry(cfg *config.Config) (*report.Registry, error) {
	return report.LoadRegistry(cfg.RegistryPath)
}

// NewClassifierHolder loads the trained model when one exists. A missing or
// unreadable model leaves the service on rules only.
func NewClassifierHolder(cfg *config.Config, log zerolog.Logger) *classifier.Holder {
	holder := classifier.NewHolder(cfg.ClassifierModelPath, log.With().Str("component", "intent-model").Logger())
	loaded, err := holder.Reload()
	if err != nil {
		log.Warn().Err(err).Msg("intent model unavailable; continuing with rules")
	}
	metrics.SetModelLoaded(loaded)
	return holder
}

// NewIntentClassifier chains the keyword rules before the statistical model.
func NewIntentClassifier(cfg *config.Config, holder *classifier.Holder) report.Classifier {
	return report.NewChain(
		report.IntentSales,
		report.NewRuleClassifier(report.DefaultRules()),
		report.NewStatisticalClassifier(holder, cfg.ClassifierThreshold),
	)
}

func NewBuilder(cfg *config.Config, registry *report.Registry, intents report.Classifier, clock clockwork.Clock) *report.Builder {
	return report.NewBuilder(
		registry,
		report.NewResolver(cfg.FuzzyCutoff),
		report.NewDateResolver(clock, cfg.Location()),
		intents,
		report.WithWindowDays(cfg.DefaultWindowDays),
	)
}

func NewExecutor(cfg *config.Config, storage *Storage, registry *report.Registry, log zerolog.Logger) *report.Executor {
	return report.NewExecutor(storage.Reports, registry, cfg.Location(), log)
}

func NewUsageLogger(cfg *config.Config, storage *Storage, clock clockwork.Clock, log zerolog.Logger) report.UsageLogger {
	sanitizer := telemetry.NewSanitizer(telemetry.ParsePIILevel(cfg.PromptLogPIILevel), cfg.PromptLogHashSalt)
	return report.NewUsageLogger(storage.Usage, log,
		report.WithSanitizer(sanitizer),
		report.WithFailureHook(metrics.RecordUsageLogFailure),
		report.WithClock(clock),
		report.WithWriteTimeout(cfg.PromptLogTimeout),
	)
}

func NewReportService(
	builder *report.Builder,
	executor *report.Executor,
	usage report.UsageLogger,
	storage *Storage,
	clock clockwork.Clock,
	log zerolog.Logger,
) report.Service {
	return report.NewService(builder, executor, usage, storage.Usage, export.NewRenderers(), clock, log)
}

// Pipeline is the assembled report service and its collaborators.
type Pipeline struct {
	Service    report.Service
	Builder    *report.Builder
	Executor   *report.Executor
	Classifier *classifier.Holder
	Storage    *Storage
}

// NewPipeline wires every provider in order.
func NewPipeline(ctx context.Context, cfg *config.Config, clock clockwork.Clock, log zerolog.Logger) (*Pipeline, func(), error) {
	storage, cleanup, err := NewStorage(ctx, cfg, clock, log)
	if err != nil {
		return nil, nil, err
	}
	registry, err := NewRegistry(cfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	holder := NewClassifierHolder(cfg, log)
	builder := NewBuilder(cfg, registry, NewIntentClassifier(cfg, holder), clock)
	executor := NewExecutor(cfg, storage, registry, log)
	usage := NewUsageLogger(cfg, storage, clock, log)

	return &Pipeline{
		Service:    NewReportService(builder, executor, usage, storage, clock, log),
		Builder:    builder,
		Executor:   executor,
		Classifier: holder,
		Storage:    storage,
	}, cleanup, nil
}
