package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/vsinha/pluanalyzer/pkg/application/services/analysis"
	"github.com/vsinha/pluanalyzer/pkg/application/services/assortment"
	"github.com/vsinha/pluanalyzer/pkg/domain/repositories"
	"github.com/vsinha/pluanalyzer/pkg/domain/services"
	"github.com/vsinha/pluanalyzer/pkg/infrastructure/commercetools"
	"github.com/vsinha/pluanalyzer/pkg/infrastructure/config"
	"github.com/vsinha/pluanalyzer/pkg/infrastructure/logger"
	"github.com/vsinha/pluanalyzer/pkg/infrastructure/metrics"
	csvloader "github.com/vsinha/pluanalyzer/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/pluanalyzer/pkg/infrastructure/repositories/memory"
	redisrepo "github.com/vsinha/pluanalyzer/pkg/infrastructure/repositories/redis"
	"github.com/vsinha/pluanalyzer/pkg/infrastructure/repositories/sqlite"
)

// App holds the dependencies shared by every command
type App struct {
	Config        *config.Config
	Service       *assortment.Service
	Loader        *csvloader.Loader
	CommerceTools *commercetools.Client
	Metrics       *metrics.Collector
	Logger        *slog.Logger

	closers []io.Closer
}

// NewApp builds the plant repository, services and storefront client from configuration
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logger.WithComponent("app")

	loc, err := cfg.Analysis.Location()
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:  cfg,
		Loader:  csvloader.NewLoader(),
		Metrics: metrics.NewCollector(),
		Logger:  log,
	}

	repo, err := app.openPlantRepository(ctx)
	if err != nil {
		return nil, err
	}

	storeFilter := services.NewStoreFilter(StoreFilterRules(cfg.Stores), loc)
	analyzer := analysis.NewAnalyzerWithConfig(AnalyzerConfig(cfg.Analysis))
	app.Service = assortment.NewService(repo, storeFilter, analyzer, app.Metrics, logger.WithComponent("assortment"))

	if cfg.CommerceTools.Configured() {
		app.CommerceTools, err = commercetools.NewClient(cfg.CommerceTools,
			commercetools.WithMetrics(app.Metrics),
			commercetools.WithLogger(logger.WithComponent("commercetools")),
		)
		if err != nil {
			app.Close()
			return nil, err
		}
	}

	return app, nil
}

func (a *App) openPlantRepository(ctx context.Context) (repositories.PlantRepository, error) {
	storage := a.Config.Storage
	a.Logger.Debug("opening plant storage", "driver", storage.Driver)

	switch storage.Driver {
	case "memory":
		return memory.NewPlantRepository(), nil
	case "sqlite", "":
		repo, err := sqlite.Open(storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, repo)
		return repo, nil
	case "redis":
		repo, err := redisrepo.Connect(ctx, storage.Redis.Addr(), storage.Redis.Password, storage.Redis.DB)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, repo)
		return repo, nil
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", storage.Driver)
	}
}

// Close releases storage connections
func (a *App) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.Logger.Warn("failed to close storage", "error", err)
		}
	}
	a.closers = nil
}

// StoreFilterRules converts the configured store rules
func StoreFilterRules(cfg config.StoresConfig) services.StoreFilterRules {
	return services.StoreFilterRules{
		ExcludedRegions:    cfg.ExcludedRegions,
		OrganizationNumber: cfg.OrganizationNumber,
		ExcludedSites:      cfg.ExcludedSites,
	}
}

// AnalyzerConfig converts the configured thresholds and DS locations
func AnalyzerConfig(cfg config.AnalysisConfig) analysis.Config {
	return analysis.Config{
		Rules: services.RecommendationRules{
			PublishThreshold:   decimal.NewFromFloat(cfg.PublishThreshold),
			UnpublishThreshold: decimal.NewFromFloat(cfg.UnpublishThreshold),
			InactiveStatuses:   cfg.InactiveStatuses,
		},
		DSLocations: cfg.DSLocations,
	}
}
