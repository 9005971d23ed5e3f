// Package di assembles the runtime object graph from configuration.
package di

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/mdco-storefront/api/internal/domain"
	"github.com/mdco-storefront/api/internal/jobs"
	"github.com/mdco-storefront/api/internal/platform/config"
	"github.com/mdco-storefront/api/internal/platform/i18n"
	"github.com/mdco-storefront/api/internal/platform/images"
	"github.com/mdco-storefront/api/internal/reports"
	"github.com/mdco-storefront/api/internal/services"
	"github.com/mdco-storefront/api/internal/upstream"
)

// Job names exposed through the registry.
const (
	JobReplayCatalog     = "productos-ripley"
	JobReplayMarketplace = "productos-MKP"
	JobPromotions        = "promotions"
)

// Container wires upstream clients, services, and batch jobs for runtime use.
type Container struct {
	Config   config.Config
	Logger   *zap.Logger
	Pipeline *services.Pipeline
	Jobs     *jobs.Registry
	Reports  reports.Sink
}

// NewContainer constructs the runtime dependencies from configuration.
func NewContainer(cfg config.Config, logger *zap.Logger) (*Container, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	localeDef, err := i18n.ForCountry(cfg.Locale.Country)
	if err != nil {
		return nil, fmt.Errorf("build locale: %w", err)
	}
	var formatterOpts []i18n.FormatterOption
	if cfg.Locale.Permissive {
		formatterOpts = append(formatterOpts, i18n.WithPermissiveMode())
	}
	prices := services.NewPriceFormatter(localeDef, formatterOpts...)

	transformer := images.NewTransformer(cfg.Images.ResizerHost, cfg.Images.ResizerToken)
	transformer.Disable(cfg.Images.ResizerDisabled)
	cdn := images.NewCatalogCDN(cfg.Images.CatalogPath, cfg.Images.CatalogHost)

	catalog, err := upstream.NewCatalogClient(cfg.Catalog.BaseURL,
		upstream.WithCatalogHTTPClient(&http.Client{Timeout: cfg.Catalog.Timeout}),
		upstream.WithCatalogUserAgent(cfg.Catalog.UserAgent),
	)
	if err != nil {
		return nil, fmt.Errorf("build catalog client: %w", err)
	}

	marketplace, err := upstream.NewMarketplaceClient(cfg.Marketplace.BaseURL, cfg.Marketplace.AuthToken,
		upstream.WithMarketplaceHTTPClient(&http.Client{Timeout: cfg.Marketplace.Timeout}),
		upstream.WithOfferStateCodes(cfg.Marketplace.OfferStateCodes),
	)
	if err != nil {
		return nil, fmt.Errorf("build marketplace client: %w", err)
	}

	sink, err := reports.NewFileSink(cfg.Reports.Dir, logger)
	if err != nil {
		return nil, fmt.Errorf("build report sink: %w", err)
	}

	// Package components go through the full pipeline again, so the resolver
	// closes over the pipeline assigned below.
	var pipeline *services.Pipeline
	resolver := services.ComponentResolver(func(ctx context.Context, partNumber string) (*domain.CanonicalProduct, error) {
		if pipeline == nil {
			return nil, fmt.Errorf("component resolver: pipeline not ready")
		}
		return pipeline.Process(ctx, partNumber)
	})

	normalizer, err := services.NewNormalizer(services.NormalizerDeps{
		Prices:      prices,
		Transformer: transformer,
		CatalogCDN:  cdn,
		Components:  resolver,
		BaseURL:     cfg.Storefront.BaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("build normalizer: %w", err)
	}

	enricher, err := services.NewEnricher(services.EnricherDeps{
		Marketplace: marketplace,
		Workers:     cfg.Enrichment.Workers,
	})
	if err != nil {
		return nil, fmt.Errorf("build enricher: %w", err)
	}

	pipeline, err = services.NewPipeline(services.PipelineDeps{
		Catalog:       catalog,
		Normalizer:    normalizer,
		Enricher:      enricher,
		Reports:       sink,
		ReportChannel: cfg.Reports.Channel,
	})
	if err != nil {
		return nil, fmt.Errorf("build pipeline: %w", err)
	}

	registry, err := buildJobs(cfg.Jobs, pipeline)
	if err != nil {
		return nil, err
	}

	return &Container{
		Config:   cfg,
		Logger:   logger,
		Pipeline: pipeline,
		Jobs:     registry,
		Reports:  sink,
	}, nil
}

func buildJobs(cfg config.JobConfig, pipeline *services.Pipeline) (*jobs.Registry, error) {
	registry := jobs.NewRegistry()

	replay, err := jobs.NewReplay(jobs.ReplayDeps{
		Pipeline:  pipeline,
		PaceEvery: cfg.PaceEvery,
		Pause:     cfg.Pause,
	})
	if err != nil {
		return nil, fmt.Errorf("build replay job: %w", err)
	}

	if cfg.File != "" {
		file := cfg.File
		registry.Register(JobReplayCatalog, func(ctx context.Context) error {
			_, err := replay.Run(ctx, file, cfg.Start, cfg.Count)
			return err
		})
	}
	if cfg.MarketplaceFile != "" {
		file := cfg.MarketplaceFile
		registry.Register(JobReplayMarketplace, func(ctx context.Context) error {
			_, err := replay.Run(ctx, file, cfg.Start, cfg.Count)
			return err
		})
	}
	if cfg.PromotionsFile != "" {
		promotions := jobs.NewPromotions(cfg.PromotionsFile, cfg.PromotionsOut)
		registry.Register(JobPromotions, promotions.Run)
	}

	return registry, nil
}
