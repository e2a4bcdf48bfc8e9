package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	cacheinmem "github.com/dvloznov/finance-insights/internal/cache/inmemory"
	"github.com/dvloznov/finance-insights/internal/catalog"
	"github.com/dvloznov/finance-insights/internal/config"
	"github.com/dvloznov/finance-insights/internal/enrich"
	infraBQ "github.com/dvloznov/finance-insights/internal/infra/bigquery"
	"github.com/dvloznov/finance-insights/internal/insights"
	"github.com/dvloznov/finance-insights/internal/jobs"
	"github.com/dvloznov/finance-insights/internal/jobs/inmemory"
	"github.com/dvloznov/finance-insights/internal/logger"
)

func main() {
	log := logger.New()
	cfg := config.Load()

	if cfg.ProjectID == "" {
		log.Fatal().Msg("GCP_PROJECT is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo, err := infraBQ.NewRepository(ctx, cfg.ProjectID, cfg.DatasetID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create repository")
	}
	defer repo.Close()

	cat, err := loadCatalog(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load recommendation catalog")
	}

	service := insights.NewService(buildDeps(cfg, repo, cat, log))

	// In production, this would be replaced with Cloud Tasks or Pub/Sub.
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, 3, jobStore)

	log.Info().Msg("Starting worker service")

	handler := func(ctx context.Context, job jobs.Job) error {
		insightsJob, ok := job.(*jobs.GenerateInsightsJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		log.Info().
			Str("job_id", insightsJob.JobID).
			Str("user_id", insightsJob.UserID).
			Msg("Processing insights job")

		trace, err := service.GenerateInsights(logger.WithContext(ctx, log), insightsJob.UserID)
		if err != nil {
			log.Error().
				Err(err).
				Str("job_id", insightsJob.JobID).
				Str("user_id", insightsJob.UserID).
				Msg("Insights run failed")
			return err
		}
		insightsJob.TraceID = trace.TraceID

		log.Info().
			Str("job_id", insightsJob.JobID).
			Str("trace_id", trace.TraceID).
			Msg("Insights run completed successfully")

		return nil
	}

	if err := jobQueue.Start(ctx, handler); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	log.Info().Msg("Worker service started, waiting for jobs...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down worker service...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}

	log.Info().Msg("Worker service exited")
}

// loadCatalog reads the recommendation catalog from a local path when
// configured, otherwise from GCS.
func loadCatalog(ctx context.Context, cfg *config.AppConfig, log zerolog.Logger) (*catalog.Catalog, error) {
	if cfg.CatalogPath != "" {
		return catalog.LoadFromFile(cfg.CatalogPath)
	}
	if cfg.CatalogBucket == "" {
		return nil, fmt.Errorf("loadCatalog: CATALOG_PATH or CATALOG_BUCKET must be set")
	}
	return catalog.LoadFromGCS(ctx, cfg.CatalogBucket, cfg.CatalogObject)
}

// buildDeps assembles the pipeline collaborators around the repository.
func buildDeps(cfg *config.AppConfig, repo *infraBQ.Repository, cat *catalog.Catalog, log zerolog.Logger) insights.Deps {
	deps := insights.Deps{
		Source:     repo,
		Cache:      cacheinmem.NewCache(cfg.CacheTTL),
		Catalog:    cat,
		Consent:    repo,
		Store:      repo,
		Blocklist:  cfg.Blocklist,
		Thresholds: cfg.Signals.Thresholds(),
		Log:        log,
	}

	if cfg.Enrichment.ContentEnabled {
		deps.Enricher = enrich.NewGemini(cfg.Enrichment.Model, cfg.Enrichment.Timeout, log)
	} else {
		deps.Enricher = enrich.NewTemplate()
	}
	if cfg.Enrichment.ToneEnabled {
		deps.Tone = enrich.NewGemini(cfg.Enrichment.Model, cfg.Enrichment.Timeout, log)
	}

	return deps
}
