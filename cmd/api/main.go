package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-insights/internal/api/handlers"
	"github.com/dvloznov/finance-insights/internal/api/middleware"
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
	var (
		port = flag.String("port", "8080", "HTTP server port")
	)
	flag.Parse()

	log := logger.New()
	cfg := config.Load()

	if cfg.ProjectID == "" {
		log.Fatal().Msg("GCP_PROJECT is required")
	}

	ctx := context.Background()

	repo, err := infraBQ.NewRepository(ctx, cfg.ProjectID, cfg.DatasetID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create repository")
	}
	defer repo.Close()

	cat, err := loadCatalog(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load recommendation catalog")
	}
	log.Info().Int("items", cat.Len()).Msg("Catalog loaded")

	service := insights.NewService(buildDeps(cfg, repo, cat, log))

	// Job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, 3, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	jobHandler := func(ctx context.Context, job jobs.Job) error {
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
			return err
		}
		insightsJob.TraceID = trace.TraceID

		return nil
	}

	go func() {
		log.Info().Msg("Starting job worker")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Job worker stopped with error")
		}
	}()

	insightsHandler := handlers.NewInsightsHandler(service, repo, jobQueue, log)
	jobsHandler := handlers.NewJobsHandler(jobStore, log)

	mux := http.NewServeMux()

	// Insights endpoints
	mux.HandleFunc("/api/insights", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			insightsHandler.EnqueueInsights(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/insights/run", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			insightsHandler.RunInsights(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Trace endpoints
	mux.HandleFunc("/api/traces/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			traceID := strings.TrimPrefix(r.URL.Path, "/api/traces/")
			if traceID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Trace ID is required")
				return
			}
			insightsHandler.GetTrace(w, r, traceID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Per-user history endpoints
	mux.HandleFunc("/api/users/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		rest := strings.TrimPrefix(r.URL.Path, "/api/users/")
		parts := strings.SplitN(rest, "/", 2)
		if len(parts) != 2 || parts[0] == "" {
			middleware.WriteError(w, http.StatusBadRequest, "User ID is required")
			return
		}
		userID := parts[0]

		switch parts[1] {
		case "traces":
			insightsHandler.ListTraces(w, r, userID)
		case "personas":
			insightsHandler.ListPersonaHistory(w, r, userID)
		default:
			middleware.WriteError(w, http.StatusNotFound, "Not found")
		}
	})

	// Jobs endpoints
	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobsHandler.ListJobs(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
			if jobID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
				return
			}
			jobsHandler.GetJob(w, r, jobID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", *port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}

// loadCatalog reads the recommendation catalog from a local path when
// configured, otherwise from GCS.
func loadCatalog(ctx context.Context, cfg *config.AppConfig, log zerolog.Logger) (*catalog.Catalog, error) {
	if cfg.CatalogPath != "" {
		log.Info().Str("path", cfg.CatalogPath).Msg("Loading catalog from file")
		return catalog.LoadFromFile(cfg.CatalogPath)
	}
	if cfg.CatalogBucket == "" {
		return nil, fmt.Errorf("loadCatalog: CATALOG_PATH or CATALOG_BUCKET must be set")
	}
	log.Info().Str("bucket", cfg.CatalogBucket).Str("object", cfg.CatalogObject).Msg("Loading catalog from GCS")
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
