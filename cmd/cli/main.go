package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	cacheinmem "github.com/dvloznov/finance-insights/internal/cache/inmemory"
	"github.com/dvloznov/finance-insights/internal/catalog"
	"github.com/dvloznov/finance-insights/internal/config"
	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/enrich"
	infraBQ "github.com/dvloznov/finance-insights/internal/infra/bigquery"
	"github.com/dvloznov/finance-insights/internal/insights"
	"github.com/dvloznov/finance-insights/internal/logger"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "run":
		runInsights(log)
	case "trace":
		runTrace(log)
	case "history":
		runHistory(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Finance Insights CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  run       Run the full insights pipeline for a user")
	fmt.Println("  trace     Show a decision trace by ID")
	fmt.Println("  history   Show a user's persona assignment history")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func runInsights(log zerolog.Logger) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	userID := fs.String("user", "", "User ID to generate insights for")
	fixture := fs.String("fixture", "", "Path to a local JSON fixture (skips BigQuery)")
	dryRun := fs.Bool("dry-run", false, "Skip persisting the assignment and trace")
	fs.Parse(os.Args[2:])

	if *userID == "" {
		log.Fatal().Msg("Error: --user is required")
	}

	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	cat, err := loadCatalog(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load recommendation catalog")
	}

	deps := insights.Deps{
		Cache:      cacheinmem.NewCache(cfg.CacheTTL),
		Catalog:    cat,
		Blocklist:  cfg.Blocklist,
		Thresholds: cfg.Signals.Thresholds(),
		Log:        log,
	}

	if *fixture != "" {
		src, err := insights.NewFileSource(*fixture)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load fixture")
		}
		deps.Source = src
		deps.Consent = src
	} else {
		if cfg.ProjectID == "" {
			log.Fatal().Msg("GCP_PROJECT is required (or use --fixture)")
		}
		repo, err := infraBQ.NewRepository(ctx, cfg.ProjectID, cfg.DatasetID)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create repository")
		}
		defer repo.Close()
		deps.Source = repo
		deps.Consent = repo
		if !*dryRun {
			deps.Store = repo
		}
	}

	if cfg.Enrichment.ContentEnabled {
		deps.Enricher = enrich.NewGemini(cfg.Enrichment.Model, cfg.Enrichment.Timeout, log)
	} else {
		deps.Enricher = enrich.NewTemplate()
	}
	if cfg.Enrichment.ToneEnabled {
		deps.Tone = enrich.NewGemini(cfg.Enrichment.Model, cfg.Enrichment.Timeout, log)
	}

	service := insights.NewService(deps)

	trace, err := service.GenerateInsights(ctx, *userID)
	if err != nil {
		log.Fatal().Err(err).Msg("Insights run failed")
	}

	printTrace(trace)
}

func runTrace(log zerolog.Logger) {
	fs := flag.NewFlagSet("trace", flag.ExitOnError)
	traceID := fs.String("id", "", "Trace ID to look up")
	fs.Parse(os.Args[2:])

	if *traceID == "" {
		log.Fatal().Msg("Error: --id is required")
	}

	cfg := config.Load()
	if cfg.ProjectID == "" {
		log.Fatal().Msg("GCP_PROJECT is required")
	}

	ctx := context.Background()
	ctx = logger.WithContext(ctx, log)

	repo, err := infraBQ.NewRepository(ctx, cfg.ProjectID, cfg.DatasetID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create repository")
	}
	defer repo.Close()

	trace, err := repo.GetTrace(ctx, *traceID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to fetch trace")
	}
	if trace == nil {
		log.Fatal().Msg("Trace not found")
	}

	printTrace(trace)
}

func runHistory(log zerolog.Logger) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	userID := fs.String("user", "", "User ID to show persona history for")
	limit := fs.Int("limit", 20, "Maximum number of assignments to show")
	fs.Parse(os.Args[2:])

	if *userID == "" {
		log.Fatal().Msg("Error: --user is required")
	}

	cfg := config.Load()
	if cfg.ProjectID == "" {
		log.Fatal().Msg("GCP_PROJECT is required")
	}

	ctx := context.Background()
	ctx = logger.WithContext(ctx, log)

	repo, err := infraBQ.NewRepository(ctx, cfg.ProjectID, cfg.DatasetID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create repository")
	}
	defer repo.Close()

	assignments, err := repo.ListAssignmentsByUser(ctx, *userID, *limit)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list assignments")
	}

	fmt.Printf("\n=== Persona History (%d) ===\n", len(assignments))
	for i, a := range assignments {
		fmt.Printf("\n%d. %s\n", i+1, a.PersonaName)
		fmt.Printf("   Assigned:  %s\n", a.AssignedAt.Format(time.RFC3339))
		fmt.Printf("   Rationale: %s\n", a.Rationale)
		for _, c := range a.MatchedCriteria {
			fmt.Printf("   - %s\n", c)
		}
	}
	fmt.Println()
}

func printTrace(trace *domain.DecisionTrace) {
	fmt.Println("\n=== Decision Trace ===")
	fmt.Printf("ID:        %s\n", trace.TraceID)
	fmt.Printf("User:      %s\n", trace.UserID)
	fmt.Printf("Generated: %s\n", trace.GeneratedAt.Format(time.RFC3339))
	fmt.Printf("Persona:   %s\n", trace.Assignment.PersonaName)
	fmt.Printf("Rationale: %s\n", trace.Assignment.Rationale)
	fmt.Printf("Duration:  %s\n", trace.Duration)

	fmt.Printf("\n=== Reviewed Candidates (%d, %d approved) ===\n",
		len(trace.Reviewed), trace.ApprovedCount())
	for i, rc := range trace.Reviewed {
		fmt.Printf("\n%d. [%s] %s\n", i+1, rc.Result.Verdict, rc.Candidate.Title)
		fmt.Printf("   Type: %s\n", rc.Candidate.Type)
		if rc.Result.Verdict == domain.VerdictBlocked {
			fmt.Printf("   Blocked: %s\n", rc.Result.BlockReason)
			for _, r := range rc.Result.EligibilityReasons {
				fmt.Printf("   - %s\n", r)
			}
		} else {
			fmt.Printf("   Tone: %d\n", rc.Result.ToneScore)
			fmt.Printf("   %s\n", rc.Candidate.Body)
		}
	}
	fmt.Println()
}

func loadCatalog(ctx context.Context, cfg *config.AppConfig) (*catalog.Catalog, error) {
	if cfg.CatalogPath != "" {
		return catalog.LoadFromFile(cfg.CatalogPath)
	}
	if cfg.CatalogBucket == "" {
		return nil, fmt.Errorf("loadCatalog: CATALOG_PATH or CATALOG_BUCKET must be set")
	}
	return catalog.LoadFromGCS(ctx, cfg.CatalogBucket, cfg.CatalogObject)
}
