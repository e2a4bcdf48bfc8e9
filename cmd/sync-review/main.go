package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/dvloznov/finance-insights/internal/config"
	infraBQ "github.com/dvloznov/finance-insights/internal/infra/bigquery"
	"github.com/dvloznov/finance-insights/internal/logger"
	"github.com/dvloznov/finance-insights/internal/reviewsync"
)

func main() {
	log := logger.New()

	userID := flag.String("user", "", "User ID whose traces to sync (required)")
	limit := flag.Int("limit", 20, "Maximum number of recent traces to sync")
	notionToken := flag.String("notion-token", "", "Notion API token (defaults to NOTION_API_KEY)")
	notionDBID := flag.String("notion-db-id", "", "Notion database ID (defaults to NOTION_REVIEW_DATABASE_ID)")
	dryRun := flag.Bool("dry-run", false, "Dry run mode - preview changes without syncing")
	flag.Parse()

	cfg := config.Load()

	if *notionToken == "" {
		*notionToken = cfg.Notion.APIKey
	}
	if *notionDBID == "" {
		*notionDBID = cfg.Notion.DatabaseID
	}

	if *userID == "" {
		log.Fatal().Msg("Error: --user is required")
	}
	if *notionToken == "" {
		log.Fatal().Msg("Error: --notion-token or NOTION_API_KEY is required")
	}
	if *notionDBID == "" {
		log.Fatal().Msg("Error: --notion-db-id or NOTION_REVIEW_DATABASE_ID is required")
	}
	if cfg.ProjectID == "" {
		log.Fatal().Msg("GCP_PROJECT is required")
	}

	// Timeout so the CLI doesn't hang on a stuck Notion call
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	ctx = logger.WithContext(ctx, log)

	log.Info().
		Str("user_id", *userID).
		Int("limit", *limit).
		Bool("dry_run", *dryRun).
		Msg("Starting review sync")

	repo, err := infraBQ.NewRepository(ctx, cfg.ProjectID, cfg.DatasetID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize BigQuery repository")
	}
	defer repo.Close()

	traces, err := repo.ListTracesByUser(ctx, *userID, *limit)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list traces")
	}
	if len(traces) == 0 {
		log.Info().Str("user_id", *userID).Msg("No traces to sync")
		return
	}

	notionClient := reviewsync.NewNotionClient(*notionToken)

	if err := reviewsync.SyncTraces(ctx, notionClient, *notionDBID, traces, *dryRun); err != nil {
		log.Fatal().Err(err).Msg("Sync failed")
	}

	fmt.Println("Sync completed successfully.")
}
