// Package reviewsync pushes decision trace summaries to a Notion database
// where a human review team audits what was recommended and what was blocked.
package reviewsync

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"

	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/logger"
)

// SyncTraces pushes the given traces to the Notion review database. Traces
// already present (matched by Trace ID) are skipped; traces are immutable so
// there is nothing to update. With dryRun set, it only logs what it would do.
func SyncTraces(ctx context.Context, client NotionService, databaseID string, traces []*domain.DecisionTrace, dryRun bool) error {
	log := logger.FromContext(ctx)

	log.Info().
		Int("trace_count", len(traces)).
		Bool("dry_run", dryRun).
		Msg("Starting trace sync to Notion")

	existing, err := queryExistingTraceIDs(ctx, client, databaseID)
	if err != nil {
		return fmt.Errorf("SyncTraces: %w", err)
	}

	var created, skipped int
	for _, t := range traces {
		if existing[t.TraceID] {
			skipped++
			continue
		}

		if dryRun {
			log.Info().Str("trace_id", t.TraceID).Msg("[DRY RUN] Would create Notion page")
			created++
			continue
		}

		if _, err := client.CreatePage(ctx, databaseID, TraceToNotionProperties(t)); err != nil {
			log.Warn().Err(err).Str("trace_id", t.TraceID).Msg("Failed to create Notion page")
			continue
		}
		created++
	}

	log.Info().
		Int("created", created).
		Int("skipped", skipped).
		Msg("Trace sync complete")

	return nil
}

// queryExistingTraceIDs pages through the review database and collects the
// trace IDs already present.
func queryExistingTraceIDs(ctx context.Context, client NotionService, databaseID string) (map[string]bool, error) {
	existing := make(map[string]bool)

	var cursor notionapi.Cursor
	for {
		req := &notionapi.DatabaseQueryRequest{
			StartCursor: cursor,
			PageSize:    100,
		}

		resp, err := client.QueryDatabase(ctx, databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("queryExistingTraceIDs: %w", err)
		}

		for _, page := range resp.Results {
			if id := extractTraceID(page); id != "" {
				existing[id] = true
			}
		}

		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}

	return existing, nil
}
