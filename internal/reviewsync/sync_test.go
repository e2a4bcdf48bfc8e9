package reviewsync

import (
	"context"
	"testing"
	"time"

	"github.com/jomei/notionapi"

	"github.com/dvloznov/finance-insights/internal/domain"
)

type mockNotion struct {
	pages   []notionapi.Page
	created []notionapi.Properties
}

func (m *mockNotion) CreatePage(_ context.Context, databaseID string, props notionapi.Properties) (*notionapi.Page, error) {
	m.created = append(m.created, props)
	return &notionapi.Page{}, nil
}

func (m *mockNotion) UpdatePage(_ context.Context, pageID string, props notionapi.Properties) (*notionapi.Page, error) {
	return &notionapi.Page{}, nil
}

func (m *mockNotion) QueryDatabase(_ context.Context, databaseID string, _ *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	return &notionapi.DatabaseQueryResponse{Results: m.pages, HasMore: false}, nil
}

func tracePage(traceID string) notionapi.Page {
	return notionapi.Page{
		Properties: notionapi.Properties{
			"Trace ID": &notionapi.TitleProperty{
				Title: []notionapi.RichText{{PlainText: traceID}},
			},
		},
	}
}

func sampleTrace(traceID string) *domain.DecisionTrace {
	return &domain.DecisionTrace{
		TraceID:     traceID,
		UserID:      "user-1",
		GeneratedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Assignment:  domain.PersonaAssignment{PersonaName: "High Utilization"},
		Reviewed: []domain.ReviewedCandidate{
			{
				Candidate: domain.RecommendationCandidate{Title: "Understanding APR"},
				Result:    domain.GuardrailResult{Verdict: domain.VerdictApproved},
			},
			{
				Candidate: domain.RecommendationCandidate{Title: "Fast Cash Advance"},
				Result:    domain.GuardrailResult{Verdict: domain.VerdictBlocked, BlockReason: domain.BlockHarmfulCategory},
			},
		},
	}
}

func TestSyncTraces_CreatesNewSkipsExisting(t *testing.T) {
	client := &mockNotion{pages: []notionapi.Page{tracePage("trace-old")}}

	traces := []*domain.DecisionTrace{sampleTrace("trace-old"), sampleTrace("trace-new")}
	if err := SyncTraces(context.Background(), client, "db-1", traces, false); err != nil {
		t.Fatalf("SyncTraces: %v", err)
	}

	if len(client.created) != 1 {
		t.Fatalf("created %d pages, want 1", len(client.created))
	}
}

func TestSyncTraces_DryRunCreatesNothing(t *testing.T) {
	client := &mockNotion{}

	traces := []*domain.DecisionTrace{sampleTrace("trace-1")}
	if err := SyncTraces(context.Background(), client, "db-1", traces, true); err != nil {
		t.Fatalf("SyncTraces: %v", err)
	}

	if len(client.created) != 0 {
		t.Fatalf("dry run created %d pages, want 0", len(client.created))
	}
}

func TestTraceToNotionProperties(t *testing.T) {
	props := TraceToNotionProperties(sampleTrace("trace-1"))

	title, ok := props["Trace ID"].(notionapi.TitleProperty)
	if !ok || title.Title[0].Text.Content != "trace-1" {
		t.Error("Trace ID property not set")
	}
	if approved, ok := props["Approved"].(notionapi.NumberProperty); !ok || approved.Number != 1 {
		t.Error("Approved count property not set")
	}
	blocked, ok := props["Blocked"].(notionapi.RichTextProperty)
	if !ok {
		t.Fatal("Blocked summary property not set")
	}
	if got := blocked.RichText[0].Text.Content; got != "Fast Cash Advance: blocklisted_category" {
		t.Errorf("blocked summary = %q", got)
	}
}
