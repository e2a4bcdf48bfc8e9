package reviewsync

import (
	"fmt"

	"github.com/jomei/notionapi"

	"github.com/dvloznov/finance-insights/internal/domain"
)

// TraceToNotionProperties converts a decision trace into Notion properties
// for the review database. One page summarizes one run; reviewers drill into
// the stored trace for full detail.
func TraceToNotionProperties(t *domain.DecisionTrace) notionapi.Properties {
	props := notionapi.Properties{
		"Trace ID": notionapi.TitleProperty{
			Title: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: t.TraceID,
					},
				},
			},
		},
		"User ID": notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: t.UserID,
					},
				},
			},
		},
		"Persona": notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: t.Assignment.PersonaName,
			},
		},
		"Candidates": notionapi.NumberProperty{
			Number: float64(len(t.Reviewed)),
		},
		"Approved": notionapi.NumberProperty{
			Number: float64(t.ApprovedCount()),
		},
	}

	generated := notionapi.Date(t.GeneratedAt)
	props["Generated"] = notionapi.DateProperty{
		Date: &notionapi.DateObject{
			Start: &generated,
		},
	}

	if blocked := blockedSummary(t); blocked != "" {
		props["Blocked"] = notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: blocked,
					},
				},
			},
		}
	}

	return props
}

// blockedSummary lists blocked candidates with their reason codes, one per
// line, for reviewers scanning the database.
func blockedSummary(t *domain.DecisionTrace) string {
	var out string
	for _, rc := range t.Reviewed {
		if rc.Result.Verdict != domain.VerdictBlocked {
			continue
		}
		if out != "" {
			out += "\n"
		}
		out += fmt.Sprintf("%s: %s", rc.Candidate.Title, rc.Result.BlockReason)
	}
	return out
}

// extractTraceID reads the Trace ID title property from a Notion page.
// Returns an empty string if the page has no parseable trace ID.
func extractTraceID(page notionapi.Page) string {
	prop, ok := page.Properties["Trace ID"]
	if !ok {
		return ""
	}
	title, ok := prop.(*notionapi.TitleProperty)
	if !ok || len(title.Title) == 0 {
		return ""
	}
	return title.Title[0].PlainText
}
