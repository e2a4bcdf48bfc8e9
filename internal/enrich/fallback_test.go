package enrich

import (
	"context"
	"strings"
	"testing"
)

func TestTemplateEnrichBody(t *testing.T) {
	e := NewTemplate()

	tests := []struct {
		name        string
		personaName string
		body        string
		wantPrefix  bool
	}{
		{"named persona gets framing", "High Utilization", "Pay more than the minimum.", true},
		{"custom persona passes through", "Custom", "General guidance.", false},
		{"empty persona passes through", "", "General guidance.", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.EnrichBody(context.Background(), tt.personaName, "Title", tt.body)
			if err != nil {
				t.Fatalf("EnrichBody failed: %v", err)
			}
			if !strings.Contains(got, tt.body) {
				t.Errorf("enriched text lost the original body: %q", got)
			}
			hasPrefix := strings.HasPrefix(got, "Based on your ")
			if hasPrefix != tt.wantPrefix {
				t.Errorf("framing prefix = %v, want %v", hasPrefix, tt.wantPrefix)
			}
		})
	}
}

func TestTemplateEnrichBody_Deterministic(t *testing.T) {
	e := NewTemplate()
	first, _ := e.EnrichBody(context.Background(), "Savings Builder", "T", "body")
	second, _ := e.EnrichBody(context.Background(), "Savings Builder", "T", "body")
	if first != second {
		t.Error("fallback enrichment is not deterministic")
	}
}
