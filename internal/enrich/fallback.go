package enrich

import (
	"context"
)

// Template is the local content fallback: catalog body text is already
// written as final copy, so the fallback passes it through with a short
// persona framing line. Deterministic, no I/O.
type Template struct{}

// NewTemplate creates the local fallback enricher.
func NewTemplate() *Template {
	return &Template{}
}

// EnrichBody prefixes the body with a persona framing line. It never fails.
func (t *Template) EnrichBody(_ context.Context, personaName, title, body string) (string, error) {
	if personaName == "" || personaName == "Custom" {
		return body, nil
	}
	return "Based on your " + personaName + " profile:\n\n" + body, nil
}
