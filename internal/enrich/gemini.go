// Package enrich provides the optional content-enrichment and tone-scoring
// collaborators. The remote implementations call Gemini with a bounded
// timeout; the local implementations are deterministic and always available,
// so an unreachable model never stalls a pipeline run.
package enrich

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// Gemini wraps the model-backed collaborators.
type Gemini struct {
	model   string
	timeout time.Duration
	log     zerolog.Logger
}

// NewGemini creates the remote collaborator. timeout bounds every call.
func NewGemini(model string, timeout time.Duration, log zerolog.Logger) *Gemini {
	return &Gemini{model: model, timeout: timeout, log: log}
}

// EnrichBody expands a candidate's body text for the given persona. The
// returned text is display content only; rationales never come from here.
func (g *Gemini) EnrichBody(ctx context.Context, personaName, title, body string) (string, error) {
	prompt := "You are a financial education copywriter.\n\n" +
		"Rewrite the following content for a reader whose behavioral profile is \"" + personaName + "\".\n" +
		"Keep it factual, encouraging and free of shaming language.\n" +
		"Do not invent numbers, balances or rates.\n" +
		"Return plain text only, no Markdown.\n\n" +
		"Title: " + title + "\n\nContent:\n" + body

	text, err := g.generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("EnrichBody: %w", err)
	}
	return text, nil
}

// ScoreTone asks the model for a 0-10 tone rating. The caller applies the
// approval threshold; this only produces the score.
func (g *Gemini) ScoreTone(ctx context.Context, text string) (int, error) {
	prompt := "Rate the tone of the following financial guidance on a 0-10 scale, " +
		"where 0 is shaming or judgmental and 10 is supportive and empowering.\n" +
		"Respond with ONLY the integer, no other text.\n\n" + text

	raw, err := g.generate(ctx, prompt)
	if err != nil {
		return 0, fmt.Errorf("ScoreTone: %w", err)
	}

	score, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("ScoreTone: model returned %q, want integer", raw)
	}
	if score < 0 || score > 10 {
		return 0, fmt.Errorf("ScoreTone: score %d out of range", score)
	}
	return score, nil
}

func (g *Gemini) generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return "", fmt.Errorf("create genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return text, nil
}
