package guardrails

import (
	"strings"
)

// Disclaimer is the fixed regulatory disclaimer that must appear verbatim in
// every piece of delivered content.
const Disclaimer = "This content is for educational purposes only and is not financial advice. Consult a licensed financial advisor before making financial decisions."

// ensureDisclaimer appends the disclaimer when the text does not already
// contain it verbatim.
func ensureDisclaimer(body string) string {
	if strings.Contains(body, Disclaimer) {
		return body
	}
	if body == "" {
		return Disclaimer
	}
	return strings.TrimRight(body, "\n") + "\n\n" + Disclaimer
}
