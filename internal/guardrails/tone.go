package guardrails

import (
	"strings"
)

// toneThreshold is the minimum score a candidate needs to be shown.
const toneThreshold = 7

// keywordNeutralScore is the starting score for text with no keyword hits.
const keywordNeutralScore = 8

// shamingKeywords are phrases that lecture or blame the user. One hit drops
// the score below the threshold.
var shamingKeywords = []string{
	"irresponsible",
	"reckless",
	"careless",
	"wasteful",
	"bad with money",
	"failure",
	"you should have",
	"shame",
	"foolish",
	"overspending problem",
}

// empoweringKeywords are phrases that frame the user as in control.
var empoweringKeywords = []string{
	"you can",
	"take control",
	"on track",
	"progress",
	"small step",
	"opportunity",
	"grow",
}

// keywordToneScore derives a 0-10 tone score from keyword hits. Neutral text
// scores 8; each shaming phrase costs 3 points, each empowering phrase adds
// one up to the cap.
func keywordToneScore(text string) int {
	lower := strings.ToLower(text)

	score := keywordNeutralScore
	for _, kw := range shamingKeywords {
		if strings.Contains(lower, kw) {
			score -= 3
		}
	}
	for _, kw := range empoweringKeywords {
		if strings.Contains(lower, kw) {
			score++
		}
	}
	return clampScore(score)
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 10 {
		return 10
	}
	return score
}
