// Package extract provides the local quick-path for turning raw post text
// into ticker symbols and a coarse sentiment, without calling the AI
// classifier. Used by the manual tweet-import flow.
package extract

import (
	"regexp"
	"strings"

	"github.com/selivandex/situation-monitor/pkg/models"
)

var tickerPattern = regexp.MustCompile(`\$([A-Za-z]{1,5})\b`)

// bullishWords and bearishWords are fixed heuristic keyword lists.
// Matching is substring-based and case-insensitive.
var (
	bullishWords = []string{
		"buy", "long", "bullish", "moon", "calls",
		"breakout", "support", "accumulate", "load", "adding",
	}
	bearishWords = []string{
		"sell", "short", "bearish", "puts", "dump",
		"resistance", "crash", "fade", "exit",
	}
)

// ExtractTickers scans text for cashtag-style tokens ($ followed by 1-5
// letters) and returns deduplicated uppercase symbols in order of first
// appearance. Set semantics: ordering carries no meaning.
func ExtractTickers(text string) []string {
	matches := tickerPattern.FindAllStringSubmatch(text, -1)

	tickers := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))

	for _, m := range matches {
		symbol := strings.ToUpper(m[1])
		if _, ok := seen[symbol]; ok {
			continue
		}
		seen[symbol] = struct{}{}
		tickers = append(tickers, symbol)
	}

	return tickers
}

// DetectSentiment counts bullish vs bearish keyword hits. Ties resolve to
// bullish: the zero-match case defaulting to bullish is a deliberate
// policy, not a bug.
func DetectSentiment(text string) models.PositionSentiment {
	lower := strings.ToLower(text)

	bullish := 0
	for _, w := range bullishWords {
		if strings.Contains(lower, w) {
			bullish++
		}
	}

	bearish := 0
	for _, w := range bearishWords {
		if strings.Contains(lower, w) {
			bearish++
		}
	}

	if bullish >= bearish {
		return models.PositionBullish
	}
	return models.PositionBearish
}
