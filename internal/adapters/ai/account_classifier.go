package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/selivandex/situation-monitor/pkg/logger"
	"github.com/selivandex/situation-monitor/pkg/models"
)

const accountPromptTemplate = `You are a trading signal classifier. Analyze this Twitter account and categorize it.

Username: @%s
Bio: %q

Categories:
- stocks: US equities, options, day trading, stock market analysis
- crypto: Bitcoin, altcoins, DeFi, cryptocurrency trading
- politics: Political analysis, elections, policy impacts on markets
- general: Everything else

Respond with ONLY a JSON object in this exact format, no other text:
{"category": "stocks|crypto|politics|general", "confidence": 0.0-1.0, "reasoning": "brief explanation"}`

// ClassifyAccount maps an account's username and bio onto the fixed
// four-category enum. Any failure defaults to general with 0.5 confidence.
func (c *Classifier) ClassifyAccount(ctx context.Context, username, bio string) *models.AccountClassification {
	if !c.completer.IsEnabled() {
		return defaultAccountClassification("No AI service available")
	}

	prompt := fmt.Sprintf(accountPromptTemplate, username, bio)

	content, err := c.completer.Complete(ctx, []Message{{Role: "user", Content: prompt}})
	if err != nil {
		logger.Warn("account classification failed",
			zap.String("username", username),
			zap.Error(err),
		)
		return defaultAccountClassification("Classification failed, defaulting to general")
	}

	return parseAccountClassification(content)
}

func parseAccountClassification(content string) *models.AccountClassification {
	jsonStr := extractJSON(content)
	if jsonStr == "" {
		return defaultAccountClassification("No JSON object in AI response")
	}

	var raw struct {
		Category   string   `json:"category"`
		Confidence *float64 `json:"confidence"`
		Reasoning  string   `json:"reasoning"`
	}

	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		return defaultAccountClassification("Malformed JSON in AI response")
	}

	result := &models.AccountClassification{
		Category:   models.Category(raw.Category),
		Confidence: 0.5,
		Reasoning:  raw.Reasoning,
	}

	if !result.Category.Valid() {
		result.Category = models.CategoryGeneral
	}
	if raw.Confidence != nil && *raw.Confidence > 0 && *raw.Confidence <= 1 {
		result.Confidence = *raw.Confidence
	}
	if result.Reasoning == "" {
		result.Reasoning = "Classified by AI"
	}

	return result
}

func defaultAccountClassification(reason string) *models.AccountClassification {
	return &models.AccountClassification{
		Category:   models.CategoryGeneral,
		Confidence: 0.5,
		Reasoning:  reason,
	}
}
