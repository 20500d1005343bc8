package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/selivandex/situation-monitor/pkg/logger"
	"github.com/selivandex/situation-monitor/pkg/models"
)

const signalPromptTemplate = `Extract trading signal from this tweet. ONLY return isSignal: true if this is a real position/trade idea.

Tweet: %q
Author: %s

Return isSignal: true ONLY if this is:
- Actual position (bought/sold)
- Trade idea with entry/target
- Technical setup with levels
- Clear bullish/bearish call on a ticker

Return isSignal: false if:
- General opinion without actionable info
- News repost without analysis
- Joke/meme
- Question
- No specific ticker mentioned

Extract tickers as uppercase symbols (GME, BTC, ETH, etc). Include $ prefix removal.

Respond with ONLY a JSON object in this exact format, no other text:
{"isSignal": true/false, "tickers": ["SYMBOL"], "sentiment": "bullish|bearish|neutral", "confidence": "high|medium|low", "entryPrice": number|null, "targetPrice": number|null, "stopPrice": number|null, "reasoning": "brief explanation"}`

// Classifier turns free post text into structured classification results
// via the completion service. Every method fails safe: an unreachable or
// misbehaving endpoint yields the default non-signal result, never an
// error to the caller.
type Classifier struct {
	completer Completer
}

// NewClassifier creates new classifier on top of a completion client
func NewClassifier(completer Completer) *Classifier {
	return &Classifier{completer: completer}
}

// ClassifySignal analyzes one post and reports whether it contains an
// actionable trading signal
func (c *Classifier) ClassifySignal(ctx context.Context, postText, accountHandle string) *models.SignalAnalysis {
	if !c.completer.IsEnabled() {
		return defaultSignalAnalysis("No AI service available")
	}

	prompt := fmt.Sprintf(signalPromptTemplate, postText, accountHandle)

	content, err := c.completer.Complete(ctx, []Message{{Role: "user", Content: prompt}})
	if err != nil {
		logger.Warn("signal classification failed",
			zap.String("account", accountHandle),
			zap.Error(err),
		)
		return defaultSignalAnalysis("Analysis failed")
	}

	return parseSignalAnalysis(content)
}

// parseSignalAnalysis decodes the model response, defaulting each missing
// or invalid field independently rather than rejecting the whole object
func parseSignalAnalysis(content string) *models.SignalAnalysis {
	jsonStr := extractJSON(content)
	if jsonStr == "" {
		return defaultSignalAnalysis("No JSON object in AI response")
	}

	var raw struct {
		IsSignal    bool     `json:"isSignal"`
		Tickers     []string `json:"tickers"`
		Sentiment   string   `json:"sentiment"`
		Confidence  string   `json:"confidence"`
		EntryPrice  *float64 `json:"entryPrice"`
		TargetPrice *float64 `json:"targetPrice"`
		StopPrice   *float64 `json:"stopPrice"`
		Reasoning   string   `json:"reasoning"`
	}

	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		return defaultSignalAnalysis("Malformed JSON in AI response")
	}

	analysis := &models.SignalAnalysis{
		IsSignal:    raw.IsSignal,
		Tickers:     normalizeTickers(raw.Tickers),
		Sentiment:   models.Sentiment(raw.Sentiment),
		Confidence:  models.Confidence(raw.Confidence),
		EntryPrice:  positivePrice(raw.EntryPrice),
		TargetPrice: positivePrice(raw.TargetPrice),
		StopPrice:   positivePrice(raw.StopPrice),
		Reasoning:   raw.Reasoning,
	}

	if !analysis.Sentiment.Valid() {
		analysis.Sentiment = models.SentimentNeutral
	}
	if !analysis.Confidence.Valid() {
		analysis.Confidence = models.ConfidenceLow
	}
	if analysis.Reasoning == "" {
		analysis.Reasoning = "Analyzed by AI"
	}

	return analysis
}

// defaultSignalAnalysis is the safe non-signal result used on any failure
func defaultSignalAnalysis(reason string) *models.SignalAnalysis {
	return &models.SignalAnalysis{
		IsSignal:   false,
		Tickers:    []string{},
		Sentiment:  models.SentimentNeutral,
		Confidence: models.ConfidenceLow,
		Reasoning:  reason,
	}
}

// positivePrice converts a reported price, dropping absent or
// non-positive values
func positivePrice(v *float64) *decimal.Decimal {
	if v == nil || *v <= 0 {
		return nil
	}
	d := decimal.NewFromFloat(*v)
	return &d
}
