package models

// Sentiment represents classified direction of a signal
type Sentiment string

const (
	SentimentBullish Sentiment = "bullish"
	SentimentBearish Sentiment = "bearish"
	SentimentNeutral Sentiment = "neutral"
)

// Valid reports whether the sentiment is one of the known values
func (s Sentiment) Valid() bool {
	switch s {
	case SentimentBullish, SentimentBearish, SentimentNeutral:
		return true
	}
	return false
}

// Confidence represents classifier-reported certainty level
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Valid reports whether the confidence is one of the known values
func (c Confidence) Valid() bool {
	switch c {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return true
	}
	return false
}

// Category represents fixed account/signal classification
type Category string

const (
	CategoryStocks   Category = "stocks"
	CategoryCrypto   Category = "crypto"
	CategoryPolitics Category = "politics"
	CategoryGeneral  Category = "general"
)

// Valid reports whether the category is one of the four fixed values
func (c Category) Valid() bool {
	switch c {
	case CategoryStocks, CategoryCrypto, CategoryPolitics, CategoryGeneral:
		return true
	}
	return false
}

// PositionSentiment is the watchlist direction (no neutral for positions)
type PositionSentiment string

const (
	PositionBullish PositionSentiment = "bullish"
	PositionBearish PositionSentiment = "bearish"
)

// Valid reports whether the position sentiment is bullish or bearish
func (p PositionSentiment) Valid() bool {
	return p == PositionBullish || p == PositionBearish
}

// ScamRisk is the pump-and-dump risk level from deep analysis
type ScamRisk string

const (
	ScamRiskLow    ScamRisk = "low"
	ScamRiskMedium ScamRisk = "medium"
	ScamRiskHigh   ScamRisk = "high"
)

// Valid reports whether the scam risk is one of the known levels
func (r ScamRisk) Valid() bool {
	switch r {
	case ScamRiskLow, ScamRiskMedium, ScamRiskHigh:
		return true
	}
	return false
}
