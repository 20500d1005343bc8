package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// WatchlistPosition is a user-curated entry keyed by normalized ticker.
// At most one position exists per ticker; re-adding overwrites sentiment
// and merges provided metadata.
type WatchlistPosition struct {
	ID             string            `json:"id" db:"id"`
	Ticker         string            `json:"ticker" db:"ticker"`
	Sentiment      PositionSentiment `json:"sentiment" db:"sentiment"`
	Notes          string            `json:"notes,omitempty" db:"notes"`
	SourceSignalID string            `json:"source_signal_id,omitempty" db:"source_signal_id"`
	SourceTweetURL string            `json:"source_tweet_url,omitempty" db:"source_tweet_url"`
	EntryPrice     *decimal.Decimal  `json:"entry_price,omitempty" db:"entry_price"`
	Analysis       *DeepAnalysis     `json:"analysis,omitempty" db:"-"`
	AddedAt        time.Time         `json:"added_at" db:"added_at"`
}

// PositionOptions carries optional metadata for AddPosition. Nil/empty
// fields are not merged, so existing values survive an overwrite.
type PositionOptions struct {
	Notes          string           `json:"notes,omitempty"`
	SourceSignalID string           `json:"source_signal_id,omitempty"`
	SourceTweetURL string           `json:"source_tweet_url,omitempty"`
	EntryPrice     *decimal.Decimal `json:"entry_price,omitempty"`
}

// DeepAnalysis is the AI deep-dive result attached to a position
type DeepAnalysis struct {
	Summary        string    `json:"summary"`
	BullCase       string    `json:"bull_case"`
	ScamRisk       ScamRisk  `json:"scam_risk"`
	ScamIndicators []string  `json:"scam_indicators"`
	AnalyzedAt     time.Time `json:"analyzed_at"`
}
