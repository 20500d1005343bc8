package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Post is one post fetched from an account's external timeline
type Post struct {
	ID       string    `json:"id"`
	Text     string    `json:"text"`
	URL      string    `json:"url"`
	PostedAt time.Time `json:"posted_at"`
}

// Signal represents one classified trading idea extracted from exactly
// one source post. Immutable after creation; keyed by the source post id.
type Signal struct {
	ID            string           `json:"id" db:"id"`
	AccountID     string           `json:"account_id" db:"account_id"`
	AccountHandle string           `json:"account_handle" db:"account_handle"`
	AccountName   string           `json:"account_name" db:"account_name"`
	TweetID       string           `json:"tweet_id" db:"tweet_id"`
	TweetURL      string           `json:"tweet_url" db:"tweet_url"`
	Content       string           `json:"content" db:"content"`
	Tickers       []string         `json:"tickers" db:"tickers"`
	Sentiment     Sentiment        `json:"sentiment" db:"sentiment"`
	Confidence    Confidence       `json:"confidence" db:"confidence"`
	Category      Category         `json:"category" db:"category"`
	EntryPrice    *decimal.Decimal `json:"entry_price,omitempty" db:"entry_price"`
	TargetPrice   *decimal.Decimal `json:"target_price,omitempty" db:"target_price"`
	StopPrice     *decimal.Decimal `json:"stop_price,omitempty" db:"stop_price"`
	PostedAt      time.Time        `json:"posted_at" db:"posted_at"`
	CreatedAt     time.Time        `json:"created_at" db:"created_at"`
}

// SignalAnalysis is the validated AI response envelope for one post.
// Never persisted; consumed immediately to decide whether to materialize
// a Signal.
type SignalAnalysis struct {
	IsSignal    bool             `json:"is_signal"`
	Tickers     []string         `json:"tickers"`
	Sentiment   Sentiment        `json:"sentiment"`
	Confidence  Confidence       `json:"confidence"`
	EntryPrice  *decimal.Decimal `json:"entry_price,omitempty"`
	TargetPrice *decimal.Decimal `json:"target_price,omitempty"`
	StopPrice   *decimal.Decimal `json:"stop_price,omitempty"`
	Reasoning   string           `json:"reasoning"`
}
