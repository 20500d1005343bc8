package models

import "time"

// ClassificationEvent records one classifier invocation outcome for
// analytics. Written to ClickHouse in batches when the sink is enabled.
type ClassificationEvent struct {
	Timestamp     time.Time `json:"timestamp" db:"timestamp"`
	AccountID     string    `json:"account_id" db:"account_id"`
	AccountHandle string    `json:"account_handle" db:"account_handle"`
	TweetID       string    `json:"tweet_id" db:"tweet_id"`
	IsSignal      bool      `json:"is_signal" db:"is_signal"`
	TickerCount   int       `json:"ticker_count" db:"ticker_count"`
	Sentiment     string    `json:"sentiment" db:"sentiment"`
	Confidence    string    `json:"confidence" db:"confidence"`
	Category      string    `json:"category" db:"category"`
	LatencyMs     int64     `json:"latency_ms" db:"latency_ms"`
}
