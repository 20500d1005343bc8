package metrics

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/selivandex/situation-monitor/pkg/logger"
	"github.com/selivandex/situation-monitor/pkg/models"
)

// Repository writes classification events to ClickHouse
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates new ClickHouse metrics repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// SaveEvents writes a batch of classification events
func (r *Repository) SaveEvents(ctx context.Context, events []models.ClassificationEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}

	stmt, err := tx.Preparex(`
		INSERT INTO signal_classifications
		(timestamp, account_id, account_handle, tweet_id, is_signal,
		 ticker_count, sentiment, confidence, category, latency_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, event := range events {
		_, err = stmt.ExecContext(ctx,
			event.Timestamp,
			event.AccountID,
			event.AccountHandle,
			event.TweetID,
			event.IsSignal,
			event.TickerCount,
			event.Sentiment,
			event.Confidence,
			event.Category,
			event.LatencyMs,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert classification event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	logger.Debug("saved classification events to ClickHouse",
		zap.Int("count", len(events)))

	return nil
}
