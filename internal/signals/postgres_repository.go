package signals

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/selivandex/situation-monitor/internal/adapters/database"
	"github.com/selivandex/situation-monitor/pkg/models"
)

// PostgresRepository persists signals in PostgreSQL
type PostgresRepository struct {
	db *database.DB
}

// NewPostgresRepository creates new Postgres signal repository
func NewPostgresRepository(db *database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const signalColumns = `
	id, account_id, account_handle, account_name, tweet_id, tweet_url,
	content, tickers, sentiment, confidence, category,
	entry_price, target_price, stop_price, posted_at, created_at
`

func scanSignal(row interface {
	Scan(dest ...interface{}) error
}) (*models.Signal, error) {
	var s models.Signal
	var tickers pq.StringArray

	err := row.Scan(
		&s.ID, &s.AccountID, &s.AccountHandle, &s.AccountName,
		&s.TweetID, &s.TweetURL, &s.Content, &tickers,
		&s.Sentiment, &s.Confidence, &s.Category,
		&s.EntryPrice, &s.TargetPrice, &s.StopPrice,
		&s.PostedAt, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.Tickers = tickers
	return &s, nil
}

// GetByTweetID returns the signal for a source post id, nil when absent
func (r *PostgresRepository) GetByTweetID(ctx context.Context, tweetID string) (*models.Signal, error) {
	row := r.db.DB().QueryRowContext(ctx,
		`SELECT `+signalColumns+` FROM signals WHERE tweet_id = $1`, tweetID)

	signal, err := scanSignal(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query signal by tweet id: %w", err)
	}
	return signal, nil
}

// GetByID returns a signal by its own id, nil when absent
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Signal, error) {
	row := r.db.DB().QueryRowContext(ctx,
		`SELECT `+signalColumns+` FROM signals WHERE id = $1`, id)

	signal, err := scanSignal(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query signal: %w", err)
	}
	return signal, nil
}

// Insert appends a new signal
func (r *PostgresRepository) Insert(ctx context.Context, signal *models.Signal) error {
	_, err := r.db.DB().ExecContext(ctx, `
		INSERT INTO signals (`+signalColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`,
		signal.ID, signal.AccountID, signal.AccountHandle, signal.AccountName,
		signal.TweetID, signal.TweetURL, signal.Content, pq.Array(signal.Tickers),
		signal.Sentiment, signal.Confidence, signal.Category,
		signal.EntryPrice, signal.TargetPrice, signal.StopPrice,
		signal.PostedAt, signal.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert signal: %w", err)
	}
	return nil
}

// List returns signals sorted by posted_at descending
func (r *PostgresRepository) List(ctx context.Context, category models.Category, limit int) ([]models.Signal, error) {
	query := `SELECT ` + signalColumns + ` FROM signals`
	args := []interface{}{}

	if category != "" {
		query += ` WHERE category = $1`
		args = append(args, category)
	}
	query += ` ORDER BY posted_at DESC`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, limit)
	}

	rows, err := r.db.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query signals: %w", err)
	}
	defer rows.Close()

	signals := make([]models.Signal, 0)
	for rows.Next() {
		signal, err := scanSignal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan signal: %w", err)
		}
		signals = append(signals, *signal)
	}

	return signals, rows.Err()
}

// Clear removes all signals and reports the count removed
func (r *PostgresRepository) Clear(ctx context.Context) (int, error) {
	res, err := r.db.DB().ExecContext(ctx, `DELETE FROM signals`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear signals: %w", err)
	}
	count, _ := res.RowsAffected()
	return int(count), nil
}

// RemoveByAccountID removes all signals originating from an account
func (r *PostgresRepository) RemoveByAccountID(ctx context.Context, accountID string) (int, error) {
	res, err := r.db.DB().ExecContext(ctx,
		`DELETE FROM signals WHERE account_id = $1`, accountID)
	if err != nil {
		return 0, fmt.Errorf("failed to remove signals for account: %w", err)
	}
	count, _ := res.RowsAffected()
	return int(count), nil
}
