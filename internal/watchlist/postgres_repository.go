package watchlist

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/selivandex/situation-monitor/internal/adapters/database"
	"github.com/selivandex/situation-monitor/pkg/models"
)

// PostgresRepository persists watchlist positions in PostgreSQL
type PostgresRepository struct {
	db *database.DB
}

// NewPostgresRepository creates new Postgres watchlist repository
func NewPostgresRepository(db *database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const positionColumns = `
	id, ticker, sentiment, notes, source_signal_id, source_tweet_url,
	entry_price, analysis, added_at
`

func scanPosition(row interface {
	Scan(dest ...interface{}) error
}) (*models.WatchlistPosition, error) {
	var p models.WatchlistPosition
	var analysis []byte

	err := row.Scan(
		&p.ID, &p.Ticker, &p.Sentiment, &p.Notes,
		&p.SourceSignalID, &p.SourceTweetURL,
		&p.EntryPrice, &analysis, &p.AddedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(analysis) > 0 {
		p.Analysis = &models.DeepAnalysis{}
		if err := json.Unmarshal(analysis, p.Analysis); err != nil {
			return nil, fmt.Errorf("failed to decode position analysis: %w", err)
		}
	}
	return &p, nil
}

// GetAll returns every position sorted by added_at descending
func (r *PostgresRepository) GetAll(ctx context.Context) ([]models.WatchlistPosition, error) {
	rows, err := r.db.DB().QueryContext(ctx,
		`SELECT `+positionColumns+` FROM watchlist_positions ORDER BY added_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	positions := make([]models.WatchlistPosition, 0)
	for rows.Next() {
		position, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, *position)
	}

	return positions, rows.Err()
}

// GetByID returns a position by id, nil when absent
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.WatchlistPosition, error) {
	row := r.db.DB().QueryRowContext(ctx,
		`SELECT `+positionColumns+` FROM watchlist_positions WHERE id = $1`, id)

	position, err := scanPosition(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query position: %w", err)
	}
	return position, nil
}

// GetByTicker returns the position for a normalized ticker, nil when absent
func (r *PostgresRepository) GetByTicker(ctx context.Context, ticker string) (*models.WatchlistPosition, error) {
	row := r.db.DB().QueryRowContext(ctx,
		`SELECT `+positionColumns+` FROM watchlist_positions WHERE ticker = $1`, ticker)

	position, err := scanPosition(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query position by ticker: %w", err)
	}
	return position, nil
}

// Save inserts a position or replaces the stored one with the same id
func (r *PostgresRepository) Save(ctx context.Context, position *models.WatchlistPosition) error {
	var analysis interface{}
	if position.Analysis != nil {
		raw, err := json.Marshal(position.Analysis)
		if err != nil {
			return fmt.Errorf("failed to encode position analysis: %w", err)
		}
		analysis = raw
	}

	_, err := r.db.DB().ExecContext(ctx, `
		INSERT INTO watchlist_positions (`+positionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			ticker = EXCLUDED.ticker,
			sentiment = EXCLUDED.sentiment,
			notes = EXCLUDED.notes,
			source_signal_id = EXCLUDED.source_signal_id,
			source_tweet_url = EXCLUDED.source_tweet_url,
			entry_price = EXCLUDED.entry_price,
			analysis = EXCLUDED.analysis
	`,
		position.ID, position.Ticker, position.Sentiment, position.Notes,
		position.SourceSignalID, position.SourceTweetURL,
		position.EntryPrice, analysis, position.AddedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save position: %w", err)
	}
	return nil
}

// Remove deletes a position by id
func (r *PostgresRepository) Remove(ctx context.Context, id string) (bool, error) {
	res, err := r.db.DB().ExecContext(ctx,
		`DELETE FROM watchlist_positions WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to remove position: %w", err)
	}
	count, _ := res.RowsAffected()
	return count > 0, nil
}
