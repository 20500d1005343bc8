package watchlist

import (
	"context"

	"github.com/selivandex/situation-monitor/pkg/models"
)

// Repository abstracts watchlist persistence
type Repository interface {
	// GetAll returns every position sorted by added_at descending
	GetAll(ctx context.Context) ([]models.WatchlistPosition, error)

	// GetByID returns a position by id, nil when absent
	GetByID(ctx context.Context, id string) (*models.WatchlistPosition, error)

	// GetByTicker returns the position for a normalized ticker, nil when absent
	GetByTicker(ctx context.Context, ticker string) (*models.WatchlistPosition, error)

	// Save inserts a position or replaces the stored one with the same id
	Save(ctx context.Context, position *models.WatchlistPosition) error

	// Remove deletes a position by id, reporting whether it existed
	Remove(ctx context.Context, id string) (bool, error)
}
