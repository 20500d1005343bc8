package signals

import (
	"context"

	"github.com/selivandex/situation-monitor/pkg/models"
)

// Repository abstracts signal persistence so the store can be backed by
// any engine without changing call sites
type Repository interface {
	// GetByTweetID returns the signal for a source post id, nil when absent
	GetByTweetID(ctx context.Context, tweetID string) (*models.Signal, error)

	// GetByID returns a signal by its own id, nil when absent
	GetByID(ctx context.Context, id string) (*models.Signal, error)

	// Insert appends a new signal
	Insert(ctx context.Context, signal *models.Signal) error

	// List returns signals sorted by posted_at descending, optionally
	// restricted to one category (empty = all) and capped to limit (0 = all)
	List(ctx context.Context, category models.Category, limit int) ([]models.Signal, error)

	// Clear removes all signals and reports the count removed
	Clear(ctx context.Context) (int, error)

	// RemoveByAccountID removes all signals originating from an account
	RemoveByAccountID(ctx context.Context, accountID string) (int, error)
}
