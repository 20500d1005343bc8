package watchlist

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/selivandex/situation-monitor/internal/kv"
	"github.com/selivandex/situation-monitor/pkg/logger"
	"github.com/selivandex/situation-monitor/pkg/models"
)

const watchlistStorageKey = "situation_monitor_watchlist"

// KVRepository keeps watchlist positions in memory and snapshots them to
// the KV store as one JSON document after each mutation
type KVRepository struct {
	store     kv.Store
	mu        sync.RWMutex
	positions []models.WatchlistPosition
}

// NewKVRepository creates new KV-backed watchlist repository, loading any
// persisted snapshot
func NewKVRepository(ctx context.Context, store kv.Store) *KVRepository {
	repo := &KVRepository{store: store}

	raw, ok, err := store.Get(ctx, watchlistStorageKey)
	if err != nil {
		logger.Warn("failed to load watchlist snapshot", zap.Error(err))
		return repo
	}
	if ok {
		if err := json.Unmarshal([]byte(raw), &repo.positions); err != nil {
			logger.Warn("corrupt watchlist snapshot, starting empty", zap.Error(err))
			repo.positions = nil
		}
	}

	return repo
}

// persist snapshots current state; caller holds the lock
func (r *KVRepository) persist(ctx context.Context) {
	raw, err := json.Marshal(r.positions)
	if err != nil {
		logger.Error("failed to marshal watchlist snapshot", zap.Error(err))
		return
	}
	if err := r.store.Set(ctx, watchlistStorageKey, string(raw)); err != nil {
		logger.Warn("failed to persist watchlist snapshot", zap.Error(err))
	}
}

// GetAll returns every position sorted by added_at descending
func (r *KVRepository) GetAll(_ context.Context) ([]models.WatchlistPosition, error) {
	r.mu.RLock()
	out := make([]models.WatchlistPosition, len(r.positions))
	copy(out, r.positions)
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AddedAt.After(out[j].AddedAt)
	})
	return out, nil
}

// GetByID returns a position by id, nil when absent
func (r *KVRepository) GetByID(_ context.Context, id string) (*models.WatchlistPosition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.positions {
		if r.positions[i].ID == id {
			position := r.positions[i]
			return &position, nil
		}
	}
	return nil, nil
}

// GetByTicker returns the position for a normalized ticker, nil when absent
func (r *KVRepository) GetByTicker(_ context.Context, ticker string) (*models.WatchlistPosition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.positions {
		if r.positions[i].Ticker == ticker {
			position := r.positions[i]
			return &position, nil
		}
	}
	return nil, nil
}

// Save inserts a position or replaces the stored one with the same id
func (r *KVRepository) Save(ctx context.Context, position *models.WatchlistPosition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.positions {
		if r.positions[i].ID == position.ID {
			r.positions[i] = *position
			r.persist(ctx)
			return nil
		}
	}

	r.positions = append(r.positions, *position)
	r.persist(ctx)
	return nil
}

// Remove deletes a position by id
func (r *KVRepository) Remove(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.positions {
		if r.positions[i].ID == id {
			r.positions = append(r.positions[:i], r.positions[i+1:]...)
			r.persist(ctx)
			return true, nil
		}
	}
	return false, nil
}
