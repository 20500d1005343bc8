package signals

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

const signalsStorageKey = "situation_monitor_signals"

// KVRepository keeps signals in memory and snapshots them to the KV store
// as one JSON document after each mutation. In-memory state is
// authoritative for the session; persistence failures are logged and
// swallowed.
type KVRepository struct {
	store   kv.Store
	mu      sync.RWMutex
	signals []models.Signal
}

// NewKVRepository creates new KV-backed signal repository, loading any
// persisted snapshot
func NewKVRepository(ctx context.Context, store kv.Store) *KVRepository {
	repo := &KVRepository{store: store}

	raw, ok, err := store.Get(ctx, signalsStorageKey)
	if err != nil {
		logger.Warn("failed to load signals snapshot", zap.Error(err))
		return repo
	}
	if ok {
		if err := json.Unmarshal([]byte(raw), &repo.signals); err != nil {
			logger.Warn("corrupt signals snapshot, starting empty", zap.Error(err))
			repo.signals = nil
		}
	}

	return repo
}

// persist snapshots current state; caller holds the lock
func (r *KVRepository) persist(ctx context.Context) {
	raw, err := json.Marshal(r.signals)
	if err != nil {
		logger.Error("failed to marshal signals snapshot", zap.Error(err))
		return
	}
	if err := r.store.Set(ctx, signalsStorageKey, string(raw)); err != nil {
		logger.Warn("failed to persist signals snapshot", zap.Error(err))
	}
}

// GetByTweetID returns the signal for a source post id, nil when absent
func (r *KVRepository) GetByTweetID(_ context.Context, tweetID string) (*models.Signal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.signals {
		if r.signals[i].TweetID == tweetID {
			signal := r.signals[i]
			return &signal, nil
		}
	}
	return nil, nil
}

// GetByID returns a signal by its own id, nil when absent
func (r *KVRepository) GetByID(_ context.Context, id string) (*models.Signal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.signals {
		if r.signals[i].ID == id {
			signal := r.signals[i]
			return &signal, nil
		}
	}
	return nil, nil
}

// Insert appends a new signal
func (r *KVRepository) Insert(ctx context.Context, signal *models.Signal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.signals = append(r.signals, *signal)
	r.persist(ctx)
	return nil
}

// List returns signals sorted by posted_at descending
func (r *KVRepository) List(_ context.Context, category models.Category, limit int) ([]models.Signal, error) {
	r.mu.RLock()
	filtered := make([]models.Signal, 0, len(r.signals))
	for _, s := range r.signals {
		if category != "" && s.Category != category {
			continue
		}
		filtered = append(filtered, s)
	}
	r.mu.RUnlock()

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].PostedAt.After(filtered[j].PostedAt)
	})

	if limit > 0 && len(filtered) > limit {
		filtered = filtered[:limit]
	}

	return filtered, nil
}

// Clear removes all signals and reports the count removed
func (r *KVRepository) Clear(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := len(r.signals)
	r.signals = nil
	if err := r.store.Remove(ctx, signalsStorageKey); err != nil {
		logger.Warn("failed to remove signals snapshot", zap.Error(err))
	}
	return count, nil
}

// RemoveByAccountID removes all signals originating from an account
func (r *KVRepository) RemoveByAccountID(ctx context.Context, accountID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.signals[:0]
	removed := 0
	for _, s := range r.signals {
		if s.AccountID == accountID {
			removed++
			continue
		}
		kept = append(kept, s)
	}
	r.signals = kept

	if removed > 0 {
		r.persist(ctx)
	}
	return removed, nil
}
