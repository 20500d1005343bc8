package accounts

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/selivandex/situation-monitor/internal/kv"
	"github.com/selivandex/situation-monitor/pkg/logger"
	"github.com/selivandex/situation-monitor/pkg/models"
)

const accountsStorageKey = "situation_monitor_accounts"

// KVRepository keeps accounts in memory and snapshots them to the KV
// store as one JSON document after each mutation
type KVRepository struct {
	store    kv.Store
	mu       sync.RWMutex
	accounts []models.Account
}

// NewKVRepository creates new KV-backed account repository, loading any
// persisted snapshot
func NewKVRepository(ctx context.Context, store kv.Store) *KVRepository {
	repo := &KVRepository{store: store}

	raw, ok, err := store.Get(ctx, accountsStorageKey)
	if err != nil {
		logger.Warn("failed to load accounts snapshot", zap.Error(err))
		return repo
	}
	if ok {
		if err := json.Unmarshal([]byte(raw), &repo.accounts); err != nil {
			logger.Warn("corrupt accounts snapshot, starting empty", zap.Error(err))
			repo.accounts = nil
		}
	}

	return repo
}

// persist snapshots current state; caller holds the lock
func (r *KVRepository) persist(ctx context.Context) {
	raw, err := json.Marshal(r.accounts)
	if err != nil {
		logger.Error("failed to marshal accounts snapshot", zap.Error(err))
		return
	}
	if err := r.store.Set(ctx, accountsStorageKey, string(raw)); err != nil {
		logger.Warn("failed to persist accounts snapshot", zap.Error(err))
	}
}

// GetAll returns every monitored account in stored order
func (r *KVRepository) GetAll(_ context.Context) ([]models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Account, len(r.accounts))
	copy(out, r.accounts)
	return out, nil
}

// GetByID returns an account by id, nil when absent
func (r *KVRepository) GetByID(_ context.Context, id string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.accounts {
		if r.accounts[i].ID == id {
			account := r.accounts[i]
			return &account, nil
		}
	}
	return nil, nil
}

// GetByHandle returns an account by handle, matched case-insensitively
func (r *KVRepository) GetByHandle(_ context.Context, handle string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.accounts {
		if strings.EqualFold(r.accounts[i].TwitterHandle, handle) {
			account := r.accounts[i]
			return &account, nil
		}
	}
	return nil, nil
}

// Insert appends a new account
func (r *KVRepository) Insert(ctx context.Context, account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.accounts = append(r.accounts, *account)
	r.persist(ctx)
	return nil
}

// Remove deletes an account by id
func (r *KVRepository) Remove(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.accounts {
		if r.accounts[i].ID == id {
			r.accounts = append(r.accounts[:i], r.accounts[i+1:]...)
			r.persist(ctx)
			return true, nil
		}
	}
	return false, nil
}
