package refresh

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/selivandex/situation-monitor/pkg/logger"
	"github.com/selivandex/situation-monitor/pkg/models"
)

// Roster lists the accounts to refresh
type Roster interface {
	List(ctx context.Context) ([]models.Account, error)
}

// PostFetcher retrieves recent posts for an account
type PostFetcher interface {
	FetchUserTweets(ctx context.Context, userID, username string, maxResults int) ([]models.Post, error)
}

// SignalProcessor runs one post through the classification pipeline
type SignalProcessor interface {
	ProcessPost(ctx context.Context, post models.Post, account *models.Account) (*models.Signal, bool, error)
}

// Notifier is told about newly materialized signals
type Notifier interface {
	NotifyNewSignal(signal *models.Signal)
}

// Orchestrator walks the account roster sequentially, fetching recent
// posts and running each through the signal pipeline. External calls are
// issued one at a time to keep rate-limit exposure predictable.
type Orchestrator struct {
	accounts   Roster
	fetcher    PostFetcher
	processor  SignalProcessor
	lock       Lock
	notifier   Notifier
	maxPosts   int
	refreshing atomic.Bool
}

// NewOrchestrator creates new refresh orchestrator
func NewOrchestrator(accounts Roster, fetcher PostFetcher, processor SignalProcessor, lock Lock, notifier Notifier, maxPosts int) *Orchestrator {
	if maxPosts <= 0 {
		maxPosts = 10
	}
	return &Orchestrator{
		accounts:  accounts,
		fetcher:   fetcher,
		processor: processor,
		lock:      lock,
		notifier:  notifier,
		maxPosts:  maxPosts,
	}
}

// IsRefreshing reports whether a refresh pass is currently in flight
func (o *Orchestrator) IsRefreshing() bool {
	return o.refreshing.Load()
}

// RefreshAll fetches and processes recent posts for every active
// account. A trigger while a refresh is already in flight is a no-op
// returning started=false. One account's fetch failure does not abort
// the remaining accounts.
func (o *Orchestrator) RefreshAll(ctx context.Context) ([]models.Signal, bool, error) {
	acquired, err := o.lock.TryAcquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire refresh lock: %w", err)
	}
	if !acquired {
		logger.Debug("refresh already in flight, skipping")
		return nil, false, nil
	}
	o.refreshing.Store(true)
	defer func() {
		o.refreshing.Store(false)
		if err := o.lock.Release(ctx); err != nil {
			logger.Warn("failed to release refresh lock", zap.Error(err))
		}
	}()

	accounts, err := o.accounts.List(ctx)
	if err != nil {
		return nil, true, fmt.Errorf("failed to list accounts: %w", err)
	}

	var newSignals []models.Signal
	failed := 0

	for i := range accounts {
		account := &accounts[i]
		if !account.IsActive {
			continue
		}

		posts, err := o.fetcher.FetchUserTweets(ctx, account.TwitterUserID, account.TwitterHandle, o.maxPosts)
		if err != nil {
			failed++
			logger.Warn("failed to fetch posts for account",
				zap.String("account_id", account.ID),
				zap.String("handle", account.TwitterHandle),
				zap.Error(err))
			continue
		}

		for _, post := range posts {
			signal, isNew, err := o.processor.ProcessPost(ctx, post, account)
			if err != nil {
				logger.Warn("failed to process post",
					zap.String("tweet_id", post.ID),
					zap.String("handle", account.TwitterHandle),
					zap.Error(err))
				continue
			}
			if isNew && signal != nil {
				newSignals = append(newSignals, *signal)
				if o.notifier != nil {
					o.notifier.NotifyNewSignal(signal)
				}
			}
		}
	}

	logger.Info("refresh pass complete",
		zap.Int("accounts", len(accounts)),
		zap.Int("failed_accounts", failed),
		zap.Int("new_signals", len(newSignals)))

	return newSignals, true, nil
}

// Name implements worker.Worker
func (o *Orchestrator) Name() string {
	return "refresh"
}

// Run implements worker.Worker for periodic background refreshes
func (o *Orchestrator) Run(ctx context.Context) error {
	_, _, err := o.RefreshAll(ctx)
	return err
}
