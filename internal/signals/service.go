// Package signals implements the signal store: the dedup-by-post pipeline
// turning classified posts into stored, immutable Signal records.
package signals

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/selivandex/situation-monitor/pkg/logger"
	"github.com/selivandex/situation-monitor/pkg/models"
)

// Classifier analyzes one post's text. Implementations never fail: a
// degraded classifier yields a safe non-signal analysis.
type Classifier interface {
	ClassifySignal(ctx context.Context, postText, accountHandle string) *models.SignalAnalysis
}

// Recorder receives classification outcome events for analytics
type Recorder interface {
	Record(event models.ClassificationEvent)
}

// NopRecorder discards events; used when the metrics sink is disabled
type NopRecorder struct{}

// Record discards the event
func (NopRecorder) Record(models.ClassificationEvent) {}

// Service owns Signal lifetime: creation through the classification
// pipeline, listing, and bulk removal
type Service struct {
	repo       Repository
	classifier Classifier
	recorder   Recorder
}

// NewService creates new signal service
func NewService(repo Repository, classifier Classifier, recorder Recorder) *Service {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &Service{
		repo:       repo,
		classifier: classifier,
		recorder:   recorder,
	}
}

// ProcessPost classifies one post and materializes a Signal when the
// analysis reports an actionable signal with at least one ticker.
// Idempotent per source post id: reprocessing returns the stored signal
// with isNew=false and never classifies twice.
func (s *Service) ProcessPost(ctx context.Context, post models.Post, account *models.Account) (*models.Signal, bool, error) {
	existing, err := s.repo.GetByTweetID(ctx, post.ID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to check for existing signal: %w", err)
	}
	if existing != nil {
		logger.Debug("post already processed",
			zap.String("tweet_id", post.ID),
			zap.String("signal_id", existing.ID),
		)
		return existing, false, nil
	}

	startTime := time.Now()
	analysis := s.classifier.ClassifySignal(ctx, post.Text, account.TwitterHandle)

	s.recorder.Record(models.ClassificationEvent{
		Timestamp:     time.Now(),
		AccountID:     account.ID,
		AccountHandle: account.TwitterHandle,
		TweetID:       post.ID,
		IsSignal:      analysis.IsSignal,
		TickerCount:   len(analysis.Tickers),
		Sentiment:     string(analysis.Sentiment),
		Confidence:    string(analysis.Confidence),
		Category:      string(account.Category),
		LatencyMs:     time.Since(startTime).Milliseconds(),
	})

	// A signal with zero tickers must never be stored
	if !analysis.IsSignal || len(analysis.Tickers) == 0 {
		logger.Debug("post is not a valid signal",
			zap.String("tweet_id", post.ID),
			zap.String("reasoning", analysis.Reasoning),
		)
		return nil, false, nil
	}

	signal := &models.Signal{
		ID:            fmt.Sprintf("sig_%s", uuid.NewString()),
		AccountID:     account.ID,
		AccountHandle: account.TwitterHandle,
		AccountName:   account.Name,
		TweetID:       post.ID,
		TweetURL:      post.URL,
		Content:       post.Text,
		Tickers:       analysis.Tickers,
		Sentiment:     analysis.Sentiment,
		Confidence:    analysis.Confidence,
		Category:      account.Category,
		EntryPrice:    analysis.EntryPrice,
		TargetPrice:   analysis.TargetPrice,
		StopPrice:     analysis.StopPrice,
		PostedAt:      post.PostedAt,
		CreatedAt:     time.Now(),
	}

	if err := s.repo.Insert(ctx, signal); err != nil {
		return nil, false, fmt.Errorf("failed to store signal: %w", err)
	}

	logger.Info("new signal created",
		zap.String("signal_id", signal.ID),
		zap.String("account", signal.AccountHandle),
		zap.Strings("tickers", signal.Tickers),
		zap.String("sentiment", string(signal.Sentiment)),
	)

	return signal, true, nil
}

// List returns signals filtered by category (empty or "all" means no
// filter), sorted by posted_at descending, capped to limit when positive
func (s *Service) List(ctx context.Context, category string, limit int) ([]models.Signal, error) {
	var cat models.Category
	if category != "" && category != "all" {
		cat = models.Category(category)
		if !cat.Valid() {
			return nil, fmt.Errorf("unknown category: %s", category)
		}
	}
	return s.repo.List(ctx, cat, limit)
}

// GetByID returns one signal, nil when absent
func (s *Service) GetByID(ctx context.Context, id string) (*models.Signal, error) {
	return s.repo.GetByID(ctx, id)
}

// Clear empties the store and reports the count removed
func (s *Service) Clear(ctx context.Context) (int, error) {
	count, err := s.repo.Clear(ctx)
	if err != nil {
		return 0, err
	}
	logger.Info("signals cleared", zap.Int("count", count))
	return count, nil
}

// RemoveByAccountID cascades removal of an account's signals, keyed by
// the immutable account id rather than the display handle
func (s *Service) RemoveByAccountID(ctx context.Context, accountID string) (int, error) {
	return s.repo.RemoveByAccountID(ctx, accountID)
}
