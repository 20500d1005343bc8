package watchlist

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/selivandex/situation-monitor/pkg/logger"
	"github.com/selivandex/situation-monitor/pkg/models"
)

// PositionUpdate carries partial updates for an existing position.
// Nil fields are left unchanged.
type PositionUpdate struct {
	Sentiment  *models.PositionSentiment `json:"sentiment,omitempty"`
	Notes      *string                   `json:"notes,omitempty"`
	EntryPrice *decimal.Decimal          `json:"entry_price,omitempty"`
}

// Service manages the user watchlist, keyed by normalized ticker
type Service struct {
	repo Repository
}

// NewService creates new watchlist service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NormalizeTicker strips a leading $, trims whitespace and uppercases
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(ticker), "$"))
}

// AddPosition adds a ticker to the watchlist. If a position with the
// same normalized ticker already exists, its sentiment is overwritten
// and provided option fields are merged in; absent fields keep their
// stored values. Otherwise a new position is created.
func (s *Service) AddPosition(ctx context.Context, ticker string, sentiment models.PositionSentiment, opts *models.PositionOptions) (*models.WatchlistPosition, error) {
	normalized := NormalizeTicker(ticker)
	if normalized == "" {
		return nil, fmt.Errorf("empty ticker")
	}
	if !sentiment.Valid() {
		return nil, fmt.Errorf("invalid position sentiment: %s", sentiment)
	}

	existing, err := s.repo.GetByTicker(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing position: %w", err)
	}

	if existing != nil {
		existing.Sentiment = sentiment
		if opts != nil {
			if opts.Notes != "" {
				existing.Notes = opts.Notes
			}
			if opts.SourceSignalID != "" {
				existing.SourceSignalID = opts.SourceSignalID
			}
			if opts.SourceTweetURL != "" {
				existing.SourceTweetURL = opts.SourceTweetURL
			}
			if opts.EntryPrice != nil {
				existing.EntryPrice = opts.EntryPrice
			}
		}
		if err := s.repo.Save(ctx, existing); err != nil {
			return nil, fmt.Errorf("failed to update position: %w", err)
		}
		logger.Debug("position updated", zap.String("ticker", normalized))
		return existing, nil
	}

	position := &models.WatchlistPosition{
		ID:        fmt.Sprintf("pos_%s", uuid.NewString()),
		Ticker:    normalized,
		Sentiment: sentiment,
		AddedAt:   time.Now().UTC(),
	}
	if opts != nil {
		position.Notes = opts.Notes
		position.SourceSignalID = opts.SourceSignalID
		position.SourceTweetURL = opts.SourceTweetURL
		position.EntryPrice = opts.EntryPrice
	}

	if err := s.repo.Save(ctx, position); err != nil {
		return nil, fmt.Errorf("failed to save position: %w", err)
	}

	logger.Info("position added",
		zap.String("id", position.ID),
		zap.String("ticker", position.Ticker),
		zap.String("sentiment", string(position.Sentiment)))

	return position, nil
}

// UpdatePosition applies a partial update to a position by id
func (s *Service) UpdatePosition(ctx context.Context, id string, update PositionUpdate) (*models.WatchlistPosition, error) {
	position, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load position: %w", err)
	}
	if position == nil {
		return nil, fmt.Errorf("position %s not found", id)
	}

	if update.Sentiment != nil {
		if !update.Sentiment.Valid() {
			return nil, fmt.Errorf("invalid position sentiment: %s", *update.Sentiment)
		}
		position.Sentiment = *update.Sentiment
	}
	if update.Notes != nil {
		position.Notes = *update.Notes
	}
	if update.EntryPrice != nil {
		position.EntryPrice = update.EntryPrice
	}

	if err := s.repo.Save(ctx, position); err != nil {
		return nil, fmt.Errorf("failed to save position: %w", err)
	}
	return position, nil
}

// SetAnalysis attaches a deep analysis result to a position
func (s *Service) SetAnalysis(ctx context.Context, id string, analysis *models.DeepAnalysis) (*models.WatchlistPosition, error) {
	position, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load position: %w", err)
	}
	if position == nil {
		return nil, fmt.Errorf("position %s not found", id)
	}

	position.Analysis = analysis
	if err := s.repo.Save(ctx, position); err != nil {
		return nil, fmt.Errorf("failed to save position: %w", err)
	}
	return position, nil
}

// RemovePosition deletes a position by id
func (s *Service) RemovePosition(ctx context.Context, id string) error {
	found, err := s.repo.Remove(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to remove position: %w", err)
	}
	if !found {
		return fmt.Errorf("position %s not found", id)
	}
	logger.Info("position removed", zap.String("id", id))
	return nil
}

// HasPosition reports whether a ticker is already on the watchlist
func (s *Service) HasPosition(ctx context.Context, ticker string) (bool, error) {
	position, err := s.repo.GetByTicker(ctx, NormalizeTicker(ticker))
	if err != nil {
		return false, err
	}
	return position != nil, nil
}

// GetPositionByTicker returns the position for a ticker, nil when absent
func (s *Service) GetPositionByTicker(ctx context.Context, ticker string) (*models.WatchlistPosition, error) {
	return s.repo.GetByTicker(ctx, NormalizeTicker(ticker))
}

// GetPositionByID returns a position by id, nil when absent
func (s *Service) GetPositionByID(ctx context.Context, id string) (*models.WatchlistPosition, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns all positions sorted by added_at descending
func (s *Service) List(ctx context.Context) ([]models.WatchlistPosition, error) {
	return s.repo.GetAll(ctx)
}
