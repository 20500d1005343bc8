package accounts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/selivandex/situation-monitor/pkg/logger"
	"github.com/selivandex/situation-monitor/pkg/models"
)

// Lookup resolves a handle against the external social source
type Lookup interface {
	LookupUser(ctx context.Context, username string) *models.TwitterUser
}

// Classifier assigns a category to an account based on its bio
type Classifier interface {
	ClassifyAccount(ctx context.Context, username, bio string) *models.AccountClassification
}

// SignalRemover cascades signal deletion when an account is removed
type SignalRemover interface {
	RemoveByAccountID(ctx context.Context, accountID string) (int, error)
}

// Service manages the roster of monitored accounts
type Service struct {
	repo       Repository
	lookup     Lookup
	classifier Classifier
	signals    SignalRemover
}

// NewService creates new account service
func NewService(repo Repository, lookup Lookup, classifier Classifier, signals SignalRemover) *Service {
	return &Service{
		repo:       repo,
		lookup:     lookup,
		classifier: classifier,
		signals:    signals,
	}
}

// NormalizeHandle strips a leading @ and surrounding whitespace
func NormalizeHandle(handle string) string {
	return strings.TrimPrefix(strings.TrimSpace(handle), "@")
}

// Add looks up and classifies a handle, then stores it as a monitored
// account. Re-adding an already-tracked handle is a no-op returning the
// existing account with isNew=false.
func (s *Service) Add(ctx context.Context, handle string) (*models.Account, bool, error) {
	normalized := NormalizeHandle(handle)
	if normalized == "" {
		return nil, false, fmt.Errorf("empty account handle")
	}

	existing, err := s.repo.GetByHandle(ctx, normalized)
	if err != nil {
		return nil, false, fmt.Errorf("failed to check existing account: %w", err)
	}
	if existing != nil {
		return existing, false, nil
	}

	user := s.lookup.LookupUser(ctx, normalized)
	if user.APIError != "" {
		logger.Warn("account lookup degraded to mock",
			zap.String("handle", normalized),
			zap.String("api_error", user.APIError))
	}

	classification := s.classifier.ClassifyAccount(ctx, user.Username, user.Description)

	account := &models.Account{
		ID:             fmt.Sprintf("acc_%s", uuid.NewString()),
		TwitterHandle:  normalized,
		TwitterUserID:  user.ID,
		Name:           user.Name,
		Category:       classification.Category,
		Bio:            user.Description,
		FollowersCount: user.FollowersCount,
		IsActive:       true,
		AddedAt:        time.Now().UTC(),
	}

	if err := s.repo.Insert(ctx, account); err != nil {
		return nil, false, fmt.Errorf("failed to store account: %w", err)
	}

	logger.Info("account added",
		zap.String("id", account.ID),
		zap.String("handle", account.TwitterHandle),
		zap.String("category", string(account.Category)))

	return account, true, nil
}

// Remove deletes an account and cascades removal of its signals, keyed
// by the immutable account id
func (s *Service) Remove(ctx context.Context, id string) error {
	found, err := s.repo.Remove(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to remove account: %w", err)
	}
	if !found {
		return fmt.Errorf("account %s not found", id)
	}

	removed, err := s.signals.RemoveByAccountID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to cascade signal removal: %w", err)
	}

	logger.Info("account removed",
		zap.String("id", id),
		zap.Int("signals_removed", removed))

	return nil
}

// List returns all monitored accounts
func (s *Service) List(ctx context.Context) ([]models.Account, error) {
	return s.repo.GetAll(ctx)
}

// GetByID returns an account by id, nil when absent
func (s *Service) GetByID(ctx context.Context, id string) (*models.Account, error) {
	return s.repo.GetByID(ctx, id)
}
