package accounts

import (
	"context"

	"github.com/selivandex/situation-monitor/pkg/models"
)

// Repository abstracts account persistence
type Repository interface {
	// GetAll returns every monitored account in stored order
	GetAll(ctx context.Context) ([]models.Account, error)

	// GetByID returns an account by id, nil when absent
	GetByID(ctx context.Context, id string) (*models.Account, error)

	// GetByHandle returns an account by handle, matched case-insensitively,
	// nil when absent
	GetByHandle(ctx context.Context, handle string) (*models.Account, error)

	// Insert appends a new account
	Insert(ctx context.Context, account *models.Account) error

	// Remove deletes an account by id, reporting whether it existed
	Remove(ctx context.Context, id string) (bool, error)
}
