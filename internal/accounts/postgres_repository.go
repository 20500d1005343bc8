package accounts

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/selivandex/situation-monitor/internal/adapters/database"
	"github.com/selivandex/situation-monitor/pkg/models"
)

// PostgresRepository persists accounts in PostgreSQL
type PostgresRepository struct {
	db *database.DB
}

// NewPostgresRepository creates new Postgres account repository
func NewPostgresRepository(db *database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const accountColumns = `
	id, twitter_handle, twitter_user_id, name, category, bio,
	followers_count, is_active, added_at
`

// GetAll returns every monitored account in stored order
func (r *PostgresRepository) GetAll(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	err := r.db.DB().SelectContext(ctx, &accounts,
		`SELECT `+accountColumns+` FROM accounts ORDER BY added_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	return accounts, nil
}

// GetByID returns an account by id, nil when absent
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	var account models.Account
	err := r.db.DB().GetContext(ctx, &account,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query account: %w", err)
	}
	return &account, nil
}

// GetByHandle returns an account by handle, matched case-insensitively
func (r *PostgresRepository) GetByHandle(ctx context.Context, handle string) (*models.Account, error) {
	var account models.Account
	err := r.db.DB().GetContext(ctx, &account,
		`SELECT `+accountColumns+` FROM accounts WHERE LOWER(twitter_handle) = LOWER($1)`, handle)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query account by handle: %w", err)
	}
	return &account, nil
}

// Insert appends a new account
func (r *PostgresRepository) Insert(ctx context.Context, account *models.Account) error {
	_, err := r.db.DB().ExecContext(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		account.ID, account.TwitterHandle, account.TwitterUserID,
		account.Name, account.Category, account.Bio,
		account.FollowersCount, account.IsActive, account.AddedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

// Remove deletes an account by id
func (r *PostgresRepository) Remove(ctx context.Context, id string) (bool, error) {
	res, err := r.db.DB().ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to remove account: %w", err)
	}
	count, _ := res.RowsAffected()
	return count > 0, nil
}
