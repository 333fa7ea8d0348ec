package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// UserRepo implements repository.UserRepository
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Touch upserts the user, bumps last_seen_at and returns the authorized flag
// in a single round trip
func (r *UserRepo) Touch(ctx context.Context, userID int64) (bool, error) {
	query := `
		INSERT INTO users (user_id)
		VALUES ($1)
		ON CONFLICT (user_id)
		DO UPDATE SET last_seen_at = NOW()
		RETURNING authorized
	`
	var authorized bool
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&authorized); err != nil {
		return false, fmt.Errorf("touch user %d: %w", userID, err)
	}
	return authorized, nil
}

// Authorize marks the user as having sent the bot password
func (r *UserRepo) Authorize(ctx context.Context, userID int64) error {
	query := `
		INSERT INTO users (user_id, authorized, authorized_at)
		VALUES ($1, TRUE, NOW())
		ON CONFLICT (user_id)
		DO UPDATE SET authorized = TRUE, authorized_at = NOW(), last_seen_at = NOW()
	`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("authorize user %d: %w", userID, err)
	}
	return nil
}
