package repository

import (
	"context"

	"tango/internal/domain"

	"github.com/google/uuid"
)

// UserRepository defines chat user operations
type UserRepository interface {
	// Touch records a visit, creating the user on first contact, and
	// reports whether the user has sent the bot password
	Touch(ctx context.Context, userID int64) (bool, error)
	Authorize(ctx context.Context, userID int64) error
}

// SnapshotRepository defines saved word list operations
type SnapshotRepository interface {
	Save(ctx context.Context, s *domain.Snapshot) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Snapshot, error)
	Latest(ctx context.Context) (*domain.Snapshot, error)
	List(ctx context.Context, limit, offset int) ([]domain.SnapshotInfo, error)
	Count(ctx context.Context) (int, error)
	CleanOldSnapshots(ctx context.Context, days int) (int64, error)
}
