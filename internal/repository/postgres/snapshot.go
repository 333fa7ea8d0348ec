package postgres

import (
	"context"
	"database/sql"
	"errors"

	"tango/internal/domain"

	"github.com/google/uuid"
)

// SnapshotRepo implements repository.SnapshotRepository
type SnapshotRepo struct {
	db *sql.DB
}

// NewSnapshotRepo creates a new snapshot repository
func NewSnapshotRepo(db *sql.DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

// Save inserts the snapshot and fills SavedAt from the database clock
func (r *SnapshotRepo) Save(ctx context.Context, s *domain.Snapshot) error {
	query := `
		INSERT INTO snapshots (id, name, content, word_count)
		VALUES ($1, $2, $3, $4)
		RETURNING saved_at
	`
	return r.db.QueryRowContext(ctx, query, s.ID, s.Name, s.Content, s.WordCount).Scan(&s.SavedAt)
}

// Get returns the snapshot with the given id, or nil if there is none
func (r *SnapshotRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Snapshot, error) {
	query := `
		SELECT id, name, content, word_count, saved_at
		FROM snapshots
		WHERE id = $1
	`
	return scanSnapshot(r.db.QueryRowContext(ctx, query, id))
}

// Latest returns the most recently saved snapshot, or nil if there is none
func (r *SnapshotRepo) Latest(ctx context.Context) (*domain.Snapshot, error) {
	query := `
		SELECT id, name, content, word_count, saved_at
		FROM snapshots
		ORDER BY saved_at DESC
		LIMIT 1
	`
	return scanSnapshot(r.db.QueryRowContext(ctx, query))
}

func scanSnapshot(row *sql.Row) (*domain.Snapshot, error) {
	var s domain.Snapshot
	err := row.Scan(&s.ID, &s.Name, &s.Content, &s.WordCount, &s.SavedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// List returns snapshot headers, newest first
func (r *SnapshotRepo) List(ctx context.Context, limit, offset int) ([]domain.SnapshotInfo, error) {
	query := `
		SELECT id, name, word_count, saved_at
		FROM snapshots
		ORDER BY saved_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var infos []domain.SnapshotInfo
	for rows.Next() {
		var info domain.SnapshotInfo
		if err := rows.Scan(&info.ID, &info.Name, &info.WordCount, &info.SavedAt); err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}

	return infos, rows.Err()
}

// Count returns the number of stored snapshots
func (r *SnapshotRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM snapshots`).Scan(&count)
	return count, err
}

// CleanOldSnapshots deletes snapshots older than the given number of days
func (r *SnapshotRepo) CleanOldSnapshots(ctx context.Context, days int) (int64, error) {
	query := `
		DELETE FROM snapshots
		WHERE saved_at < NOW() - INTERVAL '1 day' * $1
	`
	res, err := r.db.ExecContext(ctx, query, days)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
