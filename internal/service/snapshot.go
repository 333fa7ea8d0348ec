package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tango/internal/domain"
	"tango/internal/repository"
	"tango/internal/tangofile"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SnapshotPageSize is how many snapshots one list page shows
const SnapshotPageSize = 7

var (
	// ErrSnapshotNotFound is returned when no snapshot matches the request
	ErrSnapshotNotFound = errors.New("snapshot not found")
	// ErrInvalidSnapshotID is returned for ids that are not UUIDs
	ErrInvalidSnapshotID = errors.New("invalid snapshot id")
)

// SnapshotService stores word lists exported by the session
type SnapshotService struct {
	snapshotRepo repository.SnapshotRepository
	logger       *zap.Logger
}

// NewSnapshotService creates a new snapshot service
func NewSnapshotService(snapshotRepo repository.SnapshotRepository, logger *zap.Logger) *SnapshotService {
	return &SnapshotService{
		snapshotRepo: snapshotRepo,
		logger:       logger,
	}
}

// Save stores exported content under a fresh id. Content that does not
// decode, or would decode into different pairs, is rejected so that every
// stored snapshot loads back as it was saved.
func (s *SnapshotService) Save(ctx context.Context, name, content string) (*domain.SnapshotInfo, error) {
	native, _, err := tangofile.Decode(content)
	if err != nil {
		return nil, err
	}
	if err := tangofile.CheckAligned(content); err != nil {
		return nil, err
	}

	snapshot := &domain.Snapshot{
		SnapshotInfo: domain.SnapshotInfo{
			ID:        uuid.New(),
			Name:      strings.TrimSpace(name),
			WordCount: len(native),
		},
		Content: content,
	}
	if err := s.snapshotRepo.Save(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("save snapshot: %w", err)
	}

	s.logger.Info("Snapshot saved",
		zap.String("id", snapshot.ID.String()),
		zap.Int("words", snapshot.WordCount),
	)
	return &snapshot.SnapshotInfo, nil
}

// Get returns a snapshot by its full id
func (s *SnapshotService) Get(ctx context.Context, rawID string) (*domain.Snapshot, error) {
	id, err := uuid.Parse(strings.TrimSpace(rawID))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshotID, err)
	}

	snapshot, err := s.snapshotRepo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	if snapshot == nil {
		return nil, ErrSnapshotNotFound
	}
	return snapshot, nil
}

// Latest returns the most recent snapshot
func (s *SnapshotService) Latest(ctx context.Context) (*domain.Snapshot, error) {
	snapshot, err := s.snapshotRepo.Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("get latest snapshot: %w", err)
	}
	if snapshot == nil {
		return nil, ErrSnapshotNotFound
	}
	return snapshot, nil
}

// List returns one page of snapshots, newest first, and the number of pages
func (s *SnapshotService) List(ctx context.Context, page int) ([]domain.SnapshotInfo, int, error) {
	if page < 1 {
		page = 1
	}

	offset := (page - 1) * SnapshotPageSize
	infos, err := s.snapshotRepo.List(ctx, SnapshotPageSize, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.snapshotRepo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	totalPages := (total + SnapshotPageSize - 1) / SnapshotPageSize
	if totalPages == 0 {
		totalPages = 1
	}

	return infos, totalPages, nil
}
