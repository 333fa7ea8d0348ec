package service

import (
	"context"

	"tango/internal/repository"

	"go.uber.org/zap"
)

// RetentionService deletes snapshots past their retention period
type RetentionService struct {
	snapshotRepo  repository.SnapshotRepository
	retentionDays int
	logger        *zap.Logger
}

// NewRetentionService creates a new retention service
func NewRetentionService(snapshotRepo repository.SnapshotRepository, retentionDays int, logger *zap.Logger) *RetentionService {
	return &RetentionService{
		snapshotRepo:  snapshotRepo,
		retentionDays: retentionDays,
		logger:        logger,
	}
}

// CleanupOldSnapshots removes snapshots older than the retention period
func (s *RetentionService) CleanupOldSnapshots(ctx context.Context) error {
	s.logger.Info("Starting cleanup of old snapshots", zap.Int("retention_days", s.retentionDays))

	deleted, err := s.snapshotRepo.CleanOldSnapshots(ctx, s.retentionDays)
	if err != nil {
		s.logger.Error("Failed to cleanup old snapshots", zap.Error(err))
		return err
	}

	s.logger.Info("Cleanup completed successfully", zap.Int64("deleted", deleted))
	return nil
}
