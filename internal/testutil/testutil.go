package testutil

import (
	"time"

	"tango/internal/domain"
	"tango/internal/tangofile"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NewTestLogger creates a no-op logger for tests
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// NewTestUser creates a test user
func NewTestUser(userID int64, authorized bool) *domain.User {
	now := time.Now()
	return &domain.User{
		UserID:     userID,
		Authorized: authorized,
		LastSeenAt: now,
		CreatedAt:  now,
	}
}

// NewTestSnapshot creates a snapshot holding the given pairs
func NewTestSnapshot(name string, pairs ...domain.Pair) *domain.Snapshot {
	native := make([]string, len(pairs))
	translations := make([]string, len(pairs))
	for i, p := range pairs {
		native[i] = p.Native
		translations[i] = p.Translation
	}

	return &domain.Snapshot{
		SnapshotInfo: domain.SnapshotInfo{
			ID:        uuid.New(),
			Name:      name,
			WordCount: len(pairs),
			SavedAt:   time.Now(),
		},
		Content: tangofile.Encode(native, translations),
	}
}
