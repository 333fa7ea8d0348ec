package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SnapshotInfo describes a saved word list without its content
type SnapshotInfo struct {
	ID        uuid.UUID
	Name      string
	WordCount int
	SavedAt   time.Time
}

// Snapshot is a saved word list in exchange format
type Snapshot struct {
	SnapshotInfo
	Content string
}

// ShortID returns the first block of the id, enough to pick a snapshot in chat
func (s SnapshotInfo) ShortID() string {
	return s.ID.String()[:8]
}

// DisplayString returns user-friendly save time
func (s SnapshotInfo) DisplayString() string {
	return s.displayStringAt(time.Now())
}

func (s SnapshotInfo) displayStringAt(now time.Time) string {
	saved := s.SavedAt.In(now.Location())

	var when string
	switch {
	case sameDay(saved, now):
		when = "Today " + saved.Format("15:04")
	case sameDay(saved, now.AddDate(0, 0, -1)):
		when = "Yesterday " + saved.Format("15:04")
	default:
		when = saved.Format("2 Jan 2006")
	}

	if s.Name == "" {
		return fmt.Sprintf("%s (%d)", when, s.WordCount)
	}
	return fmt.Sprintf("%s · %s (%d)", s.Name, when, s.WordCount)
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
