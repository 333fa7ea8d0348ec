package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"tango/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var snapshotColumns = []string{"id", "name", "content", "word_count", "saved_at"}

func TestSnapshotRepo_Save(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSnapshotRepo(db)

	savedAt := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s := &domain.Snapshot{
		SnapshotInfo: domain.SnapshotInfo{ID: uuid.New(), Name: "animals", WordCount: 2},
		Content:      "ja_list:\n犬\n猫\nen_list:\ndog\ncat\n",
	}

	mock.ExpectQuery("INSERT INTO snapshots").
		WithArgs(s.ID.String(), s.Name, s.Content, s.WordCount).
		WillReturnRows(sqlmock.NewRows([]string{"saved_at"}).AddRow(savedAt))

	err = repo.Save(context.Background(), s)

	assert.NoError(t, err)
	assert.Equal(t, savedAt, s.SavedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotRepo_Get(t *testing.T) {
	id := uuid.New()
	savedAt := time.Now()

	tests := []struct {
		name          string
		mockRows      *sqlmock.Rows
		mockError     error
		expectedNil   bool
		expectedError bool
	}{
		{
			name: "snapshot found",
			mockRows: sqlmock.NewRows(snapshotColumns).
				AddRow(id.String(), "animals", "ja_list:\nen_list:\n", 0, savedAt),
		},
		{
			name:        "snapshot missing",
			mockError:   sql.ErrNoRows,
			expectedNil: true,
		},
		{
			name:          "query error",
			mockError:     errors.New("connection reset"),
			expectedNil:   true,
			expectedError: true,
		},
		{
			name: "scan error",
			mockRows: sqlmock.NewRows(snapshotColumns).
				AddRow(id.String(), "animals", "", "many", savedAt),
			expectedNil:   true,
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			repo := NewSnapshotRepo(db)

			expect := mock.ExpectQuery("SELECT id, name, content, word_count, saved_at FROM snapshots WHERE id = \\$1").
				WithArgs(id.String())
			if tt.mockError != nil {
				expect.WillReturnError(tt.mockError)
			} else {
				expect.WillReturnRows(tt.mockRows)
			}

			s, err := repo.Get(context.Background(), id)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			if tt.expectedNil {
				assert.Nil(t, s)
			} else {
				require.NotNil(t, s)
				assert.Equal(t, id, s.ID)
				assert.Equal(t, "animals", s.Name)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSnapshotRepo_Latest(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSnapshotRepo(db)

	id := uuid.New()
	mock.ExpectQuery("SELECT (.+) FROM snapshots ORDER BY saved_at DESC LIMIT 1").
		WillReturnRows(sqlmock.NewRows(snapshotColumns).
			AddRow(id.String(), "", "ja_list:\n犬\nen_list:\ndog\n", 1, time.Now()))

	s, err := repo.Latest(context.Background())

	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, id, s.ID)
	assert.Equal(t, 1, s.WordCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotRepo_Latest_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSnapshotRepo(db)

	mock.ExpectQuery("SELECT (.+) FROM snapshots").WillReturnError(sql.ErrNoRows)

	s, err := repo.Latest(context.Background())

	assert.NoError(t, err)
	assert.Nil(t, s)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotRepo_List(t *testing.T) {
	tests := []struct {
		name          string
		limit         int
		offset        int
		mockRows      *sqlmock.Rows
		mockError     error
		expectedCount int
		expectedError bool
	}{
		{
			name:   "two snapshots",
			limit:  7,
			offset: 0,
			mockRows: sqlmock.NewRows([]string{"id", "name", "word_count", "saved_at"}).
				AddRow(uuid.New().String(), "", 5, time.Now()).
				AddRow(uuid.New().String(), "verbs", 3, time.Now().AddDate(0, 0, -1)),
			expectedCount: 2,
		},
		{
			name:          "no snapshots",
			limit:         7,
			offset:        7,
			mockRows:      sqlmock.NewRows([]string{"id", "name", "word_count", "saved_at"}),
			expectedCount: 0,
		},
		{
			name:          "query error",
			limit:         7,
			offset:        0,
			mockError:     fmt.Errorf("database error"),
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			repo := NewSnapshotRepo(db)

			expect := mock.ExpectQuery("SELECT id, name, word_count, saved_at FROM snapshots").
				WithArgs(tt.limit, tt.offset)
			if tt.mockError != nil {
				expect.WillReturnError(tt.mockError)
			} else {
				expect.WillReturnRows(tt.mockRows)
			}

			infos, err := repo.List(context.Background(), tt.limit, tt.offset)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Len(t, infos, tt.expectedCount)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSnapshotRepo_Count(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSnapshotRepo(db)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM snapshots").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	count, err := repo.Count(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 12, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotRepo_CleanOldSnapshots(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSnapshotRepo(db)

	mock.ExpectExec("DELETE FROM snapshots").
		WithArgs(60).
		WillReturnResult(sqlmock.NewResult(0, 4))

	deleted, err := repo.CleanOldSnapshots(context.Background(), 60)

	assert.NoError(t, err)
	assert.Equal(t, int64(4), deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
