package services

import (
	"context"
	"errors"
	"testing"

	"github.com/classtrack/backend/internal/models"
	"github.com/classtrack/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockRosterAdminRepository is a mock implementation of RosterAdminRepository
type mockRosterAdminRepository struct {
	entries   []models.RosterEntry
	getErr    error
	upsertErr error
	deleteErr error

	upserted []models.RosterEntry
	deleted  []string
}

func (m *mockRosterAdminRepository) GetAll(ctx context.Context) ([]models.RosterEntry, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.entries, nil
}

func (m *mockRosterAdminRepository) Upsert(ctx context.Context, entry *models.RosterEntry) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upserted = append(m.upserted, *entry)
	return nil
}

func (m *mockRosterAdminRepository) Delete(ctx context.Context, email string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, email)
	return nil
}

func TestRosterService_ListStudents(t *testing.T) {
	logger, _ := zap.NewDevelopment()

	t.Run("success", func(t *testing.T) {
		repo := &mockRosterAdminRepository{entries: []models.RosterEntry{
			{Email: "alice@example.com", Name: "Alice"},
		}}
		svc := NewRosterService(repo, logger)

		result, err := svc.ListStudents(context.Background())

		require.NoError(t, err)
		assert.Len(t, result, 1)
	})

	t.Run("empty roster returns empty slice not nil", func(t *testing.T) {
		repo := &mockRosterAdminRepository{}
		svc := NewRosterService(repo, logger)

		result, err := svc.ListStudents(context.Background())

		require.NoError(t, err)
		assert.NotNil(t, result)
		assert.Empty(t, result)
	})

	t.Run("repository error", func(t *testing.T) {
		repo := &mockRosterAdminRepository{getErr: errors.New("database error")}
		svc := NewRosterService(repo, logger)

		result, err := svc.ListStudents(context.Background())

		assert.Error(t, err)
		assert.Nil(t, result)
	})
}

func TestRosterService_AddStudent(t *testing.T) {
	logger, _ := zap.NewDevelopment()

	tests := []struct {
		name          string
		entry         *models.RosterEntry
		repo          *mockRosterAdminRepository
		expectedError bool
		expectedEntry *models.RosterEntry
	}{
		{
			name:  "success normalizes email",
			entry: &models.RosterEntry{Email: "  Alice@Example.COM ", Name: " Alice "},
			repo:  &mockRosterAdminRepository{},
			expectedEntry: &models.RosterEntry{
				Email: "alice@example.com", Name: "Alice", IsInstructor: false,
			},
		},
		{
			name:  "instructor flag preserved",
			entry: &models.RosterEntry{Email: "teacher@example.com", Name: "Teacher", IsInstructor: true},
			repo:  &mockRosterAdminRepository{},
			expectedEntry: &models.RosterEntry{
				Email: "teacher@example.com", Name: "Teacher", IsInstructor: true,
			},
		},
		{
			name:          "invalid email",
			entry:         &models.RosterEntry{Email: "not-an-email", Name: "Alice"},
			repo:          &mockRosterAdminRepository{},
			expectedError: true,
		},
		{
			name:          "empty name",
			entry:         &models.RosterEntry{Email: "alice@example.com", Name: "  "},
			repo:          &mockRosterAdminRepository{},
			expectedError: true,
		},
		{
			name:          "repository error",
			entry:         &models.RosterEntry{Email: "alice@example.com", Name: "Alice"},
			repo:          &mockRosterAdminRepository{upsertErr: errors.New("database error")},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewRosterService(tt.repo, logger)

			err := svc.AddStudent(context.Background(), tt.entry)

			if tt.expectedError {
				assert.Error(t, err)
				assert.Empty(t, tt.repo.upserted)
				return
			}

			require.NoError(t, err)
			require.Len(t, tt.repo.upserted, 1)
			assert.Equal(t, *tt.expectedEntry, tt.repo.upserted[0])
		})
	}
}

func TestRosterService_RemoveStudent(t *testing.T) {
	logger, _ := zap.NewDevelopment()

	t.Run("success normalizes email", func(t *testing.T) {
		repo := &mockRosterAdminRepository{}
		svc := NewRosterService(repo, logger)

		err := svc.RemoveStudent(context.Background(), " Alice@Example.COM ")

		require.NoError(t, err)
		assert.Equal(t, []string{"alice@example.com"}, repo.deleted)
	})

	t.Run("not found passes through sentinel", func(t *testing.T) {
		repo := &mockRosterAdminRepository{deleteErr: repositories.ErrRosterEntryNotFound}
		svc := NewRosterService(repo, logger)

		err := svc.RemoveStudent(context.Background(), "missing@example.com")

		assert.ErrorIs(t, err, repositories.ErrRosterEntryNotFound)
	})
}
