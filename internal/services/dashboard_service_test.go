package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/classtrack/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockAggregateProgressRepository is a mock implementation of AggregateProgressRepository
type mockAggregateProgressRepository struct {
	records []models.StudentProgress
	err     error
}

func (m *mockAggregateProgressRepository) GetAllWithEmails(ctx context.Context) ([]models.StudentProgress, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.records, nil
}

func dashboardFixtures() (*mockTaskRepository, *mockAggregateProgressRepository, *mockRosterAdminRepository) {
	completedAt := time.Date(2026, 8, 15, 10, 30, 0, 0, time.UTC)

	taskRepo := &mockTaskRepository{tasks: []models.Task{
		{ID: "l1-t1", PageSlug: "lesson-1", Title: "Read chapter one", DisplayOrder: 1},
		{ID: "l1-t2", PageSlug: "lesson-1", Title: "Write a summary", DisplayOrder: 2},
		{ID: "l2-t1", PageSlug: "lesson-2", Title: "Solve exercises", DisplayOrder: 1},
	}}

	progressRepo := &mockAggregateProgressRepository{records: []models.StudentProgress{
		{StudentEmail: "alice@example.com", TaskID: "l1-t1", CompletedAt: completedAt},
		{StudentEmail: "alice@example.com", TaskID: "l1-t2", CompletedAt: completedAt},
		{StudentEmail: "bob@example.com", TaskID: "l1-t1", CompletedAt: completedAt},
	}}

	rosterRepo := &mockRosterAdminRepository{entries: []models.RosterEntry{
		{Email: "alice@example.com", Name: "Alice"},
		{Email: "bob@example.com", Name: "Bob"},
		{Email: "teacher@example.com", Name: "Teacher", IsInstructor: true},
	}}

	return taskRepo, progressRepo, rosterRepo
}

func TestDashboardService_BuildMatrix(t *testing.T) {
	logger, _ := zap.NewDevelopment()

	t.Run("full grid", func(t *testing.T) {
		taskRepo, progressRepo, rosterRepo := dashboardFixtures()
		svc := NewDashboardService(taskRepo, progressRepo, rosterRepo, logger)

		matrix, err := svc.BuildMatrix(context.Background())

		require.NoError(t, err)
		assert.Empty(t, matrix.Placeholder)

		// Instructors are not rows
		require.Len(t, matrix.Rows, 2)
		assert.Equal(t, "Alice", matrix.Rows[0].Name)
		assert.Equal(t, "Bob", matrix.Rows[1].Name)

		// Alice completed 2 of 3
		assert.Equal(t, 2, matrix.Rows[0].Completed)
		assert.Equal(t, 67, matrix.Rows[0].Percent)
		assert.True(t, matrix.Rows[0].Cells[0].Completed)
		assert.True(t, matrix.Rows[0].Cells[1].Completed)
		assert.False(t, matrix.Rows[0].Cells[2].Completed)
		assert.NotNil(t, matrix.Rows[0].Cells[0].CompletedAt)

		// Bob completed 1 of 3
		assert.Equal(t, 1, matrix.Rows[1].Completed)
		assert.Equal(t, 33, matrix.Rows[1].Percent)

		// Columns follow page then display order
		require.Len(t, matrix.Columns, 3)
		assert.Equal(t, "l1-t1", matrix.Columns[0].TaskID)
		assert.Equal(t, "l2-t1", matrix.Columns[2].TaskID)

		// Page groups span their columns
		require.Len(t, matrix.PageGroups, 2)
		assert.Equal(t, "lesson-1", matrix.PageGroups[0].PageSlug)
		assert.Equal(t, "Lesson 1", matrix.PageGroups[0].Label)
		assert.Equal(t, 2, matrix.PageGroups[0].TaskCount)
		assert.Equal(t, "lesson-2", matrix.PageGroups[1].PageSlug)
		assert.Equal(t, 1, matrix.PageGroups[1].TaskCount)

		// Summary over 2 students × 3 tasks
		assert.Equal(t, 2, matrix.Summary.StudentCount)
		assert.Equal(t, 3, matrix.Summary.TaskCount)
		assert.Equal(t, 3, matrix.Summary.TotalCompleted)
		assert.Equal(t, 6, matrix.Summary.TotalPossible)
		assert.Equal(t, 50, matrix.Summary.OverallPercent)
	})

	t.Run("no students yields placeholder", func(t *testing.T) {
		taskRepo, progressRepo, _ := dashboardFixtures()
		rosterRepo := &mockRosterAdminRepository{entries: []models.RosterEntry{
			{Email: "teacher@example.com", Name: "Teacher", IsInstructor: true},
		}}
		svc := NewDashboardService(taskRepo, progressRepo, rosterRepo, logger)

		matrix, err := svc.BuildMatrix(context.Background())

		require.NoError(t, err)
		assert.NotEmpty(t, matrix.Placeholder)
		assert.Empty(t, matrix.Rows)
	})

	t.Run("no tasks yields placeholder", func(t *testing.T) {
		_, progressRepo, rosterRepo := dashboardFixtures()
		taskRepo := &mockTaskRepository{}
		svc := NewDashboardService(taskRepo, progressRepo, rosterRepo, logger)

		matrix, err := svc.BuildMatrix(context.Background())

		require.NoError(t, err)
		assert.NotEmpty(t, matrix.Placeholder)
		assert.Empty(t, matrix.Rows)
		assert.Zero(t, matrix.Summary.TaskCount)
	})

	t.Run("completion read failure degrades to empty grid", func(t *testing.T) {
		taskRepo, _, rosterRepo := dashboardFixtures()
		progressRepo := &mockAggregateProgressRepository{err: errors.New("database error")}
		svc := NewDashboardService(taskRepo, progressRepo, rosterRepo, logger)

		matrix, err := svc.BuildMatrix(context.Background())

		require.NoError(t, err)
		require.Len(t, matrix.Rows, 2)
		assert.Zero(t, matrix.Rows[0].Completed)
		assert.Zero(t, matrix.Summary.TotalCompleted)
	})

	t.Run("task read failure is surfaced", func(t *testing.T) {
		_, progressRepo, rosterRepo := dashboardFixtures()
		taskRepo := &mockTaskRepository{err: errors.New("database error")}
		svc := NewDashboardService(taskRepo, progressRepo, rosterRepo, logger)

		matrix, err := svc.BuildMatrix(context.Background())

		assert.Error(t, err)
		assert.Nil(t, matrix)
	})

	t.Run("long titles are truncated in headers only", func(t *testing.T) {
		longTitle := "A very long homework task title that keeps going"
		taskRepo := &mockTaskRepository{tasks: []models.Task{
			{ID: "t1", PageSlug: "lesson-1", Title: longTitle, DisplayOrder: 1},
		}}
		_, progressRepo, rosterRepo := dashboardFixtures()
		svc := NewDashboardService(taskRepo, progressRepo, rosterRepo, logger)

		matrix, err := svc.BuildMatrix(context.Background())

		require.NoError(t, err)
		require.Len(t, matrix.Columns, 1)
		assert.Equal(t, longTitle, matrix.Columns[0].Title)
		assert.True(t, len([]rune(matrix.Columns[0].Header)) <= maxHeaderLength+1)
		assert.NotEqual(t, longTitle, matrix.Columns[0].Header)
	})
}

func TestDashboardService_ExportCSV(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	now := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		taskRepo, progressRepo, rosterRepo := dashboardFixtures()
		svc := NewDashboardService(taskRepo, progressRepo, rosterRepo, logger)

		data, filename, err := svc.ExportCSV(context.Background(), now)

		require.NoError(t, err)
		assert.Equal(t, "progress-2026-09-01.csv", filename)

		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, "Name,Email,Read chapter one,Write a summary,Solve exercises", lines[0])
		assert.Equal(t, "Alice,alice@example.com,1,1,0", lines[1])
		assert.Equal(t, "Bob,bob@example.com,1,0,0", lines[2])
	})

	t.Run("fields with commas and quotes are escaped", func(t *testing.T) {
		taskRepo := &mockTaskRepository{tasks: []models.Task{
			{ID: "t1", PageSlug: "lesson-1", Title: `Read "Moby Dick", chapter 1`, DisplayOrder: 1},
		}}
		progressRepo := &mockAggregateProgressRepository{}
		rosterRepo := &mockRosterAdminRepository{entries: []models.RosterEntry{
			{Email: "alice@example.com", Name: "Alice, the diligent"},
		}}
		svc := NewDashboardService(taskRepo, progressRepo, rosterRepo, logger)

		data, _, err := svc.ExportCSV(context.Background(), now)

		require.NoError(t, err)
		content := string(data)
		assert.Contains(t, content, `"Read ""Moby Dick"", chapter 1"`)
		assert.Contains(t, content, `"Alice, the diligent"`)
	})

	t.Run("build failure is surfaced", func(t *testing.T) {
		taskRepo := &mockTaskRepository{err: errors.New("database error")}
		progressRepo := &mockAggregateProgressRepository{}
		rosterRepo := &mockRosterAdminRepository{}
		svc := NewDashboardService(taskRepo, progressRepo, rosterRepo, logger)

		data, filename, err := svc.ExportCSV(context.Background(), now)

		assert.Error(t, err)
		assert.Nil(t, data)
		assert.Empty(t, filename)
	})
}
