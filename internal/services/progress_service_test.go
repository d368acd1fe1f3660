package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/classtrack/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockTaskRepository is a mock implementation of TaskRepository
type mockTaskRepository struct {
	taskIDs   []string
	tasks     []models.Task
	err       error
	insertErr error

	mu       sync.Mutex
	inserted []models.Task
}

func (m *mockTaskRepository) InsertIgnoringDuplicates(ctx context.Context, tasks []models.Task) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inserted = append(m.inserted, tasks...)
	return nil
}

func (m *mockTaskRepository) GetIDsByPage(ctx context.Context, pageSlug string) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.taskIDs, nil
}

func (m *mockTaskRepository) GetAllOrdered(ctx context.Context) ([]models.Task, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.tasks, nil
}

// mockProgressRepository is a mock implementation of ProgressRepository
type mockProgressRepository struct {
	completedIDs []string
	getErr       error
	insertErr    error
	deleteErr    error

	// insertStarted/insertRelease let tests hold a write open to exercise
	// the in-flight toggle guard
	insertStarted chan struct{}
	insertRelease chan struct{}

	mu       sync.Mutex
	inserted []string
	deleted  []string
}

func (m *mockProgressRepository) GetTaskIDsByUser(ctx context.Context, userID int, taskIDs []string) ([]string, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.completedIDs, nil
}

func (m *mockProgressRepository) Insert(ctx context.Context, userID int, taskID string) error {
	if m.insertStarted != nil {
		m.insertStarted <- struct{}{}
		<-m.insertRelease
	}
	if m.insertErr != nil {
		return m.insertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inserted = append(m.inserted, taskID)
	return nil
}

func (m *mockProgressRepository) Delete(ctx context.Context, userID int, taskID string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, taskID)
	return nil
}

func TestNewProgressService(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	taskRepo := &mockTaskRepository{}
	progressRepo := &mockProgressRepository{}

	svc := NewProgressService(taskRepo, progressRepo, logger)

	assert.NotNil(t, svc)
	assert.Equal(t, taskRepo, svc.taskRepo)
	assert.Equal(t, progressRepo, svc.progressRepo)
	assert.NotNil(t, svc.inFlight)
}

func TestProgressService_GetPageProgress(t *testing.T) {
	logger, _ := zap.NewDevelopment()

	tests := []struct {
		name              string
		taskRepo          *mockTaskRepository
		progressRepo      *mockProgressRepository
		expectedError     bool
		expectedCompleted int
		expectedTotal     int
		expectedPercent   int
	}{
		{
			name:              "success",
			taskRepo:          &mockTaskRepository{taskIDs: []string{"t1", "t2", "t3"}},
			progressRepo:      &mockProgressRepository{completedIDs: []string{"t1", "t3"}},
			expectedCompleted: 2,
			expectedTotal:     3,
			expectedPercent:   67,
		},
		{
			name:          "unknown page yields empty checklist",
			taskRepo:      &mockTaskRepository{taskIDs: nil},
			progressRepo:  &mockProgressRepository{},
			expectedTotal: 0,
		},
		{
			name:          "task read failure is surfaced",
			taskRepo:      &mockTaskRepository{err: errors.New("database error")},
			progressRepo:  &mockProgressRepository{},
			expectedError: true,
		},
		{
			name:     "completion read failure degrades to unchecked",
			taskRepo: &mockTaskRepository{taskIDs: []string{"t1", "t2"}},
			progressRepo: &mockProgressRepository{
				getErr: errors.New("database error"),
			},
			expectedCompleted: 0,
			expectedTotal:     2,
			expectedPercent:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewProgressService(tt.taskRepo, tt.progressRepo, logger)

			result, err := svc.GetPageProgress(context.Background(), 1, "lesson-1")

			if tt.expectedError {
				assert.Error(t, err)
				assert.Nil(t, result)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectedCompleted, result.Completed)
			assert.Equal(t, tt.expectedTotal, result.Total)
			assert.Equal(t, tt.expectedPercent, result.Percent)
			assert.Len(t, result.Items, tt.expectedTotal)
		})
	}
}

func TestProgressService_SetTaskCompletion(t *testing.T) {
	logger, _ := zap.NewDevelopment()

	t.Run("check inserts and returns refreshed state", func(t *testing.T) {
		taskRepo := &mockTaskRepository{taskIDs: []string{"t1", "t2"}}
		progressRepo := &mockProgressRepository{completedIDs: []string{"t1"}}
		svc := NewProgressService(taskRepo, progressRepo, logger)

		result, err := svc.SetTaskCompletion(context.Background(), 1, "lesson-1", "t1", true)

		require.NoError(t, err)
		assert.Equal(t, []string{"t1"}, progressRepo.inserted)
		assert.Equal(t, 1, result.Completed)
		assert.Equal(t, 2, result.Total)
	})

	t.Run("uncheck deletes", func(t *testing.T) {
		taskRepo := &mockTaskRepository{taskIDs: []string{"t1"}}
		progressRepo := &mockProgressRepository{}
		svc := NewProgressService(taskRepo, progressRepo, logger)

		_, err := svc.SetTaskCompletion(context.Background(), 1, "lesson-1", "t1", false)

		require.NoError(t, err)
		assert.Equal(t, []string{"t1"}, progressRepo.deleted)
	})

	t.Run("task not on page is rejected", func(t *testing.T) {
		taskRepo := &mockTaskRepository{taskIDs: []string{"t1"}}
		progressRepo := &mockProgressRepository{}
		svc := NewProgressService(taskRepo, progressRepo, logger)

		_, err := svc.SetTaskCompletion(context.Background(), 1, "lesson-1", "other", true)

		assert.Error(t, err)
		assert.Empty(t, progressRepo.inserted)
	})

	t.Run("write failure surfaces the error", func(t *testing.T) {
		taskRepo := &mockTaskRepository{taskIDs: []string{"t1"}}
		progressRepo := &mockProgressRepository{insertErr: errors.New("database error")}
		svc := NewProgressService(taskRepo, progressRepo, logger)

		result, err := svc.SetTaskCompletion(context.Background(), 1, "lesson-1", "t1", true)

		assert.Error(t, err)
		assert.Nil(t, result)
	})

	t.Run("concurrent toggle on the same task is rejected", func(t *testing.T) {
		taskRepo := &mockTaskRepository{taskIDs: []string{"t1"}}
		progressRepo := &mockProgressRepository{
			insertStarted: make(chan struct{}, 1),
			insertRelease: make(chan struct{}),
		}
		svc := NewProgressService(taskRepo, progressRepo, logger)

		firstDone := make(chan error, 1)
		go func() {
			_, err := svc.SetTaskCompletion(context.Background(), 1, "lesson-1", "t1", true)
			firstDone <- err
		}()

		// Wait until the first write is in flight
		select {
		case <-progressRepo.insertStarted:
		case <-time.After(time.Second):
			t.Fatal("first toggle never reached the repository")
		}

		_, err := svc.SetTaskCompletion(context.Background(), 1, "lesson-1", "t1", true)
		assert.ErrorIs(t, err, ErrToggleInFlight)

		close(progressRepo.insertRelease)
		require.NoError(t, <-firstDone)

		// The key is released once the write settles
		_, err = svc.SetTaskCompletion(context.Background(), 1, "lesson-1", "t1", true)
		assert.NoError(t, err)
	})

	t.Run("different task keys do not block each other", func(t *testing.T) {
		taskRepo := &mockTaskRepository{taskIDs: []string{"t1", "t2"}}
		progressRepo := &mockProgressRepository{}
		svc := NewProgressService(taskRepo, progressRepo, logger)

		_, err1 := svc.SetTaskCompletion(context.Background(), 1, "lesson-1", "t1", true)
		_, err2 := svc.SetTaskCompletion(context.Background(), 1, "lesson-1", "t2", true)

		assert.NoError(t, err1)
		assert.NoError(t, err2)
	})
}
