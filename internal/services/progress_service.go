package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/classtrack/backend/internal/models"
	"go.uber.org/zap"
)

// TaskRepository is the interface that wraps methods for task definition data access
type TaskRepository interface {
	// Method InsertIgnoringDuplicates registers tasks, skipping ids that already exist.
	InsertIgnoringDuplicates(ctx context.Context, tasks []models.Task) error
	// Method GetIDsByPage retrieves the task ids of a page in display order.
	GetIDsByPage(ctx context.Context, pageSlug string) ([]string, error)
	// Method GetAllOrdered retrieves every known task grouped by page, then display order.
	GetAllOrdered(ctx context.Context) ([]models.Task, error)
}

// ProgressRepository is the interface that wraps methods for completion record data access
type ProgressRepository interface {
	// Method GetTaskIDsByUser retrieves the completed task ids for a user within a set of tasks.
	GetTaskIDsByUser(ctx context.Context, userID int, taskIDs []string) ([]string, error)
	// Method Insert marks a task complete for a user.
	Insert(ctx context.Context, userID int, taskID string) error
	// Method Delete unmarks a task for a user.
	Delete(ctx context.Context, userID int, taskID string) error
}

// toggleKey identifies one student's toggle on one task
type toggleKey struct {
	userID int
	taskID string
}

// progressService implements per-student completion reads and toggles
type progressService struct {
	taskRepo     TaskRepository
	progressRepo ProgressRepository
	logger       *zap.Logger

	// inFlight serializes toggles per (user, task); a second toggle on the
	// same key while a write is unsettled is rejected, not queued
	mu       sync.Mutex
	inFlight map[toggleKey]bool
}

// NewProgressService creates a new progress service
func NewProgressService(taskRepo TaskRepository, progressRepo ProgressRepository, logger *zap.Logger) *progressService {
	return &progressService{
		taskRepo:     taskRepo,
		progressRepo: progressRepo,
		logger:       logger,
		inFlight:     make(map[toggleKey]bool),
	}
}

// GetPageProgress loads the completion state of a page for a student.
// A failing completion read degrades to an all-unchecked page instead of
// blocking the page, the error is logged and the student can still work.
func (s *progressService) GetPageProgress(ctx context.Context, userID int, pageSlug string) (*models.PageProgress, error) {
	taskIDs, err := s.taskRepo.GetIDsByPage(ctx, pageSlug)
	if err != nil {
		return nil, fmt.Errorf("failed to load page tasks: %w", err)
	}

	completedIDs, err := s.progressRepo.GetTaskIDsByUser(ctx, userID, taskIDs)
	if err != nil {
		s.logger.Error("failed to load completions, serving unchecked state",
			zap.Int("userId", userID), zap.String("pageSlug", pageSlug), zap.Error(err))
		completedIDs = nil
	}

	checklist := NewChecklist(taskIDs, completedIDs)
	return buildPageProgress(checklist), nil
}

// SetTaskCompletion marks or unmarks a task for a student and returns the
// refreshed page state. While the write is unsettled the same (user, task)
// pair rejects further toggles with ErrToggleInFlight.
func (s *progressService) SetTaskCompletion(ctx context.Context, userID int, pageSlug, taskID string, completed bool) (*models.PageProgress, error) {
	taskIDs, err := s.taskRepo.GetIDsByPage(ctx, pageSlug)
	if err != nil {
		return nil, fmt.Errorf("failed to load page tasks: %w", err)
	}

	known := false
	for _, id := range taskIDs {
		if id == taskID {
			known = true
			break
		}
	}
	if !known {
		return nil, fmt.Errorf("task %s does not belong to page %s", taskID, pageSlug)
	}

	key := toggleKey{userID: userID, taskID: taskID}
	if !s.acquire(key) {
		return nil, ErrToggleInFlight
	}
	defer s.release(key)

	if completed {
		err = s.progressRepo.Insert(ctx, userID, taskID)
	} else {
		err = s.progressRepo.Delete(ctx, userID, taskID)
	}
	if err != nil {
		// The stored state is unchanged, the caller shows the reverted
		// checkbox together with the error
		return nil, fmt.Errorf("failed to save completion: %w", err)
	}

	completedIDs, err := s.progressRepo.GetTaskIDsByUser(ctx, userID, taskIDs)
	if err != nil {
		s.logger.Error("failed to reload completions after toggle",
			zap.Int("userId", userID), zap.String("taskId", taskID), zap.Error(err))
		completedIDs = nil
	}

	checklist := NewChecklist(taskIDs, completedIDs)
	return buildPageProgress(checklist), nil
}

// acquire reserves a toggle key, returning false if it is already held
func (s *progressService) acquire(key toggleKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[key] {
		return false
	}
	s.inFlight[key] = true
	return true
}

// release frees a toggle key
func (s *progressService) release(key toggleKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, key)
}

// buildPageProgress flattens a checklist into the response shape
func buildPageProgress(checklist *Checklist) *models.PageProgress {
	items := make([]models.PageProgressItem, 0, len(checklist.TaskIDs()))
	for _, id := range checklist.TaskIDs() {
		state, _ := checklist.State(id)
		items = append(items, models.PageProgressItem{
			TaskID:  id,
			Checked: state == TaskStateChecked,
		})
	}

	completed, total := checklist.Counts()
	return &models.PageProgress{
		Items:     items,
		Completed: completed,
		Total:     total,
		Percent:   checklist.Percent(),
	}
}
