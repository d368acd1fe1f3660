package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/classtrack/backend/internal/models"
	"go.uber.org/zap"
)

// taskSyncService registers the tasks a content page reports about itself
type taskSyncService struct {
	taskRepo TaskRepository
	logger   *zap.Logger
}

// NewTaskSyncService creates a new task sync service
func NewTaskSyncService(taskRepo TaskRepository, logger *zap.Logger) *taskSyncService {
	return &taskSyncService{
		taskRepo: taskRepo,
		logger:   logger,
	}
}

// slugRegex validates page slugs: lowercase, digits and hyphens
var slugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// SyncPageTasks registers the tasks of a page, first write wins. Task ids
// already known keep their stored title, page and order; a page edit never
// rewrites history. Duplicate ids inside one payload collapse to the first.
func (s *taskSyncService) SyncPageTasks(ctx context.Context, pageSlug string, pageTasks []models.PageTask) error {
	if !slugRegex.MatchString(pageSlug) {
		return fmt.Errorf("invalid page slug: %q", pageSlug)
	}

	seen := make(map[string]bool, len(pageTasks))
	tasks := make([]models.Task, 0, len(pageTasks))
	for i, pt := range pageTasks {
		id := strings.TrimSpace(pt.ID)
		title := strings.TrimSpace(pt.Title)
		if id == "" {
			return fmt.Errorf("task at position %d has an empty id", i)
		}
		if title == "" {
			return fmt.Errorf("task %s has an empty title", id)
		}
		if seen[id] {
			s.logger.Warn("duplicate task id in sync payload",
				zap.String("pageSlug", pageSlug), zap.String("taskId", id))
			continue
		}
		seen[id] = true

		displayOrder := pt.DisplayOrder
		if displayOrder <= 0 {
			displayOrder = i + 1
		}

		tasks = append(tasks, models.Task{
			ID:           id,
			PageSlug:     pageSlug,
			Title:        title,
			DisplayOrder: displayOrder,
		})
	}

	if len(tasks) == 0 {
		return nil
	}

	if err := s.taskRepo.InsertIgnoringDuplicates(ctx, tasks); err != nil {
		return fmt.Errorf("failed to sync page tasks: %w", err)
	}

	return nil
}
