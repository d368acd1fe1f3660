package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/classtrack/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// TaskSyncService is the interface that wraps the page task registration logic.
type TaskSyncService interface {
	// Method SyncPageTasks registers the tasks of a page, first write wins.
	SyncPageTasks(ctx context.Context, pageSlug string, pageTasks []models.PageTask) error
}

// TaskHandler handles task registration HTTP requests
type TaskHandler struct {
	BaseHandler
	taskSyncService TaskSyncService
	authMiddleware  func(http.Handler) http.Handler
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(
	taskSyncService TaskSyncService,
	authMiddleware func(http.Handler) http.Handler,
	logger *zap.Logger,
) *TaskHandler {
	return &TaskHandler{
		BaseHandler:     BaseHandler{Logger: logger},
		taskSyncService: taskSyncService,
		authMiddleware:  authMiddleware,
	}
}

// RegisterRoutes registers all task handler routes
// Note: This assumes the router is already scoped to /api/v1
func (h *TaskHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authMiddleware)
		r.Post("/pages/{slug}/tasks/sync", h.Sync)
	})
}

// Sync handles POST /pages/{slug}/tasks/sync
// @Summary Register the tasks of a page
// @Description Register the tasks a content page reports about itself. Already known task ids are skipped, the first registration wins. Always responds 204, sync failures never block the page.
// @Tags tasks
// @Accept json
// @Param slug path string true "Page slug"
// @Param request body []models.PageTask true "Tasks found on the page"
// @Success 204 "Sync accepted"
// @Failure 401 {object} map[string]string "Not signed in"
// @Router /pages/{slug}/tasks/sync [post]
// @Security BearerAuth
func (h *TaskHandler) Sync(w http.ResponseWriter, r *http.Request) {
	pageSlug := chi.URLParam(r, "slug")

	var pageTasks []models.PageTask
	if err := json.NewDecoder(r.Body).Decode(&pageTasks); err != nil {
		// A malformed payload is logged and swallowed; the page must keep
		// rendering whether or not its sync landed
		h.Logger.Warn("invalid task sync payload",
			zap.String("pageSlug", pageSlug), zap.Error(err))
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err := h.taskSyncService.SyncPageTasks(r.Context(), pageSlug, pageTasks); err != nil {
		h.Logger.Error("failed to sync page tasks",
			zap.String("pageSlug", pageSlug), zap.Error(err))
	}

	w.WriteHeader(http.StatusNoContent)
}
