package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/classtrack/backend/internal/auth/middleware"
	"github.com/classtrack/backend/internal/models"
	"github.com/classtrack/backend/internal/services"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProgressService is the interface that wraps per-student completion logic.
type ProgressService interface {
	// Method GetPageProgress loads the completion state of a page for a student.
	GetPageProgress(ctx context.Context, userID int, pageSlug string) (*models.PageProgress, error)
	// Method SetTaskCompletion marks or unmarks a task and returns the refreshed page state.
	//
	// services.ErrToggleInFlight means a write for the same task is still unsettled.
	SetTaskCompletion(ctx context.Context, userID int, pageSlug, taskID string, completed bool) (*models.PageProgress, error)
}

// ProgressHandler handles student checklist HTTP requests
type ProgressHandler struct {
	BaseHandler
	progressService ProgressService
	authMiddleware  func(http.Handler) http.Handler
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(
	progressService ProgressService,
	authMiddleware func(http.Handler) http.Handler,
	logger *zap.Logger,
) *ProgressHandler {
	return &ProgressHandler{
		BaseHandler:     BaseHandler{Logger: logger},
		progressService: progressService,
		authMiddleware:  authMiddleware,
	}
}

// RegisterRoutes registers all progress handler routes
// Note: This assumes the router is already scoped to /api/v1
func (h *ProgressHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authMiddleware)
		r.Get("/pages/{slug}/progress", h.GetProgress)
		r.Post("/pages/{slug}/tasks/{taskID}/complete", h.Complete)
		r.Delete("/pages/{slug}/tasks/{taskID}/complete", h.Uncomplete)
	})
}

// GetProgress handles GET /pages/{slug}/progress
// @Summary Load the checklist of a page
// @Description Return the signed-in student's completion state for every task on a page. A failing completion read degrades to an all-unchecked page.
// @Tags progress
// @Produce json
// @Param slug path string true "Page slug"
// @Success 200 {object} models.PageProgress "Checklist state"
// @Failure 401 {object} map[string]string "Not signed in"
// @Failure 500 {object} map[string]string "Failed to load the page"
// @Router /pages/{slug}/progress [get]
// @Security BearerAuth
func (h *ProgressHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	progress, err := h.progressService.GetPageProgress(r.Context(), userID, chi.URLParam(r, "slug"))
	if err != nil {
		h.Logger.Error("failed to load page progress", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to load progress")
		return
	}

	h.RespondJSON(w, http.StatusOK, progress)
}

// Complete handles POST /pages/{slug}/tasks/{taskID}/complete
// @Summary Mark a task complete
// @Description Record a completion for the signed-in student. Marking an already complete task is a no-op. A toggle already in flight for the same task responds 409.
// @Tags progress
// @Produce json
// @Param slug path string true "Page slug"
// @Param taskID path string true "Task id"
// @Success 200 {object} models.PageProgress "Refreshed checklist state"
// @Failure 401 {object} map[string]string "Not signed in"
// @Failure 409 {object} map[string]string "Toggle already in flight"
// @Failure 500 {object} map[string]string "Write failed, checkbox reverted"
// @Router /pages/{slug}/tasks/{taskID}/complete [post]
// @Security BearerAuth
func (h *ProgressHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, true)
}

// Uncomplete handles DELETE /pages/{slug}/tasks/{taskID}/complete
// @Summary Unmark a task
// @Description Remove a completion for the signed-in student. Unmarking an incomplete task is a no-op.
// @Tags progress
// @Produce json
// @Param slug path string true "Page slug"
// @Param taskID path string true "Task id"
// @Success 200 {object} models.PageProgress "Refreshed checklist state"
// @Failure 401 {object} map[string]string "Not signed in"
// @Failure 409 {object} map[string]string "Toggle already in flight"
// @Failure 500 {object} map[string]string "Write failed, checkbox reverted"
// @Router /pages/{slug}/tasks/{taskID}/complete [delete]
// @Security BearerAuth
func (h *ProgressHandler) Uncomplete(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, false)
}

func (h *ProgressHandler) toggle(w http.ResponseWriter, r *http.Request, completed bool) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	pageSlug := chi.URLParam(r, "slug")
	taskID := chi.URLParam(r, "taskID")

	progress, err := h.progressService.SetTaskCompletion(r.Context(), userID, pageSlug, taskID, completed)
	if err != nil {
		if errors.Is(err, services.ErrToggleInFlight) {
			h.RespondError(w, http.StatusConflict, "a change for this task is still saving")
			return
		}
		h.Logger.Error("failed to toggle task completion",
			zap.String("pageSlug", pageSlug), zap.String("taskId", taskID),
			zap.Bool("completed", completed), zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to save your change, please try again")
		return
	}

	h.RespondJSON(w, http.StatusOK, progress)
}
