package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/classtrack/backend/internal/auth/middleware"
	"github.com/classtrack/backend/internal/models"
	"github.com/classtrack/backend/internal/repositories"
	"github.com/classtrack/backend/internal/services"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// DashboardService is the interface that wraps the instructor aggregate views.
type DashboardService interface {
	// Method BuildMatrix assembles the student × task completion grid from scratch.
	BuildMatrix(ctx context.Context) (*models.ProgressMatrix, error)
	// Method ExportCSV renders the matrix as CSV and returns the bytes and filename.
	ExportCSV(ctx context.Context, now time.Time) ([]byte, string, error)
}

// RosterService is the interface that wraps approval list management.
type RosterService interface {
	// Method ListStudents retrieves the full approval list.
	ListStudents(ctx context.Context) ([]models.RosterEntry, error)
	// Method AddStudent approves an email, updating name and flag if already present.
	AddStudent(ctx context.Context, entry *models.RosterEntry) error
	// Method RemoveStudent takes an email off the approval list, keeping its history.
	RemoveStudent(ctx context.Context, email string) error
}

// InstructorResolver is the interface that gates dashboard routes to instructors.
type InstructorResolver interface {
	// Method ResolveInstructor resolves the session and requires the instructor flag.
	ResolveInstructor(ctx context.Context, userID int, email string) (*models.User, error)
}

// DashboardHandler handles instructor dashboard HTTP requests
type DashboardHandler struct {
	BaseHandler
	dashboardService DashboardService
	rosterService    RosterService
	resolver         InstructorResolver
	authMiddleware   func(http.Handler) http.Handler
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(
	dashboardService DashboardService,
	rosterService RosterService,
	resolver InstructorResolver,
	authMiddleware func(http.Handler) http.Handler,
	logger *zap.Logger,
) *DashboardHandler {
	return &DashboardHandler{
		BaseHandler:      BaseHandler{Logger: logger},
		dashboardService: dashboardService,
		rosterService:    rosterService,
		resolver:         resolver,
		authMiddleware:   authMiddleware,
	}
}

// RegisterRoutes registers all dashboard handler routes
// Note: This assumes the router is already scoped to /api/v1
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Route("/dashboard", func(r chi.Router) {
		r.Use(h.authMiddleware)
		r.Use(h.requireInstructor)
		r.Get("/matrix", h.Matrix)
		r.Get("/export", h.Export)
		r.Get("/students", h.ListStudents)
		r.Post("/students", h.AddStudent)
		r.Delete("/students/{email}", h.RemoveStudent)
	})
}

// requireInstructor resolves the session and rejects non-instructors
func (h *DashboardHandler) requireInstructor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, okID := middleware.GetUserID(r.Context())
		email, okEmail := middleware.GetUserEmail(r.Context())
		if !okID || !okEmail {
			h.RespondError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		if _, err := h.resolver.ResolveInstructor(r.Context(), userID, email); err != nil {
			switch {
			case errors.Is(err, services.ErrNotInstructor):
				h.RespondError(w, http.StatusForbidden, "instructor access required")
			case errors.Is(err, services.ErrSessionRevoked):
				h.RespondError(w, http.StatusUnauthorized, "authentication required")
			default:
				h.Logger.Error("failed to resolve instructor", zap.Error(err))
				h.RespondError(w, http.StatusInternalServerError, "failed to resolve session")
			}
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Matrix handles GET /dashboard/matrix
// @Summary Student progress matrix
// @Description Return the full student × task completion grid, re-derived on every request.
// @Tags dashboard
// @Produce json
// @Success 200 {object} models.ProgressMatrix "Completion grid"
// @Failure 401 {object} map[string]string "Not signed in"
// @Failure 403 {object} map[string]string "Not an instructor"
// @Failure 500 {object} map[string]string "Failed to build the grid"
// @Router /dashboard/matrix [get]
// @Security BearerAuth
func (h *DashboardHandler) Matrix(w http.ResponseWriter, r *http.Request) {
	matrix, err := h.dashboardService.BuildMatrix(r.Context())
	if err != nil {
		h.Logger.Error("failed to build progress matrix", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to build progress matrix")
		return
	}

	h.RespondJSON(w, http.StatusOK, matrix)
}

// Export handles GET /dashboard/export
// @Summary Export progress as CSV
// @Description Download the completion grid as a CSV file named progress-YYYY-MM-DD.csv.
// @Tags dashboard
// @Produce text/csv
// @Success 200 {string} string "CSV content"
// @Failure 401 {object} map[string]string "Not signed in"
// @Failure 403 {object} map[string]string "Not an instructor"
// @Failure 500 {object} map[string]string "Failed to build the export"
// @Router /dashboard/export [get]
// @Security BearerAuth
func (h *DashboardHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, filename, err := h.dashboardService.ExportCSV(r.Context(), time.Now())
	if err != nil {
		h.Logger.Error("failed to export progress csv", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to export progress")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.Logger.Error("failed to write csv response", zap.Error(err))
	}
}

// ListStudents handles GET /dashboard/students
// @Summary List the approval roster
// @Description Return every approved email with name and instructor flag, ordered by name.
// @Tags dashboard
// @Produce json
// @Success 200 {array} models.RosterEntry "Roster entries"
// @Failure 401 {object} map[string]string "Not signed in"
// @Failure 403 {object} map[string]string "Not an instructor"
// @Router /dashboard/students [get]
// @Security BearerAuth
func (h *DashboardHandler) ListStudents(w http.ResponseWriter, r *http.Request) {
	entries, err := h.rosterService.ListStudents(r.Context())
	if err != nil {
		h.Logger.Error("failed to list students", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to list students")
		return
	}

	h.RespondJSON(w, http.StatusOK, entries)
}

// AddStudent handles POST /dashboard/students
// @Summary Approve a student email
// @Description Add an email to the approval roster. An email already present has its name and instructor flag updated.
// @Tags dashboard
// @Accept json
// @Produce json
// @Param request body models.RosterEntry true "Roster entry"
// @Success 201 {object} models.RosterEntry "Approved entry"
// @Failure 400 {object} map[string]string "Invalid email or name"
// @Failure 401 {object} map[string]string "Not signed in"
// @Failure 403 {object} map[string]string "Not an instructor"
// @Router /dashboard/students [post]
// @Security BearerAuth
func (h *DashboardHandler) AddStudent(w http.ResponseWriter, r *http.Request) {
	var entry models.RosterEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.rosterService.AddStudent(r.Context(), &entry); err != nil {
		if err.Error() == "invalid email format" || err.Error() == "name cannot be empty" {
			h.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.Logger.Error("failed to add student", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to add student")
		return
	}

	h.RespondJSON(w, http.StatusCreated, entry)
}

// RemoveStudent handles DELETE /dashboard/students/{email}
// @Summary Remove a student from the roster
// @Description Take an email off the approval roster. Completion history is kept and the student's sessions are revoked on their next request.
// @Tags dashboard
// @Produce json
// @Param email path string true "Email to remove"
// @Success 200 {object} map[string]string "Removed"
// @Failure 401 {object} map[string]string "Not signed in"
// @Failure 403 {object} map[string]string "Not an instructor"
// @Failure 404 {object} map[string]string "Email not on the roster"
// @Router /dashboard/students/{email} [delete]
// @Security BearerAuth
func (h *DashboardHandler) RemoveStudent(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	if err := h.rosterService.RemoveStudent(r.Context(), email); err != nil {
		if errors.Is(err, repositories.ErrRosterEntryNotFound) {
			h.RespondError(w, http.StatusNotFound, "email is not on the roster")
			return
		}
		h.Logger.Error("failed to remove student", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to remove student")
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "student removed"})
}
