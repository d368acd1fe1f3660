package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/classtrack/backend/internal/models"
	"go.uber.org/zap"
)

// AggregateProgressRepository is the interface that wraps the cross-student read
type AggregateProgressRepository interface {
	// Method GetAllWithEmails retrieves every completion record joined to the owning email.
	GetAllWithEmails(ctx context.Context) ([]models.StudentProgress, error)
}

// maxHeaderLength bounds task titles in matrix column headers
const maxHeaderLength = 20

// dashboardService builds the instructor matrix and its CSV export
type dashboardService struct {
	taskRepo     TaskRepository
	progressRepo AggregateProgressRepository
	rosterRepo   RosterAdminRepository
	logger       *zap.Logger
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	taskRepo TaskRepository,
	progressRepo AggregateProgressRepository,
	rosterRepo RosterAdminRepository,
	logger *zap.Logger,
) *dashboardService {
	return &dashboardService{
		taskRepo:     taskRepo,
		progressRepo: progressRepo,
		rosterRepo:   rosterRepo,
		logger:       logger,
	}
}

// BuildMatrix assembles the student × task completion grid from scratch.
// Instructors on the roster are excluded from the rows; a roster without
// students or a catalogue without tasks yields a placeholder instead.
func (s *dashboardService) BuildMatrix(ctx context.Context) (*models.ProgressMatrix, error) {
	tasks, err := s.taskRepo.GetAllOrdered(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}

	entries, err := s.rosterRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}

	students := make([]models.RosterEntry, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsInstructor {
			students = append(students, entry)
		}
	}

	matrix := &models.ProgressMatrix{
		PageGroups: buildPageGroups(tasks),
		Columns:    buildColumns(tasks),
		Rows:       []models.MatrixRow{},
	}

	if len(students) == 0 {
		matrix.Placeholder = "No students on the roster yet"
		return matrix, nil
	}
	if len(tasks) == 0 {
		matrix.Placeholder = "No tasks registered yet"
		return matrix, nil
	}

	records, err := s.progressRepo.GetAllWithEmails(ctx)
	if err != nil {
		// A failing read degrades to an empty grid rather than a broken page
		s.logger.Error("failed to load completion records, serving empty matrix", zap.Error(err))
		records = nil
	}

	// Lookup keyed by (email, taskID), one scan over the records serves
	// every cell of the grid
	type cellKey struct {
		email  string
		taskID string
	}
	completions := make(map[cellKey]time.Time, len(records))
	for _, record := range records {
		completions[cellKey{record.StudentEmail, record.TaskID}] = record.CompletedAt
	}

	totalCompleted := 0
	for _, student := range students {
		row := models.MatrixRow{
			Name:  student.Name,
			Email: student.Email,
			Cells: make([]models.MatrixCell, 0, len(tasks)),
		}
		for _, task := range tasks {
			cell := models.MatrixCell{}
			if completedAt, ok := completions[cellKey{student.Email, task.ID}]; ok {
				cell.Completed = true
				at := completedAt
				cell.CompletedAt = &at
				row.Completed++
			}
			row.Cells = append(row.Cells, cell)
		}
		row.Percent = roundPercent(row.Completed, len(tasks))
		totalCompleted += row.Completed
		matrix.Rows = append(matrix.Rows, row)
	}

	totalPossible := len(students) * len(tasks)
	matrix.Summary = models.MatrixSummary{
		StudentCount:   len(students),
		TaskCount:      len(tasks),
		TotalCompleted: totalCompleted,
		TotalPossible:  totalPossible,
		OverallPercent: roundPercent(totalCompleted, totalPossible),
	}

	return matrix, nil
}

// ExportCSV renders the matrix as RFC 4180 CSV and returns the bytes with
// the dated filename to serve them under.
func (s *dashboardService) ExportCSV(ctx context.Context, now time.Time) ([]byte, string, error) {
	matrix, err := s.BuildMatrix(ctx)
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{"Name", "Email"}
	for _, column := range matrix.Columns {
		header = append(header, column.Title)
	}
	if err := writer.Write(header); err != nil {
		return nil, "", fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, row := range matrix.Rows {
		record := []string{row.Name, row.Email}
		for _, cell := range row.Cells {
			if cell.Completed {
				record = append(record, "1")
			} else {
				record = append(record, "0")
			}
		}
		if err := writer.Write(record); err != nil {
			return nil, "", fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, "", fmt.Errorf("failed to flush csv: %w", err)
	}

	filename := fmt.Sprintf("progress-%s.csv", now.Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

// buildPageGroups derives the page spans from an ordered task list
func buildPageGroups(tasks []models.Task) []models.MatrixPageGroup {
	groups := []models.MatrixPageGroup{}
	for _, task := range tasks {
		if n := len(groups); n > 0 && groups[n-1].PageSlug == task.PageSlug {
			groups[n-1].TaskCount++
			continue
		}
		groups = append(groups, models.MatrixPageGroup{
			PageSlug:  task.PageSlug,
			Label:     formatPageSlug(task.PageSlug),
			TaskCount: 1,
		})
	}
	return groups
}

// buildColumns derives the column headers from an ordered task list
func buildColumns(tasks []models.Task) []models.MatrixColumn {
	columns := make([]models.MatrixColumn, 0, len(tasks))
	for _, task := range tasks {
		columns = append(columns, models.MatrixColumn{
			TaskID: task.ID,
			Header: truncateTitle(task.Title, maxHeaderLength),
			Title:  task.Title,
		})
	}
	return columns
}

// formatPageSlug turns a page slug into a display label, "week-1" -> "Week 1"
func formatPageSlug(slug string) string {
	words := strings.Split(strings.ReplaceAll(slug, "-", " "), " ")
	for i, word := range words {
		if word == "" {
			continue
		}
		runes := []rune(word)
		words[i] = strings.ToUpper(string(runes[0])) + string(runes[1:])
	}
	return strings.Join(words, " ")
}

// truncateTitle shortens a title for header display, rune-safe
func truncateTitle(title string, max int) string {
	runes := []rune(title)
	if len(runes) <= max {
		return title
	}
	return string(runes[:max]) + "…"
}

// roundPercent rounds a ratio to a whole percentage, guarding a zero denominator
func roundPercent(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}
