package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/classtrack/backend/internal/models"
)

// progressRepository implements data access for completion records
type progressRepository struct {
	db *sql.DB
}

// NewProgressRepository creates a new progress repository
func NewProgressRepository(db *sql.DB) *progressRepository {
	return &progressRepository{
		db: db,
	}
}

// GetTaskIDsByUser retrieves the completed task ids for a user within a set of tasks.
// A task is complete exactly when its row exists.
func (r *progressRepository) GetTaskIDsByUser(ctx context.Context, userID int, taskIDs []string) ([]string, error) {
	if len(taskIDs) == 0 {
		return []string{}, nil
	}

	args := []any{userID}
	placeholders := make([]string, len(taskIDs))
	for i := range placeholders {
		placeholders[i] = "?"
		args = append(args, taskIDs[i])
	}

	query := fmt.Sprintf(`
		SELECT task_id
		FROM progress
		WHERE user_id = ? AND task_id IN (%s)`, strings.Join(placeholders, ","))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query progress: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan task id: %w", err)
		}
		ids = append(ids, id)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return ids, nil
}

// Insert marks a task complete for a user. Re-marking an already complete
// task is a no-op, not an error.
func (r *progressRepository) Insert(ctx context.Context, userID int, taskID string) error {
	query := `
		INSERT IGNORE INTO progress (user_id, task_id)
		VALUES (?, ?)
	`

	_, err := r.db.ExecContext(ctx, query, userID, taskID)
	if err != nil {
		return fmt.Errorf("failed to insert progress: %w", err)
	}

	return nil
}

// Delete unmarks a task for a user. Deleting an absent row is a no-op.
func (r *progressRepository) Delete(ctx context.Context, userID int, taskID string) error {
	query := `DELETE FROM progress WHERE user_id = ? AND task_id = ?`

	_, err := r.db.ExecContext(ctx, query, userID, taskID)
	if err != nil {
		return fmt.Errorf("failed to delete progress: %w", err)
	}

	return nil
}

// GetAllWithEmails retrieves every completion record joined to the owning
// email, the shape the instructor matrix is built from.
func (r *progressRepository) GetAllWithEmails(ctx context.Context) ([]models.StudentProgress, error) {
	query := `
		SELECT users.email, progress.task_id, progress.completed_at
		FROM progress
		JOIN users ON progress.user_id = users.id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query progress records: %w", err)
	}
	defer rows.Close()

	var records []models.StudentProgress
	for rows.Next() {
		var record models.StudentProgress
		if err := rows.Scan(&record.StudentEmail, &record.TaskID, &record.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan progress record: %w", err)
		}
		records = append(records, record)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return records, nil
}
