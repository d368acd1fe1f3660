package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/classtrack/backend/internal/models"
)

// taskRepository implements data access for homework task definitions
type taskRepository struct {
	db *sql.DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *sql.DB) *taskRepository {
	return &taskRepository{
		db: db,
	}
}

// InsertIgnoringDuplicates registers tasks in a single batch, skipping ids
// that already exist. The first registration of a task id wins; later syncs
// never overwrite the stored title, page or order.
func (r *taskRepository) InsertIgnoringDuplicates(ctx context.Context, tasks []models.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	placeholders := make([]string, len(tasks))
	args := []any{}
	for i := range placeholders {
		placeholders[i] = "(?, ?, ?, ?)"
		args = append(args, tasks[i].ID, tasks[i].PageSlug, tasks[i].Title, tasks[i].DisplayOrder)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`
		INSERT IGNORE INTO tasks (id, page_slug, title, display_order)
		VALUES %s
	`, strings.Join(placeholders, ","))

	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert tasks: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetIDsByPage retrieves the task ids of a page in display order
func (r *taskRepository) GetIDsByPage(ctx context.Context, pageSlug string) ([]string, error) {
	query := `
		SELECT id
		FROM tasks
		WHERE page_slug = ?
		ORDER BY display_order, id
	`

	rows, err := r.db.QueryContext(ctx, query, pageSlug)
	if err != nil {
		return nil, fmt.Errorf("failed to query task ids: %w", err)
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

// GetAllOrdered retrieves every known task grouped by page, then display order
func (r *taskRepository) GetAllOrdered(ctx context.Context) ([]models.Task, error) {
	query := `
		SELECT id, page_slug, title, display_order
		FROM tasks
		ORDER BY page_slug, display_order, id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		var task models.Task
		if err := rows.Scan(&task.ID, &task.PageSlug, &task.Title, &task.DisplayOrder); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return tasks, nil
}
