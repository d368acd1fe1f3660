package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/classtrack/backend/internal/models"
)

// rosterRepository implements data access for the approval list
type rosterRepository struct {
	db *sql.DB
}

// NewRosterRepository creates a new roster repository
func NewRosterRepository(db *sql.DB) *rosterRepository {
	return &rosterRepository{
		db: db,
	}
}

// FindByEmail retrieves an approval-list entry by email
func (r *rosterRepository) FindByEmail(ctx context.Context, email string) (*models.RosterEntry, error) {
	query := `
		SELECT email, name, is_instructor
		FROM approved_emails
		WHERE email = ?
	`

	entry := &models.RosterEntry{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&entry.Email,
		&entry.Name,
		&entry.IsInstructor,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRosterEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find roster entry: %w", err)
	}

	return entry, nil
}

// ExistsByEmail checks if an email is on the approval list
func (r *rosterRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM approved_emails WHERE email = ?)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email approval: %w", err)
	}

	return exists, nil
}

// GetAll retrieves every approval-list entry ordered by name
func (r *rosterRepository) GetAll(ctx context.Context) ([]models.RosterEntry, error) {
	query := `
		SELECT email, name, is_instructor
		FROM approved_emails
		ORDER BY name, email
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get roster entries: %w", err)
	}
	defer rows.Close()

	var entries []models.RosterEntry
	for rows.Next() {
		var entry models.RosterEntry
		if err := rows.Scan(&entry.Email, &entry.Name, &entry.IsInstructor); err != nil {
			return nil, fmt.Errorf("failed to scan roster entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate roster entries: %w", err)
	}

	return entries, nil
}

// Upsert inserts or updates an approval-list entry keyed by email
func (r *rosterRepository) Upsert(ctx context.Context, entry *models.RosterEntry) error {
	query := `
		INSERT INTO approved_emails (email, name, is_instructor)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE name = VALUES(name), is_instructor = VALUES(is_instructor)
	`

	_, err := r.db.ExecContext(ctx, query, entry.Email, entry.Name, entry.IsInstructor)
	if err != nil {
		return fmt.Errorf("failed to upsert roster entry: %w", err)
	}

	return nil
}

// Delete removes an approval-list entry. Progress rows are untouched:
// the schema has no cascade from approved_emails, history survives removal.
func (r *rosterRepository) Delete(ctx context.Context, email string) error {
	query := `DELETE FROM approved_emails WHERE email = ?`

	result, err := r.db.ExecContext(ctx, query, email)
	if err != nil {
		return fmt.Errorf("failed to delete roster entry: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrRosterEntryNotFound
	}

	return nil
}
