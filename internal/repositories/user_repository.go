package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// userRepository implements data access for sign-in identities
type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB) *userRepository {
	return &userRepository{
		db: db,
	}
}

// GetIDByEmail retrieves a user id by email
func (r *userRepository) GetIDByEmail(ctx context.Context, email string) (int, error) {
	query := `SELECT id FROM users WHERE email = ?`

	var id int
	err := r.db.QueryRowContext(ctx, query, email).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrUserNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get user by email: %w", err)
	}

	return id, nil
}

// GetEmailByID retrieves a user email by id
func (r *userRepository) GetEmailByID(ctx context.Context, userID int) (string, error) {
	query := `SELECT email FROM users WHERE id = ?`

	var email string
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&email)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get user by id: %w", err)
	}

	return email, nil
}

// Create inserts a new user identity and returns its id
func (r *userRepository) Create(ctx context.Context, email string) (int, error) {
	query := `INSERT INTO users (email) VALUES (?)`

	result, err := r.db.ExecContext(ctx, query, email)
	if err != nil {
		return 0, fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return int(id), nil
}
