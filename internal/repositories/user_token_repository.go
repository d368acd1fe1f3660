package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/classtrack/backend/internal/models"
)

// userTokenRepository implements data access for refresh tokens
type userTokenRepository struct {
	db *sql.DB
}

// NewUserTokenRepository creates a new user token repository
func NewUserTokenRepository(db *sql.DB) *userTokenRepository {
	return &userTokenRepository{
		db: db,
	}
}

// Create inserts a new refresh token
func (r *userTokenRepository) Create(ctx context.Context, userToken *models.UserToken) error {
	query := `
		INSERT INTO user_tokens (user_id, token)
		VALUES (?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, userToken.UserID, userToken.Token)
	if err != nil {
		return fmt.Errorf("failed to create user token: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	userToken.ID = int(id)
	return nil
}

// GetByToken retrieves a refresh token record by token string
func (r *userTokenRepository) GetByToken(ctx context.Context, token string) (*models.UserToken, error) {
	query := `
		SELECT id, user_id, token
		FROM user_tokens
		WHERE token = ?
	`

	userToken := &models.UserToken{}
	err := r.db.QueryRowContext(ctx, query, token).Scan(
		&userToken.ID,
		&userToken.UserID,
		&userToken.Token,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user token: %w", err)
	}

	return userToken, nil
}

// UpdateToken replaces an old refresh token with a new one for a user
func (r *userTokenRepository) UpdateToken(ctx context.Context, oldToken, newToken string, userID int) error {
	query := `
		UPDATE user_tokens
		SET token = ?
		WHERE token = ? AND user_id = ?
	`

	_, err := r.db.ExecContext(ctx, query, newToken, oldToken, userID)
	if err != nil {
		return fmt.Errorf("failed to update user token: %w", err)
	}

	return nil
}

// DeleteByToken deletes a refresh token by token string.
// Deleting an already-absent token is not an error.
func (r *userTokenRepository) DeleteByToken(ctx context.Context, token string) error {
	query := `DELETE FROM user_tokens WHERE token = ?`

	_, err := r.db.ExecContext(ctx, query, token)
	if err != nil {
		return fmt.Errorf("failed to delete user token: %w", err)
	}

	return nil
}

// DeleteByUserID deletes every refresh token of a user.
// Used to force sign-out when an email falls off the approval list.
func (r *userTokenRepository) DeleteByUserID(ctx context.Context, userID int) error {
	query := `DELETE FROM user_tokens WHERE user_id = ?`

	_, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user tokens: %w", err)
	}

	return nil
}

// PurgeOlderThan deletes refresh tokens created before the cutoff
func (r *userTokenRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM user_tokens WHERE created_at < ?`

	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge user tokens: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}
