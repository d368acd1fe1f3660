package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/classtrack/backend/internal/models"
)

// magicLinkRepository implements data access for one-time sign-in links
type magicLinkRepository struct {
	db *sql.DB
}

// NewMagicLinkRepository creates a new magic link repository
func NewMagicLinkRepository(db *sql.DB) *magicLinkRepository {
	return &magicLinkRepository{
		db: db,
	}
}

// Create inserts a new magic link record
func (r *magicLinkRepository) Create(ctx context.Context, link *models.MagicLink) error {
	query := `
		INSERT INTO magic_links (email, token_hash, expires_at)
		VALUES (?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, link.Email, link.TokenHash, link.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to create magic link: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	link.ID = int(id)
	return nil
}

// GetLatestActiveByEmail retrieves the newest unconsumed, unexpired link for an email
func (r *magicLinkRepository) GetLatestActiveByEmail(ctx context.Context, email string) (*models.MagicLink, error) {
	query := `
		SELECT id, email, token_hash, expires_at
		FROM magic_links
		WHERE email = ? AND consumed_at IS NULL AND expires_at > NOW()
		ORDER BY id DESC
		LIMIT 1
	`

	link := &models.MagicLink{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&link.ID,
		&link.Email,
		&link.TokenHash,
		&link.ExpiresAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMagicLinkNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get magic link: %w", err)
	}

	return link, nil
}

// MarkConsumed marks a magic link as used so it cannot be replayed
func (r *magicLinkRepository) MarkConsumed(ctx context.Context, id int) error {
	query := `
		UPDATE magic_links
		SET consumed_at = NOW()
		WHERE id = ? AND consumed_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark magic link consumed: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrMagicLinkNotFound
	}

	return nil
}

// PurgeExpired deletes expired and consumed links, returning the rows removed
func (r *magicLinkRepository) PurgeExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM magic_links WHERE expires_at < NOW() OR consumed_at IS NOT NULL`

	result, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to purge magic links: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}
