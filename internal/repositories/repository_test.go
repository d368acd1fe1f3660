package repositories

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

// setupRosterTestRepository creates a roster repository with a mock database
func setupRosterTestRepository(t *testing.T) (*rosterRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewRosterRepository(db)

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

// setupUserTestRepository creates a user repository with a mock database
func setupUserTestRepository(t *testing.T) (*userRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewUserRepository(db)

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

// setupUserTokenTestRepository creates a user token repository with a mock database
func setupUserTokenTestRepository(t *testing.T) (*userTokenRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewUserTokenRepository(db)

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

// setupMagicLinkTestRepository creates a magic link repository with a mock database
func setupMagicLinkTestRepository(t *testing.T) (*magicLinkRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewMagicLinkRepository(db)

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

// setupTaskTestRepository creates a task repository with a mock database
func setupTaskTestRepository(t *testing.T) (*taskRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewTaskRepository(db)

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

// setupProgressTestRepository creates a progress repository with a mock database
func setupProgressTestRepository(t *testing.T) (*progressRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewProgressRepository(db)

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}
