package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/classtrack/backend/internal/models"
	"go.uber.org/zap"
)

// RosterAdminRepository is the interface that wraps methods for approval list management
type RosterAdminRepository interface {
	// Method GetAll retrieves every approval-list entry ordered by name.
	GetAll(ctx context.Context) ([]models.RosterEntry, error)
	// Method Upsert inserts or updates an approval-list entry keyed by email.
	Upsert(ctx context.Context, entry *models.RosterEntry) error
	// Method Delete removes an approval-list entry.
	//
	// If the email is not on the list, repositories.ErrRosterEntryNotFound is returned.
	Delete(ctx context.Context, email string) error
}

// rosterService implements approval list management for instructors
type rosterService struct {
	rosterRepo RosterAdminRepository
	logger     *zap.Logger
}

// NewRosterService creates a new roster service
func NewRosterService(rosterRepo RosterAdminRepository, logger *zap.Logger) *rosterService {
	return &rosterService{
		rosterRepo: rosterRepo,
		logger:     logger,
	}
}

// ListStudents retrieves the full approval list
func (s *rosterService) ListStudents(ctx context.Context) ([]models.RosterEntry, error) {
	entries, err := s.rosterRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	if entries == nil {
		entries = []models.RosterEntry{}
	}
	return entries, nil
}

// AddStudent approves an email. An email already on the list has its name
// and instructor flag updated instead of failing.
func (s *rosterService) AddStudent(ctx context.Context, entry *models.RosterEntry) error {
	entry.Email = strings.TrimSpace(strings.ToLower(entry.Email))
	entry.Name = strings.TrimSpace(entry.Name)

	if !emailRegex.MatchString(entry.Email) {
		return fmt.Errorf("invalid email format")
	}
	if entry.Name == "" {
		return fmt.Errorf("name cannot be empty")
	}

	if err := s.rosterRepo.Upsert(ctx, entry); err != nil {
		return fmt.Errorf("failed to add student: %w", err)
	}

	s.logger.Info("roster entry upserted",
		zap.String("email", entry.Email), zap.Bool("isInstructor", entry.IsInstructor))
	return nil
}

// RemoveStudent takes an email off the approval list. Completion history is
// kept; the student loses access on their next session check but their rows
// survive a re-approval.
func (s *rosterService) RemoveStudent(ctx context.Context, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	if err := s.rosterRepo.Delete(ctx, email); err != nil {
		return err
	}

	s.logger.Info("roster entry removed", zap.String("email", email))
	return nil
}
