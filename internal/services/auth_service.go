package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/classtrack/backend/internal/auth/service"
	"github.com/classtrack/backend/internal/models"
	"github.com/classtrack/backend/internal/repositories"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// RosterRepository is the interface that wraps methods for approval list data access
type RosterRepository interface {
	// Method FindByEmail retrieves an approval-list entry by email.
	//
	// If the email is not on the list, repositories.ErrRosterEntryNotFound is returned.
	FindByEmail(ctx context.Context, email string) (*models.RosterEntry, error)
	// Method ExistsByEmail checks if an email is on the approval list.
	//
	// If some error occurs during check, the error will be returned together with "false" value.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// UserRepository is the interface that wraps methods for User table data access
type UserRepository interface {
	// Method GetIDByEmail retrieves a user id by email.
	//
	// If no user exists for the email, repositories.ErrUserNotFound is returned.
	GetIDByEmail(ctx context.Context, email string) (int, error)
	// Method GetEmailByID retrieves a user email by id.
	GetEmailByID(ctx context.Context, userID int) (string, error)
	// Method Create inserts a new user identity and returns its id.
	Create(ctx context.Context, email string) (int, error)
}

// UserTokenRepository is the interface that wraps methods for refresh token data access
type UserTokenRepository interface {
	// Method Create inserts a new refresh token.
	Create(ctx context.Context, userToken *models.UserToken) error
	// Method GetByToken retrieves a refresh token record by token string.
	GetByToken(ctx context.Context, token string) (*models.UserToken, error)
	// Method UpdateToken replaces an old refresh token with a new one for a user.
	UpdateToken(ctx context.Context, oldToken, newToken string, userID int) error
	// Method DeleteByToken deletes a refresh token by token string.
	DeleteByToken(ctx context.Context, token string) error
	// Method DeleteByUserID deletes every refresh token of a user.
	DeleteByUserID(ctx context.Context, userID int) error
}

// MagicLinkRepository is the interface that wraps methods for one-time link data access
type MagicLinkRepository interface {
	// Method Create inserts a new magic link record.
	Create(ctx context.Context, link *models.MagicLink) error
	// Method GetLatestActiveByEmail retrieves the newest unconsumed, unexpired link for an email.
	GetLatestActiveByEmail(ctx context.Context, email string) (*models.MagicLink, error)
	// Method MarkConsumed marks a magic link as used so it cannot be replayed.
	MarkConsumed(ctx context.Context, id int) error
}

// MagicLinkEnqueuer is the interface that wraps the method for queueing sign-in emails
type MagicLinkEnqueuer interface {
	// Method EnqueueMagicLinkEmail queues a sign-in email for background delivery.
	EnqueueMagicLinkEmail(ctx context.Context, email, link string) error
}

// authService implements passwordless sign-in and session resolution
type authService struct {
	rosterRepo     RosterRepository
	userRepo       UserRepository
	userTokenRepo  UserTokenRepository
	magicLinkRepo  MagicLinkRepository
	enqueuer       MagicLinkEnqueuer
	tokenGenerator *service.TokenGenerator
	logger         *zap.Logger
	linkBaseURL    string
	linkExpiry     time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(
	rosterRepo RosterRepository,
	userRepo UserRepository,
	userTokenRepo UserTokenRepository,
	magicLinkRepo MagicLinkRepository,
	enqueuer MagicLinkEnqueuer,
	tokenGenerator *service.TokenGenerator,
	logger *zap.Logger,
	linkBaseURL string,
	linkExpiry time.Duration,
) *authService {
	return &authService{
		rosterRepo:     rosterRepo,
		userRepo:       userRepo,
		userTokenRepo:  userTokenRepo,
		magicLinkRepo:  magicLinkRepo,
		enqueuer:       enqueuer,
		tokenGenerator: tokenGenerator,
		logger:         logger,
		linkBaseURL:    linkBaseURL,
		linkExpiry:     linkExpiry,
	}
}

// emailRegex validates email format
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// RequestMagicLink creates a one-time sign-in link and queues the email.
// The response is identical whether or not the email is approved, so the
// endpoint cannot be used to probe the roster.
func (s *authService) RequestMagicLink(ctx context.Context, email string) error {
	normalizedEmail := strings.TrimSpace(strings.ToLower(email))
	if !emailRegex.MatchString(normalizedEmail) {
		return fmt.Errorf("invalid email format")
	}

	approved, err := s.rosterRepo.ExistsByEmail(ctx, normalizedEmail)
	if err != nil {
		return fmt.Errorf("failed to check email approval: %w", err)
	}
	if !approved {
		s.logger.Info("magic link requested for unapproved email", zap.String("email", normalizedEmail))
		return nil
	}

	token, err := generateLinkToken()
	if err != nil {
		return fmt.Errorf("failed to generate link token: %w", err)
	}

	// Only the hash is stored, a leaked table cannot be replayed into sessions
	tokenHash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash link token: %w", err)
	}

	link := &models.MagicLink{
		Email:     normalizedEmail,
		TokenHash: string(tokenHash),
		ExpiresAt: time.Now().Add(s.linkExpiry),
	}
	if err := s.magicLinkRepo.Create(ctx, link); err != nil {
		return fmt.Errorf("failed to store magic link: %w", err)
	}

	signInURL := fmt.Sprintf("%s?email=%s&token=%s",
		s.linkBaseURL, url.QueryEscape(normalizedEmail), url.QueryEscape(token))

	if err := s.enqueuer.EnqueueMagicLinkEmail(ctx, normalizedEmail, signInURL); err != nil {
		return fmt.Errorf("failed to enqueue sign-in email: %w", err)
	}

	return nil
}

// ConsumeMagicLink exchanges a valid one-time link for a token pair.
// The link is marked consumed before tokens are issued, replays of the
// same link fail even in a race.
func (s *authService) ConsumeMagicLink(ctx context.Context, email, token string) (*models.User, string, string, error) {
	normalizedEmail := strings.TrimSpace(strings.ToLower(email))

	link, err := s.magicLinkRepo.GetLatestActiveByEmail(ctx, normalizedEmail)
	if err != nil {
		if errors.Is(err, repositories.ErrMagicLinkNotFound) {
			return nil, "", "", ErrInvalidMagicLink
		}
		return nil, "", "", fmt.Errorf("failed to get magic link: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(link.TokenHash), []byte(token)); err != nil {
		return nil, "", "", ErrInvalidMagicLink
	}

	if err := s.magicLinkRepo.MarkConsumed(ctx, link.ID); err != nil {
		if errors.Is(err, repositories.ErrMagicLinkNotFound) {
			return nil, "", "", ErrInvalidMagicLink
		}
		return nil, "", "", fmt.Errorf("failed to consume magic link: %w", err)
	}

	// Approval is re-checked at consumption, a removal between request
	// and click still blocks the sign-in
	entry, err := s.rosterRepo.FindByEmail(ctx, normalizedEmail)
	if err != nil {
		if errors.Is(err, repositories.ErrRosterEntryNotFound) {
			return nil, "", "", ErrNotApproved
		}
		return nil, "", "", fmt.Errorf("failed to check email approval: %w", err)
	}

	userID, err := s.getOrCreateUser(ctx, normalizedEmail)
	if err != nil {
		return nil, "", "", err
	}

	accessToken, refreshToken, err := s.generateAndSaveTokens(ctx, userID, normalizedEmail)
	if err != nil {
		return nil, "", "", err
	}

	user := &models.User{
		ID:           userID,
		Email:        normalizedEmail,
		Name:         entry.Name,
		IsInstructor: entry.IsInstructor,
	}

	return user, accessToken, refreshToken, nil
}

// Refresh rotates a refresh token and issues a new access token
func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	refreshToken = strings.TrimSpace(refreshToken)

	userToken, err := s.userTokenRepo.GetByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repositories.ErrUserTokenNotFound) {
			return "", "", fmt.Errorf("invalid or expired refresh token")
		}
		return "", "", fmt.Errorf("failed to get user token by refresh token: %w", err)
	}

	if err := s.tokenGenerator.ValidateRefreshToken(refreshToken); err != nil {
		// Remove the stored token so an expired session cannot linger
		s.userTokenRepo.DeleteByToken(ctx, refreshToken)
		return "", "", fmt.Errorf("invalid or expired refresh token")
	}

	// The refresh token carries no identity, re-read the email for the new access token
	email, err := s.userRepo.GetEmailByID(ctx, userToken.UserID)
	if err != nil {
		return "", "", fmt.Errorf("failed to get user for refresh: %w", err)
	}

	accessToken, newRefreshToken, err := s.tokenGenerator.GenerateTokens(userToken.UserID, email)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate tokens: %w", err)
	}

	if err := s.userTokenRepo.UpdateToken(ctx, refreshToken, newRefreshToken, userToken.UserID); err != nil {
		return "", "", fmt.Errorf("failed to update refresh token: %w", err)
	}

	return accessToken, newRefreshToken, nil
}

// SignOut deletes the refresh token of the current session
func (s *authService) SignOut(ctx context.Context, refreshToken string) error {
	return s.userTokenRepo.DeleteByToken(ctx, strings.TrimSpace(refreshToken))
}

// ResolveSession checks the approval list for an authenticated user and
// returns the resolved profile. An email that fell off the list revokes
// every session of the user and returns ErrSessionRevoked.
func (s *authService) ResolveSession(ctx context.Context, userID int, email string) (*models.User, error) {
	entry, err := s.rosterRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrRosterEntryNotFound) {
			if delErr := s.userTokenRepo.DeleteByUserID(ctx, userID); delErr != nil {
				s.logger.Warn("failed to revoke sessions of removed user",
					zap.Int("userId", userID), zap.Error(delErr))
			}
			return nil, ErrSessionRevoked
		}
		return nil, fmt.Errorf("failed to check email approval: %w", err)
	}

	return &models.User{
		ID:           userID,
		Email:        email,
		Name:         entry.Name,
		IsInstructor: entry.IsInstructor,
	}, nil
}

// ResolveInstructor resolves the session and requires the instructor flag
func (s *authService) ResolveInstructor(ctx context.Context, userID int, email string) (*models.User, error) {
	user, err := s.ResolveSession(ctx, userID, email)
	if err != nil {
		return nil, err
	}
	if !user.IsInstructor {
		return nil, ErrNotInstructor
	}
	return user, nil
}

// getOrCreateUser returns the identity id for an email, creating it on first sign-in
func (s *authService) getOrCreateUser(ctx context.Context, email string) (int, error) {
	userID, err := s.userRepo.GetIDByEmail(ctx, email)
	if err == nil {
		return userID, nil
	}
	if !errors.Is(err, repositories.ErrUserNotFound) {
		return 0, err
	}

	userID, err = s.userRepo.Create(ctx, email)
	if err != nil {
		return 0, fmt.Errorf("failed to create user: %w", err)
	}
	return userID, nil
}

// generateAndSaveTokens issues a token pair and stores the refresh half
func (s *authService) generateAndSaveTokens(ctx context.Context, userID int, email string) (string, string, error) {
	accessToken, refreshToken, err := s.tokenGenerator.GenerateTokens(userID, email)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate tokens: %w", err)
	}

	userToken := &models.UserToken{
		UserID: userID,
		Token:  refreshToken,
	}
	if err := s.userTokenRepo.Create(ctx, userToken); err != nil {
		return "", "", fmt.Errorf("failed to save refresh token: %w", err)
	}

	return accessToken, refreshToken, nil
}

// generateLinkToken returns a 64 character hex token from a CSPRNG
func generateLinkToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
