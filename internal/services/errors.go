package services

import "errors"

// Errors that handlers map to specific HTTP statuses.
var (
	ErrNotApproved      = errors.New("email is not on the approval list")
	ErrInvalidMagicLink = errors.New("invalid or expired sign-in link")
	ErrSessionRevoked   = errors.New("session revoked")
	ErrToggleInFlight   = errors.New("toggle already in flight for this task")
	ErrNotInstructor    = errors.New("instructor access required")
)
