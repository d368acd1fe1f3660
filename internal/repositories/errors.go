package repositories

import "errors"

// Sentinel errors returned by repositories for expected miss cases,
// so services can distinguish "not there" from a failing database.
var (
	ErrRosterEntryNotFound = errors.New("roster entry not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrUserTokenNotFound   = errors.New("user token not found")
	ErrMagicLinkNotFound   = errors.New("magic link not found")
)
