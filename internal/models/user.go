package models

import "time"

// User represents a signed-in, roster-approved identity.
// It exists only for the duration of a request; nothing user-shaped is cached.
type User struct {
	ID           int    `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	IsInstructor bool   `json:"isInstructor"`
}

// UserToken represents a stored refresh token
type UserToken struct {
	ID     int    `json:"id"`
	UserID int    `json:"userId"`
	Token  string `json:"-"` // Never serialize the token
}

// MagicLink represents a pending one-time sign-in link.
// Only a bcrypt hash of the token is stored.
type MagicLink struct {
	ID         int        `json:"id"`
	Email      string     `json:"email"`
	TokenHash  string     `json:"-"`
	ExpiresAt  time.Time  `json:"expiresAt"`
	ConsumedAt *time.Time `json:"consumedAt,omitempty"`
}
