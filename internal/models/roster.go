package models

// RosterEntry is an approval-list record. The email gates sign-in,
// IsInstructor gates the dashboard. Removing an entry revokes future
// login but never touches the student's progress history.
type RosterEntry struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	IsInstructor bool   `json:"isInstructor"`
}
