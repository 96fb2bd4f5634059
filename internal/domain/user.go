package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents an authenticated application user.
// Timezone is an IANA name ("Europe/Berlin") used to compute local day
// boundaries for daily summaries; it defaults to UTC.
type User struct {
	ID           uuid.UUID
	Email        string
	DisplayName  string
	PasswordHash string
	Timezone     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Location resolves the user's timezone, falling back to UTC when the name
// is empty or unknown.
func (u User) Location() *time.Location {
	if u.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(u.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
