package models

import "time"

// Session is a signed-in device. Tokens name it by ID; signing out deletes it.
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
