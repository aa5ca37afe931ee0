// Package sessions declares storage for signed-in sessions.
package sessions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/siteaccounts/internal/server/models"
)

// Repository issues, looks up and revokes sessions.
type Repository interface {
	// Create stores a session for userID expiring at now+validity.
	Create(ctx context.Context, id, userID string, validity time.Duration) error

	// Find returns common.ErrorNotFound when the session is absent.
	Find(ctx context.Context, id string) (*models.Session, error)

	// Delete revokes a session. Deleting an absent session is not an error.
	Delete(ctx context.Context, id string) error
}
