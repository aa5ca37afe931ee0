// Package users declares the backend's account storage.
package users

import (
	"context"

	"github.com/dmitrijs2005/siteaccounts/internal/server/models"
)

// Repository stores accounts. Lookups return common.ErrorNotFound for
// unknown users; Create and UpdateEmail return common.ErrorAlreadyExists
// when the email belongs to another account.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	MarkEmailVerified(ctx context.Context, id string) error
	UpdateEmail(ctx context.Context, id, email string) error
	UpdatePasswordHash(ctx context.Context, id, hash string) error
}
