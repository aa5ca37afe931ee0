// Package codes declares storage for mailed single-use codes.
package codes

import (
	"context"

	"github.com/dmitrijs2005/siteaccounts/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, code *models.VerificationCode) error
	// Find returns common.ErrorNotFound for unknown digests.
	Find(ctx context.Context, codeHash string) (*models.VerificationCode, error)
	Delete(ctx context.Context, codeHash string) error
	// DeleteForUser drops every pending code of userID with the given purpose,
	// so only the newest mail works.
	DeleteForUser(ctx context.Context, userID string, purpose models.CodePurpose) error
}
