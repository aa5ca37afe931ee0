package codes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/siteaccounts/internal/common"
	"github.com/dmitrijs2005/siteaccounts/internal/dbx"
	"github.com/dmitrijs2005/siteaccounts/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.VerificationCode) error {
	query := `
		INSERT INTO verification_codes (code_hash, user_id, purpose, new_email, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.db.ExecContext(ctx, query, c.CodeHash, c.UserID, string(c.Purpose), c.NewEmail, c.ExpiresAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Find(ctx context.Context, codeHash string) (*models.VerificationCode, error) {
	query := `
		SELECT code_hash, user_id, purpose, new_email, expires_at
		FROM verification_codes
		WHERE code_hash = $1
	`
	c := &models.VerificationCode{}
	var purpose string
	err := r.db.QueryRowContext(ctx, query, codeHash).Scan(&c.CodeHash, &c.UserID, &purpose, &c.NewEmail, &c.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	c.Purpose = models.CodePurpose(purpose)
	return c, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, codeHash string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM verification_codes WHERE code_hash = $1`, codeHash); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteForUser(ctx context.Context, userID string, purpose models.CodePurpose) error {
	query := `DELETE FROM verification_codes WHERE user_id = $1 AND purpose = $2`
	if _, err := r.db.ExecContext(ctx, query, userID, string(purpose)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
