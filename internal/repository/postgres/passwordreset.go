package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/gulfcoastprop/platform/internal/apperrors"
	"github.com/gulfcoastprop/platform/internal/models"
)

type PasswordResetRepo struct {
	DB DBTX
}

const upsertReset = `-- name: UpsertPasswordReset
INSERT INTO password_resets (email, token, created_at, expires_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (email) DO UPDATE
SET token = EXCLUDED.token,
    created_at = EXCLUDED.created_at,
    expires_at = EXCLUDED.expires_at
RETURNING email, token, created_at, expires_at
`

// Upsert keyed by email: the store constraint serializes concurrent
// requests, the previous token for the email is replaced in place.
func (r *PasswordResetRepo) Upsert(ctx context.Context, reset models.PasswordReset) (models.PasswordReset, error) {
	rows, _ := r.DB.Query(ctx, upsertReset, reset.Email, reset.Token, reset.CreatedAt, reset.ExpiresAt)
	saved, err := pgx.CollectOneRow(rows, rowToPasswordReset)
	if err != nil {
		return saved, fmt.Errorf("db error: %w", err)
	}
	return saved, nil
}

const getResetByToken = `-- name: GetPasswordResetByToken
SELECT email, token, created_at, expires_at
FROM password_resets
WHERE token = $1
`

func (r *PasswordResetRepo) GetByToken(ctx context.Context, tokenString string) (models.PasswordReset, error) {
	rows, _ := r.DB.Query(ctx, getResetByToken, tokenString)
	reset, err := pgx.CollectOneRow(rows, rowToPasswordReset)

	switch {
	case err == nil:
		return reset, nil
	case errors.Is(err, pgx.ErrNoRows):
		return reset, apperrors.ErrResetTokenInvalid
	default:
		return reset, fmt.Errorf("db error: %w", err)
	}
}

const deleteResetByToken = `-- name: DeletePasswordResetByToken
DELETE FROM password_resets
WHERE token = $1
`

func (r *PasswordResetRepo) DeleteByToken(ctx context.Context, tokenString string) error {
	_, err := r.DB.Exec(ctx, deleteResetByToken, tokenString)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func rowToPasswordReset(row pgx.CollectableRow) (models.PasswordReset, error) {
	var p models.PasswordReset
	err := row.Scan(&p.Email, &p.Token, &p.CreatedAt, &p.ExpiresAt)
	return p, err
}
