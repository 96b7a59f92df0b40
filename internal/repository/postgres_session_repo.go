package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/dda/internal/model"
)

// PostgresSessionRepo is the PostgreSQL SessionRepository.
type PostgresSessionRepo struct {
	db *sql.DB
}

// NewPostgresSessionRepo returns a PostgresSessionRepo.
func NewPostgresSessionRepo(db *sql.DB) *PostgresSessionRepo {
	return &PostgresSessionRepo{db: db}
}

// FindByToken returns the session stored under token regardless of expiry.
// Expiry is decided by the caller so that it can delete what it observes.
func (r *PostgresSessionRepo) FindByToken(ctx context.Context, token string) (*model.Session, error) {
	session := &model.Session{}
	err := r.db.QueryRowContext(ctx,
		`SELECT token, user_id, expires_at FROM session_tokens WHERE token = $1`,
		token,
	).Scan(&session.Token, &session.UserID, &session.ExpiresAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	return session, nil
}

// Replace removes the user's current session and inserts session in one transaction.
// Two concurrent replacements for the same user leave exactly one row; the last writer wins.
func (r *PostgresSessionRepo) Replace(ctx context.Context, session *model.Session) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM session_tokens WHERE user_id = $1`,
		session.UserID,
	); err != nil {
		return fmt.Errorf("failed to delete previous session: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO session_tokens (token, user_id, expires_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO UPDATE SET token = EXCLUDED.token, expires_at = EXCLUDED.expires_at`,
		session.Token, session.UserID, session.ExpiresAt,
	); err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteByToken removes the session stored under token.
func (r *PostgresSessionRepo) DeleteByToken(ctx context.Context, token string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM session_tokens WHERE token = $1`,
		token,
	); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteByUserID removes the user's session and returns the deleted row, or nil.
func (r *PostgresSessionRepo) DeleteByUserID(ctx context.Context, userID string) (*model.Session, error) {
	session := &model.Session{}
	err := r.db.QueryRowContext(ctx,
		`DELETE FROM session_tokens WHERE user_id = $1 RETURNING token, user_id, expires_at`,
		userID,
	).Scan(&session.Token, &session.UserID, &session.ExpiresAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete user session: %w", err)
	}
	return session, nil
}

// compile-time interface check
var _ SessionRepository = (*PostgresSessionRepo)(nil)
