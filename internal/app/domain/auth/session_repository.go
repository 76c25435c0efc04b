package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pcavaco/gatehouse/internal/app/models"
)

var _ SessionRepo = (*PostgresSessionRepo)(nil)

// SessionRepo maps opaque tokens to server-side session state in shared
// storage. Expired rows are treated as absent on read and physically removed
// by the janitor.
type SessionRepo interface {
	// Create stores a new session row.
	Create(ctx context.Context, session *models.Session) error
	// GetByToken returns the session for a token. Missing and expired
	// sessions both return models.ErrNotFound.
	GetByToken(ctx context.Context, token string) (*models.Session, error)
	// Delete removes the session row. Deleting an already-absent token is
	// not an error: the post-condition (token unreadable) holds either way.
	Delete(ctx context.Context, token string) error
	// DeleteExpired removes all rows past their expiry. Returns the number
	// of rows removed.
	DeleteExpired(ctx context.Context) (int64, error)
}

type PostgresSessionRepo struct {
	logger *slog.Logger
	pgpool *pgxpool.Pool
}

func NewPostgresSessionRepo(pgpool *pgxpool.Pool, logger *slog.Logger) *PostgresSessionRepo {
	return &PostgresSessionRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *PostgresSessionRepo) Create(ctx context.Context, session *models.Session) error {
	query := `INSERT INTO sessions (token, user_id, user_name, user_email, user_role, created_at, expires_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.pgpool.Exec(ctx, query,
		session.Token, session.UserID, session.UserName, session.UserEmail, session.UserRole,
		session.CreatedAt, session.ExpiresAt)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error storing session", slog.Any("error", err), slog.String("userID", session.UserID))
		return fmt.Errorf("database error storing session: %w", err)
	}
	return nil
}

func (r *PostgresSessionRepo) GetByToken(ctx context.Context, token string) (*models.Session, error) {
	var session models.Session
	query := `SELECT token, user_id, user_name, user_email, user_role, created_at, expires_at
	          FROM sessions WHERE token = $1`
	err := r.pgpool.QueryRow(ctx, query, token).Scan(
		&session.Token, &session.UserID, &session.UserName, &session.UserEmail, &session.UserRole,
		&session.CreatedAt, &session.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("session not found: %w", models.ErrNotFound)
		}
		r.logger.ErrorContext(ctx, "Error querying session", slog.Any("error", err))
		return nil, fmt.Errorf("database error fetching session: %w", err)
	}
	if session.Expired(time.Now()) {
		return nil, fmt.Errorf("session expired: %w", models.ErrNotFound)
	}
	return &session, nil
}

func (r *PostgresSessionRepo) Delete(ctx context.Context, token string) error {
	tag, err := r.pgpool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error deleting session", slog.Any("error", err))
		return fmt.Errorf("database error deleting session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		r.logger.WarnContext(ctx, "Session not found during delete")
	}
	return nil
}

func (r *PostgresSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.pgpool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= NOW()`)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error purging expired sessions", slog.Any("error", err))
		return 0, fmt.Errorf("database error purging sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
