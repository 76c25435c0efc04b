package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pcavaco/gatehouse/internal/app/models"
)

var _ AuthRepo = (*PostgresAuthRepo)(nil)

// AuthRepo is the credential store: persisted user records looked up during
// signup and login.
type AuthRepo interface {
	// GetUserByEmail fetches a user (including the password hash) by
	// normalized email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUserByID fetches a user by ID.
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	// CreateUser stores a new user with a HASHED password and role "user".
	// Returns models.ErrConflict when the email is already registered.
	CreateUser(ctx context.Context, name, email, hashedPassword string) (*models.User, error)
}

type PostgresAuthRepo struct {
	logger *slog.Logger
	pgpool *pgxpool.Pool
}

func NewPostgresAuthRepo(pgpool *pgxpool.Pool, logger *slog.Logger) *PostgresAuthRepo {
	return &PostgresAuthRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

// NormalizeEmail lowercases and trims an email address. All storage and
// lookups go through this so that case differences never produce duplicates.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *PostgresAuthRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	query := `SELECT id, name, email, password_hash, role, created_at, updated_at FROM users WHERE email = $1`
	err := r.pgpool.QueryRow(ctx, query, NormalizeEmail(email)).Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user with email %s not found: %w", email, models.ErrNotFound)
		}
		r.logger.ErrorContext(ctx, "Error fetching user by email", slog.Any("error", err), slog.String("email", email))
		return nil, fmt.Errorf("database error fetching user: %w", err)
	}
	return &user, nil
}

func (r *PostgresAuthRepo) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	query := `SELECT id, name, email, password_hash, role, created_at, updated_at FROM users WHERE id = $1`
	err := r.pgpool.QueryRow(ctx, query, userID).Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user with ID %s not found: %w", userID, models.ErrNotFound)
		}
		r.logger.ErrorContext(ctx, "Error fetching user by ID", slog.Any("error", err), slog.String("userID", userID))
		return nil, fmt.Errorf("database error fetching user by ID: %w", err)
	}
	return &user, nil
}

// CreateUser implements auth.AuthRepo. Expects a HASHED password. The unique
// index on users.email is the source of truth for duplicates; a concurrent
// signup that slips past the service-level pre-check is caught here.
func (r *PostgresAuthRepo) CreateUser(ctx context.Context, name, email, hashedPassword string) (*models.User, error) {
	var user models.User
	query := `INSERT INTO users (name, email, password_hash, role, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $5)
	          RETURNING id, name, email, password_hash, role, created_at, updated_at`
	err := r.pgpool.QueryRow(ctx, query, name, NormalizeEmail(email), hashedPassword, models.RoleUser, time.Now()).Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("email already registered: %w", models.ErrConflict)
		}
		r.logger.ErrorContext(ctx, "Error inserting user", slog.Any("error", err), slog.String("email", email))
		return nil, fmt.Errorf("database error registering user: %w", err)
	}
	r.logger.InfoContext(ctx, "User registered", slog.String("userID", user.ID))
	return &user, nil
}
