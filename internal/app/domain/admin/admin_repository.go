package admin

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pcavaco/gatehouse/internal/app/models"
)

var _ AdminRepo = (*PostgresAdminRepo)(nil)

// AdminRepo is the credential-store surface used by role management: listing
// accounts and mutating a single account's role.
type AdminRepo interface {
	// ListUsers returns all user records, oldest first.
	ListUsers(ctx context.Context) ([]models.User, error)
	// UpdateRole sets the role of the target user. Returns models.ErrNotFound
	// when the target does not exist.
	UpdateRole(ctx context.Context, userID, role string) error
}

type PostgresAdminRepo struct {
	logger *slog.Logger
	pgpool *pgxpool.Pool
}

func NewPostgresAdminRepo(pgpool *pgxpool.Pool, logger *slog.Logger) *PostgresAdminRepo {
	return &PostgresAdminRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func (r *PostgresAdminRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	query, args, err := psql.
		Select("id", "name", "email", "role", "created_at", "updated_at").
		From("users").
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building user list query: %w", err)
	}

	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error listing users", slog.Any("error", err))
		return nil, fmt.Errorf("database error listing users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating user rows: %w", err)
	}
	return users, nil
}

// UpdateRole mutates a single row; the write is atomic at the storage layer,
// which is the only serialization concurrent promote/demote calls get.
func (r *PostgresAdminRepo) UpdateRole(ctx context.Context, userID, role string) error {
	query, args, err := psql.
		Update("users").
		Set("role", role).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building role update query: %w", err)
	}

	tag, err := r.pgpool.Exec(ctx, query, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error updating role", slog.Any("error", err), slog.String("userID", userID))
		return fmt.Errorf("database error updating role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user with ID %s not found: %w", userID, models.ErrNotFound)
	}
	return nil
}
