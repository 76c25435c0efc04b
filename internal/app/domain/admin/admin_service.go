package admin

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/pcavaco/gatehouse/internal/app/models"
	"github.com/pcavaco/gatehouse/internal/app/observability/metrics"
)

var _ AdminService = (*AdminServiceImpl)(nil)

// AdminService is role management. Route-level authorization (caller must be
// admin) is enforced by the gate middleware before these run; the service
// keeps only the business guards.
type AdminService interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	// Promote sets the target's role to admin. Promoting an admin is a no-op
	// in effect. Unknown targets return models.ErrNotFound.
	Promote(ctx context.Context, targetID string) error
	// Demote sets the target's role to user. A caller demoting their own
	// account is refused with models.ErrSelfDemotion so an admin cannot lock
	// themselves out.
	Demote(ctx context.Context, callerID, targetID string) error
}

// AdminServiceImpl provides the implementation for AdminService.
type AdminServiceImpl struct {
	logger *slog.Logger
	repo   AdminRepo
}

func NewAdminService(repo AdminRepo, logger *slog.Logger) *AdminServiceImpl {
	return &AdminServiceImpl{logger: logger, repo: repo}
}

func (s *AdminServiceImpl) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list users", slog.Any("error", err))
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

func (s *AdminServiceImpl) Promote(ctx context.Context, targetID string) error {
	l := s.logger.With(slog.String("method", "Promote"), slog.String("targetID", targetID))
	if err := s.repo.UpdateRole(ctx, targetID, models.RoleAdmin); err != nil {
		l.WarnContext(ctx, "Promote failed", slog.Any("error", err))
		return err
	}
	s.countRoleChange(ctx, "promote")
	l.InfoContext(ctx, "User promoted to admin")
	return nil
}

func (s *AdminServiceImpl) Demote(ctx context.Context, callerID, targetID string) error {
	l := s.logger.With(slog.String("method", "Demote"), slog.String("targetID", targetID))
	if callerID == targetID {
		l.WarnContext(ctx, "Self-demotion refused")
		return models.ErrSelfDemotion
	}
	if err := s.repo.UpdateRole(ctx, targetID, models.RoleUser); err != nil {
		l.WarnContext(ctx, "Demote failed", slog.Any("error", err))
		return err
	}
	s.countRoleChange(ctx, "demote")
	l.InfoContext(ctx, "User demoted to user")
	return nil
}

func (s *AdminServiceImpl) countRoleChange(ctx context.Context, op string) {
	metrics.Get().RoleChangesTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String("operation", op)))
}
