package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"github.com/pcavaco/gatehouse/internal/app/models"
	"github.com/pcavaco/gatehouse/internal/app/observability/metrics"
	"github.com/pcavaco/gatehouse/internal/pkg/config"
)

var _ AuthService = (*AuthServiceImpl)(nil)

// AuthService is the authentication flow: signup, login, logout and the
// per-request token-to-session lookup used by the authorization gate.
type AuthService interface {
	// Signup creates a user with role "user" and starts a session for it.
	// Returns models.ErrConflict when the email is already registered.
	Signup(ctx context.Context, name, email, password string) (*models.Session, error)
	// Login verifies credentials and starts a session. An unknown email and
	// a wrong password are indistinguishable: both return
	// models.ErrUnauthenticated.
	Login(ctx context.Context, email, password string) (*models.Session, error)
	// Logout destroys the session for the token. A failure is surfaced, not
	// swallowed: the caller must not treat the client as logged out.
	Logout(ctx context.Context, token string) error
	// SessionFromToken resolves a cookie token to its session snapshot.
	SessionFromToken(ctx context.Context, token string) (*models.Session, error)
}

// AuthServiceImpl provides the implementation for AuthService.
type AuthServiceImpl struct {
	logger   *slog.Logger
	users    AuthRepo
	sessions SessionRepo
	cfg      *config.Config
}

func NewAuthService(users AuthRepo, sessions SessionRepo, cfg *config.Config, logger *slog.Logger) *AuthServiceImpl {
	return &AuthServiceImpl{logger: logger, users: users, sessions: sessions, cfg: cfg}
}

// Signup hashes the password and inserts the new user. The GetUserByEmail
// pre-check is a fast path only; the unique index in the credential store is
// what actually serializes concurrent signups with the same email.
func (s *AuthServiceImpl) Signup(ctx context.Context, name, email, password string) (*models.Session, error) {
	l := s.logger.With(slog.String("method", "Signup"), slog.String("email", email))
	l.DebugContext(ctx, "Attempting signup")

	tracer := otel.Tracer("gatehouse")
	ctx, span := tracer.Start(ctx, "AuthService.Signup", trace.WithAttributes(
		attribute.String("email", email),
	))
	defer span.End()

	email = NormalizeEmail(email)

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		l.WarnContext(ctx, "Signup rejected, email already registered")
		span.SetStatus(codes.Error, "Email conflict")
		return nil, fmt.Errorf("email already registered: %w", models.ErrConflict)
	} else if !errors.Is(err, models.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database error")
		return nil, fmt.Errorf("checking existing user: %w", err)
	}

	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		l.ErrorContext(ctx, "Failed to hash password", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Password hashing failed")
		return nil, fmt.Errorf("could not process password")
	}

	user, err := s.users.CreateUser(ctx, name, email, string(hashedPasswordBytes))
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			// Lost the check-then-insert race; same outcome as the fast path.
			l.WarnContext(ctx, "Signup rejected by unique constraint")
			span.SetStatus(codes.Error, "Email conflict")
			return nil, err
		}
		l.ErrorContext(ctx, "Repository registration failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Repository registration failed")
		return nil, fmt.Errorf("registration failed: %w", err)
	}

	session, err := s.createSession(ctx, user)
	if err != nil {
		l.ErrorContext(ctx, "Failed to create session after signup", slog.String("userID", user.ID), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Session creation failed")
		return nil, fmt.Errorf("internal error storing session: %w", err)
	}

	l.InfoContext(ctx, "Signup successful", slog.String("userID", user.ID))
	span.SetStatus(codes.Ok, "User registered")
	return session, nil
}

// Login validates credentials against the credential store.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*models.Session, error) {
	l := s.logger.With(slog.String("method", "Login"), slog.String("email", email))
	l.DebugContext(ctx, "Attempting login")

	user, err := s.users.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// Same error as a wrong password so account existence is not
			// revealed.
			l.WarnContext(ctx, "Login failed, unknown email")
			return nil, fmt.Errorf("invalid credentials: %w", models.ErrUnauthenticated)
		}
		l.ErrorContext(ctx, "GetUserByEmail failed", slog.Any("error", err))
		return nil, fmt.Errorf("internal error fetching user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		l.WarnContext(ctx, "Password comparison failed", slog.String("userID", user.ID))
		return nil, fmt.Errorf("invalid credentials: %w", models.ErrUnauthenticated)
	}

	session, err := s.createSession(ctx, user)
	if err != nil {
		l.ErrorContext(ctx, "Failed to create session", slog.String("userID", user.ID), slog.Any("error", err))
		return nil, fmt.Errorf("internal error storing session: %w", err)
	}

	l.InfoContext(ctx, "Login successful", slog.String("userID", user.ID))
	return session, nil
}

// Logout destroys the session row for the token.
func (s *AuthServiceImpl) Logout(ctx context.Context, token string) error {
	l := s.logger.With(slog.String("method", "Logout"))
	l.DebugContext(ctx, "Attempting logout")
	if err := s.sessions.Delete(ctx, token); err != nil {
		l.ErrorContext(ctx, "Failed to delete session", slog.Any("error", err))
		return fmt.Errorf("logout failed: %w", err)
	}
	metrics.Get().SessionsActive.Add(ctx, -1)
	l.InfoContext(ctx, "Logout successful")
	return nil
}

func (s *AuthServiceImpl) SessionFromToken(ctx context.Context, token string) (*models.Session, error) {
	return s.sessions.GetByToken(ctx, token)
}

// createSession copies the user record into a new session row. The copy is
// intentional: role changes after login do not affect issued sessions until
// the next login.
func (s *AuthServiceImpl) createSession(ctx context.Context, user *models.User) (*models.Session, error) {
	now := time.Now()
	session := &models.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		UserName:  user.Name,
		UserEmail: user.Email,
		UserRole:  user.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(s.getSessionTTL()),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	metrics.Get().SessionsActive.Add(ctx, 1)
	return session, nil
}

func (s *AuthServiceImpl) getSessionTTL() time.Duration {
	if s.cfg != nil && s.cfg.Session.TTL > 0 {
		return s.cfg.Session.TTL
	}
	s.logger.Warn("Session TTL not configured, using default 24h")
	return 24 * time.Hour
}
