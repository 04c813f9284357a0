package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"github.com/andrecf/recipebox/app/observability/metrics"
	"github.com/andrecf/recipebox/config"
	"github.com/andrecf/recipebox/internal/api"
	"github.com/andrecf/recipebox/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service covers the account flows: registration with the pre-insert
// username check, and credential verification producing a session token.
type Service interface {
	// Register creates an account. Fails with api.ErrUsernameTaken when a
	// case-insensitive match exists and api.ErrPasswordMismatch when the
	// confirmation differs.
	Register(ctx context.Context, username, email, password, confirmPassword string) error

	// Login verifies credentials and returns a signed session token.
	// api.ErrUserNotFound and api.ErrBadCredentials are distinguished, as
	// the login form reports them differently.
	Login(ctx context.Context, username, password string) (string, error)
}

type ServiceImpl struct {
	logger *slog.Logger
	repo   Repository
	jwtCfg config.JWTConfig
}

func NewService(repo Repository, jwtCfg config.JWTConfig, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
		jwtCfg: jwtCfg,
	}
}

func (s *ServiceImpl) Register(ctx context.Context, username, email, password, confirmPassword string) error {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Register", trace.WithAttributes(
		attribute.String("user.name", username),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Register"), slog.String("username", username))

	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || password == "" {
		return api.ErrMissingCredentials
	}
	if password != confirmPassword {
		return api.ErrPasswordMismatch
	}

	// Pre-insert existence check. There is a race window here between the
	// check and the insert; the store carries no uniqueness constraint.
	_, err := s.repo.GetUserByUsername(ctx, username)
	if err == nil {
		l.WarnContext(ctx, "Username already taken")
		return api.ErrUsernameTaken
	}
	if !errors.Is(err, api.ErrUserNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to check existing username")
		return fmt.Errorf("error checking existing username: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if _, err = s.repo.CreateUser(ctx, username, email, string(hash)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create user")
		return fmt.Errorf("error creating user: %w", err)
	}

	l.InfoContext(ctx, "Account created")
	return nil
}

func (s *ServiceImpl) Login(ctx context.Context, username, password string) (string, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Login", trace.WithAttributes(
		attribute.String("user.name", username),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Login"), slog.String("username", username))
	metrics.Get().LoginRequestsTotal.Add(ctx, 1)

	user, err := s.repo.GetUserByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
	if err != nil {
		if errors.Is(err, api.ErrUserNotFound) {
			return "", err
		}
		span.RecordError(err)
		return "", fmt.Errorf("error fetching user: %w", err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		l.WarnContext(ctx, "Password verification failed")
		return "", api.ErrBadCredentials
	}

	token, err := s.generateSessionToken(user)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to sign session token")
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	l.InfoContext(ctx, "Login successful")
	return token, nil
}

// generateSessionToken signs the claims carried by the session cookie.
func (s *ServiceImpl) generateSessionToken(user *types.User) (string, error) {
	now := time.Now()
	claims := types.Claims{
		UserID:   user.ID.String(),
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    s.jwtCfg.Issuer,
			Audience:  jwt.ClaimStrings{s.jwtCfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtCfg.Expiry)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtCfg.SecretKey))
}
