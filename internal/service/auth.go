// Package service provides the marker service's business logic, delegating
// persistence to repository interfaces.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atinyakov/MapKeeper/internal/auth"
	"github.com/atinyakov/MapKeeper/internal/models"
	"github.com/atinyakov/MapKeeper/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthRepository defines the persistence operations
// required by the authentication service.
type AuthRepository interface {
	// CreateUser inserts a user; repository.ErrDuplicate on an existing email.
	CreateUser(ctx context.Context, user *models.User) error
	// GetUserByEmail returns repository.ErrNotFound for an unknown email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// CreateSession records an issued token.
	CreateSession(ctx context.Context, s models.Session) error
	// SessionActive reports whether the session may still be used.
	SessionActive(ctx context.Context, id string) (bool, error)
	// RevokeSession ends a session; repository.ErrNotFound if it is not active.
	RevokeSession(ctx context.Context, id string) error
}

// AuthService implements sign-up, sign-in, sign-out and token authorization.
type AuthService struct {
	repo   AuthRepository
	tokens *auth.TokenManager
	log    *zap.Logger
	now    func() time.Time
}

// NewAuthService constructs an AuthService.
func NewAuthService(repo AuthRepository, tokens *auth.TokenManager, log *zap.Logger) *AuthService {
	return &AuthService{repo: repo, tokens: tokens, log: log, now: time.Now}
}

// SignUp creates the account and opens a session for it straight away.
func (s *AuthService) SignUp(ctx context.Context, email, password string) (*models.AuthUser, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, auth.ErrMissingCredentials
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, auth.ErrEmailExists
		}
		return nil, err
	}

	s.log.Info("user registered", zap.String("user_id", user.ID))
	return s.openSession(ctx, user)
}

// SignIn verifies the password and opens a new session.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*models.AuthUser, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, auth.ErrMissingCredentials
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, auth.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		return nil, err
	}

	return s.openSession(ctx, user)
}

// SignOut revokes the session the token belongs to.
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return err
	}
	if err := s.repo.RevokeSession(ctx, claims.SessionID()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return auth.ErrInvalidToken
		}
		return err
	}
	s.log.Info("user signed out", zap.String("user_id", claims.UserID))
	return nil
}

// Authorize validates the token and checks that its session is still active.
func (s *AuthService) Authorize(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, err
	}
	active, err := s.repo.SessionActive(ctx, claims.SessionID())
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, auth.ErrInvalidToken
	}
	return claims, nil
}

func (s *AuthService) openSession(ctx context.Context, user *models.User) (*models.AuthUser, error) {
	token, claims, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	session := models.Session{
		ID:        claims.SessionID(),
		UserID:    user.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	return &models.AuthUser{
		ID:          user.ID,
		Email:       user.Email,
		AccessToken: token,
		ExpiresAt:   session.ExpiresAt.Unix(),
	}, nil
}
