package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/mreynaud/go-storefront/internal/credentials"
	"github.com/mreynaud/go-storefront/internal/entity"
	"github.com/mreynaud/go-storefront/internal/repository"
	"github.com/mreynaud/go-storefront/internal/session"
)

// AccountService handles registration, login and session-user resolution.
type AccountService struct {
	users    repository.UserRepository
	sessions session.Store
}

func NewAccountService(users repository.UserRepository, sessions session.Store) *AccountService {
	return &AccountService{users: users, sessions: sessions}
}

func (s *AccountService) Register(ctx context.Context, username, password string) (*entity.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", entity.ErrInvalidInput)
	}

	digest, err := credentials.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		ID:             uuid.NewString(),
		Username:       username,
		HashedPassword: digest,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	slog.Info("User registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Login verifies the credentials and binds the user to the session.
func (s *AccountService) Login(ctx context.Context, sid, username, password string) (*entity.User, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, entity.ErrNotFound) {
		return nil, entity.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !credentials.Verify(password, user.HashedPassword) {
		return nil, entity.ErrInvalidCredentials
	}

	if err := s.sessions.BindUser(ctx, sid, user.ID); err != nil {
		return nil, fmt.Errorf("failed to bind session: %w", err)
	}

	slog.Info("User logged in", "user_id", user.ID)
	return user, nil
}

func (s *AccountService) Logout(ctx context.Context, sid string) error {
	return s.sessions.UnbindUser(ctx, sid)
}

// CurrentUser resolves the session's user. Guests yield (nil, nil).
func (s *AccountService) CurrentUser(ctx context.Context, sid string) (*entity.User, error) {
	userID, err := s.sessions.UserID(ctx, sid)
	if err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, nil
	}

	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, entity.ErrNotFound) {
		// The account vanished under a live session; treat as guest.
		return nil, nil
	}
	return user, err
}
