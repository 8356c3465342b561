package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mreynaud/go-storefront/internal/entity"
	"github.com/mreynaud/go-storefront/internal/repository/memory"
	"github.com/mreynaud/go-storefront/internal/session"
)

func newAccountService() (*AccountService, session.Store) {
	sessions := session.NewMemoryStore()
	return NewAccountService(memory.NewStore().Users(), sessions), sessions
}

func TestRegisterAndLogin(t *testing.T) {
	svc, sessions := newAccountService()
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.NotEqual(t, "s3cret", user.HashedPassword)

	logged, err := svc.Login(ctx, "sid", "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)

	bound, err := sessions.UserID(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, user.ID, bound)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newAccountService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "   ", "pw")
	assert.ErrorIs(t, err, entity.ErrInvalidInput)

	_, err = svc.Register(ctx, "bob", "")
	assert.ErrorIs(t, err, entity.ErrInvalidInput)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, _ := newAccountService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "pw1")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "pw2")
	assert.ErrorIs(t, err, entity.ErrUsernameTaken)
}

func TestLoginBadCredentials(t *testing.T) {
	svc, _ := newAccountService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "s3cret")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "sid", "alice", "wrong")
	assert.ErrorIs(t, err, entity.ErrInvalidCredentials)

	// Unknown usernames get the same error as wrong passwords.
	_, err = svc.Login(ctx, "sid", "nobody", "s3cret")
	assert.ErrorIs(t, err, entity.ErrInvalidCredentials)
}

func TestCurrentUser(t *testing.T) {
	svc, sessions := newAccountService()
	ctx := context.Background()

	// Guest session resolves to no user, no error.
	user, err := svc.CurrentUser(ctx, "sid")
	require.NoError(t, err)
	assert.Nil(t, user)

	registered, err := svc.Register(ctx, "alice", "s3cret")
	require.NoError(t, err)
	_, err = svc.Login(ctx, "sid", "alice", "s3cret")
	require.NoError(t, err)

	user, err = svc.CurrentUser(ctx, "sid")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, registered.ID, user.ID)

	require.NoError(t, svc.Logout(ctx, "sid"))
	user, err = svc.CurrentUser(ctx, "sid")
	require.NoError(t, err)
	assert.Nil(t, user)

	// A stale binding to a vanished account degrades to guest.
	require.NoError(t, sessions.BindUser(ctx, "sid", "gone"))
	user, err = svc.CurrentUser(ctx, "sid")
	require.NoError(t, err)
	assert.Nil(t, user)
}
