package service

import (
	"context"
	"testing"

	"dms-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestLoginPlaintextSeededAdmin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	assert.False(t, f.svc.Auth.IsAuthenticated(ctx))

	user, err := f.svc.Auth.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, "1", user.ID)

	assert.True(t, f.svc.Auth.IsAuthenticated(ctx))
	assert.True(t, f.svc.Auth.HasRole(ctx, models.RoleSales, models.RoleAdmin))
	assert.False(t, f.svc.Auth.HasRole(ctx, models.RoleSales))

	f.svc.Auth.Logout(ctx)
	assert.Nil(t, f.svc.Auth.CurrentUser(ctx))
	assert.False(t, f.svc.Auth.HasRole(ctx, models.RoleAdmin))
}

func TestLoginBcryptPassword(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, f.store.Repos.Users.Create(ctx, models.User{
		ID: "2", Username: "sara", Password: string(hash), Role: models.RoleSales,
	}))

	_, err = f.svc.Auth.Login(ctx, "sara", string(hash))
	assert.ErrorIs(t, err, ErrInvalidCredentials, "the hash itself is not a password")

	user, err := f.svc.Auth.Login(ctx, "sara", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, models.RoleSales, user.Role)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Auth.Login(ctx, "admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.svc.Auth.Login(ctx, "ghost", "admin123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.False(t, f.svc.Auth.IsAuthenticated(ctx))
}

func TestLoginExternalMapsRole(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	user, err := f.svc.Auth.LoginExternal(ctx, ExternalIdentity{ID: "ext-1", Email: "owner@example.com", Role: "Owner"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.Equal(t, "owner@example.com", user.Username)
	assert.Equal(t, "Authenticated User", user.FullName)

	user, err = f.svc.Auth.LoginExternal(ctx, ExternalIdentity{ID: "ext-2", Email: "stock@example.com", Role: models.RoleInventoryManager})
	require.NoError(t, err)
	assert.Equal(t, models.RoleInventoryManager, f.svc.Auth.CurrentUser(ctx).Role)
	_, found := f.store.Repos.Users.FindByID(ctx, "ext-2")
	assert.False(t, found, "external users are not stored")

	_, err = f.svc.Auth.LoginExternal(ctx, ExternalIdentity{})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPasswordMatches(t *testing.T) {
	hash, err := HashPassword("pw")
	require.NoError(t, err)

	assert.True(t, PasswordMatches(hash, "pw"))
	assert.False(t, PasswordMatches(hash, "nope"))
	assert.True(t, PasswordMatches("plain", "plain"))
	assert.False(t, PasswordMatches("", ""))
}
