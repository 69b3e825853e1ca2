package bookshelf_test

import (
	"context"
	"testing"

	bookshelf "github.com/goliatone/go-bookshelf"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestUserProviderVerifyIdentity(t *testing.T) {
	ctx := context.Background()

	store := newFakeUsers()
	provider := bookshelf.NewUserProvider(store)

	userID := uuid.New()
	passwordHash, err := bookshelf.HashPassword("password123")
	assert.NoError(t, err)

	_, err = store.CreateTx(ctx, nil, &bookshelf.User{
		ID:           userID,
		Username:     "testuser",
		PasswordHash: passwordHash,
		Role:         bookshelf.RoleAdmin,
	})
	assert.NoError(t, err)

	t.Run("successful verification", func(t *testing.T) {
		identity, err := provider.VerifyIdentity(ctx, "testuser", "password123")

		assert.NoError(t, err)
		assert.NotNil(t, identity)
		assert.Equal(t, userID.String(), identity.ID())
		assert.Equal(t, "testuser", identity.Username())
		assert.Equal(t, "admin", identity.Role())
	})

	t.Run("wrong password", func(t *testing.T) {
		identity, err := provider.VerifyIdentity(ctx, "testuser", "wrong_password")

		assert.Error(t, err)
		assert.Nil(t, identity)
		assert.ErrorIs(t, err, bookshelf.ErrMismatchedHashAndPassword)
	})

	t.Run("unknown username", func(t *testing.T) {
		identity, err := provider.VerifyIdentity(ctx, "nobody", "password123")

		assert.Error(t, err)
		assert.Nil(t, identity)
		assert.ErrorIs(t, err, bookshelf.ErrMismatchedHashAndPassword)
	})

	t.Run("unknown username and wrong password are indistinguishable", func(t *testing.T) {
		_, unknownErr := provider.VerifyIdentity(ctx, "nobody", "password123")
		_, wrongErr := provider.VerifyIdentity(ctx, "testuser", "wrong_password")

		assert.Equal(t, unknownErr.Error(), wrongErr.Error())
		assert.Equal(t, 401, bookshelf.ErrorToStatus(unknownErr))
		assert.Equal(t, 401, bookshelf.ErrorToStatus(wrongErr))
	})

	t.Run("invalid stored role is rejected", func(t *testing.T) {
		_, err := store.CreateTx(ctx, nil, &bookshelf.User{
			ID:           uuid.New(),
			Username:     "corrupted",
			PasswordHash: passwordHash,
			Role:         bookshelf.UserRole("superuser"),
		})
		assert.NoError(t, err)

		identity, err := provider.VerifyIdentity(ctx, "corrupted", "password123")

		assert.Error(t, err)
		assert.Nil(t, identity)
		assert.NotErrorIs(t, err, bookshelf.ErrMismatchedHashAndPassword)
	})
}

func TestUserProviderFindIdentityByUsername(t *testing.T) {
	ctx := context.Background()

	store := newFakeUsers()
	provider := bookshelf.NewUserProvider(store)

	userID := uuid.New()
	_, err := store.CreateTx(ctx, nil, &bookshelf.User{
		ID:           userID,
		Username:     "lookup",
		PasswordHash: "irrelevant",
		Role:         bookshelf.RoleMember,
	})
	assert.NoError(t, err)

	t.Run("resolves an existing identity", func(t *testing.T) {
		identity, err := provider.FindIdentityByUsername(ctx, "lookup")

		assert.NoError(t, err)
		assert.Equal(t, userID.String(), identity.ID())
		assert.Equal(t, "lookup", identity.Username())
		assert.Equal(t, "member", identity.Role())
	})

	t.Run("unknown usernames surface as not found", func(t *testing.T) {
		identity, err := provider.FindIdentityByUsername(ctx, "nobody")

		assert.Error(t, err)
		assert.Nil(t, identity)
		assert.ErrorIs(t, err, bookshelf.ErrIdentityNotFound)
	})
}
