package bookshelf_test

import (
	"context"
	"testing"

	bookshelf "github.com/goliatone/go-bookshelf"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRegisterUserHandler_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("registers a new user with the default role", func(t *testing.T) {
		repo := newFakeRepoManager()
		handler := bookshelf.NewRegisterUserHandler(repo)

		user, err := handler.Execute(ctx, bookshelf.RegisterUserMessage{
			Username: "newuser",
			Password: "password123",
		})

		assert.NoError(t, err)
		assert.NotNil(t, user)
		assert.NotEqual(t, uuid.Nil, user.ID)
		assert.Equal(t, "newuser", user.Username)
		assert.Equal(t, bookshelf.RoleMember, user.Role)
		assert.NotEmpty(t, user.PasswordHash)
		assert.NotEqual(t, "password123", user.PasswordHash)

		// the stored hash verifies against the original password
		assert.NoError(t, bookshelf.ComparePasswordAndHash("password123", user.PasswordHash))
	})

	t.Run("honors an explicit role", func(t *testing.T) {
		repo := newFakeRepoManager()
		handler := bookshelf.NewRegisterUserHandler(repo)

		user, err := handler.Execute(ctx, bookshelf.RegisterUserMessage{
			Username: "adminuser",
			Password: "password123",
			Role:     "admin",
		})

		assert.NoError(t, err)
		assert.Equal(t, bookshelf.RoleAdmin, user.Role)
	})

	t.Run("rejects unknown roles", func(t *testing.T) {
		repo := newFakeRepoManager()
		handler := bookshelf.NewRegisterUserHandler(repo)

		user, err := handler.Execute(ctx, bookshelf.RegisterUserMessage{
			Username: "baduser",
			Password: "password123",
			Role:     "superuser",
		})

		assert.Error(t, err)
		assert.Nil(t, user)
		assert.Equal(t, 400, bookshelf.ErrorToStatus(err))
	})

	t.Run("duplicate usernames surface as a conflict", func(t *testing.T) {
		repo := newFakeRepoManager()
		handler := bookshelf.NewRegisterUserHandler(repo)

		_, err := handler.Execute(ctx, bookshelf.RegisterUserMessage{
			Username: "taken",
			Password: "password123",
		})
		assert.NoError(t, err)

		user, err := handler.Execute(ctx, bookshelf.RegisterUserMessage{
			Username: "taken",
			Password: "different-password",
		})

		assert.Error(t, err)
		assert.Nil(t, user)
		assert.ErrorIs(t, err, bookshelf.ErrUsernameTaken)
		assert.Equal(t, 409, bookshelf.ErrorToStatus(err))
	})

	t.Run("rejects short passwords", func(t *testing.T) {
		repo := newFakeRepoManager()
		handler := bookshelf.NewRegisterUserHandler(repo)

		user, err := handler.Execute(ctx, bookshelf.RegisterUserMessage{
			Username: "shorty",
			Password: "12345",
		})

		assert.Error(t, err)
		assert.Nil(t, user)

		var richErr *goerrors.Error
		assert.ErrorAs(t, err, &richErr)
		assert.Equal(t, goerrors.CategoryValidation, richErr.Category)
	})

	t.Run("rejects missing username", func(t *testing.T) {
		repo := newFakeRepoManager()
		handler := bookshelf.NewRegisterUserHandler(repo)

		user, err := handler.Execute(ctx, bookshelf.RegisterUserMessage{
			Password: "password123",
		})

		assert.Error(t, err)
		assert.Nil(t, user)
		assert.Equal(t, 400, bookshelf.ErrorToStatus(err))
	})

	t.Run("derives deterministic ids when requested", func(t *testing.T) {
		first, err := bookshelf.NewRegisterUserHandler(newFakeRepoManager()).Execute(ctx, bookshelf.RegisterUserMessage{
			Username:  "stable",
			Password:  "password123",
			UseHashid: true,
		})
		assert.NoError(t, err)

		second, err := bookshelf.NewRegisterUserHandler(newFakeRepoManager()).Execute(ctx, bookshelf.RegisterUserMessage{
			Username:  "stable",
			Password:  "password123",
			UseHashid: true,
		})
		assert.NoError(t, err)

		// same username hashes to the same id across stores
		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("respects a cancelled context", func(t *testing.T) {
		repo := newFakeRepoManager()
		handler := bookshelf.NewRegisterUserHandler(repo)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		user, err := handler.Execute(cancelled, bookshelf.RegisterUserMessage{
			Username: "late",
			Password: "password123",
		})

		assert.Error(t, err)
		assert.Nil(t, user)
	})
}
