package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customeros/recipestack/internal/models"
	"github.com/customeros/recipestack/internal/repository"
	"github.com/customeros/recipestack/internal/testutil"
)

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repos := testutil.NewTestRepositories(t)

	user := &models.User{Username: "chef", Email: "chef@example.com", PasswordHash: "hash", IsActive: true}
	require.NoError(t, repos.UserRepository.Create(ctx, user))
	assert.Contains(t, user.ID, "usr_")

	byName, err := repos.UserRepository.GetByUsername(ctx, "chef")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)
	assert.Nil(t, byName.LastLoginAt)

	require.NoError(t, repos.UserRepository.TouchLastLogin(ctx, user.ID))
	byID, err := repos.UserRepository.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NotNil(t, byID.LastLoginAt)

	err = repos.UserRepository.Create(ctx, &models.User{Username: "chef", PasswordHash: "other"})
	assert.ErrorIs(t, err, repository.ErrUsernameTaken)

	_, err = repos.UserRepository.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
	assert.ErrorIs(t, repos.UserRepository.TouchLastLogin(ctx, "usr_missing"), repository.ErrUserNotFound)
}
