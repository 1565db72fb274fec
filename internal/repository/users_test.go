package repository

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/okravets/contactsbook/internal/models"
)

func newUserRepo(t *testing.T) *UserRepository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Contact{}))

	return &UserRepository{DB: db}
}

func TestGetByEmail(t *testing.T) {
	t.Parallel()

	repo := newUserRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{
		Username:     "dead",
		Email:        "dead@pool.io",
		PasswordHash: "hash",
	}))

	user, err := repo.GetByEmail(ctx, "dead@pool.io")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.False(t, user.Confirmed)
	assert.Nil(t, user.RefreshToken)

	missing, err := repo.GetByEmail(ctx, "nobody@pool.io")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRefreshTokenLifecycle(t *testing.T) {
	t.Parallel()

	repo := newUserRepo(t)
	ctx := context.Background()

	user := models.User{Username: "dead", Email: "dead@pool.io", PasswordHash: "hash"}
	require.NoError(t, repo.Create(ctx, &user))

	token := "some-refresh-token"
	require.NoError(t, repo.UpdateRefreshToken(ctx, user.ID, &token))

	stored, err := repo.GetByEmail(ctx, user.Email)
	require.NoError(t, err)
	require.NotNil(t, stored.RefreshToken)
	assert.Equal(t, token, *stored.RefreshToken)

	require.NoError(t, repo.UpdateRefreshToken(ctx, user.ID, nil))

	stored, err = repo.GetByEmail(ctx, user.Email)
	require.NoError(t, err)
	assert.Nil(t, stored.RefreshToken)
}

func TestConfirmEmailFlag(t *testing.T) {
	t.Parallel()

	repo := newUserRepo(t)
	ctx := context.Background()

	user := models.User{Username: "dead", Email: "dead@pool.io", PasswordHash: "hash"}
	require.NoError(t, repo.Create(ctx, &user))

	require.NoError(t, repo.ConfirmEmail(ctx, user.Email))

	stored, err := repo.GetByEmail(ctx, user.Email)
	require.NoError(t, err)
	assert.True(t, stored.Confirmed)
}

func TestUpdateAvatar(t *testing.T) {
	t.Parallel()

	repo := newUserRepo(t)
	ctx := context.Background()

	user := models.User{Username: "dead", Email: "dead@pool.io", PasswordHash: "hash"}
	require.NoError(t, repo.Create(ctx, &user))

	url := "http://cdn.local/avatars/1.png"
	updated, err := repo.UpdateAvatar(ctx, user.Email, &url)
	require.NoError(t, err)
	require.NotNil(t, updated.AvatarURL)
	assert.Equal(t, url, *updated.AvatarURL)
}
