package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogfolio/internal/model"
	"blogfolio/internal/repository"
)

func newUserFixture(t *testing.T) (*UserService, *model.User) {
	t.Helper()
	db := newTestDB(t)
	userRepo := repository.NewUserRepository(db)

	user := &model.User{
		Email:        "me@x.com",
		PasswordHash: "h",
		FullName:     "Original Name",
		AvatarURL:    "https://example.com/a.png",
		Bio:          "old bio",
	}
	require.NoError(t, userRepo.Create(user))
	return NewUserService(userRepo), user
}

func strPtr(s string) *string { return &s }

func TestGetProfile(t *testing.T) {
	svc, user := newUserFixture(t)

	got, err := svc.GetProfile(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "me@x.com", got.Email)
	assert.Equal(t, "Original Name", got.FullName)

	_, err = svc.GetProfile("6f9619ff-8b86-4d01-b42d-00cf4fc964ff")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.GetProfile("")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateProfilePartialSemantics(t *testing.T) {
	svc, user := newUserFixture(t)

	// Absent fields (nil) stay untouched.
	updated, err := svc.UpdateProfile(user.ID, UpdateProfileInput{
		FullName: strPtr("Renamed"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.FullName)
	assert.Equal(t, "https://example.com/a.png", updated.AvatarURL)
	assert.Equal(t, "old bio", updated.Bio)

	// Explicit empty string clears the field.
	updated, err = svc.UpdateProfile(user.ID, UpdateProfileInput{
		AvatarURL: strPtr(""),
		Bio:       strPtr("new bio"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.FullName)
	assert.Empty(t, updated.AvatarURL)
	assert.Equal(t, "new bio", updated.Bio)

	// Round-trip through the store.
	got, err := svc.GetProfile(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.FullName)
	assert.Empty(t, got.AvatarURL)
	assert.Equal(t, "new bio", got.Bio)
}
