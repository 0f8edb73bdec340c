package devserver

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/miportal/portal/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := OpenStore("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func TestStore_CreateUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user, err := store.CreateUser(ctx, NewUser{
		Email:          "  New@UFRO.cl ",
		Username:       "newbie",
		FullName:       " New Student ",
		HashedPassword: "hash",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "new@ufro.cl", user.Email)
	assert.Equal(t, "newbie", user.Username)
	assert.Equal(t, "New Student", user.FullName)
	assert.Equal(t, models.RoleStudent, user.Role)
	assert.True(t, user.IsActive)

	loaded, err := store.UserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user, loaded)
}

func TestStore_CreateUserDuplicates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.CreateUser(ctx, NewUser{Email: "a@ufro.cl", Username: "alpha", HashedPassword: "hash"})
	require.NoError(t, err)

	tests := []struct {
		name string
		user NewUser
		err  error
	}{
		{name: "same email", user: NewUser{Email: "a@ufro.cl", Username: "other"}, err: ErrUserExists},
		{name: "same email other case", user: NewUser{Email: "A@UFRO.CL"}, err: ErrUserExists},
		{name: "same username", user: NewUser{Email: "b@ufro.cl", Username: "alpha"}, err: ErrUserExists},
		{name: "no username", user: NewUser{Email: "c@ufro.cl"}},
		{name: "second without username", user: NewUser{Email: "d@ufro.cl"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.user.HashedPassword = "hash"
			_, err := store.CreateUser(ctx, tt.user)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStore_Credentials(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.CreateUser(ctx, NewUser{Email: "a@ufro.cl", Username: "alpha", HashedPassword: "hash"})
	require.NoError(t, err)

	for _, identifier := range []string{"alpha", "a@ufro.cl", "A@ufro.cl", " alpha "} {
		t.Run(identifier, func(t *testing.T) {
			user, hashed, err := store.Credentials(ctx, identifier)
			require.NoError(t, err)
			assert.Equal(t, created.ID, user.ID)
			assert.Equal(t, "hash", hashed)
		})
	}

	_, _, err = store.Credentials(ctx, "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestStore_UserByIDMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.UserByID(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestStore_UpdateUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user, err := store.CreateUser(ctx, NewUser{Email: "a@ufro.cl", FullName: "Old", HashedPassword: "hash"})
	require.NoError(t, err)
	_, err = store.CreateUser(ctx, NewUser{Email: "b@ufro.cl", HashedPassword: "hash"})
	require.NoError(t, err)

	name := "New Name"
	inactive := false
	updated, err := store.UpdateUser(ctx, user.ID, UserUpdate{FullName: &name, IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.FullName)
	assert.False(t, updated.IsActive)

	taken := "b@ufro.cl"
	_, err = store.UpdateUser(ctx, user.ID, UserUpdate{Email: &taken})
	assert.ErrorIs(t, err, ErrUserExists)

	own := "A@ufro.cl"
	updated, err = store.UpdateUser(ctx, user.ID, UserUpdate{Email: &own})
	require.NoError(t, err)
	assert.Equal(t, "a@ufro.cl", updated.Email)

	_, err = store.UpdateUser(ctx, uuid.NewString(), UserUpdate{FullName: &name})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestWeekdayIndex(t *testing.T) {
	assert.Equal(t, 0, weekdayIndex("Monday"))
	assert.Equal(t, 4, weekdayIndex("friday"))
	assert.Equal(t, len(models.Weekdays), weekdayIndex("Someday"))
}
