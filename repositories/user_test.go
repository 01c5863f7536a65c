package repositories

import (
	"testing"
	"time"

	"connectrix/domain"
	"connectrix/errors"

	"github.com/stretchr/testify/require"
)

func TestUserRepository_Upsert(t *testing.T) {
	req := require.New(t)
	repo := NewUserRepository(openTestDB(t))

	user, created, err := repo.Upsert("alice@example.edu", "Alice", domain.RoleStudent)
	req.NoError(err)
	req.True(created)
	req.NotEmpty(user.ID)
	req.Equal(domain.RoleStudent, user.Role)

	// Same email refreshes name and role but keeps the id.
	updated, created, err := repo.Upsert("alice@example.edu", "Alice A.", domain.RoleAlumni)
	req.NoError(err)
	req.False(created)
	req.Equal(user.ID, updated.ID)
	req.Equal("Alice A.", updated.Name)
	req.Equal(domain.RoleAlumni, updated.Role)

	fetched, err := repo.Get(user.ID)
	req.NoError(err)
	req.Equal(updated.Name, fetched.Name)
}

func TestUserRepository_Get_Unknown(t *testing.T) {
	req := require.New(t)
	repo := NewUserRepository(openTestDB(t))

	_, err := repo.Get("nobody")
	req.ErrorIs(err, errors.ErrUserNotFound)
}

func TestUserRepository_GetByEmail(t *testing.T) {
	req := require.New(t)
	repo := NewUserRepository(openTestDB(t))

	user, _, err := repo.Upsert("carol@example.edu", "Carol", domain.RoleStudent)
	req.NoError(err)

	fetched, err := repo.GetByEmail("carol@example.edu")
	req.NoError(err)
	req.Equal(user.ID, fetched.ID)

	_, err = repo.GetByEmail("nobody@example.edu")
	req.ErrorIs(err, errors.ErrUserNotFound)
}

func TestUserRepository_SetPassword(t *testing.T) {
	req := require.New(t)
	repo := NewUserRepository(openTestDB(t))

	user, _, err := repo.Upsert("dave@example.edu", "Dave", domain.RoleAlumni)
	req.NoError(err)

	req.NoError(repo.SetPassword(user.ID, "$argon2id$fake-hash"))
	fetched, err := repo.Get(user.ID)
	req.NoError(err)
	req.Equal("$argon2id$fake-hash", fetched.PasswordHash)

	// A profile refresh through Upsert keeps the credential hash.
	_, created, err := repo.Upsert("dave@example.edu", "Dave D.", domain.RoleAlumni)
	req.NoError(err)
	req.False(created)
	fetched, err = repo.Get(user.ID)
	req.NoError(err)
	req.Equal("$argon2id$fake-hash", fetched.PasswordHash)

	// The hash only lands on existing documents.
	req.ErrorIs(repo.SetPassword("ghost", "$argon2id$fake-hash"), errors.ErrUserNotFound)
}

func TestUserRepository_SetPresence(t *testing.T) {
	req := require.New(t)
	repo := NewUserRepository(openTestDB(t))
	now := time.Now().UTC()

	user, _, err := repo.Upsert("bob@example.edu", "Bob", domain.RoleAlumni)
	req.NoError(err)

	req.NoError(repo.SetPresence(user.ID, true, now))
	fetched, err := repo.Get(user.ID)
	req.NoError(err)
	req.True(fetched.Online)
	req.Equal(now, fetched.LastSeen)

	req.NoError(repo.SetPresence(user.ID, false, now.Add(time.Minute)))
	fetched, err = repo.Get(user.ID)
	req.NoError(err)
	req.False(fetched.Online)

	// Presence never creates user documents.
	req.ErrorIs(repo.SetPresence("ghost", true, now), errors.ErrUserNotFound)
}
