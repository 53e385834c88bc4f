package repositories

import (
	"testing"

	"chat-relay/errors"

	"github.com/stretchr/testify/require"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t))

	// When a user registers
	id, err := repository.CreateUser("alice@example.com", "$argon2id$fakehash")
	req.NoError(err)
	req.NotEmpty(id)

	// Then it can be fetched back by email
	user, err := repository.GetUserByEmail("alice@example.com")
	req.NoError(err)
	req.Equal(id, user.ID)
	req.Equal("$argon2id$fakehash", user.PasswordHash)
	req.Equal([]string{"user"}, user.Roles)
}

func TestUserRepository_DuplicateEmail_Rejected(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t))

	_, err := repository.CreateUser("alice@example.com", "hash1")
	req.NoError(err)

	// When the same email registers again
	_, err = repository.CreateUser("alice@example.com", "hash2")

	// Then the duplicate is refused
	req.ErrorIs(err, errors.ErrUserAlreadyExists)
}

func TestUserRepository_CreateUser_StoreFailure_Propagates(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repository := NewUserRepository(db)
	req.NoError(db.Close())

	// When the store is unusable the failure must surface as-is,
	// never as a duplicate-email verdict
	_, err := repository.CreateUser("alice@example.com", "hash")
	req.Error(err)
	req.NotErrorIs(err, errors.ErrUserAlreadyExists)
}

func TestUserRepository_ListUsers_BlanksHashes(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t))

	_, err := repository.CreateUser("alice@example.com", "secret-hash")
	req.NoError(err)
	_, err = repository.CreateUser("bob@example.com", "other-hash")
	req.NoError(err)

	users, err := repository.ListUsers()
	req.NoError(err)
	req.Len(users, 2)
	for _, user := range users {
		req.Empty(user.PasswordHash)
	}
}

func TestUserRepository_GetUnknownEmail_Fails(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t))

	_, err := repository.GetUserByEmail("nobody@example.com")
	req.Error(err)
}
