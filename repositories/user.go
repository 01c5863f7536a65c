//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"time"

	"connectrix/domain"
	"connectrix/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IUserRepository interface {
	Upsert(email, name string, role domain.Role) (domain.User, bool, error)
	Get(id string) (domain.User, error)
	GetByEmail(email string) (domain.User, error)
	SetPassword(id, hash string) error
	SetPresence(id string, online bool, at time.Time) error
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

// Upsert creates or refreshes the user record keyed by email, returning
// the stored user and whether it was newly created. This is the sole seam
// by which a user id becomes known to the presence system.
func (u *UserRepository) Upsert(email, name string, role domain.Role) (domain.User, bool, error) {
	var user domain.User
	var created bool

	err := u.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(userEmailKey(email))
		if err == nil {
			var id []byte
			if id, err = item.ValueCopy(nil); err != nil {
				return err
			}
			if user, err = getUser(txn, string(id)); err != nil {
				return err
			}
			user.Name = name
			user.Role = role
			return putJSON(txn, userKey(user.ID), user)
		}
		if err != badger.ErrKeyNotFound {
			return err
		}

		user = domain.User{
			ID:        uuid.NewString(),
			Email:     email,
			Name:      name,
			Role:      role,
			CreatedAt: time.Now().UTC(),
		}
		created = true

		if err = putJSON(txn, userKey(user.ID), user); err != nil {
			return err
		}
		return txn.Set(userEmailKey(email), []byte(user.ID))
	})

	return user, created, err
}

func (u *UserRepository) Get(id string) (domain.User, error) {
	var user domain.User
	err := u.db.View(func(txn *badger.Txn) error {
		var err error
		user, err = getUser(txn, id)
		return err
	})
	return user, err
}

// GetByEmail resolves a user through the email index.
func (u *UserRepository) GetByEmail(email string) (domain.User, error) {
	var user domain.User
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userEmailKey(email))
		if err == badger.ErrKeyNotFound {
			return errors.ErrUserNotFound
		}
		if err != nil {
			return err
		}
		id, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		user, err = getUser(txn, string(id))
		return err
	})
	return user, err
}

// SetPassword stores the credential hash on an existing user document.
func (u *UserRepository) SetPassword(id, hash string) error {
	return u.db.Update(func(txn *badger.Txn) error {
		user, err := getUser(txn, id)
		if err != nil {
			return err
		}
		user.PasswordHash = hash
		return putJSON(txn, userKey(id), user)
	})
}

// SetPresence overwrites the online flag and last-seen timestamp on the
// user document. A missing document returns ErrUserNotFound and is never
// auto-created: the record is expected to exist from the account upsert
// flow, so absence points at an upstream provisioning bug.
func (u *UserRepository) SetPresence(id string, online bool, at time.Time) error {
	return u.db.Update(func(txn *badger.Txn) error {
		user, err := getUser(txn, id)
		if err != nil {
			return err
		}
		user.Online = online
		user.LastSeen = at
		return putJSON(txn, userKey(id), user)
	})
}

func getUser(txn *badger.Txn, id string) (domain.User, error) {
	var user domain.User
	item, err := txn.Get(userKey(id))
	if err == badger.ErrKeyNotFound {
		return user, errors.ErrUserNotFound
	}
	if err != nil {
		return user, err
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &user)
	})
	return user, err
}
