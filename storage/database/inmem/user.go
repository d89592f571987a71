package inmemdb

import (
	"context"
	"strings"

	"github.com/geeky-hamster/Quizme/core/user"
)

type userRepository struct {
	db *DB
}

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

// usernameTaken must be called with a lock held.
func (repo *userRepository) usernameTaken(uname string, exclID int) bool {
	for _, usr := range repo.db.users {
		if usr.Username == uname && usr.ID != exclID {
			return true
		}
	}
	return false
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if repo.usernameTaken(usr.Username, 0) {
		return user.User{}, user.ErrUsernameExists
	}
	usr.ID = repo.db.nextID()
	repo.db.users[usr.ID] = usr
	return usr, nil
}

func (repo *userRepository) GetUser(_ context.Context, filter user.GetFilter) (user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	switch {
	case filter.ID != 0:
		if usr, ok := repo.db.users[filter.ID]; ok {
			return usr, nil
		}
	case filter.Username != "":
		for _, usr := range repo.db.users {
			if usr.Username == filter.Username {
				return usr, nil
			}
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) QueryUsers(_ context.Context, filter user.QueryFilter) ([]user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	search := strings.ToLower(filter.Search)
	ids := make([]int, 0, len(repo.db.users))
	for id, usr := range repo.db.users {
		if filter.Role != "" && usr.Role != filter.Role {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(usr.Username), search) &&
			!strings.Contains(strings.ToLower(usr.FullName), search) {
			continue
		}
		ids = append(ids, id)
	}

	users := make([]user.User, 0, len(ids))
	for _, id := range sortedIDs(ids) {
		users = append(users, repo.db.users[id])
	}
	return users, nil
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.users[usr.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	if repo.usernameTaken(usr.Username, usr.ID) {
		return user.User{}, user.ErrUsernameExists
	}
	usr.CreatedAt = orig.CreatedAt
	repo.db.users[usr.ID] = usr
	return usr, nil
}
