package memory

import (
	"sync"

	"quiz-admin-service/internal/domain"
)

// UserDirectory is the static in-memory credential store. Accounts added at
// runtime live until the process exits; persistence is a non-goal.
type UserDirectory struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

func NewUserDirectory(seed []domain.User) *UserDirectory {
	users := make(map[string]domain.User, len(seed))
	for _, u := range seed {
		users[u.Username] = u
	}
	return &UserDirectory{users: users}
}

func (d *UserDirectory) Authenticate(username, password string) (domain.Role, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	user, ok := d.users[username]
	if !ok || user.Password != password {
		return "", domain.ErrInvalidCredentials
	}
	return user.Role, nil
}

func (d *UserDirectory) Add(user domain.User) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.users[user.Username]; ok {
		return domain.ErrUserExists
	}
	d.users[user.Username] = user
	return nil
}
