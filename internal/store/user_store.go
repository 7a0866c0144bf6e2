// Package store holds the in-memory application state: registered users,
// the authenticated session, and tasks. Each store exclusively owns its
// collection and writes the whole collection through to the kv layer
// after every mutation. The stores are built for a single-threaded,
// event-driven caller; they do no locking of their own.
package store

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/nhle/taskmaster/internal/kv"
	"github.com/nhle/taskmaster/internal/model"
)

// Default credentials for the seeded administrator. The password is
// intentionally a plaintext constant; hardening is out of scope.
const (
	DefaultAdminID       = "1"
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin123"
	DefaultAdminEmail    = "admin@taskmaster.com"
)

// UserStore owns the ordered collection of registered users.
type UserStore struct {
	kv    *kv.Store
	users []model.User
}

// NewUserStore loads persisted users from the kv store. If none exist,
// it seeds a single default administrator and persists immediately, so
// a fresh installation always has a way in.
func NewUserStore(s *kv.Store) *UserStore {
	us := &UserStore{kv: s}

	if err := s.Load(kv.UsersKey, &us.users); err != nil {
		us.users = nil
	}
	if len(us.users) == 0 {
		us.users = []model.User{{
			ID:       DefaultAdminID,
			Username: DefaultAdminUsername,
			Password: DefaultAdminPassword,
			Email:    DefaultAdminEmail,
			Role:     model.RoleAdmin,
			IsActive: true,
		}}
		us.persist()
	}

	return us
}

// Users returns a snapshot of all users in insertion order.
func (s *UserStore) Users() []model.User {
	out := make([]model.User, len(s.users))
	copy(out, s.users)
	return out
}

// Count returns the number of registered users.
func (s *UserStore) Count() int {
	return len(s.users)
}

// ReplaceAll overwrites the entire collection and persists.
func (s *UserStore) ReplaceAll(users []model.User) {
	s.users = make([]model.User, len(users))
	copy(s.users, users)
	s.persist()
}

// Add appends a new user. An empty id is filled with a generated UUID.
// Returns ErrDuplicateKey when the id or username collides with an
// existing record.
func (s *UserStore) Add(user model.User) error {
	if strings.TrimSpace(user.Username) == "" {
		return fmt.Errorf("username must not be empty")
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = model.RoleUser
	}

	for _, u := range s.users {
		if u.ID == user.ID || u.Username == user.Username {
			return fmt.Errorf("adding user %q: %w", user.Username, ErrDuplicateKey)
		}
	}

	s.users = append(s.users, user)
	s.persist()
	return nil
}

// Update merges the patch into the user with the given id.
// Returns ErrNotFound when no user matches.
func (s *UserStore) Update(id string, patch model.UserPatch) error {
	for i := range s.users {
		if s.users[i].ID != id {
			continue
		}
		patch.Apply(&s.users[i])
		s.persist()
		return nil
	}
	return fmt.Errorf("updating user %s: %w", id, ErrNotFound)
}

// Delete removes the user with the given id. The user's tasks are left
// in place. Returns ErrNotFound when no user matches.
func (s *UserStore) Delete(id string) error {
	for i := range s.users {
		if s.users[i].ID != id {
			continue
		}
		s.users = append(s.users[:i], s.users[i+1:]...)
		s.persist()
		return nil
	}
	return fmt.Errorf("deleting user %s: %w", id, ErrNotFound)
}

// FindByID returns the user with the given id.
func (s *UserStore) FindByID(id string) (model.User, bool) {
	for _, u := range s.users {
		if u.ID == id {
			return u, true
		}
	}
	return model.User{}, false
}

// FindByUsername returns the user with the given username.
// Comparison is exact and case-sensitive.
func (s *UserStore) FindByUsername(username string) (model.User, bool) {
	for _, u := range s.users {
		if u.Username == username {
			return u, true
		}
	}
	return model.User{}, false
}

// persist writes the full collection through to the kv store. A write
// failure is logged and the in-memory state kept; memory and disk may
// diverge until the next successful write.
func (s *UserStore) persist() {
	if err := s.kv.Save(kv.UsersKey, s.users); err != nil {
		log.WithError(err).Error("persisting users")
	}
}
