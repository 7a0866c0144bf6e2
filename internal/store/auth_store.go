package store

import (
	log "github.com/sirupsen/logrus"

	"github.com/nhle/taskmaster/internal/kv"
	"github.com/nhle/taskmaster/internal/model"
)

// AuthStore owns the single current session: at most one authenticated
// user per running application. Only the user id is held in memory; the
// live record is resolved from the user store on every access, so role
// and active-flag changes are visible immediately.
//
// Credential comparison is exact-match plaintext with no rate limiting,
// preserving the documented behavior of the persisted format. Hardening
// is an explicit non-goal.
type AuthStore struct {
	kv     *kv.Store
	users  *UserStore
	userID string
}

// NewAuthStore restores the session from the persisted document, if one
// exists and its user still resolves against the user store. Anything
// else starts unauthenticated.
func NewAuthStore(s *kv.Store, users *UserStore) *AuthStore {
	as := &AuthStore{kv: s, users: users}

	var session model.Session
	if err := s.Load(kv.SessionKey, &session); err != nil {
		return as
	}
	if session.User == nil {
		return as
	}
	if _, ok := users.FindByID(session.User.ID); ok {
		as.userID = session.User.ID
	}

	return as
}

// IsAuthenticated reports whether a user is currently logged in.
func (s *AuthStore) IsAuthenticated() bool {
	return s.userID != ""
}

// User returns the live record of the authenticated user, or nil when
// unauthenticated or when the user has since been deleted.
func (s *AuthStore) User() *model.User {
	if s.userID == "" {
		return nil
	}
	u, ok := s.users.FindByID(s.userID)
	if !ok {
		return nil
	}
	return &u
}

// Login validates the credentials against the user store. On an exact,
// case-sensitive match with an active account it replaces the session
// and persists it, returning true. On any other combination the prior
// session is left unchanged and false is returned.
func (s *AuthStore) Login(username, password string) bool {
	u, ok := s.users.FindByUsername(username)
	if !ok || u.Password != password || !u.IsActive {
		return false
	}

	s.userID = u.ID
	s.persist(&u)
	return true
}

// Logout clears the session and persists the cleared state.
func (s *AuthStore) Logout() {
	s.userID = ""
	s.persist(nil)
}

// persist writes the session document through to the kv store. A write
// failure is logged; the in-memory session still applies.
func (s *AuthStore) persist(u *model.User) {
	if err := s.kv.Save(kv.SessionKey, model.Session{User: u}); err != nil {
		log.WithError(err).Error("persisting session")
	}
}
