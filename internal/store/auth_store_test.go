package store

import (
	"testing"

	"github.com/nhle/taskmaster/internal/kv"
	"github.com/nhle/taskmaster/internal/model"
	"github.com/nhle/taskmaster/tests/testutil"
)

func newAuthFixture(t *testing.T) (*kv.Store, *UserStore, *AuthStore) {
	t.Helper()

	s := testutil.NewTestStore(t)
	users := NewUserStore(s)
	auth := NewAuthStore(s, users)
	return s, users, auth
}

func TestLoginSuccess(t *testing.T) {
	_, _, auth := newAuthFixture(t)

	if !auth.Login(DefaultAdminUsername, DefaultAdminPassword) {
		t.Fatal("Login with seeded admin credentials failed")
	}
	if !auth.IsAuthenticated() {
		t.Error("IsAuthenticated() = false after login")
	}
	u := auth.User()
	if u == nil || u.Username != DefaultAdminUsername {
		t.Errorf("User() = %+v, want the admin", u)
	}
}

func TestLoginFailureKeepsSession(t *testing.T) {
	_, users, auth := newAuthFixture(t)

	if err := users.Add(model.User{ID: "u1", Username: "eve", Password: "pw", IsActive: false}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if !auth.Login(DefaultAdminUsername, DefaultAdminPassword) {
		t.Fatal("initial login failed")
	}

	cases := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", DefaultAdminUsername, "wrong"},
		{"unknown user", "nobody", "pw"},
		{"inactive user", "eve", "pw"},
		{"case mismatch", "Admin", DefaultAdminPassword},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if auth.Login(tc.username, tc.password) {
				t.Fatal("Login succeeded, want rejection")
			}
			u := auth.User()
			if u == nil || u.ID != DefaultAdminID {
				t.Errorf("prior session disturbed by failed login: %+v", u)
			}
		})
	}
}

func TestLogoutPersists(t *testing.T) {
	s, users, auth := newAuthFixture(t)

	if !auth.Login(DefaultAdminUsername, DefaultAdminPassword) {
		t.Fatal("login failed")
	}
	auth.Logout()

	if auth.IsAuthenticated() {
		t.Error("IsAuthenticated() = true after logout")
	}
	if auth.User() != nil {
		t.Error("User() != nil after logout")
	}

	restored := NewAuthStore(s, users)
	if restored.IsAuthenticated() {
		t.Error("logged-out session survived a restart")
	}
}

func TestSessionRestore(t *testing.T) {
	s, _, auth := newAuthFixture(t)

	if !auth.Login(DefaultAdminUsername, DefaultAdminPassword) {
		t.Fatal("login failed")
	}

	// Simulate an application restart over the same database.
	users := NewUserStore(s)
	restored := NewAuthStore(s, users)
	if !restored.IsAuthenticated() {
		t.Fatal("persisted session not restored")
	}
	u := restored.User()
	if u == nil || u.ID != DefaultAdminID {
		t.Errorf("restored User() = %+v, want the admin", u)
	}
}

func TestSessionRestoreDeletedUser(t *testing.T) {
	s, users, auth := newAuthFixture(t)

	if err := users.Add(model.User{ID: "u1", Username: "frank", Password: "pw", IsActive: true}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !auth.Login("frank", "pw") {
		t.Fatal("login failed")
	}
	if err := users.Delete("u1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	reloadedUsers := NewUserStore(s)
	restored := NewAuthStore(s, reloadedUsers)
	if restored.IsAuthenticated() {
		t.Error("session restored for a deleted user")
	}
}

func TestUserReturnsLiveRecord(t *testing.T) {
	_, users, auth := newAuthFixture(t)

	if !auth.Login(DefaultAdminUsername, DefaultAdminPassword) {
		t.Fatal("login failed")
	}

	email := "new@taskmaster.com"
	if err := users.Update(DefaultAdminID, model.UserPatch{Email: &email}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	u := auth.User()
	if u == nil || u.Email != email {
		t.Errorf("User().Email = %v, want the updated email", u)
	}
}
