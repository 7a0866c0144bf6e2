package store

import (
	"errors"
	"testing"

	"github.com/nhle/taskmaster/internal/kv"
	"github.com/nhle/taskmaster/internal/model"
	"github.com/nhle/taskmaster/tests/testutil"
)

func TestUserStoreSeedsAdmin(t *testing.T) {
	s := testutil.NewTestStore(t)
	users := NewUserStore(s)

	if users.Count() != 1 {
		t.Fatalf("Count() = %d, want 1 seeded admin", users.Count())
	}

	admin, ok := users.FindByID(DefaultAdminID)
	if !ok {
		t.Fatal("seeded admin not found by id")
	}
	if admin.Username != DefaultAdminUsername ||
		admin.Password != DefaultAdminPassword ||
		admin.Email != DefaultAdminEmail ||
		admin.Role != model.RoleAdmin ||
		!admin.IsActive {
		t.Errorf("seeded admin = %+v", admin)
	}

	// The seed must be persisted immediately, not just held in memory.
	var persisted []model.User
	if err := s.Load(kv.UsersKey, &persisted); err != nil {
		t.Fatalf("loading persisted users: %v", err)
	}
	if len(persisted) != 1 || persisted[0].ID != DefaultAdminID {
		t.Errorf("persisted users = %+v", persisted)
	}
}

func TestUserStoreDoesNotReseed(t *testing.T) {
	s := testutil.NewTestStore(t)
	users := NewUserStore(s)

	if err := users.Add(model.User{Username: "alice", Password: "pw", IsActive: true}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	reloaded := NewUserStore(s)
	if reloaded.Count() != 2 {
		t.Fatalf("reloaded Count() = %d, want 2", reloaded.Count())
	}
	if _, ok := reloaded.FindByUsername("alice"); !ok {
		t.Error("alice missing after reload")
	}

	admins := 0
	for _, u := range reloaded.Users() {
		if u.Username == DefaultAdminUsername {
			admins++
		}
	}
	if admins != 1 {
		t.Errorf("admin seeded %d times, want exactly once", admins)
	}
}

func TestUserStoreAddDefaults(t *testing.T) {
	s := testutil.NewTestStore(t)
	users := NewUserStore(s)

	if err := users.Add(model.User{Username: "bob", Password: "pw"}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	u, ok := users.FindByUsername("bob")
	if !ok {
		t.Fatal("bob not found")
	}
	if u.ID == "" {
		t.Error("Add left ID empty, want generated id")
	}
	if u.Role != model.RoleUser {
		t.Errorf("Role = %q, want %q", u.Role, model.RoleUser)
	}
}

func TestUserStoreAddDuplicate(t *testing.T) {
	s := testutil.NewTestStore(t)
	users := NewUserStore(s)

	err := users.Add(model.User{Username: DefaultAdminUsername, Password: "pw"})
	if !errors.Is(err, ErrDuplicateKey) {
		t.Errorf("Add(duplicate username) error = %v, want ErrDuplicateKey", err)
	}

	err = users.Add(model.User{ID: DefaultAdminID, Username: "fresh", Password: "pw"})
	if !errors.Is(err, ErrDuplicateKey) {
		t.Errorf("Add(duplicate id) error = %v, want ErrDuplicateKey", err)
	}

	if users.Count() != 1 {
		t.Errorf("Count() = %d after rejected adds, want 1", users.Count())
	}
}

func TestUserStoreAddEmptyUsername(t *testing.T) {
	s := testutil.NewTestStore(t)
	users := NewUserStore(s)

	if err := users.Add(model.User{Username: "   "}); err == nil {
		t.Error("Add with blank username succeeded, want error")
	}
}

func TestUserStoreUpdatePatch(t *testing.T) {
	s := testutil.NewTestStore(t)
	users := NewUserStore(s)

	if err := users.Add(model.User{ID: "u1", Username: "carol", Password: "pw", Email: "c@x.com", IsActive: true}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	inactive := false
	role := model.RoleAdmin
	if err := users.Update("u1", model.UserPatch{IsActive: &inactive, Role: &role}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	u, _ := users.FindByID("u1")
	if u.IsActive {
		t.Error("IsActive not patched")
	}
	if u.Role != model.RoleAdmin {
		t.Errorf("Role = %q, want admin", u.Role)
	}
	// Unpatched fields stay put.
	if u.Username != "carol" || u.Password != "pw" || u.Email != "c@x.com" {
		t.Errorf("unpatched fields changed: %+v", u)
	}
}

func TestUserStoreUpdateMissing(t *testing.T) {
	s := testutil.NewTestStore(t)
	users := NewUserStore(s)

	if err := users.Update("nope", model.UserPatch{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
	}
}

func TestUserStoreDeleteIdempotence(t *testing.T) {
	s := testutil.NewTestStore(t)
	users := NewUserStore(s)

	if err := users.Add(model.User{ID: "u1", Username: "dave", Password: "pw"}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if err := users.Delete("u1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := users.Delete("u1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete error = %v, want ErrNotFound", err)
	}
	if users.Count() != 1 {
		t.Errorf("Count() = %d after deletes, want 1", users.Count())
	}
}

func TestUserStoreReplaceAllRoundTrip(t *testing.T) {
	s := testutil.NewTestStore(t)
	users := NewUserStore(s)

	next := []model.User{
		{ID: "a", Username: "ann", Password: "pw", Role: model.RoleUser, IsActive: true},
		{ID: "b", Username: "ben", Password: "pw", Role: model.RoleAdmin, IsActive: false},
	}
	users.ReplaceAll(next)

	reloaded := NewUserStore(s)
	got := reloaded.Users()
	if len(got) != 2 {
		t.Fatalf("reloaded %d users, want 2", len(got))
	}
	for i := range next {
		if got[i] != next[i] {
			t.Errorf("user[%d] = %+v, want %+v", i, got[i], next[i])
		}
	}
}

func TestUserStoreFindByUsernameExact(t *testing.T) {
	s := testutil.NewTestStore(t)
	users := NewUserStore(s)

	if _, ok := users.FindByUsername("Admin"); ok {
		t.Error("FindByUsername matched with different case, want exact match")
	}
	if _, ok := users.FindByUsername(DefaultAdminUsername); !ok {
		t.Error("FindByUsername missed exact username")
	}
}
