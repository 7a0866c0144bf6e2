package store

import (
	"errors"
	"testing"
	"time"

	"github.com/nhle/taskmaster/internal/kv"
	"github.com/nhle/taskmaster/internal/model"
	"github.com/nhle/taskmaster/tests/testutil"
)

func newTaskFixture(t *testing.T) (*kv.Store, *UserStore, *AuthStore, *TaskStore) {
	t.Helper()

	s := testutil.NewTestStore(t)
	users := NewUserStore(s)
	auth := NewAuthStore(s, users)
	tasks := NewTaskStore(s, auth)
	return s, users, auth, tasks
}

func loginAdmin(t *testing.T, auth *AuthStore) {
	t.Helper()
	if !auth.Login(DefaultAdminUsername, DefaultAdminPassword) {
		t.Fatal("admin login failed")
	}
}

func TestTaskAddRequiresSession(t *testing.T) {
	_, _, _, tasks := newTaskFixture(t)

	err := tasks.Add(model.Task{Title: "orphan"})
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("Add without session error = %v, want ErrNotAuthenticated", err)
	}
	if len(tasks.Tasks()) != 0 {
		t.Error("rejected task was stored")
	}
}

func TestTaskAddStampsOwnership(t *testing.T) {
	_, _, auth, tasks := newTaskFixture(t)
	loginAdmin(t, auth)

	before := time.Now()
	spoofed := model.Task{
		Title:     "report",
		UserID:    "999",
		CreatedAt: time.Unix(0, 0),
		UpdatedAt: time.Unix(0, 0),
	}
	if err := tasks.Add(spoofed); err != nil {
		t.Fatalf("Add: %v", err)
	}

	got := tasks.Tasks()[0]
	if got.UserID != DefaultAdminID {
		t.Errorf("UserID = %q, want the session's user %q", got.UserID, DefaultAdminID)
	}
	if got.CreatedAt.Before(before) {
		t.Errorf("CreatedAt = %v, caller-supplied timestamp was kept", got.CreatedAt)
	}
	if !got.CreatedAt.Equal(got.UpdatedAt) {
		t.Errorf("CreatedAt %v != UpdatedAt %v on a fresh task", got.CreatedAt, got.UpdatedAt)
	}
}

func TestTaskAddDefaults(t *testing.T) {
	_, _, auth, tasks := newTaskFixture(t)
	loginAdmin(t, auth)

	if err := tasks.Add(model.Task{Title: "plain"}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	got := tasks.Tasks()[0]
	if got.ID == "" {
		t.Error("Add left ID empty, want generated id")
	}
	if got.Status != model.StatusPending {
		t.Errorf("Status = %q, want %q", got.Status, model.StatusPending)
	}
	if got.Priority != model.PriorityMedium {
		t.Errorf("Priority = %q, want %q", got.Priority, model.PriorityMedium)
	}
}

func TestTaskAddEmptyTitle(t *testing.T) {
	_, _, auth, tasks := newTaskFixture(t)
	loginAdmin(t, auth)

	if err := tasks.Add(model.Task{Title: "  "}); err == nil {
		t.Error("Add with blank title succeeded, want error")
	}
}

func TestTaskUpdatePatch(t *testing.T) {
	_, _, auth, tasks := newTaskFixture(t)
	loginAdmin(t, auth)

	if err := tasks.Add(model.Task{ID: "t1", Title: "write docs", Description: "intro"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	created := tasks.Tasks()[0]

	time.Sleep(5 * time.Millisecond)
	status := model.StatusInProgress
	if err := tasks.Update("t1", model.TaskPatch{Status: &status}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, _ := tasks.FindByID("t1")
	if got.Status != model.StatusInProgress {
		t.Errorf("Status = %q, want in-progress", got.Status)
	}
	if got.Title != "write docs" || got.Description != "intro" {
		t.Errorf("unpatched fields changed: %+v", got)
	}
	if !got.UpdatedAt.After(created.UpdatedAt) {
		t.Errorf("UpdatedAt not refreshed: %v -> %v", created.UpdatedAt, got.UpdatedAt)
	}
	if !got.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("CreatedAt changed on update: %v -> %v", created.CreatedAt, got.CreatedAt)
	}
}

func TestTaskUpdateClearDueDate(t *testing.T) {
	_, _, auth, tasks := newTaskFixture(t)
	loginAdmin(t, auth)

	due := time.Now().Add(24 * time.Hour)
	if err := tasks.Add(model.Task{ID: "t1", Title: "dated", DueDate: &due}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	// A patch without a due date leaves the existing one alone.
	title := "renamed"
	if err := tasks.Update("t1", model.TaskPatch{Title: &title}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got, _ := tasks.FindByID("t1"); got.DueDate == nil {
		t.Fatal("plain patch dropped the due date")
	}

	if err := tasks.Update("t1", model.TaskPatch{ClearDueDate: true}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got, _ := tasks.FindByID("t1"); got.DueDate != nil {
		t.Errorf("DueDate = %v after clear, want nil", got.DueDate)
	}
}

func TestTaskUpdateMissing(t *testing.T) {
	_, _, auth, tasks := newTaskFixture(t)
	loginAdmin(t, auth)

	if err := tasks.Update("nope", model.TaskPatch{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
	}
}

func TestTaskDeleteIdempotence(t *testing.T) {
	_, _, auth, tasks := newTaskFixture(t)
	loginAdmin(t, auth)

	if err := tasks.Add(model.Task{ID: "t1", Title: "gone soon"}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if err := tasks.Delete("t1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := tasks.Delete("t1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete error = %v, want ErrNotFound", err)
	}
	if len(tasks.Tasks()) != 0 {
		t.Errorf("Tasks() has %d entries after delete, want 0", len(tasks.Tasks()))
	}
}

func TestTasksForUser(t *testing.T) {
	_, users, auth, tasks := newTaskFixture(t)
	loginAdmin(t, auth)

	if err := tasks.Add(model.Task{ID: "a1", Title: "admin one"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := users.Add(model.User{ID: "u1", Username: "gail", Password: "pw", IsActive: true}); err != nil {
		t.Fatalf("Add user: %v", err)
	}
	if !auth.Login("gail", "pw") {
		t.Fatal("login as gail failed")
	}
	if err := tasks.Add(model.Task{ID: "g1", Title: "gail one"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := tasks.Add(model.Task{ID: "g2", Title: "gail two"}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	got := tasks.TasksForUser("u1")
	if len(got) != 2 || got[0].ID != "g1" || got[1].ID != "g2" {
		t.Errorf("TasksForUser(u1) = %+v, want g1 then g2", got)
	}
	if admin := tasks.TasksForUser(DefaultAdminID); len(admin) != 1 || admin[0].ID != "a1" {
		t.Errorf("TasksForUser(admin) = %+v, want a1 only", admin)
	}
}

func TestTaskStats(t *testing.T) {
	_, _, auth, tasks := newTaskFixture(t)
	loginAdmin(t, auth)

	seed := []struct {
		id     string
		status string
	}{
		{"t1", model.StatusPending},
		{"t2", model.StatusPending},
		{"t3", model.StatusInProgress},
		{"t4", model.StatusCompleted},
	}
	for _, s := range seed {
		if err := tasks.Add(model.Task{ID: s.id, Title: s.id, Status: s.status}); err != nil {
			t.Fatalf("Add %s: %v", s.id, err)
		}
	}

	got := tasks.Stats()
	want := Stats{Total: 4, Pending: 2, InProgress: 1, Completed: 1}
	if got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}
}

func TestTaskReplaceAllRoundTrip(t *testing.T) {
	s, _, auth, tasks := newTaskFixture(t)
	loginAdmin(t, auth)

	now := time.Now().UTC().Truncate(time.Second)
	next := []model.Task{
		{ID: "x", UserID: "1", Title: "one", Status: model.StatusPending, Priority: model.PriorityLow, CreatedAt: now, UpdatedAt: now},
		{ID: "y", UserID: "1", Title: "two", Status: model.StatusCompleted, Priority: model.PriorityHigh, CreatedAt: now, UpdatedAt: now},
	}
	tasks.ReplaceAll(next)

	reloaded := NewTaskStore(s, auth)
	got := reloaded.Tasks()
	if len(got) != 2 {
		t.Fatalf("reloaded %d tasks, want 2", len(got))
	}
	for i := range next {
		if got[i].ID != next[i].ID || got[i].Title != next[i].Title ||
			got[i].Status != next[i].Status || got[i].Priority != next[i].Priority {
			t.Errorf("task[%d] = %+v, want %+v", i, got[i], next[i])
		}
		if !got[i].CreatedAt.Equal(next[i].CreatedAt) {
			t.Errorf("task[%d].CreatedAt = %v, want %v", i, got[i].CreatedAt, next[i].CreatedAt)
		}
	}
}
