package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/nhle/taskmaster/internal/kv"
	"github.com/nhle/taskmaster/internal/model"
)

// TaskStore owns the ordered collection of tasks. Ownership is enforced
// at write time: Add stamps the owner from the active session, so a
// caller cannot create a task on another user's behalf.
type TaskStore struct {
	kv    *kv.Store
	auth  *AuthStore
	tasks []model.Task
}

// NewTaskStore loads persisted tasks from the kv store. Absent or
// unparsable data falls back to an empty collection.
func NewTaskStore(s *kv.Store, auth *AuthStore) *TaskStore {
	ts := &TaskStore{kv: s, auth: auth}
	if err := s.Load(kv.TasksKey, &ts.tasks); err != nil {
		ts.tasks = nil
	}
	return ts
}

// Tasks returns a snapshot of all tasks in insertion order.
func (s *TaskStore) Tasks() []model.Task {
	out := make([]model.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// ReplaceAll overwrites the entire collection and persists.
func (s *TaskStore) ReplaceAll(tasks []model.Task) {
	s.tasks = make([]model.Task, len(tasks))
	copy(s.tasks, tasks)
	s.persist()
}

// Add appends a new task owned by the authenticated user. The incoming
// task's UserID is overridden with the session's user id, and both
// timestamps are stamped with the current time. An empty id is filled
// with a generated UUID; an empty status defaults to pending and an
// empty priority to medium. Returns ErrNotAuthenticated when there is
// no active session.
func (s *TaskStore) Add(task model.Task) error {
	user := s.auth.User()
	if user == nil {
		return fmt.Errorf("adding task: %w", ErrNotAuthenticated)
	}
	if strings.TrimSpace(task.Title) == "" {
		return fmt.Errorf("task title must not be empty")
	}

	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	if task.Status == "" {
		task.Status = model.StatusPending
	}
	if task.Priority == "" {
		task.Priority = model.PriorityMedium
	}

	now := time.Now()
	task.UserID = user.ID
	task.CreatedAt = now
	task.UpdatedAt = now

	s.tasks = append(s.tasks, task)
	s.persist()
	return nil
}

// Update merges the patch into the task with the given id, always
// refreshing UpdatedAt. Returns ErrNotFound when no task matches.
func (s *TaskStore) Update(id string, patch model.TaskPatch) error {
	for i := range s.tasks {
		if s.tasks[i].ID != id {
			continue
		}
		patch.Apply(&s.tasks[i])
		s.tasks[i].UpdatedAt = time.Now()
		s.persist()
		return nil
	}
	return fmt.Errorf("updating task %s: %w", id, ErrNotFound)
}

// Delete removes the task with the given id.
// Returns ErrNotFound when no task matches.
func (s *TaskStore) Delete(id string) error {
	for i := range s.tasks {
		if s.tasks[i].ID != id {
			continue
		}
		s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
		s.persist()
		return nil
	}
	return fmt.Errorf("deleting task %s: %w", id, ErrNotFound)
}

// FindByID returns the task with the given id.
func (s *TaskStore) FindByID(id string) (model.Task, bool) {
	for _, t := range s.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}

// TasksForUser returns a fresh snapshot of the tasks owned by userId,
// preserving their original relative order.
func (s *TaskStore) TasksForUser(userID string) []model.Task {
	var out []model.Task
	for _, t := range s.tasks {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out
}

// Stats holds aggregate task counts for the admin dashboard.
type Stats struct {
	Total      int
	Pending    int
	InProgress int
	Completed  int
}

// Stats computes aggregate counts across all tasks.
func (s *TaskStore) Stats() Stats {
	var st Stats
	st.Total = len(s.tasks)
	for _, t := range s.tasks {
		switch t.Status {
		case model.StatusPending:
			st.Pending++
		case model.StatusInProgress:
			st.InProgress++
		case model.StatusCompleted:
			st.Completed++
		}
	}
	return st
}

// persist writes the full collection through to the kv store. A write
// failure is logged and the in-memory state kept.
func (s *TaskStore) persist() {
	if err := s.kv.Save(kv.TasksKey, s.tasks); err != nil {
		log.WithError(err).Error("persisting tasks")
	}
}
