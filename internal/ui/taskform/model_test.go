package taskform

import (
	"testing"
	"time"

	"github.com/nhle/taskmaster/internal/model"
)

func TestEditSubmitClearsEmptiedDueDate(t *testing.T) {
	due := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	m := New(80, 24)
	m.StartEdit(model.Task{ID: "t1", Title: "dated", DueDate: &due})

	// The user blanks the due date field before submitting.
	m.fb.dueDate = ""
	msg, ok := m.handleSubmit()().(UpdatedMsg)
	if !ok {
		t.Fatal("submit did not produce an UpdatedMsg")
	}
	if !msg.Patch.ClearDueDate {
		t.Error("emptied due date did not set ClearDueDate")
	}
	if msg.Patch.DueDate != nil {
		t.Errorf("Patch.DueDate = %v, want nil", msg.Patch.DueDate)
	}
}

func TestEditSubmitKeepsEnteredDueDate(t *testing.T) {
	m := New(80, 24)
	m.StartEdit(model.Task{ID: "t1", Title: "dated"})

	m.fb.dueDate = "2026-09-15"
	msg, ok := m.handleSubmit()().(UpdatedMsg)
	if !ok {
		t.Fatal("submit did not produce an UpdatedMsg")
	}
	if msg.Patch.ClearDueDate {
		t.Error("ClearDueDate set even though a date was entered")
	}
	if msg.Patch.DueDate == nil || msg.Patch.DueDate.Format("2006-01-02") != "2026-09-15" {
		t.Errorf("Patch.DueDate = %v, want 2026-09-15", msg.Patch.DueDate)
	}
}
