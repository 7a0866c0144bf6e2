package taskform

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskmaster/internal/model"
	"github.com/nhle/taskmaster/internal/theme"
)

// CreatedMsg is dispatched when a new task is submitted via the form.
type CreatedMsg struct {
	Task model.Task
}

// UpdatedMsg is dispatched when an existing task is edited via the form.
type UpdatedMsg struct {
	TaskID string
	Patch  model.TaskPatch
}

// CancelMsg is dispatched when the user cancels the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title       string
	description string
	status      string
	priority    string
	dueDate     string
}

// Model is the Bubble Tea model for the task create/edit form.
type Model struct {
	form     *huh.Form
	fb       *formBindings
	editMode bool
	editID   string
	width    int
	height   int
}

// New creates a new task form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{status: model.StatusPending, priority: model.PriorityMedium},
		width:  width,
		height: height,
	}
}

// StartCreate initializes the form for creating a new task.
func (m *Model) StartCreate() tea.Cmd {
	m.editMode = false
	m.editID = ""
	m.fb.title = ""
	m.fb.description = ""
	m.fb.status = model.StatusPending
	m.fb.priority = model.PriorityMedium
	m.fb.dueDate = ""
	m.form = m.buildForm()
	return m.form.Init()
}

// StartEdit initializes the form for editing an existing task.
func (m *Model) StartEdit(task model.Task) tea.Cmd {
	m.editMode = true
	m.editID = task.ID
	m.fb.title = task.Title
	m.fb.description = task.Description
	m.fb.status = task.Status
	m.fb.priority = task.Priority
	if task.DueDate != nil {
		m.fb.dueDate = task.DueDate.Format("2006-01-02")
	} else {
		m.fb.dueDate = ""
	}
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the task form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the task form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "New Task"
	if m.editMode {
		titleText = "Edit Task"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render(titleText) + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Placeholder("What needs to be done?").
				Value(&m.fb.title).
				Validate(validateRequired("Title")),
			huh.NewText().
				Title("Description").
				Placeholder("Optional details...").
				Value(&m.fb.description),
			huh.NewSelect[string]().
				Title("Status").
				Options(
					huh.NewOption("Pending", model.StatusPending),
					huh.NewOption("In Progress", model.StatusInProgress),
					huh.NewOption("Completed", model.StatusCompleted),
				).
				Value(&m.fb.status),
			huh.NewSelect[string]().
				Title("Priority").
				Options(
					huh.NewOption("High", model.PriorityHigh),
					huh.NewOption("Medium", model.PriorityMedium),
					huh.NewOption("Low", model.PriorityLow),
				).
				Value(&m.fb.priority),
			huh.NewInput().
				Title("Due Date").
				Placeholder("YYYY-MM-DD (optional)").
				Value(&m.fb.dueDate).
				Validate(validateOptionalDate),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) handleSubmit() tea.Cmd {
	var dueDate *time.Time
	if m.fb.dueDate != "" {
		if t, err := time.Parse("2006-01-02", m.fb.dueDate); err == nil {
			dueDate = &t
		}
	}

	if m.editMode {
		// Copy the bound values so the patch does not alias form state.
		title := m.fb.title
		description := m.fb.description
		status := m.fb.status
		priority := m.fb.priority
		patch := model.TaskPatch{
			Title:       &title,
			Description: &description,
			Status:      &status,
			Priority:    &priority,
			DueDate:     dueDate,
			// An emptied input clears the due date rather than
			// leaving it as it was.
			ClearDueDate: dueDate == nil,
		}
		editID := m.editID
		return func() tea.Msg { return UpdatedMsg{TaskID: editID, Patch: patch} }
	}

	task := model.Task{
		Title:       m.fb.title,
		Description: m.fb.description,
		Status:      m.fb.status,
		Priority:    m.fb.priority,
		DueDate:     dueDate,
	}
	return func() tea.Msg { return CreatedMsg{Task: task} }
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateOptionalDate(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	_, err := time.Parse("2006-01-02", s)
	if err != nil {
		return fmt.Errorf("invalid date format, use YYYY-MM-DD")
	}
	return nil
}
