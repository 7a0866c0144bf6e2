package detail

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskmaster/internal/keys"
	"github.com/nhle/taskmaster/internal/model"
	"github.com/nhle/taskmaster/internal/theme"
)

// BackMsg signals the parent to return to the task list.
type BackMsg struct{}

// Model is the read-only task detail panel.
type Model struct {
	keys   *keys.KeyMap
	task   model.Task
	width  int
	height int
}

// New creates a new detail view model.
func New(k *keys.KeyMap, width, height int) Model {
	return Model{
		keys:   k,
		width:  width,
		height: height,
	}
}

// SetTask sets the task being displayed.
func (m *Model) SetTask(task model.Task) {
	m.task = task
}

// Task returns the task being displayed.
func (m Model) Task() model.Task {
	return m.task
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if key.Matches(keyMsg, m.keys.Back) {
			return m, func() tea.Msg { return BackMsg{} }
		}
	}
	return m, nil
}

// View renders the task detail panel.
func (m Model) View() string {
	t := m.task

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite)

	var b strings.Builder
	b.WriteString(titleStyle.Render(t.Title))
	b.WriteString("\n\n")

	b.WriteString(theme.StatusStyle(t.Status).Render(t.Status))
	b.WriteString(" ")
	b.WriteString(theme.PriorityStyle(t.Priority).Render(t.Priority))
	if t.IsOverdue() {
		b.WriteString(theme.OverdueStyle.Render(" OVERDUE"))
	}
	b.WriteString("\n\n")

	if t.Description != "" {
		b.WriteString(t.Description)
		b.WriteString("\n\n")
	}

	meta := theme.DimmedStyle
	if t.DueDate != nil {
		b.WriteString(meta.Render("Due:     " + t.DueDate.Format("2006-01-02")))
		b.WriteString("\n")
	}
	b.WriteString(meta.Render("Created: " + t.CreatedAt.Format("2006-01-02 15:04")))
	b.WriteString("\n")
	b.WriteString(meta.Render("Updated: " + t.UpdatedAt.Format("2006-01-02 15:04")))

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(b.String())
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
