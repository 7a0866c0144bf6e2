package tasklist

import (
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskmaster/internal/keys"
	"github.com/nhle/taskmaster/internal/model"
	"github.com/nhle/taskmaster/internal/store"
	"github.com/nhle/taskmaster/internal/theme"
)

// SelectedTaskMsg is sent when a user selects a task.
type SelectedTaskMsg struct {
	TaskID string
}

// statusFilters defines the status filter cycle toggled by f.
// The empty string means no filter.
var statusFilters = []string{
	"",
	model.StatusPending,
	model.StatusInProgress,
	model.StatusCompleted,
}

// sortModes defines the available sort modes cycled by Tab. "created"
// preserves the store's insertion order.
var sortModes = []string{
	"created",
	"updated",
	"due",
	"priority",
	"title",
}

// Model is the task list view for the signed-in user's own tasks.
type Model struct {
	list          list.Model
	tasks         *store.TaskStore
	auth          *store.AuthStore
	keys          *keys.KeyMap
	showCompleted bool
	statusIndex   int
	sortIndex   int
	query       string
	searchMode  bool
	searchInput textinput.Model
	width       int
	height      int
}

// New creates a new task list model. showCompleted comes from the
// display configuration; when false, completed tasks are hidden unless
// the completed status filter is selected.
func New(tasks *store.TaskStore, auth *store.AuthStore, k *keys.KeyMap, showCompleted bool, width, height int) Model {
	delegate := TaskDelegate{}
	l := list.New([]list.Item{}, delegate, width, height-2)
	l.Title = "My Tasks"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	si := textinput.New()
	si.Placeholder = "search tasks..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		list:          l,
		tasks:         tasks,
		auth:          auth,
		keys:          k,
		showCompleted: showCompleted,
		searchInput:   si,
		width:         width,
		height:        height,
	}
}

// Reload refreshes the visible items from the store, applying the
// current search, status filter, and sort mode. The stores run on the
// UI thread, so this is a plain synchronous read.
func (m *Model) Reload() tea.Cmd {
	user := m.auth.User()
	if user == nil {
		return m.list.SetItems(nil)
	}

	tasks := m.tasks.TasksForUser(user.ID)

	filter := statusFilters[m.statusIndex]
	if !m.showCompleted && filter != model.StatusCompleted {
		visible := tasks[:0]
		for _, t := range tasks {
			if t.Status != model.StatusCompleted {
				visible = append(visible, t)
			}
		}
		tasks = visible
	}

	if f := filter; f != "" {
		filtered := tasks[:0]
		for _, t := range tasks {
			if t.Status == f {
				filtered = append(filtered, t)
			}
		}
		tasks = filtered
	}

	if m.query != "" {
		q := strings.ToLower(m.query)
		filtered := tasks[:0]
		for _, t := range tasks {
			if strings.Contains(strings.ToLower(t.Title), q) ||
				strings.Contains(strings.ToLower(t.Description), q) {
				filtered = append(filtered, t)
			}
		}
		tasks = filtered
	}

	sortTasks(tasks, sortModes[m.sortIndex])

	items := make([]list.Item, len(tasks))
	for i, t := range tasks {
		items[i] = TaskItem{Task: t}
	}
	return m.list.SetItems(items)
}

// Searching reports whether the search input currently has focus. The
// root model suspends its global shortcuts while text is being typed.
func (m Model) Searching() bool {
	return m.searchMode
}

// SelectedTask returns the currently highlighted task.
func (m Model) SelectedTask() (model.Task, bool) {
	item, ok := m.list.SelectedItem().(TaskItem)
	if !ok {
		return model.Task{}, false
	}
	return item.Task, true
}

// Update handles messages for the task list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if m.searchMode {
			return m.handleSearchKeys(keyMsg)
		}
		return m.handleNormalKeys(keyMsg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleSearchKeys processes key input while in search mode.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		m.query = m.searchInput.Value()
		return m, m.Reload()

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		m.query = ""
		return m, m.Reload()
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// handleNormalKeys processes key input in normal (non-search) mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		item, ok := m.list.SelectedItem().(TaskItem)
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg {
			return SelectedTaskMsg{TaskID: item.Task.ID}
		}

	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.Reset()
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keys.FilterStatus):
		m.statusIndex = (m.statusIndex + 1) % len(statusFilters)
		return m, m.Reload()

	case key.Matches(msg, m.keys.CycleSort):
		m.sortIndex = (m.sortIndex + 1) % len(sortModes)
		return m, m.Reload()
	}

	// Delegate to the list for navigation keys (up/down/pgup/pgdn)
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// FilterSummary describes the active filters for the status bar.
func (m Model) FilterSummary() string {
	var parts []string
	if f := statusFilters[m.statusIndex]; f != "" {
		parts = append(parts, "status: "+f)
	}
	if m.query != "" {
		parts = append(parts, "search: "+m.query)
	}
	return strings.Join(parts, " | ")
}

// View renders the task list view.
func (m Model) View() string {
	if m.searchMode {
		searchBar := lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.searchInput.View())
		return lipgloss.JoinVertical(lipgloss.Left, searchBar, m.list.View())
	}

	if len(m.list.Items()) == 0 {
		return m.renderEmptyState()
	}

	return m.list.View()
}

// renderEmptyState shows guidance text when no tasks are visible.
func (m Model) renderEmptyState() string {
	hasFilters := statusFilters[m.statusIndex] != "" || m.query != ""

	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if hasFilters {
		return style.Render("No matching tasks.\nTry adjusting your filters.")
	}

	return style.Render("No tasks yet.\n\nPress n to create one.")
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
	m.searchInput.Width = width - 4
}

// sortTasks orders tasks in place for the given sort mode. "created"
// keeps insertion order; all sorts are stable so equal keys preserve
// the original relative order.
func sortTasks(tasks []model.Task, mode string) {
	switch mode {
	case "updated":
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].UpdatedAt.After(tasks[j].UpdatedAt)
		})
	case "due":
		sort.SliceStable(tasks, func(i, j int) bool {
			if tasks[i].DueDate == nil {
				return false
			}
			if tasks[j].DueDate == nil {
				return true
			}
			return tasks[i].DueDate.Before(*tasks[j].DueDate)
		})
	case "priority":
		sort.SliceStable(tasks, func(i, j int) bool {
			return priorityRank(tasks[i].Priority) < priorityRank(tasks[j].Priority)
		})
	case "title":
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].Title < tasks[j].Title
		})
	}
}

// priorityRank orders priorities from most to least urgent.
func priorityRank(p string) int {
	switch p {
	case model.PriorityHigh:
		return 0
	case model.PriorityMedium:
		return 1
	case model.PriorityLow:
		return 2
	default:
		return 3
	}
}
