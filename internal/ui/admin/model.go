package admin

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskmaster/internal/keys"
	"github.com/nhle/taskmaster/internal/model"
	"github.com/nhle/taskmaster/internal/store"
	"github.com/nhle/taskmaster/internal/theme"
)

// CloseMsg signals the parent to leave the admin dashboard.
type CloseMsg struct{}

// RequestNewUserMsg asks the parent to open the user form in create mode.
type RequestNewUserMsg struct{}

// RequestEditUserMsg asks the parent to open the user form for a user.
type RequestEditUserMsg struct {
	User model.User
}

// RequestEditTaskMsg asks the parent to open the task form for any
// user's task.
type RequestEditTaskMsg struct {
	Task model.Task
}

// tab identifies the active dashboard tab.
type tab int

const (
	tabTasks tab = iota
	tabUsers
)

type adminMode int

const (
	modeBrowse adminMode = iota
	modeConfirmDelete
)

// confirmKind identifies what the active confirmation form deletes.
type confirmKind int

const (
	confirmUser confirmKind = iota
	confirmTask
)

type formBindings struct {
	confirm bool
}

// Model is the admin dashboard: aggregate task statistics, the full
// task table with per-user filtering and edit/delete actions, and user
// management. The parent gates access to admins.
type Model struct {
	users       *store.UserStore
	tasks       *store.TaskStore
	auth        *store.AuthStore
	keys        *keys.KeyMap
	activeTab   tab
	mode        adminMode
	selectedIdx int
	filterUser  string
	confirmForm *huh.Form
	confirmWhat confirmKind
	confirmID   string
	fb          *formBindings
	statusMsg   string
	width       int
	height      int
}

// New creates a new admin dashboard model.
func New(users *store.UserStore, tasks *store.TaskStore, auth *store.AuthStore, k *keys.KeyMap, width, height int) Model {
	return Model{
		users: users,
		tasks: tasks,
		auth:  auth,
		keys:  k,
		fb:    &formBindings{},
		width: width, height: height,
	}
}

// Reset returns the dashboard to its initial tab and clears transient state.
func (m *Model) Reset() {
	m.activeTab = tabTasks
	m.mode = modeBrowse
	m.selectedIdx = 0
	m.filterUser = ""
	m.statusMsg = ""
}

// Confirming reports whether a delete confirmation form is active. The
// root model suspends its global shortcuts while the form has focus.
func (m Model) Confirming() bool {
	return m.mode == modeConfirmDelete
}

// visibleTasks returns the tasks shown in the tasks tab, narrowed to
// the filtered user when a filter is set.
func (m Model) visibleTasks() []model.Task {
	if m.filterUser == "" {
		return m.tasks.Tasks()
	}
	return m.tasks.TasksForUser(m.filterUser)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.mode == modeConfirmDelete {
			return m.updateConfirm(msg)
		}
		return m.handleKey(msg)
	}

	if m.mode == modeConfirmDelete {
		return m.updateConfirm(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }

	case key.Matches(msg, m.keys.NextTab):
		if m.activeTab == tabTasks {
			m.activeTab = tabUsers
		} else {
			m.activeTab = tabTasks
		}
		m.selectedIdx = 0
		m.statusMsg = ""
		return m, nil
	}

	if m.activeTab == tabTasks {
		return m.handleTaskKey(msg)
	}
	return m.handleUserKey(msg)
}

func (m Model) handleTaskKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	tasks := m.visibleTasks()

	switch {
	case key.Matches(msg, m.keys.Down):
		if len(tasks) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(tasks)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(tasks) > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = len(tasks) - 1
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.FilterStatus):
		m.filterUser = m.nextUserFilter()
		m.selectedIdx = 0
		return m, nil

	case msg.String() == "e":
		if len(tasks) == 0 || m.selectedIdx >= len(tasks) {
			return m, nil
		}
		t := tasks[m.selectedIdx]
		return m, func() tea.Msg { return RequestEditTaskMsg{Task: t} }

	case msg.String() == "d":
		if len(tasks) == 0 || m.selectedIdx >= len(tasks) {
			return m, nil
		}
		t := tasks[m.selectedIdx]
		m.fb.confirm = false
		m.confirmWhat = confirmTask
		m.confirmID = t.ID
		m.confirmForm = m.buildTaskConfirmForm(t)
		m.mode = modeConfirmDelete
		return m, m.confirmForm.Init()
	}

	return m, nil
}

// nextUserFilter cycles the task filter through all users and back to
// the unfiltered view.
func (m Model) nextUserFilter() string {
	users := m.users.Users()
	if len(users) == 0 {
		return ""
	}
	if m.filterUser == "" {
		return users[0].ID
	}
	for i, u := range users {
		if u.ID == m.filterUser {
			if i+1 < len(users) {
				return users[i+1].ID
			}
			return ""
		}
	}
	return ""
}

func (m Model) handleUserKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	users := m.users.Users()

	switch {
	case key.Matches(msg, m.keys.Down):
		if len(users) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(users)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(users) > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = len(users) - 1
			}
		}
		return m, nil

	case msg.String() == "n":
		return m, func() tea.Msg { return RequestNewUserMsg{} }

	case msg.String() == "e":
		if len(users) == 0 {
			return m, nil
		}
		u := users[m.selectedIdx]
		return m, func() tea.Msg { return RequestEditUserMsg{User: u} }

	case msg.String() == "a":
		// Toggle active flag in place.
		if len(users) == 0 {
			return m, nil
		}
		u := users[m.selectedIdx]
		active := !u.IsActive
		if err := m.users.Update(u.ID, model.UserPatch{IsActive: &active}); err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", err)
		} else if active {
			m.statusMsg = fmt.Sprintf("Activated %s", u.Username)
		} else {
			m.statusMsg = fmt.Sprintf("Deactivated %s", u.Username)
		}
		return m, nil

	case msg.String() == "r":
		// Toggle between the user and admin roles.
		if len(users) == 0 {
			return m, nil
		}
		u := users[m.selectedIdx]
		role := model.RoleUser
		if u.Role == model.RoleUser {
			role = model.RoleAdmin
		}
		if err := m.users.Update(u.ID, model.UserPatch{Role: &role}); err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", err)
		} else {
			m.statusMsg = fmt.Sprintf("%s is now %s", u.Username, role)
		}
		return m, nil

	case msg.String() == "d":
		if len(users) == 0 {
			return m, nil
		}
		u := users[m.selectedIdx]
		m.fb.confirm = false
		m.confirmWhat = confirmUser
		m.confirmID = u.ID
		m.confirmForm = m.buildUserConfirmForm(u)
		m.mode = modeConfirmDelete
		return m, m.confirmForm.Init()
	}

	return m, nil
}

func (m Model) buildUserConfirmForm(u model.User) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete user %q?", u.Username)).
				Description("Their tasks will remain, without an owner.").
				Affirmative("Yes, delete").
				Negative("Cancel").
				Value(&m.fb.confirm),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) buildTaskConfirmForm(t model.Task) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete task %q?", t.Title)).
				Affirmative("Yes, delete").
				Negative("Cancel").
				Value(&m.fb.confirm),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	if m.confirmForm == nil {
		return m, nil
	}
	mdl, cmd := m.confirmForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirmForm = f
	}
	if m.confirmForm.State == huh.StateCompleted {
		if m.fb.confirm {
			m = m.applyConfirmedDelete()
		}
		m.mode = modeBrowse
		return m, nil
	}
	if m.confirmForm.State == huh.StateAborted {
		m.mode = modeBrowse
		return m, nil
	}
	return m, cmd
}

// applyConfirmedDelete deletes the record captured when the
// confirmation form was opened.
func (m Model) applyConfirmedDelete() Model {
	switch m.confirmWhat {
	case confirmUser:
		u, ok := m.users.FindByID(m.confirmID)
		if !ok {
			return m
		}
		if err := m.users.Delete(u.ID); err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", err)
		} else {
			m.statusMsg = fmt.Sprintf("Deleted %s", u.Username)
		}

	case confirmTask:
		t, ok := m.tasks.FindByID(m.confirmID)
		if !ok {
			return m
		}
		if err := m.tasks.Delete(t.ID); err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", err)
		} else {
			m.statusMsg = fmt.Sprintf("Deleted task %q", t.Title)
		}
	}

	if m.selectedIdx > 0 {
		m.selectedIdx--
	}
	return m
}

// View renders the admin dashboard.
func (m Model) View() string {
	if m.mode == modeConfirmDelete {
		if m.confirmForm == nil {
			return ""
		}
		return lipgloss.NewStyle().Padding(1, 2).Render(m.confirmForm.View())
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).MarginBottom(1)
	b.WriteString(titleStyle.Render("Admin Dashboard"))
	b.WriteString("\n\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	if m.activeTab == tabTasks {
		b.WriteString(m.renderTasksTab())
	} else {
		b.WriteString(m.renderUsersTab())
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorYellow).Italic(true).Render(m.statusMsg))
	}

	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorGray).Render(m.hints()))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(b.String())
}

func (m Model) hints() string {
	if m.activeTab == tabUsers {
		return "n new | e edit | a activate/deactivate | r toggle role | d delete | tab switch | esc back"
	}
	return "e edit | d delete | f filter by user | tab switch | esc back"
}

func (m Model) renderTabs() string {
	active := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBlue).Underline(true)
	inactive := lipgloss.NewStyle().Foreground(theme.ColorGray)

	tasksLabel := "Tasks"
	usersLabel := "Users"
	if m.activeTab == tabTasks {
		return active.Render(tasksLabel) + "   " + inactive.Render(usersLabel)
	}
	return inactive.Render(tasksLabel) + "   " + active.Render(usersLabel)
}

// renderTasksTab shows aggregate counters and the task table, narrowed
// to the filtered user when a filter is active.
func (m Model) renderTasksTab() string {
	stats := m.tasks.Stats()

	cards := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.statCard("Total", stats.Total, theme.ColorBlue),
		m.statCard("Completed", stats.Completed, theme.ColorGreen),
		m.statCard("In Progress", stats.InProgress, theme.ColorYellow),
		m.statCard("Pending", stats.Pending, theme.ColorRed),
	)

	var b strings.Builder
	b.WriteString(cards)
	b.WriteString("\n\n")

	if m.filterUser != "" {
		owner := "(deleted user)"
		if u, ok := m.users.FindByID(m.filterUser); ok {
			owner = u.Username
		}
		b.WriteString(theme.DimmedStyle.Render("Showing tasks for " + owner))
		b.WriteString("\n\n")
	}

	tasks := m.visibleTasks()
	if len(tasks) == 0 {
		if m.filterUser != "" {
			b.WriteString(theme.DimmedStyle.Italic(true).Render("No tasks for this user."))
		} else {
			b.WriteString(theme.DimmedStyle.Italic(true).Render("No tasks in the system."))
		}
		return b.String()
	}

	for i, t := range tasks {
		owner := "(deleted user)"
		if u, ok := m.users.FindByID(t.UserID); ok {
			owner = u.Username
		}
		line := fmt.Sprintf(
			"%s %s %s  %s",
			theme.StatusStyle(t.Status).Render(t.Status),
			theme.PriorityStyle(t.Priority).Render(t.Priority),
			t.Title,
			theme.DimmedStyle.Render("— "+owner),
		)
		if i == m.selectedIdx {
			b.WriteString(theme.SelectedItemStyle.Render(line))
		} else {
			b.WriteString(theme.ListItemStyle.Render(line))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) statCard(label string, value int, color lipgloss.AdaptiveColor) string {
	valueStyle := lipgloss.NewStyle().Bold(true).Foreground(color)
	labelStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	return theme.PanelStyle.Render(
		valueStyle.Render(fmt.Sprintf("%d", value)) + "\n" + labelStyle.Render(label),
	)
}

// renderUsersTab shows the registered users with role and status badges.
func (m Model) renderUsersTab() string {
	users := m.users.Users()
	if len(users) == 0 {
		return theme.DimmedStyle.Italic(true).Render("No users registered.")
	}

	self := m.auth.User()

	var b strings.Builder
	for i, u := range users {
		status := "active"
		statusStyle := lipgloss.NewStyle().Foreground(theme.ColorGreen)
		if !u.IsActive {
			status = "inactive"
			statusStyle = lipgloss.NewStyle().Foreground(theme.ColorRed)
		}

		selfMarker := ""
		if self != nil && self.ID == u.ID {
			selfMarker = theme.DimmedStyle.Render(" (you)")
		}

		line := fmt.Sprintf(
			"%s %s %s  %s%s",
			theme.RoleStyle(u.Role).Render(u.Role),
			statusStyle.Render(status),
			u.Username,
			theme.DimmedStyle.Render(u.Email),
			selfMarker,
		)

		if i == m.selectedIdx {
			b.WriteString(theme.SelectedItemStyle.Render(line))
		} else {
			b.WriteString(theme.ListItemStyle.Render(line))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
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
