package userform

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskmaster/internal/model"
	"github.com/nhle/taskmaster/internal/theme"
)

// CreatedMsg is dispatched when a new user is submitted via the form.
type CreatedMsg struct {
	User model.User
}

// UpdatedMsg is dispatched when an existing user is edited via the form.
type UpdatedMsg struct {
	UserID string
	Patch  model.UserPatch
}

// CancelMsg is dispatched when the admin cancels the form.
type CancelMsg struct{}

type formBindings struct {
	username string
	password string
	email    string
	role     string
	isActive bool
}

// Model is the Bubble Tea model for the admin create/edit user form.
type Model struct {
	form     *huh.Form
	fb       *formBindings
	editMode bool
	editID   string
	width    int
	height   int
}

// New creates a new user form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{role: model.RoleUser, isActive: true},
		width:  width,
		height: height,
	}
}

// StartCreate initializes the form for creating a new user.
func (m *Model) StartCreate() tea.Cmd {
	m.editMode = false
	m.editID = ""
	m.fb.username = ""
	m.fb.password = ""
	m.fb.email = ""
	m.fb.role = model.RoleUser
	m.fb.isActive = true
	m.form = m.buildForm()
	return m.form.Init()
}

// StartEdit initializes the form for editing an existing user.
func (m *Model) StartEdit(user model.User) tea.Cmd {
	m.editMode = true
	m.editID = user.ID
	m.fb.username = user.Username
	m.fb.password = user.Password
	m.fb.email = user.Email
	m.fb.role = user.Role
	m.fb.isActive = user.IsActive
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the user form.
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

// View renders the user form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "New User"
	if m.editMode {
		titleText = "Edit User"
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
				Title("Username").
				Placeholder("Username").
				Value(&m.fb.username).
				Validate(validateRequired("Username")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.password).
				Validate(validateRequired("Password")),
			huh.NewInput().
				Title("Email").
				Placeholder("user@example.com").
				Value(&m.fb.email),
			huh.NewSelect[string]().
				Title("Role").
				Options(
					huh.NewOption("User", model.RoleUser),
					huh.NewOption("Admin", model.RoleAdmin),
				).
				Value(&m.fb.role),
			huh.NewConfirm().
				Title("Active").
				Affirmative("Yes").
				Negative("No").
				Value(&m.fb.isActive),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) handleSubmit() tea.Cmd {
	if m.editMode {
		username := m.fb.username
		password := m.fb.password
		email := m.fb.email
		role := m.fb.role
		isActive := m.fb.isActive
		patch := model.UserPatch{
			Username: &username,
			Password: &password,
			Email:    &email,
			Role:     &role,
			IsActive: &isActive,
		}
		editID := m.editID
		return func() tea.Msg { return UpdatedMsg{UserID: editID, Patch: patch} }
	}

	user := model.User{
		Username: m.fb.username,
		Password: m.fb.password,
		Email:    m.fb.email,
		Role:     m.fb.role,
		IsActive: m.fb.isActive,
	}
	return func() tea.Msg { return CreatedMsg{User: user} }
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
