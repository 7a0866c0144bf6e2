package login

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	log "github.com/sirupsen/logrus"

	"github.com/nhle/taskmaster/internal/credential"
	"github.com/nhle/taskmaster/internal/theme"
)

// Keyring operations, indirected so tests can substitute a failing
// backend.
var (
	rememberLogin = credential.Remember
	forgetLogin   = credential.Forget
)

// SubmitMsg carries the credentials entered into the login form.
type SubmitMsg struct {
	Username string
	Password string
	Remember bool
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	username string
	password string
	remember bool
}

// Model is the Bubble Tea model for the sign-in form.
type Model struct {
	form     *huh.Form
	fb       *formBindings
	errorMsg string
	width    int
	height   int
}

// New creates a new login model. A previously remembered login, if one
// exists in the system keyring, prefills the form.
func New(width, height int) Model {
	fb := &formBindings{}
	if saved, err := credential.RememberedLogin(); err == nil {
		fb.username = saved.Username
		fb.password = saved.Password
		fb.remember = true
	}

	return Model{
		fb:     fb,
		width:  width,
		height: height,
	}
}

// Start builds a fresh form and returns its init command.
func (m *Model) Start() tea.Cmd {
	m.form = m.buildForm()
	return m.form.Init()
}

// SetError sets the inline error shown above the form, used by the
// parent after a rejected login attempt.
func (m *Model) SetError(msg string) {
	m.errorMsg = msg
}

// Update handles messages for the login form.
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
		// There is nowhere to go back to from the sign-in screen;
		// restart the form instead.
		return m, m.Start()
	}

	return m, cmd
}

// View renders the sign-in screen.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render("Sign in to TaskMaster")
	if m.errorMsg != "" {
		content += "\n" + theme.ErrorStyle.Render(m.errorMsg)
	}
	content += "\n" + m.form.View()

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
			huh.NewConfirm().
				Title("Remember me").
				Affirmative("Yes").
				Negative("No").
				Value(&m.fb.remember),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) handleSubmit() tea.Cmd {
	fb := m.fb
	return func() tea.Msg {
		// Keyring failures must not block the login itself, but they
		// should be diagnosable from the log file.
		if fb.remember {
			err := rememberLogin(credential.Login{
				Username: fb.username,
				Password: fb.password,
			})
			if err != nil {
				log.WithError(err).Warn("saving remembered login")
			}
		} else if err := forgetLogin(); err != nil {
			log.WithError(err).Warn("clearing remembered login")
		}
		return SubmitMsg{
			Username: fb.username,
			Password: fb.password,
			Remember: fb.remember,
		}
	}
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 80 {
		w = 80
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
