package app

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"

	"github.com/nhle/taskmaster/internal/keys"
	"github.com/nhle/taskmaster/internal/model"
	"github.com/nhle/taskmaster/internal/store"
	"github.com/nhle/taskmaster/internal/ui"
	adminview "github.com/nhle/taskmaster/internal/ui/admin"
	"github.com/nhle/taskmaster/internal/ui/detail"
	helpview "github.com/nhle/taskmaster/internal/ui/help"
	loginview "github.com/nhle/taskmaster/internal/ui/login"
	"github.com/nhle/taskmaster/internal/ui/taskform"
	"github.com/nhle/taskmaster/internal/ui/tasklist"
	"github.com/nhle/taskmaster/internal/ui/userform"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewLogin ViewState = iota
	ViewList
	ViewDetail
	ViewTaskCreate
	ViewTaskEdit
	ViewAdmin
	ViewUserCreate
	ViewUserEdit
	ViewHelp
)

// Stores bundles the application state passed into the UI. The stores
// are constructed once in main and shared by reference; the UI never
// builds its own.
type Stores struct {
	Users *store.UserStore
	Auth  *store.AuthStore
	Tasks *store.TaskStore
}

// Model is the root Bubble Tea model. It routes between views and
// enforces the authentication and role gates: every view except login
// requires a session, and the admin dashboard requires the admin role.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	stores       Stores
	keys         *keys.KeyMap
	loginView    loginview.Model
	taskList     tasklist.Model
	detailView   detail.Model
	taskFormView taskform.Model
	adminView    adminview.Model
	userFormView userform.Model
	helpView     helpview.Model
	ready        bool
	statusMsg    string
}

// New creates the root application model with the given stores and
// display configuration.
func New(cfg *model.AppConfig, s Stores) Model {
	k := keys.DefaultKeyMap()

	m := Model{
		currentView:  ViewLogin,
		stores:       s,
		keys:         k,
		loginView:    loginview.New(80, 24),
		taskList:     tasklist.New(s.Tasks, s.Auth, k, cfg.Display.ShowCompleted, 80, 24),
		detailView:   detail.New(k, 80, 24),
		taskFormView: taskform.New(80, 24),
		adminView:    adminview.New(s.Users, s.Tasks, s.Auth, k, 80, 24),
		userFormView: userform.New(80, 24),
		helpView:     helpview.New(k, 80, 24),
	}

	// A persisted session skips the login screen.
	if s.Auth.IsAuthenticated() {
		m.currentView = m.homeView()
	}

	return m
}

// homeView returns the landing view for the authenticated user:
// admins land on the dashboard, everyone else on their task list.
func (m Model) homeView() ViewState {
	if u := m.stores.Auth.User(); u != nil && u.IsAdmin() {
		return ViewAdmin
	}
	return ViewList
}

// Init returns the initial command for the starting view.
func (m Model) Init() tea.Cmd {
	if m.currentView == ViewLogin {
		return m.loginView.Start()
	}
	return m.taskList.Reload()
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.loginView.SetSize(contentWidth, contentHeight)
		m.taskList.SetSize(contentWidth, contentHeight)
		m.detailView.SetSize(contentWidth, contentHeight)
		m.taskFormView.SetSize(contentWidth, contentHeight)
		m.adminView.SetSize(contentWidth, contentHeight)
		m.userFormView.SetSize(contentWidth, contentHeight)
		m.helpView.SetSize(contentWidth, contentHeight)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case loginview.SubmitMsg:
		if !m.stores.Auth.Login(msg.Username, msg.Password) {
			m.loginView.SetError("Invalid username or password")
			return m, m.loginView.Start()
		}
		log.WithField("username", msg.Username).Info("user logged in")
		m.loginView.SetError("")
		m.statusMsg = ""
		m.currentView = m.homeView()
		m.adminView.Reset()
		return m, m.taskList.Reload()

	case tasklist.SelectedTaskMsg:
		task, ok := m.stores.Tasks.FindByID(msg.TaskID)
		if !ok {
			return m, nil
		}
		m.previousView = m.currentView
		m.currentView = ViewDetail
		m.detailView.SetTask(task)
		return m, nil

	case detail.BackMsg:
		m.currentView = ViewList
		return m, nil

	case taskform.CreatedMsg:
		m.currentView = m.taskFormReturnView()
		if err := m.stores.Tasks.Add(msg.Task); err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", err)
		} else {
			m.statusMsg = "Task created"
		}
		return m, m.taskList.Reload()

	case taskform.UpdatedMsg:
		m.currentView = m.taskFormReturnView()
		if err := m.stores.Tasks.Update(msg.TaskID, msg.Patch); err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", err)
		} else {
			m.statusMsg = "Task updated"
		}
		return m, m.taskList.Reload()

	case taskform.CancelMsg:
		m.currentView = m.taskFormReturnView()
		return m, nil

	case adminview.CloseMsg:
		m.currentView = ViewList
		return m, m.taskList.Reload()

	case adminview.RequestNewUserMsg:
		m.previousView = m.currentView
		m.currentView = ViewUserCreate
		return m, m.userFormView.StartCreate()

	case adminview.RequestEditUserMsg:
		m.previousView = m.currentView
		m.currentView = ViewUserEdit
		return m, m.userFormView.StartEdit(msg.User)

	case adminview.RequestEditTaskMsg:
		m.previousView = m.currentView
		m.currentView = ViewTaskEdit
		return m, m.taskFormView.StartEdit(msg.Task)

	case userform.CreatedMsg:
		m.currentView = ViewAdmin
		if err := m.stores.Users.Add(msg.User); err != nil {
			if errors.Is(err, store.ErrDuplicateKey) {
				m.statusMsg = "Error: username already taken"
			} else {
				m.statusMsg = fmt.Sprintf("Error: %v", err)
			}
		} else {
			m.statusMsg = fmt.Sprintf("User %s created", msg.User.Username)
		}
		return m, nil

	case userform.UpdatedMsg:
		m.currentView = ViewAdmin
		if err := m.stores.Users.Update(msg.UserID, msg.Patch); err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", err)
		} else {
			m.statusMsg = "User updated"
		}
		return m, nil

	case userform.CancelMsg:
		m.currentView = ViewAdmin
		return m, nil

	case tea.KeyMsg:
		if handled, mdl, cmd := m.handleGlobalKey(msg); handled {
			return mdl, cmd
		}
	}

	return m.updateActiveView(msg)
}

// handleGlobalKey processes keys that work regardless of the focused
// widget. Returns handled=false to fall through to the active view.
func (m Model) handleGlobalKey(msg tea.KeyMsg) (bool, tea.Model, tea.Cmd) {
	// Text being typed into the search box must not trigger shortcuts.
	if m.currentView == ViewList && m.taskList.Searching() && msg.String() != "ctrl+c" {
		return false, m, nil
	}
	if m.currentView == ViewAdmin && m.adminView.Confirming() && msg.String() != "ctrl+c" {
		return false, m, nil
	}

	switch msg.String() {
	case "ctrl+c":
		return true, m, tea.Quit

	case "q":
		if m.currentView == ViewList || m.currentView == ViewAdmin {
			return true, m, tea.Quit
		}

	case "?":
		if m.currentView == ViewLogin || m.isFormView() {
			break
		}
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return true, m, nil
		}
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return true, m, nil

	case "esc":
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return true, m, nil
		}

	case "L":
		if m.currentView == ViewList || m.currentView == ViewAdmin {
			m.stores.Auth.Logout()
			log.Info("user logged out")
			m.currentView = ViewLogin
			m.statusMsg = ""
			return true, m, m.loginView.Start()
		}

	case "A":
		if m.currentView == ViewList {
			// Only admins reach the dashboard; everyone else stays put.
			u := m.stores.Auth.User()
			if u == nil || !u.IsAdmin() {
				m.statusMsg = "Admin access required"
				return true, m, nil
			}
			m.previousView = m.currentView
			m.currentView = ViewAdmin
			m.adminView.Reset()
			return true, m, nil
		}

	case "n":
		if m.currentView == ViewList {
			m.previousView = m.currentView
			m.currentView = ViewTaskCreate
			return true, m, m.taskFormView.StartCreate()
		}

	case "e":
		if m.currentView == ViewList {
			task, ok := m.taskList.SelectedTask()
			if !ok {
				return true, m, nil
			}
			m.previousView = m.currentView
			m.currentView = ViewTaskEdit
			return true, m, m.taskFormView.StartEdit(task)
		}
		if m.currentView == ViewDetail {
			m.previousView = m.currentView
			m.currentView = ViewTaskEdit
			return true, m, m.taskFormView.StartEdit(m.detailView.Task())
		}

	case "d":
		if m.currentView == ViewList {
			task, ok := m.taskList.SelectedTask()
			if !ok {
				return true, m, nil
			}
			if err := m.stores.Tasks.Delete(task.ID); err != nil {
				m.statusMsg = fmt.Sprintf("Error: %v", err)
			} else {
				m.statusMsg = "Task deleted"
			}
			return true, m, m.taskList.Reload()
		}

	case "x":
		if m.currentView == ViewList {
			task, ok := m.taskList.SelectedTask()
			if !ok {
				return true, m, nil
			}
			return true, m, m.toggleTaskComplete(task)
		}
	}

	return false, m, nil
}

// taskFormReturnView picks the view to land on when the task form
// closes: back to the admin dashboard when the edit came from there,
// otherwise the task list.
func (m Model) taskFormReturnView() ViewState {
	if m.previousView == ViewAdmin {
		return ViewAdmin
	}
	return ViewList
}

// isFormView reports whether the active view hosts a huh form, which
// must receive all key input unfiltered.
func (m Model) isFormView() bool {
	switch m.currentView {
	case ViewTaskCreate, ViewTaskEdit, ViewUserCreate, ViewUserEdit:
		return true
	}
	return false
}

// toggleTaskComplete flips a task between completed and pending.
func (m *Model) toggleTaskComplete(task model.Task) tea.Cmd {
	status := model.StatusCompleted
	if task.Status == model.StatusCompleted {
		status = model.StatusPending
	}
	if err := m.stores.Tasks.Update(task.ID, model.TaskPatch{Status: &status}); err != nil {
		m.statusMsg = fmt.Sprintf("Error: %v", err)
	}
	return m.taskList.Reload()
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewLogin:
		m.loginView, cmd = m.loginView.Update(msg)
	case ViewList:
		m.taskList, cmd = m.taskList.Update(msg)
	case ViewDetail:
		m.detailView, cmd = m.detailView.Update(msg)
	case ViewTaskCreate, ViewTaskEdit:
		m.taskFormView, cmd = m.taskFormView.Update(msg)
	case ViewAdmin:
		m.adminView, cmd = m.adminView.Update(msg)
	case ViewUserCreate, ViewUserEdit:
		m.userFormView, cmd = m.userFormView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("TaskMaster", m.sessionLabel())
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewLogin:
		return m.loginView.View()
	case ViewList:
		return m.taskList.View()
	case ViewDetail:
		return m.detailView.View()
	case ViewTaskCreate, ViewTaskEdit:
		return m.taskFormView.View()
	case ViewAdmin:
		return m.adminView.View()
	case ViewUserCreate, ViewUserEdit:
		return m.userFormView.View()
	case ViewHelp:
		return m.helpView.View()
	default:
		return ""
	}
}

// sessionLabel describes the current session for the header.
func (m Model) sessionLabel() string {
	u := m.stores.Auth.User()
	if u == nil {
		return "not signed in"
	}
	if u.IsAdmin() {
		return u.Username + " (admin)"
	}
	return u.Username
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	if m.statusMsg != "" &&
		(m.currentView == ViewList || m.currentView == ViewAdmin) {
		return m.statusMsg
	}

	switch m.currentView {
	case ViewLogin:
		return "enter submit | tab next field"
	case ViewDetail:
		return "e edit | esc back"
	case ViewTaskCreate, ViewTaskEdit, ViewUserCreate, ViewUserEdit:
		return "enter submit | esc cancel"
	case ViewAdmin:
		return "tab switch tab | L log out | esc back | q quit"
	case ViewHelp:
		return "? or esc close help"
	default:
		filterSummary := m.taskList.FilterSummary()
		if filterSummary != "" {
			return filterSummary + " | f/esc clear"
		}
		return "q quit | ? help | n new | e edit | d delete | x toggle | / search | A admin | L log out"
	}
}
