package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/miportal/portal/internal/dashboard"
	"github.com/miportal/portal/internal/sessions"
)

const (
	fieldUsername = iota
	fieldPassword
)

type restoredMsg struct{}

type loginResultMsg struct {
	err error
}

// sessionMsg reports a state change published by the session store.
type sessionMsg struct {
	state sessions.State
}

type dashboardMsg struct {
	generation int
	board      dashboard.Dashboard
}

// AppOptions carries the optional parts of the interactive dashboard.
type AppOptions struct {
	Context context.Context
	// Notice is shown above the login form, e.g. after registration.
	Notice   string
	Username string
	// LastWarning returns the latest logged warning for the footer.
	LastWarning func() string
}

// App is the interactive dashboard. It restores the session, asks for
// credentials when needed and then shows the dashboard.
type App struct {
	ctx    context.Context
	store  *sessions.Store
	loader *dashboard.Loader

	spinner spinner.Model
	inputs  []textinput.Model
	focus   int

	notice      string
	loginErr    string
	submitting  bool
	board       *dashboard.Dashboard
	loadingData bool
	// generation identifies the latest dashboard load. Results of older
	// loads, including those issued before a logout, are dropped.
	generation  int
	lastWarning func() string
	quitting    bool

	changes     <-chan sessions.State
	unsubscribe func()
}

func NewApp(store *sessions.Store, loader *dashboard.Loader, opts AppOptions) App {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	username := textinput.New()
	username.Placeholder = "username or email"
	username.Prompt = "Username: "
	username.CharLimit = 128
	username.SetValue(opts.Username)

	password := textinput.New()
	password.Placeholder = "password"
	password.Prompt = "Password: "
	password.CharLimit = 128
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	// Subscribers run inside store transitions, so the callback only hands
	// the state over and never blocks.
	changes := make(chan sessions.State, 8)
	unsubscribe := store.Subscribe(func(state sessions.State) {
		select {
		case changes <- state:
		default:
		}
	})

	app := App{
		ctx:         ctx,
		store:       store,
		loader:      loader,
		spinner:     s,
		inputs:      []textinput.Model{username, password},
		notice:      opts.Notice,
		lastWarning: opts.LastWarning,
		changes:     changes,
		unsubscribe: unsubscribe,
	}

	if len(opts.Username) > 0 {
		app.focus = fieldPassword
	}
	app.inputs[app.focus].Focus()

	return app
}

func (m App) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, textinput.Blink, m.restore(), m.waitForSession())
}

// waitForSession delivers the next store state change as a sessionMsg.
func (m App) waitForSession() tea.Cmd {
	changes := m.changes
	return func() tea.Msg {
		state, ok := <-changes
		if !ok {
			return nil
		}
		return sessionMsg{state: state}
	}
}

func (m App) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
	return m, tea.Quit
}

// Screen returns the screen currently shown.
func (m App) Screen() Screen {
	return Route(m.store.State())
}

func (m App) restore() tea.Cmd {
	return func() tea.Msg {
		m.store.Restore(m.ctx)
		return restoredMsg{}
	}
}

func (m App) login(username, password string) tea.Cmd {
	return func() tea.Msg {
		return loginResultMsg{err: m.store.Login(m.ctx, username, password)}
	}
}

func (m *App) loadDashboard() tea.Cmd {
	m.generation++
	m.loadingData = true

	generation := m.generation
	store, loader, ctx := m.store, m.loader, m.ctx
	return func() tea.Msg {
		token, ok := store.Token()
		if !ok {
			return dashboardMsg{generation: generation}
		}
		return dashboardMsg{generation: generation, board: loader.Load(ctx, token)}
	}
}

func (m App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case sessionMsg:
		// A sign-out from anywhere invalidates the shown dashboard and any
		// load still in flight. The store is re-read because the message may
		// trail a newer login.
		if msg.state.User == nil && !m.store.State().IsAuthenticated() {
			m.generation++
			m.board = nil
			m.loadingData = false
		}
		return m, m.waitForSession()

	case restoredMsg:
		if m.Screen() == ScreenDashboard {
			cmd := m.loadDashboard()
			return m, cmd
		}
		return m, nil

	case loginResultMsg:
		m.submitting = false
		if msg.err != nil {
			m.loginErr = LoginErrorMessage(msg.err)
			m.inputs[fieldPassword].SetValue("")
			m.setFocus(fieldPassword)
			return m, nil
		}
		m.loginErr = ""
		m.notice = ""
		m.inputs[fieldPassword].SetValue("")
		cmd := m.loadDashboard()
		return m, cmd

	case dashboardMsg:
		if msg.generation != m.generation || m.Screen() != ScreenDashboard {
			return m, nil
		}
		m.loadingData = false
		board := msg.board
		m.board = &board
		return m, nil
	}

	if m.Screen() == ScreenLogin && !m.submitting {
		return m.updateInputs(msg)
	}

	return m, nil
}

func (m App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	switch m.Screen() {
	case ScreenLogin:
		if m.submitting {
			return m, nil
		}
		switch msg.String() {
		case "esc":
			return m.quit()
		case "tab", "down":
			m.setFocus((m.focus + 1) % len(m.inputs))
			return m, nil
		case "shift+tab", "up":
			m.setFocus((m.focus + len(m.inputs) - 1) % len(m.inputs))
			return m, nil
		case "enter":
			return m.submit()
		}
		return m.updateInputs(msg)

	case ScreenDashboard:
		switch msg.String() {
		case "q", "esc":
			return m.quit()
		case "r":
			if m.loadingData {
				return m, nil
			}
			cmd := m.loadDashboard()
			return m, cmd
		case "l":
			m.store.Logout()
			m.generation++
			m.board = nil
			m.loadingData = false
			m.notice = ""
			m.loginErr = ""
			m.setFocus(fieldUsername)
			return m, textinput.Blink
		}

	case ScreenLoading:
		if msg.String() == "q" || msg.String() == "esc" {
			return m.quit()
		}
	}

	return m, nil
}

func (m App) submit() (tea.Model, tea.Cmd) {
	username := strings.TrimSpace(m.inputs[fieldUsername].Value())
	password := m.inputs[fieldPassword].Value()

	if len(username) == 0 {
		m.setFocus(fieldUsername)
		return m, nil
	}
	if len(password) == 0 {
		m.setFocus(fieldPassword)
		return m, nil
	}

	m.submitting = true
	m.loginErr = ""
	return m, m.login(username, password)
}

func (m *App) setFocus(index int) {
	m.focus = index
	for i := range m.inputs {
		if i == index {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

func (m App) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, len(m.inputs))
	for i := range m.inputs {
		m.inputs[i], cmds[i] = m.inputs[i].Update(msg)
	}
	return m, tea.Batch(cmds...)
}

func (m App) View() string {
	if m.quitting {
		return ""
	}

	switch m.Screen() {
	case ScreenLoading:
		return fmt.Sprintf("\n %s Restoring session...\n\n", m.spinner.View())
	case ScreenLogin:
		return m.loginView()
	}

	if m.loadingData || m.board == nil {
		return fmt.Sprintf("\n %s Loading academic information...\n\n", m.spinner.View())
	}

	var content strings.Builder
	content.WriteString(RenderDashboard(m.store.State().User, *m.board))
	if m.lastWarning != nil {
		if warning := m.lastWarning(); len(warning) > 0 && !m.board.Loaded() {
			content.WriteString(failedStyle.Render(warning))
			content.WriteString("\n")
		}
	}
	content.WriteString(helpStyle.Render(fmt.Sprintf("Updated %s • r reload • l logout • q quit", m.board.LoadedAt.Format("15:04:05"))))
	content.WriteString("\n")
	return content.String()
}

func (m App) loginView() string {
	var content strings.Builder

	content.WriteString("\n")
	content.WriteString(titleStyle.Render("MiPortal"))
	content.WriteString("\n")
	content.WriteString(subtitleStyle.Render("Sign in to continue"))
	content.WriteString("\n\n")

	if len(m.notice) > 0 {
		content.WriteString(successStyle.Render(m.notice))
		content.WriteString("\n\n")
	}

	for _, input := range m.inputs {
		content.WriteString(labelStyle.Render(input.View()))
		content.WriteString("\n")
	}
	content.WriteString("\n")

	if m.submitting {
		content.WriteString(fmt.Sprintf("%s Signing in...\n", m.spinner.View()))
	} else if len(m.loginErr) > 0 {
		content.WriteString(errorStyle.Render(m.loginErr))
		content.WriteString("\n")
	}

	content.WriteString(helpStyle.Render("enter sign in • tab next field • esc quit"))
	content.WriteString("\n")
	return content.String()
}
