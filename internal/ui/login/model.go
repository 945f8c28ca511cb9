package login

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/mbertin/auction-desk/internal/api"
	"github.com/mbertin/auction-desk/internal/theme"
)

// LoggedInMsg signals the parent that authentication succeeded.
type LoggedInMsg struct {
	Session *api.Session
}

type loginResultMsg struct {
	session *api.Session
	err     error
}

type formBindings struct {
	email     string
	password  string
	alias     string
	firstName string
	lastName  string
}

// Model is the Bubble Tea model for the sign-in / register screen.
type Model struct {
	client       *api.Client
	form         *huh.Form
	fb           *formBindings
	registerMode bool
	statusMsg    string
	width        int
	height       int
}

// New creates a login model with a fresh sign-in form.
func New(client *api.Client, width, height int) Model {
	m := Model{
		client: client,
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
	m.form = m.buildForm()
	return m
}

// Init starts the sign-in form.
func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case loginResultMsg:
		if msg.err != nil {
			if api.IsAuthError(msg.err) {
				m.statusMsg = "Invalid email or password"
			} else {
				m.statusMsg = fmt.Sprintf("Error: %s", api.Reason(msg.err))
			}
			m.form = m.buildForm()
			return m, m.form.Init()
		}
		return m, func() tea.Msg { return LoggedInMsg{Session: msg.session} }

	case tea.KeyMsg:
		if msg.String() == "ctrl+r" {
			m.registerMode = !m.registerMode
			m.statusMsg = ""
			m.form = m.buildForm()
			return m, m.form.Init()
		}
	}

	return m.updateForm(msg)
}

func (m Model) buildForm() *huh.Form {
	fields := []huh.Field{
		huh.NewInput().
			Title("Email").
			Placeholder("you@example.com").
			Value(&m.fb.email).
			Validate(func(s string) error {
				if !strings.Contains(s, "@") {
					return fmt.Errorf("enter a valid email address")
				}
				return nil
			}),
		huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&m.fb.password).
			Validate(func(s string) error {
				if len(s) < 6 {
					return fmt.Errorf("password must be at least 6 characters")
				}
				return nil
			}),
	}

	if m.registerMode {
		fields = append(fields,
			huh.NewInput().
				Title("Alias").
				Placeholder("public display name").
				Value(&m.fb.alias).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("alias is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("First name").
				Value(&m.fb.firstName),
			huh.NewInput().
				Title("Last name").
				Value(&m.fb.lastName),
		)
	}

	return huh.NewForm(huh.NewGroup(fields...)).
		WithWidth(m.formWidth()).
		WithHeight(m.formHeight())
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	if m.form.State == huh.StateCompleted {
		return m, m.submit()
	}
	if m.form.State == huh.StateAborted {
		m.form = m.buildForm()
		return m, m.form.Init()
	}
	return m, cmd
}

// submit exchanges the form contents for a session.
func (m Model) submit() tea.Cmd {
	client := m.client
	fb := *m.fb
	register := m.registerMode
	return func() tea.Msg {
		ctx := context.Background()
		if register {
			session, err := client.Register(ctx, api.Registration{
				Email:     fb.email,
				Password:  fb.password,
				Alias:     fb.alias,
				FirstName: fb.firstName,
				LastName:  fb.lastName,
			})
			return loginResultMsg{session: session, err: err}
		}
		session, err := client.Login(ctx, api.Credentials{
			Email:    fb.email,
			Password: fb.password,
		})
		return loginResultMsg{session: session, err: err}
	}
}

// View renders the sign-in screen.
func (m Model) View() string {
	var b strings.Builder

	title := "Sign in"
	hint := "ctrl+r switch to register"
	if m.registerMode {
		title = "Create an account"
		hint = "ctrl+r switch to sign in"
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).MarginBottom(1)
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")
	if m.form != nil {
		b.WriteString(m.form.View())
	}
	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorRed).Render(m.statusMsg))
	}
	b.WriteString("\n\n")
	b.WriteString(theme.HelpStyle.Render(hint))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(b.String())
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
	if w > 80 {
		w = 80
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 6
	if h < 10 {
		h = 10
	}
	return h
}
