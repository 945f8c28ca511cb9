package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/mbertin/auction-desk/internal/api"
	"github.com/mbertin/auction-desk/internal/credential"
	"github.com/mbertin/auction-desk/internal/dialog"
	"github.com/mbertin/auction-desk/internal/keys"
	"github.com/mbertin/auction-desk/internal/model"
	"github.com/mbertin/auction-desk/internal/notify"
	"github.com/mbertin/auction-desk/internal/store"
	"github.com/mbertin/auction-desk/internal/ui"
	"github.com/mbertin/auction-desk/internal/ui/admin"
	creditsview "github.com/mbertin/auction-desk/internal/ui/credits"
	"github.com/mbertin/auction-desk/internal/ui/listings"
	loginview "github.com/mbertin/auction-desk/internal/ui/login"
	"github.com/mbertin/auction-desk/internal/ui/notifpanel"
	"github.com/mbertin/auction-desk/internal/watch"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewLogin ViewState = iota
	ViewListings
	ViewAdmin
	ViewNotifications
	ViewCredits
	ViewHelp
)

// eventsStoredMsg reports that a poll's notifications were appended.
type eventsStoredMsg struct {
	count int
}

// meLoadedMsg refreshes the signed-in account shown in the header.
type meLoadedMsg struct {
	user *model.User
}

// loggedOutMsg is sent after the user confirms signing out.
type loggedOutMsg struct{}

// Options carries the collaborators the root model needs.
type Options struct {
	Client       *api.Client
	Store        store.Store
	Broker       *dialog.Broker
	Notify       *notify.Store
	PollInterval time.Duration
	Logger       *zap.Logger
	Token        string
	Keys         *keys.KeyMap
}

// Model is the root Bubble Tea model: view routing, dialog overlay, and
// the watcher/broker lifecycle.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	ready        bool

	client *api.Client
	store  store.Store
	broker *dialog.Broker
	notify *notify.Store
	logger *zap.Logger
	keys   *keys.KeyMap

	pollInterval time.Duration
	watcher      *watch.Watcher
	user         *model.User

	loginView    loginview.Model
	listingsView listings.Model
	adminView    admin.Model
	notifView    notifpanel.Model
	creditsView  creditsview.Model

	bellCount    int
	errorMessage string
}

// New creates the root application model. When a stored token is present
// the login screen is skipped and the session is validated in Init.
func New(opts Options) Model {
	k := opts.Keys
	if k == nil {
		k = keys.DefaultKeyMap()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	m := Model{
		currentView:  ViewLogin,
		client:       opts.Client,
		store:        opts.Store,
		broker:       opts.Broker,
		notify:       opts.Notify,
		logger:       logger,
		keys:         k,
		pollInterval: opts.PollInterval,
		loginView:    loginview.New(opts.Client, 80, 24),
		listingsView: listings.New(opts.Client, opts.Store, k, 80, 24),
		adminView:    admin.New(opts.Client, opts.Broker, k, 80, 24),
		notifView:    notifpanel.New(opts.Notify, opts.Broker, k, 80, 24),
		creditsView:  creditsview.New(opts.Client, opts.Broker, 80, 24),
		bellCount:    opts.Notify.Len(),
	}

	if opts.Token != "" {
		m.currentView = ViewListings
	}
	return m
}

// Init starts the dialog subscription and, for a restored session,
// validates the token and loads the listings.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.broker.WaitForRequest()}
	if m.currentView == ViewLogin {
		cmds = append(cmds, m.loginView.Init())
	} else {
		cmds = append(cmds, m.loadMe(), m.listingsView.Init())
	}
	return tea.Batch(cmds...)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.loginView.SetSize(w, h)
		m.listingsView.SetSize(w, h)
		m.adminView.SetSize(w, h)
		m.notifView.SetSize(w, h)
		m.creditsView.SetSize(w, h)
		return m.updateActiveView(msg)

	case dialog.OpenedMsg:
		// The overlay reads broker state directly; re-subscribe and
		// re-render.
		return m, m.broker.WaitForRequest()

	case watch.EventsMsg:
		return m, tea.Batch(
			m.storeEvents(msg.Events),
			m.waitForWatcher(),
			m.listingsView.LoadListings(),
		)

	case eventsStoredMsg:
		m.bellCount = m.notify.Len()
		return m, nil

	case loginview.LoggedInMsg:
		return m.handleLogin(msg)

	case meLoadedMsg:
		if msg.user != nil {
			m.user = msg.user
			if m.user.Admin && m.watcher == nil {
				return m, m.startWatcher()
			}
		}
		return m, nil

	case loggedOutMsg:
		return m.handleLogout()

	case listings.BidPlacedMsg:
		// Refresh the credit balance shown in the header.
		return m, m.loadMe()

	case admin.ActionFailedMsg:
		m.errorMessage = fmt.Sprintf("%s failed: %s", msg.Action, msg.Reason)
		return m, nil

	case admin.CloseMsg:
		m.currentView = ViewListings
		return m, nil

	case notifpanel.CloseMsg:
		m.currentView = m.previousView
		return m, nil

	case notifpanel.ChangedMsg:
		m.bellCount = m.notify.Len()
		return m, nil

	case creditsview.CloseMsg:
		m.currentView = ViewListings
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateActiveView(msg)
}

// handleKey routes keys: a visible dialog swallows everything, then a
// sticky error banner is cleared, then global keys, then the active view.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.broker.HandleKey(msg) {
		return m, nil
	}

	if m.errorMessage != "" {
		m.errorMessage = ""
	}

	if msg.String() == "ctrl+c" {
		m.stopWatcher()
		return m, tea.Quit
	}

	// Text entry owns the keyboard; the remaining global shortcuts step
	// aside.
	if m.capturing() {
		return m.updateActiveView(msg)
	}

	switch msg.String() {
	case "q":
		if m.currentView == ViewListings {
			m.stopWatcher()
			return m, tea.Quit
		}

	case "?":
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return m, nil
		}
		if m.currentView == ViewListings || m.currentView == ViewAdmin {
			m.previousView = m.currentView
			m.currentView = ViewHelp
			return m, nil
		}

	case "N":
		if m.currentView == ViewListings || m.currentView == ViewAdmin {
			m.previousView = m.currentView
			m.currentView = ViewNotifications
			return m, nil
		}

	case "A":
		if m.currentView == ViewListings && m.user != nil && m.user.Admin {
			m.previousView = m.currentView
			m.currentView = ViewAdmin
			return m, m.adminView.Init()
		}

	case "$":
		if m.currentView == ViewListings {
			m.previousView = m.currentView
			m.currentView = ViewCredits
			m.creditsView = creditsview.New(m.client, m.broker,
				m.layout.ContentWidth(), m.layout.ContentHeight())
			return m, m.creditsView.Init()
		}

	case "L":
		if m.currentView == ViewListings || m.currentView == ViewAdmin {
			return m, m.confirmLogout()
		}
	}

	return m.updateActiveView(msg)
}

// capturing reports whether the active view has a text form open.
func (m Model) capturing() bool {
	switch m.currentView {
	case ViewListings:
		return m.listingsView.Capturing()
	case ViewAdmin:
		return m.adminView.Capturing()
	default:
		return false
	}
}

// handleLogin stores the fresh token and enters the marketplace.
func (m Model) handleLogin(msg loginview.LoggedInMsg) (tea.Model, tea.Cmd) {
	session := msg.Session
	m.user = &session.User
	m.currentView = ViewListings

	if err := credential.Set(credential.TokenKey, session.Token); err != nil {
		m.logger.Warn("storing token in keyring failed", zap.Error(err))
	}

	cmds := []tea.Cmd{m.listingsView.Init()}
	if session.User.Admin {
		cmds = append(cmds, m.startWatcher())
	}
	return m, tea.Batch(cmds...)
}

// handleLogout tears the session down after the broker confirmed it.
func (m Model) handleLogout() (tea.Model, tea.Cmd) {
	m.stopWatcher()
	m.user = nil
	m.client.SetToken("")
	if err := credential.Delete(credential.TokenKey); err != nil {
		m.logger.Debug("removing token from keyring failed", zap.Error(err))
	}
	m.currentView = ViewLogin
	m.loginView = loginview.New(m.client,
		m.layout.ContentWidth(), m.layout.ContentHeight())
	return m, m.loginView.Init()
}

// confirmLogout routes the session-ending action through the broker; a
// declined confirmation leaves the session untouched.
func (m Model) confirmLogout() tea.Cmd {
	broker := m.broker
	return func() tea.Msg {
		if ok := <-broker.Confirm("Sign out of your account?"); !ok {
			return nil
		}
		return loggedOutMsg{}
	}
}

// startWatcher builds a fresh watcher for this session and starts it.
// The admin dashboard's activity feed only makes sense with an admin
// token, since the users collection is admin-only.
func (m *Model) startWatcher() tea.Cmd {
	interval := m.pollInterval
	if interval <= 0 {
		interval = watch.DefaultInterval
	}
	m.watcher = watch.New(m.client, interval, m.logger)
	return m.watcher.Start()
}

// stopWatcher is safe to call with no watcher running.
func (m *Model) stopWatcher() {
	if m.watcher != nil {
		m.watcher.Stop()
		m.watcher = nil
	}
}

func (m Model) waitForWatcher() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	return m.watcher.WaitForNextEvents()
}

// storeEvents appends a poll's notifications to the persisted feed.
func (m Model) storeEvents(events []model.Notification) tea.Cmd {
	s := m.notify
	logger := m.logger
	return func() tea.Msg {
		if err := s.Append(context.Background(), events...); err != nil {
			logger.Warn("persisting notifications failed", zap.Error(err))
		}
		return eventsStoredMsg{count: len(events)}
	}
}

// loadMe refreshes the signed-in account.
func (m Model) loadMe() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		user, err := client.Me(context.Background())
		if err != nil {
			return meLoadedMsg{}
		}
		return meLoadedMsg{user: user}
	}
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewLogin:
		m.loginView, cmd = m.loginView.Update(msg)
	case ViewListings:
		m.listingsView, cmd = m.listingsView.Update(msg)
	case ViewAdmin:
		m.adminView, cmd = m.adminView.Update(msg)
	case ViewNotifications:
		m.notifView, cmd = m.notifView.Update(msg)
	case ViewCredits:
		m.creditsView, cmd = m.creditsView.Update(msg)
	case ViewHelp:
		// Static content.
	}

	return m, cmd
}

// View renders the full terminal UI; a pending dialog replaces the
// content area entirely.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("Auction Desk", m.headerStatus())

	content := m.broker.View(m.layout.ContentWidth(), m.layout.ContentHeight())
	if content == "" {
		content = m.renderContent()
	}

	hints, isError := m.statusLine()
	statusBar := m.layout.RenderStatusBar(hints, isError)

	return m.layout.RenderWithFrame(header, content, statusBar)
}

func (m Model) renderContent() string {
	switch m.currentView {
	case ViewLogin:
		return m.loginView.View()
	case ViewListings:
		return m.listingsView.View()
	case ViewAdmin:
		return m.adminView.View()
	case ViewNotifications:
		return m.notifView.View()
	case ViewCredits:
		return m.creditsView.View()
	case ViewHelp:
		return m.renderHelp()
	default:
		return ""
	}
}

// headerStatus shows the bell count and the signed-in account.
func (m Model) headerStatus() string {
	var parts []string
	if m.bellCount > 0 {
		parts = append(parts, fmt.Sprintf("🔔 %d", m.bellCount))
	}
	if m.user != nil {
		parts = append(parts, fmt.Sprintf("%s · %.0f cr", m.user.DisplayName(), m.user.Credit))
	}
	if len(parts) == 0 {
		return "not signed in"
	}
	return strings.Join(parts, "  ")
}

// statusLine returns the bottom-bar text and whether it is an error
// banner.
func (m Model) statusLine() (string, bool) {
	if m.errorMessage != "" {
		return m.errorMessage + "  (any key to dismiss)", true
	}

	switch m.currentView {
	case ViewLogin:
		return "enter submit | ctrl+r register | ctrl+c quit", false
	case ViewAdmin:
		return "tab switch | d delete | x block | n new | N bell | L sign out | esc back", false
	case ViewNotifications:
		return "d dismiss | C clear all | esc back", false
	case ViewCredits:
		return "enter continue | esc cancel", false
	case ViewHelp:
		return "? close help", false
	default:
		hints := "q quit | ? help | / filter | b bid | w wishlist | $ credits | N bell | L sign out"
		if m.user != nil && m.user.Admin {
			hints += " | A admin"
		}
		return hints, false
	}
}

// renderHelp lists the full keymap.
func (m Model) renderHelp() string {
	var b strings.Builder
	b.WriteString("Keyboard shortcuts\n\n")
	for _, group := range m.keys.FullHelp() {
		for _, binding := range group {
			b.WriteString(fmt.Sprintf("  %-10s %s\n", binding.Help().Key, binding.Help().Desc))
		}
		b.WriteString("\n")
	}
	return b.String()
}
