package admin

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/mbertin/auction-desk/internal/api"
	"github.com/mbertin/auction-desk/internal/dialog"
	"github.com/mbertin/auction-desk/internal/keys"
	"github.com/mbertin/auction-desk/internal/model"
	"github.com/mbertin/auction-desk/internal/theme"
)

// CloseMsg signals the parent to leave the admin dashboard.
type CloseMsg struct{}

// ActionFailedMsg carries a server-rejected mutation to the parent's
// error banner, naming the action and the server-provided reason.
type ActionFailedMsg struct {
	Action string
	Reason string
}

// Tab identifies one moderation collection.
type Tab int

const (
	TabCategories Tab = iota
	TabUsers
	TabListings
	TabMessages
	tabCount
)

func (t Tab) String() string {
	switch t {
	case TabCategories:
		return "Categories"
	case TabUsers:
		return "Users"
	case TabListings:
		return "Listings"
	case TabMessages:
		return "Messages"
	default:
		return "?"
	}
}

type adminMode int

const (
	modeList adminMode = iota
	modeCreateCategory
	modeCreateAdmin
)

type categoriesLoadedMsg struct{ items []model.Category }
type usersLoadedMsg struct{ items []model.User }
type listingsLoadedMsg struct{ items []model.Listing }
type messagesLoadedMsg struct{ items []model.Message }

// actionDoneMsg reports the outcome of a confirmed mutation. aborted is
// true when the user declined the confirmation, which is not an error.
type actionDoneMsg struct {
	action  string
	tab     Tab
	aborted bool
	err     error
}

type createBindings struct {
	name      string
	email     string
	password  string
	alias     string
	firstName string
	lastName  string
}

// Model is the Bubble Tea model for the moderation dashboard.
type Model struct {
	client *api.Client
	broker *dialog.Broker
	keys   *keys.KeyMap

	mode Tab
	view adminMode

	categories []model.Category
	users      []model.User
	listings   []model.Listing
	messages   []model.Message

	selected  [tabCount]int
	statusMsg string

	form *huh.Form
	fb   *createBindings

	width  int
	height int
}

// New creates an admin dashboard model.
func New(client *api.Client, broker *dialog.Broker, k *keys.KeyMap, width, height int) Model {
	return Model{
		client: client,
		broker: broker,
		keys:   k,
		fb:     &createBindings{},
		width:  width,
		height: height,
	}
}

// Init loads all four moderation collections.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadCategories(),
		m.loadUsers(),
		m.loadListings(),
		m.loadMessages(),
	)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case categoriesLoadedMsg:
		m.categories = msg.items
		m.clampSelection(TabCategories)
		return m, nil

	case usersLoadedMsg:
		m.users = msg.items
		m.clampSelection(TabUsers)
		return m, nil

	case listingsLoadedMsg:
		m.listings = msg.items
		m.clampSelection(TabListings)
		return m, nil

	case messagesLoadedMsg:
		m.messages = msg.items
		m.clampSelection(TabMessages)
		return m, nil

	case actionDoneMsg:
		if msg.aborted {
			// User declined; silently drop the action.
			return m, nil
		}
		if msg.err != nil {
			return m, func() tea.Msg {
				return ActionFailedMsg{Action: msg.action, Reason: api.Reason(msg.err)}
			}
		}
		m.statusMsg = fmt.Sprintf("%s done", msg.action)
		return m, m.reload(msg.tab)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.view != modeList {
		return m.updateForm(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.view != modeList {
		return m.updateForm(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }

	case key.Matches(msg, m.keys.NextTab):
		m.mode = (m.mode + 1) % tabCount
		m.statusMsg = ""
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if n := m.tabLen(m.mode); n > 0 {
			m.selected[m.mode] = (m.selected[m.mode] + 1) % n
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if n := m.tabLen(m.mode); n > 0 {
			m.selected[m.mode]--
			if m.selected[m.mode] < 0 {
				m.selected[m.mode] = n - 1
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m, m.reload(m.mode)

	case key.Matches(msg, m.keys.Delete):
		return m.deleteSelected()

	case key.Matches(msg, m.keys.Block):
		return m.toggleBlockSelected()

	case key.Matches(msg, m.keys.Create):
		switch m.mode {
		case TabCategories:
			m.fb.name = ""
			m.form = m.buildCategoryForm()
			m.view = modeCreateCategory
			return m, m.form.Init()
		case TabUsers:
			*m.fb = createBindings{}
			m.form = m.buildAdminForm()
			m.view = modeCreateAdmin
			return m, m.form.Init()
		}
	}
	return m, nil
}

// deleteSelected routes the delete for the active tab through the dialog
// broker; a declined confirmation aborts with no side effects.
func (m Model) deleteSelected() (Model, tea.Cmd) {
	switch m.mode {
	case TabCategories:
		if len(m.categories) == 0 {
			return m, nil
		}
		c := m.categories[m.selected[TabCategories]]
		return m, m.confirmed(
			fmt.Sprintf("Delete category %q? Listings keep their history.", c.Name),
			"Delete category", TabCategories,
			func(ctx context.Context) error { return m.client.DeleteCategory(ctx, c.ID) },
		)

	case TabListings:
		if len(m.listings) == 0 {
			return m, nil
		}
		l := m.listings[m.selected[TabListings]]
		return m, m.confirmed(
			fmt.Sprintf("Delete listing %q?", l.Name),
			"Delete listing", TabListings,
			func(ctx context.Context) error { return m.client.DeleteListing(ctx, l.ID) },
		)

	case TabMessages:
		if len(m.messages) == 0 {
			return m, nil
		}
		msg := m.messages[m.selected[TabMessages]]
		return m, m.confirmed(
			fmt.Sprintf("Delete message %q from %s?", msg.Subject, msg.Sender),
			"Delete message", TabMessages,
			func(ctx context.Context) error { return m.client.DeleteMessage(ctx, msg.ID) },
		)
	}
	return m, nil
}

func (m Model) toggleBlockSelected() (Model, tea.Cmd) {
	if m.mode != TabUsers || len(m.users) == 0 {
		return m, nil
	}
	u := m.users[m.selected[TabUsers]]

	if u.Blocked {
		return m, m.confirmed(
			fmt.Sprintf("Unblock %s? They will be able to sign in and bid again.", u.DisplayName()),
			"Unblock user", TabUsers,
			func(ctx context.Context) error { return m.client.UnblockUser(ctx, u.ID) },
		)
	}
	return m, m.confirmed(
		fmt.Sprintf("Block %s? They will no longer be able to sign in or bid.", u.DisplayName()),
		"Block user", TabUsers,
		func(ctx context.Context) error { return m.client.BlockUser(ctx, u.ID) },
	)
}

// confirmed returns a command that asks the broker for confirmation and,
// only on an affirmative answer, performs the mutation.
func (m Model) confirmed(prompt, action string, tab Tab, mutate func(context.Context) error) tea.Cmd {
	broker := m.broker
	return func() tea.Msg {
		if ok := <-broker.Confirm(prompt); !ok {
			return actionDoneMsg{action: action, tab: tab, aborted: true}
		}
		err := mutate(context.Background())
		return actionDoneMsg{action: action, tab: tab, err: err}
	}
}

func (m Model) buildCategoryForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Category name").
				Value(&m.fb.name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
		),
	).WithWidth(m.formWidth())
}

func (m Model) buildAdminForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Email").Value(&m.fb.email),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&m.fb.password),
			huh.NewInput().Title("Alias").Value(&m.fb.alias),
			huh.NewInput().Title("First name").Value(&m.fb.firstName),
			huh.NewInput().Title("Last name").Value(&m.fb.lastName),
		),
	).WithWidth(m.formWidth())
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		m.view = modeList
		return m, nil
	}
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	if m.form.State == huh.StateCompleted {
		view := m.view
		m.view = modeList
		if view == modeCreateCategory {
			return m, m.createCategory(m.fb.name)
		}
		return m, m.createAdmin(*m.fb)
	}
	if m.form.State == huh.StateAborted {
		m.view = modeList
		return m, nil
	}
	return m, cmd
}

func (m Model) createCategory(name string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		_, err := client.CreateCategory(context.Background(), name)
		return actionDoneMsg{action: "Create category", tab: TabCategories, err: err}
	}
}

// createAdmin asks for confirmation first: promoting an account grants it
// every moderation power.
func (m Model) createAdmin(fb createBindings) tea.Cmd {
	client := m.client
	broker := m.broker
	return func() tea.Msg {
		prompt := fmt.Sprintf("Create administrator account for %s?", fb.email)
		if ok := <-broker.Confirm(prompt); !ok {
			return actionDoneMsg{action: "Create admin", tab: TabUsers, aborted: true}
		}
		_, err := client.CreateAdmin(context.Background(), api.Registration{
			Email:     fb.email,
			Password:  fb.password,
			Alias:     fb.alias,
			FirstName: fb.firstName,
			LastName:  fb.lastName,
		})
		return actionDoneMsg{action: "Create admin", tab: TabUsers, err: err}
	}
}

func (m Model) tabLen(tab Tab) int {
	switch tab {
	case TabCategories:
		return len(m.categories)
	case TabUsers:
		return len(m.users)
	case TabListings:
		return len(m.listings)
	case TabMessages:
		return len(m.messages)
	}
	return 0
}

func (m *Model) clampSelection(tab Tab) {
	if n := m.tabLen(tab); m.selected[tab] >= n && m.selected[tab] > 0 {
		m.selected[tab] = n - 1
	}
}

func (m Model) reload(tab Tab) tea.Cmd {
	switch tab {
	case TabCategories:
		return m.loadCategories()
	case TabUsers:
		return m.loadUsers()
	case TabListings:
		return m.loadListings()
	case TabMessages:
		return m.loadMessages()
	}
	return nil
}

func (m Model) loadCategories() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		items, err := client.Categories(context.Background())
		if err != nil {
			return categoriesLoadedMsg{}
		}
		return categoriesLoadedMsg{items: items}
	}
}

func (m Model) loadUsers() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		items, err := client.Users(context.Background())
		if err != nil {
			return usersLoadedMsg{}
		}
		return usersLoadedMsg{items: items}
	}
}

func (m Model) loadListings() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		items, err := client.Listings(context.Background())
		if err != nil {
			return listingsLoadedMsg{}
		}
		return listingsLoadedMsg{items: items}
	}
}

func (m Model) loadMessages() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		items, err := client.Messages(context.Background())
		if err != nil {
			return messagesLoadedMsg{}
		}
		return messagesLoadedMsg{items: items}
	}
}

// View renders the dashboard.
func (m Model) View() string {
	if m.view != modeList && m.form != nil {
		return lipgloss.NewStyle().Padding(1, 2).Render(m.form.View())
	}

	var b strings.Builder
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")
	b.WriteString(m.renderRows())

	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorYellow).Italic(true).Render(m.statusMsg))
	}

	b.WriteString("\n\n")
	b.WriteString(theme.HelpStyle.Render(m.hints()))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(b.String())
}

func (m Model) renderTabs() string {
	var parts []string
	for t := Tab(0); t < tabCount; t++ {
		label := fmt.Sprintf(" %s (%d) ", t, m.tabLen(t))
		if t == m.mode {
			parts = append(parts, lipgloss.NewStyle().
				Bold(true).
				Foreground(theme.ColorWhite).
				Background(theme.ColorBlue).
				Render(label))
		} else {
			parts = append(parts, lipgloss.NewStyle().Foreground(theme.ColorGray).Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m Model) renderRows() string {
	var b strings.Builder
	write := func(i int, label string) {
		if i == m.selected[m.mode] {
			b.WriteString(theme.SelectedItemStyle.Render(label))
		} else {
			b.WriteString(theme.ListItemStyle.Render(label))
		}
		b.WriteString("\n")
	}

	switch m.mode {
	case TabCategories:
		if len(m.categories) == 0 {
			return theme.HelpStyle.Render("No categories.")
		}
		for i, c := range m.categories {
			write(i, fmt.Sprintf("%-30s %d listings", c.Name, c.ListingCount))
		}

	case TabUsers:
		if len(m.users) == 0 {
			return theme.HelpStyle.Render("No users.")
		}
		for i, u := range m.users {
			flags := ""
			if u.Admin {
				flags += " [admin]"
			}
			if u.Blocked {
				flags += " [blocked]"
			}
			write(i, fmt.Sprintf("%-20s %-28s %8.0f cr%s", u.DisplayName(), u.Email, u.Credit, flags))
		}

	case TabListings:
		if len(m.listings) == 0 {
			return theme.HelpStyle.Render("No listings.")
		}
		for i, l := range m.listings {
			write(i, fmt.Sprintf("%-30s %8.0f cr  %d bids", l.Name, l.CurrentBid, l.BidCount))
		}

	case TabMessages:
		if len(m.messages) == 0 {
			return theme.HelpStyle.Render("Inbox is empty.")
		}
		for i, msg := range m.messages {
			write(i, fmt.Sprintf("%-20s %s", msg.Sender, msg.Subject))
		}
	}
	return b.String()
}

func (m Model) hints() string {
	switch m.mode {
	case TabCategories:
		return "tab switch | n new | d delete | r refresh | esc back"
	case TabUsers:
		return "tab switch | n new admin | x block/unblock | r refresh | esc back"
	case TabListings:
		return "tab switch | d delete | r refresh | esc back"
	default:
		return "tab switch | d delete | r refresh | esc back"
	}
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Capturing reports whether a create form currently owns the keyboard.
func (m Model) Capturing() bool {
	return m.view != modeList
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
