package notifpanel

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mbertin/auction-desk/internal/dialog"
	"github.com/mbertin/auction-desk/internal/keys"
	"github.com/mbertin/auction-desk/internal/model"
	"github.com/mbertin/auction-desk/internal/notify"
	"github.com/mbertin/auction-desk/internal/theme"
)

// CloseMsg signals the parent to close the bell panel.
type CloseMsg struct{}

// ChangedMsg signals that the notification list was mutated, so the
// parent refreshes the bell count.
type ChangedMsg struct{}

type mutationDoneMsg struct{}

// Model is the Bubble Tea model for the notification bell panel.
type Model struct {
	store  *notify.Store
	broker *dialog.Broker
	keys   *keys.KeyMap

	selectedIdx int
	width       int
	height      int
}

// New creates a bell panel model.
func New(s *notify.Store, broker *dialog.Broker, k *keys.KeyMap, width, height int) Model {
	return Model{
		store:  s,
		broker: broker,
		keys:   k,
		width:  width,
		height: height,
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case mutationDoneMsg:
		if n := m.store.Len(); m.selectedIdx >= n && m.selectedIdx > 0 {
			m.selectedIdx = n - 1
		}
		return m, func() tea.Msg { return ChangedMsg{} }

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	items := m.store.All()

	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }

	case key.Matches(msg, m.keys.Down):
		if len(items) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(items)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(items) > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = len(items) - 1
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		if len(items) == 0 || m.selectedIdx >= len(items) {
			return m, nil
		}
		return m, m.dismiss(items[m.selectedIdx].ID)

	case msg.String() == "C":
		if len(items) == 0 {
			return m, nil
		}
		return m, m.clearAll(len(items))
	}
	return m, nil
}

// dismiss removes a single entry; no confirmation needed, it only affects
// one row.
func (m Model) dismiss(id string) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		_ = s.Remove(context.Background(), id)
		return mutationDoneMsg{}
	}
}

// clearAll wipes the whole feed after the user confirms.
func (m Model) clearAll(count int) tea.Cmd {
	s := m.store
	broker := m.broker
	return func() tea.Msg {
		prompt := fmt.Sprintf("Clear all %d notifications?", count)
		if ok := <-broker.Confirm(prompt); !ok {
			return nil
		}
		_ = s.Clear(context.Background())
		return mutationDoneMsg{}
	}
}

// View renders the bell panel.
func (m Model) View() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).MarginBottom(1)
	b.WriteString(titleStyle.Render("Notifications"))
	b.WriteString("\n\n")

	items := m.store.All()
	if len(items) == 0 {
		b.WriteString(theme.HelpStyle.Render("Nothing new."))
	} else {
		now := time.Now()
		for i, n := range items {
			marker := theme.SeverityStyle(n.Severity).Render(severityIcon(n.Severity))
			label := fmt.Sprintf("%s %s  %s", marker, n.Message,
				theme.HelpStyle.Render(relativeTime(n.CreatedAt, now)))

			if i == m.selectedIdx {
				b.WriteString(theme.SelectedItemStyle.Render(label))
			} else {
				b.WriteString(theme.ListItemStyle.Render(label))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n\n")
	b.WriteString(theme.HelpStyle.Render("d dismiss | C clear all | esc back"))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(b.String())
}

func severityIcon(s model.Severity) string {
	switch s {
	case model.SeveritySuccess:
		return "✓"
	case model.SeverityWarning:
		return "!"
	default:
		return "•"
	}
}

// relativeTime renders a short "3m ago" style age.
func relativeTime(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
