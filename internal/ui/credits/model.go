package credits

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/mbertin/auction-desk/internal/api"
	"github.com/mbertin/auction-desk/internal/dialog"
	"github.com/mbertin/auction-desk/internal/theme"
)

// CloseMsg signals the parent to leave the credits view.
type CloseMsg struct{}

type checkoutResultMsg struct {
	err error
}

type formBindings struct {
	amount string
}

// Model is the Bubble Tea model for buying bidding credits. The card
// form itself is hosted by the payment provider; this view collects the
// amount, starts a checkout session, and hands the user the URL.
type Model struct {
	client *api.Client
	broker *dialog.Broker

	form *huh.Form
	fb   *formBindings

	width  int
	height int
}

// New creates a credits model with a fresh amount form. The parent
// recreates the model every time the view opens, so the form never
// carries a previous run's state.
func New(client *api.Client, broker *dialog.Broker, width, height int) Model {
	m := Model{
		client: client,
		broker: broker,
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
	m.form = m.buildForm()
	return m
}

// Init starts the amount form.
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

	case checkoutResultMsg:
		_ = msg
		return m, func() tea.Msg { return CloseMsg{} }
	}

	if m.form == nil {
		return m, nil
	}
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	if m.form.State == huh.StateCompleted {
		amount, err := strconv.ParseFloat(strings.TrimSpace(m.fb.amount), 64)
		if err != nil {
			return m, func() tea.Msg { return CloseMsg{} }
		}
		return m, m.checkout(amount)
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CloseMsg{} }
	}
	return m, cmd
}

func (m Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("How many credits?").
				Placeholder("50").
				Value(&m.fb.amount).
				Validate(func(s string) error {
					amount, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
					if err != nil || amount <= 0 {
						return fmt.Errorf("enter a positive number")
					}
					return nil
				}),
		),
	).WithWidth(m.formWidth())
}

// checkout starts the hosted session and surfaces the outcome through
// the dialog broker: the checkout URL as a success alert, a rejected
// request as an error alert.
func (m Model) checkout(amount float64) tea.Cmd {
	client := m.client
	broker := m.broker
	return func() tea.Msg {
		session, err := client.BuyCredits(context.Background(), amount)
		if err != nil {
			<-broker.Alert(
				fmt.Sprintf("Could not start the purchase: %s", api.Reason(err)),
				dialog.WithTitle("Purchase failed"),
				dialog.WithVariant(dialog.VariantError),
			)
			return checkoutResultMsg{err: err}
		}

		<-broker.Alert(
			fmt.Sprintf("Finish your %s-credit purchase at:\n\n%s\n\nYour balance updates once the payment clears.",
				strconv.FormatFloat(session.Amount, 'f', -1, 64), session.CheckoutURL),
			dialog.WithTitle("Checkout started"),
			dialog.WithVariant(dialog.VariantSuccess),
		)
		return checkoutResultMsg{}
	}
}

// View renders the amount form.
func (m Model) View() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).MarginBottom(1)
	b.WriteString(titleStyle.Render("Buy credits"))
	b.WriteString("\n\n")
	if m.form != nil {
		b.WriteString(m.form.View())
	}
	b.WriteString("\n\n")
	b.WriteString(theme.HelpStyle.Render("enter continue | esc cancel"))

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
