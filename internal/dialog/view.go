package dialog

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mbertin/auction-desk/internal/theme"
)

// accent returns the border/title color for a variant.
func accent(v Variant) lipgloss.AdaptiveColor {
	switch v {
	case VariantSuccess:
		return theme.ColorGreen
	case VariantWarning:
		return theme.ColorYellow
	case VariantError:
		return theme.ColorRed
	default:
		return theme.ColorBlue
	}
}

// icon returns the marker shown next to the dialog title.
func icon(v Variant) string {
	switch v {
	case VariantSuccess:
		return "✓"
	case VariantWarning:
		return "!"
	case VariantError:
		return "✗"
	default:
		return "i"
	}
}

// HandleKey maps a key press onto the pending request's resolution.
// It reports whether the key was consumed. With no pending request every
// key passes through untouched.
func (b *Broker) HandleKey(msg tea.KeyMsg) bool {
	req := b.Pending()
	if req == nil {
		return false
	}

	switch msg.String() {
	case "enter", "y":
		b.Resolve(true)
	case "esc":
		b.Resolve(false)
	case "n":
		if req.Kind == KindConfirm {
			b.Resolve(false)
		}
	}

	// A visible dialog swallows all input either way.
	return true
}

// View renders the pending request as a centered overlay box. It returns
// the empty string when the broker is idle.
func (b *Broker) View(width, height int) string {
	req := b.Pending()
	if req == nil {
		return ""
	}

	color := accent(req.Variant)

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(color)
	bodyStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)
	hintStyle := lipgloss.NewStyle().Foreground(theme.ColorGray).Italic(true)

	hint := "enter ok | esc dismiss"
	if req.Kind == KindConfirm {
		hint = "y/enter confirm | n/esc cancel"
	}

	boxWidth := width / 2
	if boxWidth < 40 {
		boxWidth = 40
	}
	if boxWidth > width-4 && width > 4 {
		boxWidth = width - 4
	}

	var body strings.Builder
	body.WriteString(titleStyle.Render(icon(req.Variant) + " " + req.Title))
	body.WriteString("\n\n")
	body.WriteString(bodyStyle.Width(boxWidth - 6).Render(req.Message))
	body.WriteString("\n\n")
	body.WriteString(hintStyle.Render(hint))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(1, 2).
		Width(boxWidth).
		Render(body.String())

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
