package listings

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/mbertin/auction-desk/internal/api"
	"github.com/mbertin/auction-desk/internal/keys"
	"github.com/mbertin/auction-desk/internal/model"
	"github.com/mbertin/auction-desk/internal/store"
	"github.com/mbertin/auction-desk/internal/theme"
)

type listMode int

const (
	modeList listMode = iota
	modeBid
	modeFilter
)

type listingsLoadedMsg struct {
	items     []model.Listing
	fromCache bool
	err       error
}

type wishlistLoadedMsg struct {
	ids map[int64]bool
}

type wishlistToggledMsg struct {
	id    int64
	added bool
	err   error
}

// BidPlacedMsg tells the parent a bid went through, so it can refresh the
// account's credit balance.
type BidPlacedMsg struct {
	Bid model.Bid
}

type bidResultMsg struct {
	bid *model.Bid
	err error
}

type bidBindings struct {
	amount string
}

// Model is the Bubble Tea model for the listings browse view.
type Model struct {
	client *api.Client
	store  store.Store
	keys   *keys.KeyMap

	mode        listMode
	items       []model.Listing
	wishlist    map[int64]bool
	selectedIdx int
	statusMsg   string

	filter textinput.Model

	bidForm *huh.Form
	fb      *bidBindings

	width  int
	height int
}

// New creates a listings model.
func New(client *api.Client, s store.Store, k *keys.KeyMap, width, height int) Model {
	filter := textinput.New()
	filter.Placeholder = "filter listings"
	filter.CharLimit = 64
	filter.Prompt = "/ "

	return Model{
		client:   client,
		store:    s,
		keys:     k,
		wishlist: map[int64]bool{},
		filter:   filter,
		fb:       &bidBindings{},
		width:    width,
		height:   height,
	}
}

// Init loads the cached listings immediately, then refreshes from the API
// and fetches the wishlist.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadCached(), m.LoadListings(), m.loadWishlist())
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case listingsLoadedMsg:
		if msg.err != nil {
			// Keep whatever is already shown; the cache covers cold start.
			m.statusMsg = "Marketplace unreachable, showing cached listings"
			return m, nil
		}
		if msg.fromCache && len(m.items) > 0 {
			// A live result already arrived; don't regress to the cache.
			return m, nil
		}
		m.items = msg.items
		if !msg.fromCache {
			m.statusMsg = ""
		}
		if m.selectedIdx >= len(m.items) && m.selectedIdx > 0 {
			m.selectedIdx = len(m.items) - 1
		}
		return m, nil

	case wishlistLoadedMsg:
		m.wishlist = msg.ids
		return m, nil

	case wishlistToggledMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Wishlist update failed: %s", api.Reason(msg.err))
			return m, nil
		}
		m.wishlist[msg.id] = msg.added
		if !msg.added {
			delete(m.wishlist, msg.id)
		}
		return m, nil

	case bidResultMsg:
		m.mode = modeList
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Bid rejected: %s", api.Reason(msg.err))
			return m, nil
		}
		m.statusMsg = "Bid placed"
		return m, tea.Batch(
			m.LoadListings(),
			func() tea.Msg { return BidPlacedMsg{Bid: *msg.bid} },
		)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.mode == modeBid {
		return m.updateBidForm(msg)
	}
	if m.mode == modeFilter {
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.mode == modeBid {
		return m.updateBidForm(msg)
	}
	if m.mode == modeFilter {
		return m.updateFilter(msg)
	}

	items := m.visible()

	switch {
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

	case key.Matches(msg, m.keys.Search):
		m.mode = modeFilter
		m.filter.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Back):
		if m.filter.Value() != "" {
			m.filter.SetValue("")
			m.selectedIdx = 0
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m, m.LoadListings()

	case key.Matches(msg, m.keys.Bid):
		l, ok := m.selected()
		if !ok || l.Ended(time.Now()) {
			return m, nil
		}
		m.fb.amount = ""
		m.bidForm = m.buildBidForm(l)
		m.mode = modeBid
		return m, m.bidForm.Init()

	case key.Matches(msg, m.keys.Wishlist):
		l, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m, m.toggleWishlist(l.ID, !m.wishlist[l.ID])
	}
	return m, nil
}

// updateFilter routes keys to the filter input; enter applies, esc
// clears and leaves filter mode.
func (m Model) updateFilter(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.mode = modeList
		m.filter.Blur()
		m.selectedIdx = 0
		return m, nil
	case "esc":
		m.mode = modeList
		m.filter.Blur()
		m.filter.SetValue("")
		m.selectedIdx = 0
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.selectedIdx = 0
	return m, cmd
}

// visible returns the listings matching the current filter, or all of
// them when no filter is set.
func (m Model) visible() []model.Listing {
	query := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	if query == "" {
		return m.items
	}
	var out []model.Listing
	for _, l := range m.items {
		if strings.Contains(strings.ToLower(l.Name), query) {
			out = append(out, l)
		}
	}
	return out
}

func (m Model) selected() (model.Listing, bool) {
	items := m.visible()
	if len(items) == 0 || m.selectedIdx >= len(items) {
		return model.Listing{}, false
	}
	return items[m.selectedIdx], true
}

func (m Model) buildBidForm(l model.Listing) *huh.Form {
	minimum := l.MinimumBid()
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("Bid on %q (minimum %.0f credits)", l.Name, minimum)).
				Placeholder(strconv.FormatFloat(minimum, 'f', -1, 64)).
				Value(&m.fb.amount).
				Validate(func(s string) error {
					amount, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
					if err != nil {
						return fmt.Errorf("enter a number")
					}
					if amount < minimum {
						return fmt.Errorf("bid must be at least %.0f credits", minimum)
					}
					return nil
				}),
		),
	).WithWidth(m.formWidth())
}

func (m Model) updateBidForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.bidForm == nil {
		m.mode = modeList
		return m, nil
	}
	mdl, cmd := m.bidForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.bidForm = f
	}
	if m.bidForm.State == huh.StateCompleted {
		l, ok := m.selected()
		if !ok {
			m.mode = modeList
			return m, nil
		}
		amount, err := strconv.ParseFloat(strings.TrimSpace(m.fb.amount), 64)
		if err != nil {
			m.mode = modeList
			return m, nil
		}
		return m, m.placeBid(l.ID, amount)
	}
	if m.bidForm.State == huh.StateAborted {
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

// LoadListings fetches the live listings and refreshes the local cache.
func (m Model) LoadListings() tea.Cmd {
	client := m.client
	s := m.store
	return func() tea.Msg {
		ctx := context.Background()
		items, err := client.Listings(ctx)
		if err != nil {
			return listingsLoadedMsg{err: err}
		}
		// Cache refresh is best effort.
		_ = s.UpsertListings(ctx, items)
		return listingsLoadedMsg{items: items}
	}
}

// loadCached returns the locally cached listings for a warm start.
func (m Model) loadCached() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		items, err := s.GetListings(context.Background())
		if err != nil {
			return listingsLoadedMsg{fromCache: true}
		}
		return listingsLoadedMsg{items: items, fromCache: true}
	}
}

func (m Model) loadWishlist() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		items, err := client.Wishlist(context.Background())
		if err != nil {
			return wishlistLoadedMsg{ids: map[int64]bool{}}
		}
		ids := make(map[int64]bool, len(items))
		for _, l := range items {
			ids[l.ID] = true
		}
		return wishlistLoadedMsg{ids: ids}
	}
}

func (m Model) toggleWishlist(id int64, add bool) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx := context.Background()
		var err error
		if add {
			err = client.AddToWishlist(ctx, id)
		} else {
			err = client.RemoveFromWishlist(ctx, id)
		}
		return wishlistToggledMsg{id: id, added: add, err: err}
	}
}

func (m Model) placeBid(listingID int64, amount float64) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		bid, err := client.PlaceBid(context.Background(), listingID, amount)
		return bidResultMsg{bid: bid, err: err}
	}
}

// View renders the listings table or the bid form.
func (m Model) View() string {
	if m.mode == modeBid && m.bidForm != nil {
		return lipgloss.NewStyle().Padding(1, 2).Render(m.bidForm.View())
	}
	return m.viewList()
}

func (m Model) viewList() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).MarginBottom(1)
	b.WriteString(titleStyle.Render("Listings"))
	b.WriteString("\n\n")

	if m.mode == modeFilter || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
		b.WriteString("\n\n")
	}

	items := m.visible()
	if len(items) == 0 {
		if m.filter.Value() != "" {
			b.WriteString(theme.HelpStyle.Render("No listings match the filter."))
		} else {
			b.WriteString(theme.HelpStyle.Render("No open auctions right now."))
		}
	} else {
		now := time.Now()
		for i, l := range items {
			star := " "
			if m.wishlist[l.ID] {
				star = "★"
			}

			bid := "no bids"
			if l.CurrentBid > 0 {
				bid = fmt.Sprintf("%.0f cr (%d bids)", l.CurrentBid, l.BidCount)
			}

			label := fmt.Sprintf("%s %-30s %12s  %s",
				star, truncate(l.Name, 30), bid, remaining(l, now))

			if i == m.selectedIdx {
				b.WriteString(theme.SelectedItemStyle.Render(label))
			} else {
				b.WriteString(theme.ListItemStyle.Render(label))
			}
			b.WriteString("\n")
		}
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorYellow).Italic(true).Render(m.statusMsg))
	}

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(b.String())
}

// remaining renders the countdown for a listing.
func remaining(l model.Listing, now time.Time) string {
	if l.Ended(now) {
		return theme.CountdownStyle(true, false).Render("ended")
	}
	left := l.EndsAt.Sub(now).Round(time.Minute)
	soon := left < time.Hour
	if left < time.Minute {
		left = time.Minute
	}
	return theme.CountdownStyle(false, soon).Render("ends in " + left.String())
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Capturing reports whether a text form currently owns the keyboard.
func (m Model) Capturing() bool {
	return m.mode != modeList
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
