// Package watch polls the marketplace API on a fixed interval and turns
// snapshot-to-snapshot differences into notifications.
package watch

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/mbertin/auction-desk/internal/model"
)

// fetchTimeout is the maximum time allowed for a single poll's fetches.
const fetchTimeout = 30 * time.Second

// DefaultInterval is the poll cadence used when the config is silent.
const DefaultInterval = 15 * time.Second

// Fetcher supplies the two monitored collections. *api.Client satisfies
// it; tests inject fakes.
type Fetcher interface {
	Users(ctx context.Context) ([]model.User, error)
	Listings(ctx context.Context) ([]model.Listing, error)
}

// EventsMsg is a tea.Msg carrying the notifications synthesized by one
// poll. Polls that detect nothing send no message.
type EventsMsg struct {
	Events []model.Notification
}

// Watcher re-fetches the users and listings collections on a fixed
// interval, diffs each against its previous snapshot, and publishes
// notification events. The first successful poll only primes the
// snapshots; it never emits (every item would otherwise be misreported
// as new). A failed fetch for either collection leaves both snapshots
// untouched so they always describe a single point in time.
type Watcher struct {
	fetcher  Fetcher
	interval time.Duration
	logger   *zap.Logger

	eventCh chan EventsMsg
	stopCh  chan struct{}

	mu       sync.Mutex
	running  bool
	primed   bool
	users    UserSnapshot
	listings ListingSnapshot
	lastPoll time.Time

	// now is swappable for end-time transition tests.
	now func() time.Time
}

// New creates a Watcher. A nil logger is replaced with a no-op one and a
// non-positive interval with DefaultInterval.
func New(f Fetcher, interval time.Duration, logger *zap.Logger) *Watcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		fetcher:  f,
		interval: interval,
		logger:   logger,
		eventCh:  make(chan EventsMsg, 16),
		stopCh:   make(chan struct{}),
		now:      time.Now,
	}
}

// Start launches the poll loop (an immediate poll, then one per interval)
// and returns the subscription command that delivers EventsMsg values to
// the Bubble Tea runtime. Calling Start on a running watcher is a no-op.
func (w *Watcher) Start() tea.Cmd {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	go w.run()

	return w.waitForEvents()
}

// Stop halts the poll loop. It is idempotent; stopping an already-stopped
// watcher does nothing.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	close(w.stopCh)
	w.running = false
}

// run is the poll loop.
func (w *Watcher) run() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.poll()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.poll()
		}
	}
}

// poll performs one fetch-diff-replace cycle. Fetch failures are logged
// and swallowed; the next tick retries independently.
func (w *Watcher) poll() {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	users, err := w.fetcher.Users(ctx)
	if err != nil {
		w.logger.Debug("users fetch failed, keeping previous snapshot", zap.Error(err))
		return
	}

	listings, err := w.fetcher.Listings(ctx)
	if err != nil {
		w.logger.Debug("listings fetch failed, keeping previous snapshot", zap.Error(err))
		return
	}

	curUsers := SnapshotUsers(users)
	curListings := SnapshotListings(listings)
	now := w.now()

	w.mu.Lock()
	primed := w.primed
	prevUsers := w.users
	prevListings := w.listings
	prevTime := w.lastPoll
	w.users = curUsers
	w.listings = curListings
	w.lastPoll = now
	w.primed = true
	w.mu.Unlock()

	if !primed {
		return
	}

	events := DiffUsers(prevUsers, curUsers, now)
	events = append(events, DiffListings(prevListings, curListings, prevTime, now)...)
	if len(events) == 0 {
		return
	}

	select {
	case w.eventCh <- EventsMsg{Events: events}:
	default:
		// Drop if the channel is full to avoid blocking the poll loop.
		w.logger.Warn("event channel full, dropping notifications", zap.Int("count", len(events)))
	}
}

// waitForEvents returns a tea.Cmd that waits for the next batch of
// events from the poll loop.
func (w *Watcher) waitForEvents() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-w.eventCh
		if !ok {
			return nil
		}
		return msg
	}
}

// WaitForNextEvents returns a tea.Cmd that waits for the next poll's
// events. Call it after processing an EventsMsg to keep listening.
func (w *Watcher) WaitForNextEvents() tea.Cmd {
	return w.waitForEvents()
}
