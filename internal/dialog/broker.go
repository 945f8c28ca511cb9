// Package dialog provides a process-wide confirm/alert coordinator for the
// terminal UI. Any command goroutine may block on Confirm or Alert; the
// broker holds at most one pending request at a time and guarantees each
// caller's channel resolves exactly once.
package dialog

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Kind distinguishes a yes/no prompt from a plain acknowledgement.
type Kind int

const (
	KindConfirm Kind = iota
	KindAlert
)

// Variant controls the icon and accent color of the rendered dialog.
type Variant int

const (
	VariantInfo Variant = iota
	VariantSuccess
	VariantWarning
	VariantError
)

// Request describes one pending user prompt.
type Request struct {
	Kind    Kind
	Variant Variant
	Title   string
	Message string

	resolve func(bool)
}

// Option customizes a Confirm or Alert request.
type Option func(*Request)

// WithTitle overrides the default dialog title.
func WithTitle(title string) Option {
	return func(r *Request) { r.Title = title }
}

// WithVariant sets the presentation variant.
func WithVariant(v Variant) Option {
	return func(r *Request) { r.Variant = v }
}

// OpenedMsg is a tea.Msg sent when a new request becomes pending, so the
// root model re-renders and routes input to the dialog overlay.
type OpenedMsg struct{}

// Broker serializes confirm/alert prompts. It is single-flight by
// construction: issuing a request while another is pending resolves the
// earlier caller with false before the new request is surfaced, so no
// caller's channel is ever left hanging.
type Broker struct {
	mu      sync.Mutex
	pending *Request
	openCh  chan struct{}
}

// NewBroker creates an idle broker.
func NewBroker() *Broker {
	return &Broker{
		openCh: make(chan struct{}, 16),
	}
}

// Confirm asks the user a yes/no question. The returned channel yields
// true if the user affirms and false if they cancel, dismiss, or the
// request is preempted by a later one. It never yields more than once.
func (b *Broker) Confirm(message string, opts ...Option) <-chan bool {
	return b.open(&Request{
		Kind:    KindConfirm,
		Variant: VariantWarning,
		Title:   "Confirmation",
		Message: message,
	}, opts)
}

// Alert shows an acknowledgement prompt. The returned channel yields true
// when the user acknowledges and false when they dismiss it.
func (b *Broker) Alert(message string, opts ...Option) <-chan bool {
	return b.open(&Request{
		Kind:    KindAlert,
		Variant: VariantInfo,
		Title:   "Information",
		Message: message,
	}, opts)
}

// open installs req as the pending request, resolving any previously
// pending request with false first.
func (b *Broker) open(req *Request, opts []Option) <-chan bool {
	for _, opt := range opts {
		opt(req)
	}

	result := make(chan bool, 1)
	var once sync.Once
	req.resolve = func(answer bool) {
		once.Do(func() { result <- answer })
	}

	b.mu.Lock()
	previous := b.pending
	b.pending = req
	b.mu.Unlock()

	// Last writer wins; the abandoned caller gets false before the new
	// request is announced.
	if previous != nil {
		previous.resolve(false)
	}

	select {
	case b.openCh <- struct{}{}:
	default:
	}

	return result
}

// Resolve answers the pending request and closes the dialog. Calling it
// with no pending request is a no-op.
func (b *Broker) Resolve(answer bool) {
	b.mu.Lock()
	req := b.pending
	b.pending = nil
	b.mu.Unlock()

	if req != nil {
		req.resolve(answer)
	}
}

// Close dismisses the pending request, resolving its caller with false.
func (b *Broker) Close() {
	b.Resolve(false)
}

// Pending returns the currently visible request, or nil when the broker
// is idle.
func (b *Broker) Pending() *Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pending
}

// WaitForRequest returns a tea.Cmd that delivers an OpenedMsg the next
// time a request is issued. The root model re-subscribes after handling
// each OpenedMsg, mirroring the poller's result subscription.
func (b *Broker) WaitForRequest() tea.Cmd {
	return func() tea.Msg {
		_, ok := <-b.openCh
		if !ok {
			return nil
		}
		return OpenedMsg{}
	}
}
