package dialog

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// receive waits briefly for a resolution so a hung channel fails the
// test instead of blocking it forever.
func receive(t *testing.T, ch <-chan bool) bool {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("channel never resolved")
		return false
	}
}

func TestConfirmResolvesTrue(t *testing.T) {
	b := NewBroker()

	ch := b.Confirm("Delete this listing?")
	req := b.Pending()
	require.NotNil(t, req)
	assert.Equal(t, KindConfirm, req.Kind)
	assert.Equal(t, "Confirmation", req.Title)
	assert.Equal(t, VariantWarning, req.Variant)

	b.Resolve(true)

	assert.True(t, receive(t, ch))
	assert.Nil(t, b.Pending())
}

func TestConfirmResolvesFalse(t *testing.T) {
	b := NewBroker()

	ch := b.Confirm("Block this user?")
	b.Resolve(false)

	assert.False(t, receive(t, ch))
}

func TestCloseResolvesFalse(t *testing.T) {
	b := NewBroker()

	ch := b.Confirm("Sign out?")
	b.Close()

	assert.False(t, receive(t, ch))
	assert.Nil(t, b.Pending())
}

func TestAlertDefaults(t *testing.T) {
	b := NewBroker()

	ch := b.Alert("Checkout created")
	req := b.Pending()
	require.NotNil(t, req)
	assert.Equal(t, KindAlert, req.Kind)
	assert.Equal(t, "Information", req.Title)
	assert.Equal(t, VariantInfo, req.Variant)

	b.Resolve(true)
	assert.True(t, receive(t, ch))
}

func TestOptionsOverrideDefaults(t *testing.T) {
	b := NewBroker()

	ch := b.Alert("Payment failed", WithTitle("Error"), WithVariant(VariantError))
	req := b.Pending()
	require.NotNil(t, req)
	assert.Equal(t, "Error", req.Title)
	assert.Equal(t, VariantError, req.Variant)

	b.Close()
	assert.False(t, receive(t, ch))
}

func TestNewRequestPreemptsPending(t *testing.T) {
	b := NewBroker()

	first := b.Confirm("first?")
	second := b.Confirm("second?")

	// The abandoned caller resolves false immediately, before anyone
	// answers the new request.
	assert.False(t, receive(t, first))

	req := b.Pending()
	require.NotNil(t, req)
	assert.Equal(t, "second?", req.Message)

	b.Resolve(true)
	assert.True(t, receive(t, second))
}

func TestResolveIsIdempotentPerRequest(t *testing.T) {
	b := NewBroker()

	ch := b.Confirm("once?")
	b.Resolve(true)
	b.Resolve(false)
	b.Close()

	assert.True(t, receive(t, ch))

	// The channel yielded exactly once; nothing else is buffered.
	select {
	case v := <-ch:
		t.Fatalf("unexpected second resolution: %v", v)
	default:
	}
}

func TestResolveWithoutPendingIsNoop(t *testing.T) {
	b := NewBroker()
	b.Resolve(true)
	b.Close()
	assert.Nil(t, b.Pending())
}

func TestWaitForRequestDeliversOpenedMsg(t *testing.T) {
	b := NewBroker()

	ch := b.Confirm("anything?")
	msg := b.WaitForRequest()()
	assert.Equal(t, OpenedMsg{}, msg)

	b.Resolve(false)
	receive(t, ch)
}

func TestHandleKeyAnswersConfirm(t *testing.T) {
	tests := []struct {
		name   string
		key    tea.KeyMsg
		answer bool
	}{
		{"enter affirms", tea.KeyMsg{Type: tea.KeyEnter}, true},
		{"y affirms", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}}, true},
		{"esc cancels", tea.KeyMsg{Type: tea.KeyEsc}, false},
		{"n cancels", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBroker()
			ch := b.Confirm("proceed?")

			assert.True(t, b.HandleKey(tt.key))
			assert.Equal(t, tt.answer, receive(t, ch))
			assert.Nil(t, b.Pending())
		})
	}
}

func TestHandleKeyIgnoredWhenIdle(t *testing.T) {
	b := NewBroker()
	assert.False(t, b.HandleKey(tea.KeyMsg{Type: tea.KeyEnter}))
}

func TestHandleKeySwallowsUnboundKeysWhilePending(t *testing.T) {
	b := NewBroker()
	ch := b.Confirm("proceed?")

	assert.True(t, b.HandleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}}))
	require.NotNil(t, b.Pending())

	b.Close()
	receive(t, ch)
}

func TestViewEmptyWhenIdle(t *testing.T) {
	b := NewBroker()
	assert.Empty(t, b.View(80, 24))
}
