package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbertin/auction-desk/internal/model"
)

// memKV is an in-memory KeyValue for tests.
type memKV struct {
	values map[string]string
	puts   int
}

func newMemKV() *memKV {
	return &memKV{values: make(map[string]string)}
}

func (m *memKV) GetValue(ctx context.Context, key string) (string, bool, error) {
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memKV) PutValue(ctx context.Context, key, value string) error {
	m.puts++
	m.values[key] = value
	return nil
}

func event(id string, msg string) model.Notification {
	return model.Notification{
		ID:        id,
		Severity:  model.SeverityInfo,
		Message:   msg,
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestNewStoreEmptyWhenNothingPersisted(t *testing.T) {
	s := NewStore(context.Background(), newMemKV())
	assert.Zero(t, s.Len())
	assert.Empty(t, s.All())
}

func TestAppendPrependsNewestFirst(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	s := NewStore(ctx, kv)

	require.NoError(t, s.Append(ctx, event("a", "first")))
	require.NoError(t, s.Append(ctx, event("b", "second")))

	items := s.All()
	require.Len(t, items, 2)
	assert.Equal(t, "b", items[0].ID)
	assert.Equal(t, "a", items[1].ID)
	assert.Equal(t, 2, kv.puts, "each mutation persists")
}

func TestAppendEvictsOldestPastCap(t *testing.T) {
	ctx := context.Background()
	s := NewStore(ctx, newMemKV())

	for i := 0; i < MaxEntries; i++ {
		require.NoError(t, s.Append(ctx, event(fmt.Sprintf("n%d", i), "x")))
	}
	require.Equal(t, MaxEntries, s.Len())

	require.NoError(t, s.Append(ctx, event("newest", "overflow")))

	items := s.All()
	assert.Len(t, items, MaxEntries)
	assert.Equal(t, "newest", items[0].ID)
	for _, n := range items {
		assert.NotEqual(t, "n0", n.ID, "the oldest entry is evicted")
	}
}

func TestAppendNothingIsNoop(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	s := NewStore(ctx, kv)

	require.NoError(t, s.Append(ctx))
	assert.Zero(t, kv.puts)
}

func TestRemoveAndClearPersist(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	s := NewStore(ctx, kv)

	require.NoError(t, s.Append(ctx, event("a", "one"), event("b", "two")))

	require.NoError(t, s.Remove(ctx, "a"))
	items := s.All()
	require.Len(t, items, 1)
	assert.Equal(t, "b", items[0].ID)

	require.NoError(t, s.Clear(ctx))
	assert.Zero(t, s.Len())

	// The cleared state is what a restart sees.
	reloaded := NewStore(ctx, kv)
	assert.Zero(t, reloaded.Len())
}

func TestReloadRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	s := NewStore(ctx, kv)
	require.NoError(t, s.Append(ctx, event("a", "hello"), event("b", "world")))

	reloaded := NewStore(ctx, kv)
	items := reloaded.All()
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].ID)
	assert.Equal(t, "hello", items[0].Message)
	assert.Equal(t, model.SeverityInfo, items[0].Severity)
}

func TestCorruptPersistedValueLoadsEmpty(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	kv.values[StorageKey] = "{not json"

	s := NewStore(ctx, kv)
	assert.Zero(t, s.Len())
}

func TestOversizedPersistedValueTruncates(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()

	var items []model.Notification
	for i := 0; i < MaxEntries+10; i++ {
		items = append(items, event(fmt.Sprintf("n%d", i), "x"))
	}
	raw, err := json.Marshal(items)
	require.NoError(t, err)
	kv.values[StorageKey] = string(raw)

	s := NewStore(ctx, kv)
	assert.Equal(t, MaxEntries, s.Len())
	assert.Equal(t, "n0", s.All()[0].ID, "truncation keeps the newest entries")
}

func TestAllReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewStore(ctx, newMemKV())
	require.NoError(t, s.Append(ctx, event("a", "one")))

	items := s.All()
	items[0].Message = "mutated"

	assert.Equal(t, "one", s.All()[0].Message)
}
