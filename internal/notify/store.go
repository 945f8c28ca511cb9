// Package notify keeps the capped, persisted list of activity
// notifications shown in the bell panel.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mbertin/auction-desk/internal/model"
)

// StorageKey is the namespaced key the store owns in the shared local
// key-value table. Nothing else reads or writes it.
const StorageKey = "notify.items"

// MaxEntries caps the retained list; the oldest entries are dropped first.
const MaxEntries = 50

// KeyValue is the slice of the local store the notification list needs.
type KeyValue interface {
	GetValue(ctx context.Context, key string) (string, bool, error)
	PutValue(ctx context.Context, key, value string) error
}

// Store holds notifications most-recent-first, capped at MaxEntries, and
// persists the full list on every mutation. Persistence is best effort: a
// missing or unparsable stored value loads as an empty list.
type Store struct {
	mu    sync.Mutex
	kv    KeyValue
	items []model.Notification
}

// NewStore creates a Store and loads any previously persisted entries.
func NewStore(ctx context.Context, kv KeyValue) *Store {
	s := &Store{kv: kv}

	raw, ok, err := kv.GetValue(ctx, StorageKey)
	if err != nil || !ok {
		return s
	}

	var items []model.Notification
	if json.Unmarshal([]byte(raw), &items) != nil {
		// Corrupt persisted value; start over empty.
		return s
	}
	if len(items) > MaxEntries {
		items = items[:MaxEntries]
	}
	s.items = items
	return s
}

// Append prepends the given notifications (newest first), truncates to
// MaxEntries, and persists.
func (s *Store) Append(ctx context.Context, events ...model.Notification) error {
	if len(events) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	merged := make([]model.Notification, 0, len(events)+len(s.items))
	merged = append(merged, events...)
	merged = append(merged, s.items...)
	if len(merged) > MaxEntries {
		merged = merged[:MaxEntries]
	}
	s.items = merged

	return s.persist(ctx)
}

// Remove deletes one notification by id and persists.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.items[:0]
	for _, n := range s.items {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	s.items = kept

	return s.persist(ctx)
}

// Clear empties the list and persists.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	return s.persist(ctx)
}

// All returns a copy of the current list, most recent first.
func (s *Store) All() []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Notification, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of retained notifications.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// persist writes the list under the store's key. Callers hold s.mu.
func (s *Store) persist(ctx context.Context) error {
	items := s.items
	if items == nil {
		items = []model.Notification{}
	}

	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encoding notifications: %w", err)
	}
	if err := s.kv.PutValue(ctx, StorageKey, string(data)); err != nil {
		return fmt.Errorf("persisting notifications: %w", err)
	}
	return nil
}
