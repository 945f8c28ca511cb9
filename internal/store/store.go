package store

import (
	"context"

	"github.com/mbertin/auction-desk/internal/model"
)

// Store defines the local persistence surface: a namespaced key-value
// table shared by the whole application (each feature owns its keys and
// nothing else) and a listings cache refreshed from successful polls so
// the browse view starts warm.
type Store interface {
	// === Key-value ===

	GetValue(ctx context.Context, key string) (string, bool, error)
	PutValue(ctx context.Context, key, value string) error
	DeleteValue(ctx context.Context, key string) error

	// === Listings cache ===

	UpsertListings(ctx context.Context, listings []model.Listing) error
	GetListings(ctx context.Context) ([]model.Listing, error)
}
