package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbertin/auction-desk/internal/model"
	"github.com/mbertin/auction-desk/tests/testutil"
)

func TestKeyValueRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	_, ok, err := s.GetValue(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.PutValue(ctx, "notify.items", `[]`))

	value, ok, err := s.GetValue(ctx, "notify.items")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[]`, value)
}

func TestPutValueReplaces(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	require.NoError(t, s.PutValue(ctx, "k", "one"))
	require.NoError(t, s.PutValue(ctx, "k", "two"))

	value, ok, err := s.GetValue(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "two", value)
}

func TestDeleteValue(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	require.NoError(t, s.PutValue(ctx, "k", "v"))
	require.NoError(t, s.DeleteValue(ctx, "k"))

	_, ok, err := s.GetValue(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting a missing key is not an error.
	require.NoError(t, s.DeleteValue(ctx, "k"))
}

func listingFixture(id int64, name string, endsAt time.Time) model.Listing {
	return model.Listing{
		ID:          id,
		Name:        name,
		Description: "a " + name,
		CategoryID:  1,
		SellerID:    7,
		StartPrice:  5,
		CurrentBid:  10,
		BidCount:    2,
		EndsAt:      endsAt,
		CreatedAt:   endsAt.Add(-24 * time.Hour),
	}
}

func TestUpsertAndGetListings(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	base := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.UpsertListings(ctx, []model.Listing{
		listingFixture(2, "Vase", base.Add(time.Hour)),
		listingFixture(1, "Clock", base),
	}))

	listings, err := s.GetListings(ctx)
	require.NoError(t, err)
	require.Len(t, listings, 2)

	// Soonest-ending first.
	assert.Equal(t, int64(1), listings[0].ID)
	assert.Equal(t, "Clock", listings[0].Name)
	assert.Equal(t, float64(10), listings[0].CurrentBid)
	assert.True(t, listings[0].EndsAt.Equal(base))
	assert.Equal(t, int64(2), listings[1].ID)
}

func TestUpsertListingsReplacesExisting(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	base := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.UpsertListings(ctx, []model.Listing{listingFixture(1, "Clock", base)}))

	updated := listingFixture(1, "Clock", base)
	updated.CurrentBid = 42
	updated.BidCount = 5
	require.NoError(t, s.UpsertListings(ctx, []model.Listing{updated}))

	listings, err := s.GetListings(ctx)
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, float64(42), listings[0].CurrentBid)
	assert.Equal(t, 5, listings[0].BidCount)
}

func TestUpsertListingsEmptyIsNoop(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	require.NoError(t, s.UpsertListings(ctx, nil))

	listings, err := s.GetListings(ctx)
	require.NoError(t, err)
	assert.Empty(t, listings)
}
