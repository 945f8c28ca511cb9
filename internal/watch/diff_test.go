package watch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbertin/auction-desk/internal/model"
)

func userFixture(id int64, alias string, credit float64) model.User {
	return model.User{ID: id, Alias: alias, Credit: credit}
}

func listingFixture(id int64, name string, bid float64, endsAt time.Time) model.Listing {
	return model.Listing{ID: id, Name: name, CurrentBid: bid, EndsAt: endsAt}
}

func TestDiffUsersCreditIncrease(t *testing.T) {
	now := time.Now()
	prev := SnapshotUsers([]model.User{
		userFixture(1, "alice", 100),
		userFixture(2, "bob", 50),
	})
	cur := SnapshotUsers([]model.User{
		userFixture(1, "alice", 115),
		userFixture(2, "bob", 50),
	})

	events := DiffUsers(prev, cur, now)

	require.Len(t, events, 1)
	assert.Equal(t, model.SeveritySuccess, events[0].Severity)
	assert.Equal(t, "alice bought 15 credits", events[0].Message)
	assert.NotEmpty(t, events[0].ID)
	assert.Equal(t, now, events[0].CreatedAt)
}

func TestDiffUsersIgnoresDecreaseAndNewAccounts(t *testing.T) {
	prev := SnapshotUsers([]model.User{userFixture(1, "alice", 100)})
	cur := SnapshotUsers([]model.User{
		userFixture(1, "alice", 60), // spent, not bought
		userFixture(3, "carol", 500),
	})

	assert.Empty(t, DiffUsers(prev, cur, time.Now()))
}

func TestDiffUsersFractionalAmount(t *testing.T) {
	prev := SnapshotUsers([]model.User{userFixture(1, "alice", 10)})
	cur := SnapshotUsers([]model.User{userFixture(1, "alice", 12.5)})

	events := DiffUsers(prev, cur, time.Now())

	require.Len(t, events, 1)
	assert.Equal(t, "alice bought 2.5 credits", events[0].Message)
}

func TestDiffListingsNewListing(t *testing.T) {
	now := time.Now()
	prevTime := now.Add(-15 * time.Second)
	future := now.Add(time.Hour)
	prev := SnapshotListings([]model.Listing{
		listingFixture(1, "Clock", 10, future),
	})
	cur := SnapshotListings([]model.Listing{
		listingFixture(1, "Clock", 10, future),
		listingFixture(9, "Vase", 0, future),
	})

	events := DiffListings(prev, cur, prevTime, now)

	require.Len(t, events, 1)
	assert.Equal(t, model.SeverityInfo, events[0].Severity)
	assert.Equal(t, "New listing: Vase", events[0].Message)
}

func TestDiffListingsBidRaised(t *testing.T) {
	now := time.Now()
	prevTime := now.Add(-15 * time.Second)
	future := now.Add(time.Hour)
	prev := SnapshotListings([]model.Listing{listingFixture(1, "Clock", 10, future)})
	cur := SnapshotListings([]model.Listing{listingFixture(1, "Clock", 25, future)})

	events := DiffListings(prev, cur, prevTime, now)

	require.Len(t, events, 1)
	assert.Equal(t, model.SeverityWarning, events[0].Severity)
	assert.Equal(t, "New bid on Clock: 25 credits", events[0].Message)
}

func TestDiffListingsAuctionEnded(t *testing.T) {
	// The end time sits between the two polls: still active when the
	// previous snapshot was taken, past by now.
	now := time.Now()
	prevTime := now.Add(-15 * time.Second)
	endsAt := now.Add(-5 * time.Second)
	prev := SnapshotListings([]model.Listing{listingFixture(1, "Clock", 10, endsAt)})
	cur := SnapshotListings([]model.Listing{listingFixture(1, "Clock", 10, endsAt)})

	events := DiffListings(prev, cur, prevTime, now)

	require.Len(t, events, 1)
	assert.Equal(t, model.SeveritySuccess, events[0].Severity)
	assert.Equal(t, "Auction ended: Clock", events[0].Message)
}

func TestDiffListingsEndedStaysSilent(t *testing.T) {
	// The listing closed before the previous poll: the edge fired on an
	// earlier cycle and must not repeat.
	now := time.Now()
	prevTime := now.Add(-15 * time.Second)
	endsAt := now.Add(-time.Hour)
	prev := SnapshotListings([]model.Listing{listingFixture(1, "Clock", 10, endsAt)})
	cur := SnapshotListings([]model.Listing{listingFixture(1, "Clock", 10, endsAt)})

	assert.Empty(t, DiffListings(prev, cur, prevTime, now))
}

func TestDiffListingsBidAndEndTogether(t *testing.T) {
	now := time.Now()
	prevTime := now.Add(-15 * time.Second)
	endsAt := now.Add(-5 * time.Second)
	prev := SnapshotListings([]model.Listing{listingFixture(1, "Clock", 10, endsAt)})
	cur := SnapshotListings([]model.Listing{listingFixture(1, "Clock", 40, endsAt)})

	events := DiffListings(prev, cur, prevTime, now)

	require.Len(t, events, 2)
	assert.Equal(t, model.SeverityWarning, events[0].Severity)
	assert.Equal(t, model.SeveritySuccess, events[1].Severity)
}

func TestDiffListingsUnchangedIsSilent(t *testing.T) {
	now := time.Now()
	prevTime := now.Add(-15 * time.Second)
	future := now.Add(time.Hour)
	snap := SnapshotListings([]model.Listing{
		listingFixture(1, "Clock", 10, future),
		listingFixture(2, "Vase", 5, future),
	})

	assert.Empty(t, DiffListings(snap, snap, prevTime, now))
}
