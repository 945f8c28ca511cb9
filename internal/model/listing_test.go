package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestListingEnded(t *testing.T) {
	now := time.Now()

	assert.False(t, Listing{EndsAt: now.Add(time.Minute)}.Ended(now))
	assert.True(t, Listing{EndsAt: now.Add(-time.Minute)}.Ended(now))
	// The exact closing instant counts as ended.
	assert.True(t, Listing{EndsAt: now}.Ended(now))
}

func TestListingMinimumBid(t *testing.T) {
	assert.Equal(t, float64(5), Listing{StartPrice: 5}.MinimumBid())
	assert.Equal(t, float64(11), Listing{StartPrice: 5, CurrentBid: 10}.MinimumBid())
}

func TestUserDisplayName(t *testing.T) {
	assert.Equal(t, "alice", User{Alias: "alice", Email: "a@example.com"}.DisplayName())
	assert.Equal(t, "a@example.com", User{Email: "a@example.com"}.DisplayName())
}
