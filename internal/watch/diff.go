package watch

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/mbertin/auction-desk/internal/model"
)

// UserSnapshot and ListingSnapshot hold the previous poll result for a
// monitored collection, keyed by entity id.
type (
	UserSnapshot    map[int64]model.User
	ListingSnapshot map[int64]model.Listing
)

// SnapshotUsers indexes a fetched user collection by id.
func SnapshotUsers(users []model.User) UserSnapshot {
	snap := make(UserSnapshot, len(users))
	for _, u := range users {
		snap[u.ID] = u
	}
	return snap
}

// SnapshotListings indexes a fetched listing collection by id.
func SnapshotListings(listings []model.Listing) ListingSnapshot {
	snap := make(ListingSnapshot, len(listings))
	for _, l := range listings {
		snap[l.ID] = l
	}
	return snap
}

// DiffUsers compares two user snapshots and emits a Success notification
// for every account whose credit balance increased since the previous
// poll, reporting the purchased delta.
func DiffUsers(prev, current UserSnapshot, now time.Time) []model.Notification {
	var events []model.Notification
	for id, cur := range current {
		before, seen := prev[id]
		if !seen {
			continue
		}
		if cur.Credit > before.Credit {
			events = append(events, newEvent(
				model.SeveritySuccess,
				fmt.Sprintf("%s bought %s credits", cur.DisplayName(), formatAmount(cur.Credit-before.Credit)),
				now,
			))
		}
	}
	return events
}

// DiffListings compares two listing snapshots and emits:
//   - an Info event for each listing absent from the previous snapshot,
//   - a Warning event for each listing whose highest bid rose,
//   - a Success event for each listing whose end time crossed from the
//     future into the past between the two polls.
//
// prevTime is when the previous snapshot was taken; "still active" is
// judged against it. The end-time transition therefore fires once: on
// the next poll the previous snapshot was taken after the listing
// closed, so the edge is gone.
func DiffListings(prev, current ListingSnapshot, prevTime, now time.Time) []model.Notification {
	var events []model.Notification
	for id, cur := range current {
		before, seen := prev[id]
		if !seen {
			events = append(events, newEvent(
				model.SeverityInfo,
				fmt.Sprintf("New listing: %s", cur.Name),
				now,
			))
			continue
		}

		if cur.CurrentBid > before.CurrentBid {
			events = append(events, newEvent(
				model.SeverityWarning,
				fmt.Sprintf("New bid on %s: %s credits", cur.Name, formatAmount(cur.CurrentBid)),
				now,
			))
		}

		if before.EndsAt.After(prevTime) && !cur.EndsAt.After(now) {
			events = append(events, newEvent(
				model.SeveritySuccess,
				fmt.Sprintf("Auction ended: %s", cur.Name),
				now,
			))
		}
	}
	return events
}

// newEvent builds a notification with a fresh id.
func newEvent(severity model.Severity, message string, now time.Time) model.Notification {
	return model.Notification{
		ID:        uuid.New().String(),
		Severity:  severity,
		Message:   message,
		CreatedAt: now,
	}
}

// formatAmount renders a credit amount without trailing zeros.
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
