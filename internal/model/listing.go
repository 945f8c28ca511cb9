package model

import "time"

// Listing is an auction item: a sellable object with a starting price,
// the current highest bid, and a closing time.
type Listing struct {
	// ID is the numeric identifier assigned by the API.
	ID int64 `json:"id"`

	// Name is the short title shown in lists and notifications.
	Name string `json:"name"`

	// Description is the long-form body shown in the detail view.
	Description string `json:"description"`

	// CategoryID links the listing to its category.
	CategoryID int64 `json:"category_id"`

	// SellerID is the user who created the listing.
	SellerID int64 `json:"seller_id"`

	// StartPrice is the minimum opening bid in credits.
	StartPrice float64 `json:"start_price"`

	// CurrentBid is the highest bid so far, or zero when nobody has bid.
	CurrentBid float64 `json:"current_bid"`

	// BidCount is the number of bids placed.
	BidCount int `json:"bid_count"`

	// ImageURL points at the hosted photo for the item.
	ImageURL string `json:"image_url"`

	// EndsAt is the closing time; the auction concludes once it passes.
	EndsAt time.Time `json:"ends_at"`

	// CreatedAt is when the listing was published.
	CreatedAt time.Time `json:"created_at"`
}

// Ended reports whether the auction has concluded as of now.
func (l Listing) Ended(now time.Time) bool {
	return !l.EndsAt.After(now)
}

// MinimumBid returns the smallest amount the next bid must reach.
func (l Listing) MinimumBid() float64 {
	if l.CurrentBid > 0 {
		return l.CurrentBid + 1
	}
	return l.StartPrice
}
