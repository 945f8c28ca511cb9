package model

// Category groups listings for browsing and is managed from the admin
// dashboard.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`

	// ListingCount is filled in by the API for the admin view; a category
	// still referenced by listings cannot be deleted server-side.
	ListingCount int `json:"listing_count"`
}
