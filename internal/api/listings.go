package api

import (
	"context"
	"fmt"
	"time"

	"github.com/mbertin/auction-desk/internal/model"
)

// NewListing is the payload for publishing an auction.
type NewListing struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CategoryID  int64     `json:"category_id"`
	StartPrice  float64   `json:"start_price"`
	ImageURL    string    `json:"image_url"`
	EndsAt      time.Time `json:"ends_at"`
}

// Listings retrieves every open auction listing.
func (c *Client) Listings(ctx context.Context) ([]model.Listing, error) {
	var listings []model.Listing
	if err := c.Get(ctx, "/listings", &listings); err != nil {
		return nil, err
	}
	return listings, nil
}

// Listing retrieves one listing by id.
func (c *Client) Listing(ctx context.Context, id int64) (*model.Listing, error) {
	var listing model.Listing
	if err := c.Get(ctx, fmt.Sprintf("/listings/%d", id), &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

// CreateListing publishes a new auction.
func (c *Client) CreateListing(ctx context.Context, in NewListing) (*model.Listing, error) {
	var listing model.Listing
	if err := c.Post(ctx, "/listings", in, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

// DeleteListing removes a listing. The server rejects the call when bids
// already reference it; the reason is carried in the returned APIError.
func (c *Client) DeleteListing(ctx context.Context, id int64) error {
	return c.Delete(ctx, fmt.Sprintf("/listings/%d", id))
}

// PlaceBid spends credits to bid on a listing. The returned bid carries
// the server-assigned id and timestamp.
func (c *Client) PlaceBid(ctx context.Context, listingID int64, amount float64) (*model.Bid, error) {
	payload := struct {
		Amount float64 `json:"amount"`
	}{Amount: amount}

	var bid model.Bid
	if err := c.Post(ctx, fmt.Sprintf("/listings/%d/bids", listingID), payload, &bid); err != nil {
		return nil, err
	}
	return &bid, nil
}

// Bids returns the bid history for a listing, most recent first.
func (c *Client) Bids(ctx context.Context, listingID int64) ([]model.Bid, error) {
	var bids []model.Bid
	if err := c.Get(ctx, fmt.Sprintf("/listings/%d/bids", listingID), &bids); err != nil {
		return nil, err
	}
	return bids, nil
}
