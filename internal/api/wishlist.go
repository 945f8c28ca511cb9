package api

import (
	"context"
	"fmt"

	"github.com/mbertin/auction-desk/internal/model"
)

// Wishlist retrieves the listings the current user is watching.
func (c *Client) Wishlist(ctx context.Context) ([]model.Listing, error) {
	var listings []model.Listing
	if err := c.Get(ctx, "/wishlist", &listings); err != nil {
		return nil, err
	}
	return listings, nil
}

// AddToWishlist starts watching a listing.
func (c *Client) AddToWishlist(ctx context.Context, listingID int64) error {
	return c.Put(ctx, fmt.Sprintf("/wishlist/%d", listingID), nil, nil)
}

// RemoveFromWishlist stops watching a listing.
func (c *Client) RemoveFromWishlist(ctx context.Context, listingID int64) error {
	return c.Delete(ctx, fmt.Sprintf("/wishlist/%d", listingID))
}
