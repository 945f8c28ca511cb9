package api

import (
	"context"
	"fmt"

	"github.com/mbertin/auction-desk/internal/model"
)

// Categories retrieves every listing category.
func (c *Client) Categories(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	if err := c.Get(ctx, "/categories", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// CreateCategory adds a new category.
func (c *Client) CreateCategory(ctx context.Context, name string) (*model.Category, error) {
	payload := struct {
		Name string `json:"name"`
	}{Name: name}

	var category model.Category
	if err := c.Post(ctx, "/categories", payload, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

// DeleteCategory removes a category. The server rejects the call when
// listings still reference it; the reason is carried in the APIError.
func (c *Client) DeleteCategory(ctx context.Context, id int64) error {
	return c.Delete(ctx, fmt.Sprintf("/categories/%d", id))
}
