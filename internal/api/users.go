package api

import (
	"context"
	"fmt"

	"github.com/mbertin/auction-desk/internal/model"
)

// Users retrieves every marketplace account. Requires an admin token.
func (c *Client) Users(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := c.Get(ctx, "/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// User retrieves a single account by id.
func (c *Client) User(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	if err := c.Get(ctx, fmt.Sprintf("/users/%d", id), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// BlockUser suspends an account; a blocked user cannot sign in or bid.
func (c *Client) BlockUser(ctx context.Context, id int64) error {
	return c.Put(ctx, fmt.Sprintf("/users/%d/block", id), nil, nil)
}

// UnblockUser lifts a suspension.
func (c *Client) UnblockUser(ctx context.Context, id int64) error {
	return c.Put(ctx, fmt.Sprintf("/users/%d/unblock", id), nil, nil)
}

// CreateAdmin promotes a new moderation account.
func (c *Client) CreateAdmin(ctx context.Context, reg Registration) (*model.User, error) {
	var user model.User
	if err := c.Post(ctx, "/users/admin", reg, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
