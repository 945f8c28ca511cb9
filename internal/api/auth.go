package api

import (
	"context"

	"github.com/mbertin/auction-desk/internal/model"
)

// Credentials are the sign-in fields.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the payload for creating a new account.
type Registration struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Alias     string `json:"alias"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Session is returned by Login and Register: the Bearer token plus the
// authenticated account.
type Session struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// Login exchanges credentials for a session token. The client's token is
// updated on success so subsequent calls are authenticated.
func (c *Client) Login(ctx context.Context, creds Credentials) (*Session, error) {
	var session Session
	if err := c.Post(ctx, "/auth/login", creds, &session); err != nil {
		return nil, err
	}
	c.SetToken(session.Token)
	return &session, nil
}

// Register creates a new account and signs it in.
func (c *Client) Register(ctx context.Context, reg Registration) (*Session, error) {
	var session Session
	if err := c.Post(ctx, "/auth/register", reg, &session); err != nil {
		return nil, err
	}
	c.SetToken(session.Token)
	return &session, nil
}

// Me returns the account belonging to the current token.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := c.Get(ctx, "/auth/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}
