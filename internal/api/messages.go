package api

import (
	"context"
	"fmt"

	"github.com/mbertin/auction-desk/internal/model"
)

// Messages retrieves the contact-form inbox. Requires an admin token.
func (c *Client) Messages(ctx context.Context) ([]model.Message, error) {
	var messages []model.Message
	if err := c.Get(ctx, "/messages", &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// SendMessage submits a contact-form message.
func (c *Client) SendMessage(ctx context.Context, subject, body string) error {
	payload := struct {
		Subject string `json:"subject"`
		Body    string `json:"body"`
	}{Subject: subject, Body: body}

	return c.Post(ctx, "/messages", payload, nil)
}

// DeleteMessage removes a message from the inbox.
func (c *Client) DeleteMessage(ctx context.Context, id int64) error {
	return c.Delete(ctx, fmt.Sprintf("/messages/%d", id))
}
