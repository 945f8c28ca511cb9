package api

import "context"

// CheckoutSession is returned when a credit purchase is initiated. The
// card form itself is hosted by the payment provider; the client only
// hands the user the checkout URL and later observes the credit balance
// change through the regular poll.
type CheckoutSession struct {
	ID          string  `json:"id"`
	CheckoutURL string  `json:"checkout_url"`
	Amount      float64 `json:"amount"`
}

// BuyCredits starts a hosted-checkout session for the given number of
// bidding credits.
func (c *Client) BuyCredits(ctx context.Context, amount float64) (*CheckoutSession, error) {
	payload := struct {
		Amount float64 `json:"amount"`
	}{Amount: amount}

	var session CheckoutSession
	if err := c.Post(ctx, "/payments/checkout", payload, &session); err != nil {
		return nil, err
	}
	return &session, nil
}
