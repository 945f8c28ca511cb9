package model

import "time"

// User is a marketplace account as returned by the remote API.
type User struct {
	// ID is the numeric identifier assigned by the API.
	ID int64 `json:"id"`

	// Alias is the public display name shown on listings and bids.
	Alias string `json:"alias"`

	// FirstName and LastName are only visible to administrators.
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`

	// Email is the sign-in identifier.
	Email string `json:"email"`

	// Credit is the spendable bidding-credit balance.
	Credit float64 `json:"credit"`

	// Admin marks moderation accounts.
	Admin bool `json:"admin"`

	// Blocked users cannot sign in or bid until unblocked.
	Blocked bool `json:"blocked"`

	// CreatedAt is when the account was registered.
	CreatedAt time.Time `json:"created_at"`
}

// DisplayName returns the alias, falling back to the email address for
// accounts that never picked one.
func (u User) DisplayName() string {
	if u.Alias != "" {
		return u.Alias
	}
	return u.Email
}
