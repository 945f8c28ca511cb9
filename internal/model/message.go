package model

import "time"

// Message is a contact-form message reviewed from the admin dashboard.
type Message struct {
	ID        int64     `json:"id"`
	Sender    string    `json:"sender"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
