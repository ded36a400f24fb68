package model

import "time"

// Message is a note from one user to another about an item.
type Message struct {
	ID         int64     `json:"id"`
	SenderID   int64     `json:"sender_id"`
	ReceiverID int64     `json:"receiver_id"`
	ItemID     int64     `json:"item_id"`
	Body       string    `json:"body"`
	SentAt     time.Time `json:"sent_at"`

	// Joined fields (not always populated).
	SenderName string `json:"sender_name,omitempty"`
	ItemName   string `json:"item_name,omitempty"`
}

// Feedback is a free-form note a user leaves about the service itself.
type Feedback struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Body        string    `json:"body"`
	SubmittedAt time.Time `json:"submitted_at"`

	// Joined field (not always populated).
	UserName string `json:"user_name,omitempty"`
}
