package model

import "time"

// Item represents a lost or found item registered by a user.
type Item struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	ImageMime   string    `json:"image_mime,omitempty"`
	Status      string    `json:"status"`
	CreatedBy   int64     `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`

	// Joined fields (not always populated).
	CreatorName string `json:"creator_name,omitempty"`
}

// Item statuses. An item is claimed exactly while a live claim references it;
// the expiry reconciler restores 'available' when the last claim goes away.
const (
	ItemStatusAvailable = "available"
	ItemStatusClaimed   = "claimed"
)
