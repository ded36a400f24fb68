package model

import "time"

// Claim represents a user's claim on an item. The claimant's name and email
// are snapshotted at claim time so the record stays meaningful for display
// even if the user later changes them.
type Claim struct {
	ID            int64     `json:"id"`
	ItemID        int64     `json:"item_id"`
	ClaimedBy     int64     `json:"claimed_by"`
	ClaimantName  string    `json:"claimant_name"`
	ClaimantEmail string    `json:"claimant_email"`
	ClaimedAt     time.Time `json:"claimed_at"`

	// Joined fields (not always populated).
	ItemName        string `json:"item_name,omitempty"`
	ItemDescription string `json:"item_description,omitempty"`
	ItemLocation    string `json:"item_location,omitempty"`
}
