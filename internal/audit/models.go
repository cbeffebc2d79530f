package audit

import "time"

// StatusChange is one entry in the append-only trail of account status
// transitions. Kept string-typed so the trail is readable without the
// identity package and survives status renames.
type StatusChange struct {
	ID     string    `json:"id"`
	UserID string    `json:"userId"`
	At     time.Time `json:"at"`
	From   string    `json:"from"`
	To     string    `json:"to"`
	// Reason is the rejection reason for rejections, empty for approvals.
	Reason string `json:"reason,omitempty"`
	// Actor identifies who drove the transition. The admin guard authorizes a
	// role, not a person, so this is currently always "admin".
	Actor string `json:"actor"`
}
