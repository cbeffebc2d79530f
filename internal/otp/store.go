package otp

import (
	"context"
	"time"
)

// Challenge is the single outstanding passcode for a user. Issuing a new one
// overwrites it; verifying consumes it.
type Challenge struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expiresAt"`
	// SentTo lists the delivery channels that accepted the code, e.g.
	// ["email"]. Empty when delivery is unconfigured.
	SentTo []string `json:"sentTo"`
}

// Store keeps at most one challenge per user. Put replaces any existing
// challenge; Delete is how a challenge is consumed. Implementations may also
// expire entries on their own (the redis store does); the service still
// checks ExpiresAt so expiry never depends on store behavior.
type Store interface {
	Put(ctx context.Context, userID string, challenge Challenge) error
	Get(ctx context.Context, userID string) (*Challenge, error)
	Delete(ctx context.Context, userID string) error
}
