package models

import (
	"time"
)

// Password reset request. At most one live request per email: a repeated
// request overwrites the token and expiry, invalidating the previous link.
type PasswordReset struct {
	Email     string
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}
