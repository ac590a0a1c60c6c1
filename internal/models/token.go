package models

import (
	"time"

	"github.com/google/uuid"
)

type RefreshToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// Pair of tokens returned to the user on signup, login or refresh.
// Refresh may be empty: token refresh re-issues the access token only.
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}
