package common

import (
	"time"

	"github.com/google/uuid"
)

type UserResult struct {
	Id        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Email     string    `json:"email"`
	Watchlist []string  `json:"watchlist"`
}

// SessionResult is what a verified token proves about its bearer.
type SessionResult struct {
	UserID    uuid.UUID
	ExpiresAt time.Time
}
