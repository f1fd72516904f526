package model

import (
	"time"

	"github.com/google/uuid"
)

// User is the slice of the portal's user record this service reads.
type User struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Email      string    `db:"email" json:"email"`
	Identifier string    `db:"identifier" json:"identifier"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// AccountBlockState is a user's block flag plus expiry. A block whose
// expiry has passed is cleared opportunistically on read.
type AccountBlockState struct {
	Blocked      bool       `db:"blocked" json:"blocked"`
	BlockedUntil *time.Time `db:"blocked_until" json:"blocked_until,omitempty"`
}

// ActiveAt reports whether the block is in force at the given instant.
func (b AccountBlockState) ActiveAt(now time.Time) bool {
	return b.Blocked && b.BlockedUntil != nil && b.BlockedUntil.After(now)
}
