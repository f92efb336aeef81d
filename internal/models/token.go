package models

import (
	"time"

	"gorm.io/datatypes"
)

// Token is a one-time login credential emailed to a user. The UID is an
// opaque uuid string embedded in the login link. A token is valid until it
// expires or is consumed by a successful redemption, whichever comes first.
type Token struct {
	UID        string            `gorm:"type:text;primaryKey"`
	Email      string            `gorm:"type:text;not null;index"`
	Meta       datatypes.JSONMap `gorm:"type:jsonb"`
	ExpiresAt  time.Time         `gorm:"type:timestamptz;not null"`
	CreatedAt  time.Time         `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	ConsumedAt *time.Time        `gorm:"type:timestamptz"`
}

// Valid reports whether the token can still be redeemed at the given time.
func (t Token) Valid(now time.Time) bool {
	return t.ConsumedAt == nil && t.ExpiresAt.After(now)
}
