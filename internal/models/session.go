package models

import "time"

// Session backs the login cookie. It is created when a token is redeemed and
// revoked on logout.
type Session struct {
	Token     string     `gorm:"type:text;primaryKey"`
	Email     string     `gorm:"type:text;not null;index"`
	ExpiresAt time.Time  `gorm:"type:timestamptz;not null"`
	CreatedAt time.Time  `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	RevokedAt *time.Time `gorm:"type:timestamptz"`
}

// Active reports whether the session still authenticates its user at the
// given time.
func (s Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && s.ExpiresAt.After(now)
}
