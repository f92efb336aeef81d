package models

import "time"

// User is an end user identified by email address. The email is the primary
// key; there is no surrogate id. Emails are stored lowercased so that a
// case-variant login cannot mint a second identity.
type User struct {
	Email     string    `gorm:"type:text;primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}
