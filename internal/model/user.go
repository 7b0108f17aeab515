package model

import "time"

// User is a registered account. The handle is the primary key and never changes.
type User struct {
	Handle       string
	PasswordHash string // bcrypt digest
	CreatedAt    time.Time
}
