package domain

import "time"

// LoginLog records a successful admin login.
type LoginLog struct {
	ID        string
	UserID    string
	IP        string
	UserAgent string
	CreatedAt time.Time
}
