package domain

import "time"

// Account status values shared by users, roles and permissions.
const (
	StatusDisabled = 0
	StatusEnabled  = 1
)

type User struct {
	ID            string
	Username      string
	PasswordHash  string // bcrypt encoded
	Nickname      string
	Email         string
	Note          string
	Status        int
	TOTPSecret    *string    // base32, nullable until enrolment starts
	TOTPEnabledAt *time.Time // set once the first code is verified
	LoginAt       *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (u User) Enabled() bool { return u.Status == StatusEnabled }

// TOTPEnabled reports whether login requires a one-time code.
func (u User) TOTPEnabled() bool { return u.TOTPEnabledAt != nil && u.TOTPSecret != nil }
