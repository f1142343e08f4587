package domain

import "time"

type Role struct {
	ID          string
	Name        string
	Description string
	Status      int
	CreatedAt   time.Time
}

// PermissionType classifies a permission entry in the admin menu tree.
type PermissionType int

const (
	PermissionDirectory PermissionType = 0
	PermissionMenu      PermissionType = 1
	PermissionButton    PermissionType = 2
)

// Permission grants an authority such as "blog:article:create". Directory
// and menu entries may carry an empty Value.
type Permission struct {
	ID        string
	Name      string
	Value     string
	Type      PermissionType
	URI       string
	Status    int
	CreatedAt time.Time
}

func (p Permission) Enabled() bool { return p.Status == StatusEnabled }
