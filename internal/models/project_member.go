package models

import "time"

type ProjectRole string

const (
	RoleScrumMaster ProjectRole = "Scrum Master"
	RoleDeveloper   ProjectRole = "Developer"
	RoleViewer      ProjectRole = "Viewer"
)

// Valid reports whether r is one of the known project roles.
func (r ProjectRole) Valid() bool {
	switch r {
	case RoleScrumMaster, RoleDeveloper, RoleViewer:
		return true
	}
	return false
}

type ProjectMember struct {
	ProjectID uint64      `gorm:"primarykey" json:"project_id"`
	UserID    uint64      `gorm:"primarykey" json:"user_id"`
	Role      ProjectRole `gorm:"type:varchar(20);not null;default:'Developer'" json:"role"`
	JoinedAt  time.Time   `json:"joined_at"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
