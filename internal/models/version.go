package models

import "time"

type VersionType string

const (
	VersionMajor VersionType = "major"
	VersionMinor VersionType = "minor"
	VersionPatch VersionType = "patch"
)

// Valid reports whether t is a known bump type.
func (t VersionType) Valid() bool {
	switch t {
	case VersionMajor, VersionMinor, VersionPatch:
		return true
	}
	return false
}

type Version struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	ProjectID   uint64    `gorm:"not null;uniqueIndex:idx_versions_project_tag,priority:1" json:"project_id"`
	Tag         string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_versions_project_tag,priority:2" json:"tag"`
	Description string    `gorm:"type:text" json:"description"`
	ReleaseDate time.Time `gorm:"not null" json:"release_date"`
	SprintID    *uint64   `gorm:"index" json:"sprint_id"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
