package models

import "time"

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type UserStory struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	Number      int       `gorm:"not null;uniqueIndex:idx_user_stories_project_number,priority:2" json:"number"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Priority    Priority  `gorm:"type:varchar(10);not null;default:'Medium'" json:"priority"`
	StoryPoints int       `gorm:"not null;default:0" json:"story_points"`
	ProjectID   uint64    `gorm:"not null;uniqueIndex:idx_user_stories_project_number,priority:1" json:"project_id"`
	SprintID    *uint64   `gorm:"index" json:"sprint_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Tasks []Task `gorm:"foreignKey:UserStoryID" json:"tasks,omitempty"`
}
