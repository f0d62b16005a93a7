package models

import (
	"math"
	"time"
)

type SprintStatus string

const (
	SprintStatusPlanned   SprintStatus = "planned"
	SprintStatusActive    SprintStatus = "active"
	SprintStatusCompleted SprintStatus = "completed"
)

type Sprint struct {
	ID          uint64       `gorm:"primarykey" json:"id"`
	Number      int          `gorm:"not null;uniqueIndex:idx_sprints_project_number,priority:2" json:"number"`
	Name        string       `gorm:"type:varchar(255);not null" json:"name"`
	Description string       `gorm:"type:text" json:"description"`
	StartDate   time.Time    `gorm:"not null" json:"start_date"`
	EndDate     time.Time    `gorm:"not null" json:"end_date"`
	Status      SprintStatus `gorm:"type:varchar(20);not null;default:'planned'" json:"status"`
	ProjectID   uint64       `gorm:"not null;uniqueIndex:idx_sprints_project_number,priority:1" json:"project_id"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`

	// Relations
	UserStories []UserStory `gorm:"foreignKey:SprintID" json:"user_stories,omitempty"`
}

// Start moves a planned sprint to active.
func (s *Sprint) Start() bool {
	if s.Status != SprintStatusPlanned {
		return false
	}
	s.Status = SprintStatusActive
	return true
}

// Complete moves an active sprint to completed and closes it at now.
// completed is terminal.
func (s *Sprint) Complete(now time.Time) bool {
	if s.Status != SprintStatusActive {
		return false
	}
	s.Status = SprintStatusCompleted
	s.EndDate = now
	return true
}

// TimeRemaining returns the whole days left until EndDate, rounded up, and 0 once it has passed.
func (s *Sprint) TimeRemaining(now time.Time) int {
	left := s.EndDate.Sub(now)
	if left <= 0 {
		return 0
	}
	return int(math.Ceil(left.Hours() / 24))
}
