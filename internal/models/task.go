package models

import "time"

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "To Do"
	TaskStatusInProgress TaskStatus = "In Progress"
	TaskStatusDone       TaskStatus = "Done"
)

// Valid reports whether s is a known task status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

type Task struct {
	ID          uint64     `gorm:"primarykey" json:"id"`
	Number      int        `gorm:"not null;uniqueIndex:idx_tasks_story_number,priority:2" json:"number"`
	Title       string     `gorm:"type:varchar(255);not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Status      TaskStatus `gorm:"type:varchar(20);not null;default:'To Do'" json:"status"`
	AssigneeID  *uint64    `gorm:"index" json:"assignee_id"`
	UserStoryID uint64     `gorm:"not null;uniqueIndex:idx_tasks_story_number,priority:1" json:"user_story_id"`
	ProjectID   uint64     `gorm:"not null;index" json:"project_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Relations
	Assignee *User `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
}
