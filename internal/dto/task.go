package dto

import (
	"time"

	"github.com/yukikurage/scrumboard-api/internal/models"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uint64            `json:"id"`
	Number      int               `json:"number"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      models.TaskStatus `json:"status"`
	AssigneeID  *uint64           `json:"assigneeId"`
	Assignee    *UserDTO          `json:"assignee,omitempty"`
	UserStoryID uint64            `json:"userStoryId"`
	ProjectID   uint64            `json:"projectId"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		Number:      task.Number,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		AssigneeID:  task.AssigneeID,
		UserStoryID: task.UserStoryID,
		ProjectID:   task.ProjectID,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
	if task.Assignee != nil {
		assignee := ToPublicUserDTO(*task.Assignee)
		dto.Assignee = &assignee
	}
	return dto
}

// ToTaskDTOs converts a task list
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	out := make([]TaskDTO, len(tasks))
	for i, t := range tasks {
		out[i] = ToTaskDTO(t)
	}
	return out
}
