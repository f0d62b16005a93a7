package dto

import (
	"time"

	"github.com/yukikurage/scrumboard-api/internal/models"
)

// UserStoryDTO represents a user story in API responses
type UserStoryDTO struct {
	ID          uint64          `json:"id"`
	Number      int             `json:"number"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Priority    models.Priority `json:"priority"`
	StoryPoints int             `json:"storyPoints"`
	ProjectID   uint64          `json:"projectId"`
	SprintID    *uint64         `json:"sprintId"`
	Tasks       []TaskDTO       `json:"tasks,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// ToUserStoryDTO converts a UserStory model to UserStoryDTO
func ToUserStoryDTO(story models.UserStory) UserStoryDTO {
	dto := UserStoryDTO{
		ID:          story.ID,
		Number:      story.Number,
		Title:       story.Title,
		Description: story.Description,
		Priority:    story.Priority,
		StoryPoints: story.StoryPoints,
		ProjectID:   story.ProjectID,
		SprintID:    story.SprintID,
		CreatedAt:   story.CreatedAt,
		UpdatedAt:   story.UpdatedAt,
	}
	if len(story.Tasks) > 0 {
		dto.Tasks = ToTaskDTOs(story.Tasks)
	}
	return dto
}

// ToUserStoryDTOs converts a story list
func ToUserStoryDTOs(stories []models.UserStory) []UserStoryDTO {
	out := make([]UserStoryDTO, len(stories))
	for i, s := range stories {
		out[i] = ToUserStoryDTO(s)
	}
	return out
}
