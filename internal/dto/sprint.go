package dto

import (
	"time"

	"github.com/yukikurage/scrumboard-api/internal/models"
)

// SprintDTO represents a sprint with its user stories. TimeRemaining is
// derived on every response and never stored.
type SprintDTO struct {
	ID            uint64              `json:"id"`
	Number        int                 `json:"number"`
	Name          string              `json:"name"`
	Description   string              `json:"description"`
	StartDate     time.Time           `json:"startDate"`
	EndDate       time.Time           `json:"endDate"`
	Status        models.SprintStatus `json:"status"`
	ProjectID     uint64              `json:"projectId"`
	UserStories   []UserStoryDTO      `json:"userStories"`
	TimeRemaining int                 `json:"timeRemaining"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

// ToSprintDTO converts a Sprint model, computing timeRemaining against now
func ToSprintDTO(sprint models.Sprint, now time.Time) SprintDTO {
	stories := make([]UserStoryDTO, len(sprint.UserStories))
	for i, s := range sprint.UserStories {
		stories[i] = ToUserStoryDTO(s)
	}

	return SprintDTO{
		ID:            sprint.ID,
		Number:        sprint.Number,
		Name:          sprint.Name,
		Description:   sprint.Description,
		StartDate:     sprint.StartDate,
		EndDate:       sprint.EndDate,
		Status:        sprint.Status,
		ProjectID:     sprint.ProjectID,
		UserStories:   stories,
		TimeRemaining: sprint.TimeRemaining(now),
		CreatedAt:     sprint.CreatedAt,
		UpdatedAt:     sprint.UpdatedAt,
	}
}

// ToSprintDTOs converts a sprint list
func ToSprintDTOs(sprints []models.Sprint, now time.Time) []SprintDTO {
	out := make([]SprintDTO, len(sprints))
	for i, s := range sprints {
		out[i] = ToSprintDTO(s, now)
	}
	return out
}
