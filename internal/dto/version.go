package dto

import (
	"time"

	"github.com/yukikurage/scrumboard-api/internal/models"
)

// VersionDTO represents a release version in API responses
type VersionDTO struct {
	ID          uint64    `json:"id"`
	ProjectID   uint64    `json:"projectId"`
	Tag         string    `json:"tag"`
	Description string    `json:"description"`
	ReleaseDate time.Time `json:"releaseDate"`
	SprintID    *uint64   `json:"sprintId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ToVersionDTO converts a Version model to VersionDTO
func ToVersionDTO(v models.Version) VersionDTO {
	return VersionDTO{
		ID:          v.ID,
		ProjectID:   v.ProjectID,
		Tag:         v.Tag,
		Description: v.Description,
		ReleaseDate: v.ReleaseDate,
		SprintID:    v.SprintID,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
}

// ToVersionDTOs converts a version list
func ToVersionDTOs(versions []models.Version) []VersionDTO {
	out := make([]VersionDTO, len(versions))
	for i, v := range versions {
		out[i] = ToVersionDTO(v)
	}
	return out
}
