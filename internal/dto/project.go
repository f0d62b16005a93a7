package dto

import (
	"time"

	"github.com/yukikurage/scrumboard-api/internal/models"
	"github.com/yukikurage/scrumboard-api/internal/utils"
)

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     uint64    `json:"ownerId"`
	Owner       *UserDTO  `json:"owner,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// MemberDTO represents a project member
type MemberDTO struct {
	User     UserDTO            `json:"user"`
	Role     models.ProjectRole `json:"role"`
	JoinedAt time.Time          `json:"joinedAt"`
}

// ProjectDetailDTO is a project with its members
type ProjectDetailDTO struct {
	ProjectDTO
	Members []MemberDTO `json:"members"`
}

// ProjectListResponse represents a paginated list of projects
type ProjectListResponse struct {
	Success    bool                     `json:"success"`
	Projects   []ProjectDTO             `json:"projects"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ToProjectDTO converts a Project model to ProjectDTO
func ToProjectDTO(project models.Project) ProjectDTO {
	dto := ProjectDTO{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		OwnerID:     project.OwnerID,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}
	if project.Owner.ID != 0 {
		owner := ToPublicUserDTO(project.Owner)
		dto.Owner = &owner
	}
	return dto
}

// ToMemberDTO converts a member to DTO
func ToMemberDTO(member models.ProjectMember) MemberDTO {
	return MemberDTO{
		User:     ToPublicUserDTO(member.User),
		Role:     member.Role,
		JoinedAt: member.JoinedAt,
	}
}

// ToMemberDTOs converts a member list
func ToMemberDTOs(members []models.ProjectMember) []MemberDTO {
	out := make([]MemberDTO, len(members))
	for i, m := range members {
		out[i] = ToMemberDTO(m)
	}
	return out
}

// ToProjectDetailDTO converts a project with preloaded members
func ToProjectDetailDTO(project models.Project) ProjectDetailDTO {
	return ProjectDetailDTO{
		ProjectDTO: ToProjectDTO(project),
		Members:    ToMemberDTOs(project.Members),
	}
}
