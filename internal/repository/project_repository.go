package repository

import (
	"github.com/yukikurage/scrumboard-api/internal/database"
	"github.com/yukikurage/scrumboard-api/internal/models"
	"github.com/yukikurage/scrumboard-api/internal/utils"
	"gorm.io/gorm"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create creates a new project
func (r *GormProjectRepository) Create(project *models.Project) error {
	return r.db.Omit("Owner", "Members").Create(project).Error
}

// FindByID finds a project by ID with optional preloading
func (r *GormProjectRepository) FindByID(id uint64, preload ...string) (*models.Project, error) {
	var project models.Project
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}
	if err := query.First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// FindByOwnerAndName finds the owner's project with the given name
func (r *GormProjectRepository) FindByOwnerAndName(ownerID uint64, name string) (*models.Project, error) {
	var project models.Project
	if err := r.db.Where("owner_id = ? AND name = ?", ownerID, name).First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// ListForUser lists projects the user owns or is a member of
func (r *GormProjectRepository) ListForUser(userID uint64, params utils.PaginationParams) ([]models.Project, int64, error) {
	memberOf := r.db.Model(&models.ProjectMember{}).
		Select("project_id").
		Where("user_id = ?", userID)

	query := r.db.Model(&models.Project{}).
		Where("owner_id = ? OR id IN (?)", userID, memberOf)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var projects []models.Project
	if err := query.Order("created_at DESC, id DESC").
		Scopes(database.Paginate(params)).
		Preload("Owner").
		Find(&projects).Error; err != nil {
		return nil, 0, err
	}

	return projects, total, nil
}

// Update updates a project's own columns
func (r *GormProjectRepository) Update(project *models.Project) error {
	return r.db.Omit("Owner", "Members").Save(project).Error
}

// Delete deletes the project row
func (r *GormProjectRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Project{}, id).Error
}

// AddMember adds a member to a project
func (r *GormProjectRepository) AddMember(member *models.ProjectMember) error {
	return r.db.Omit("User").Create(member).Error
}

// UpdateMemberRole changes the role of an existing member
func (r *GormProjectRepository) UpdateMemberRole(projectID, userID uint64, role models.ProjectRole) error {
	return r.db.Model(&models.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Update("role", role).Error
}

// RemoveMember removes a member from a project
func (r *GormProjectRepository) RemoveMember(projectID, userID uint64) error {
	return r.db.Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&models.ProjectMember{}).Error
}

// FindMember finds a specific project member
func (r *GormProjectRepository) FindMember(projectID, userID uint64) (*models.ProjectMember, error) {
	var member models.ProjectMember
	if err := r.db.Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// ListMembers lists all members of a project in join order
func (r *GormProjectRepository) ListMembers(projectID uint64) ([]models.ProjectMember, error) {
	var members []models.ProjectMember
	if err := r.db.Preload("User").
		Where("project_id = ?", projectID).
		Order("joined_at ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// DeleteMembers removes every membership of a project
func (r *GormProjectRepository) DeleteMembers(projectID uint64) error {
	return r.db.Where("project_id = ?", projectID).Delete(&models.ProjectMember{}).Error
}
