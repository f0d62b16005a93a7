package repository

import (
	"github.com/yukikurage/scrumboard-api/internal/database"
	"github.com/yukikurage/scrumboard-api/internal/models"
	"gorm.io/gorm"
)

// GormUserStoryRepository is a GORM implementation of UserStoryRepository
type GormUserStoryRepository struct {
	db *gorm.DB
}

// NewUserStoryRepository creates a new UserStoryRepository
func NewUserStoryRepository(db *gorm.DB) UserStoryRepository {
	return &GormUserStoryRepository{db: db}
}

func (r *GormUserStoryRepository) Create(story *models.UserStory) error {
	return r.db.Omit("Tasks").Create(story).Error
}

// FindByID finds a user story by ID with optional preloading
func (r *GormUserStoryRepository) FindByID(id uint64, preload ...string) (*models.UserStory, error) {
	var story models.UserStory
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}
	if err := query.First(&story, id).Error; err != nil {
		return nil, err
	}
	return &story, nil
}

// List retrieves user stories with filtering and optional pagination
func (r *GormUserStoryRepository) List(filter UserStoryFilter) ([]models.UserStory, int64, error) {
	query := r.db.Model(&models.UserStory{}).Where("project_id = ?", filter.ProjectID)

	if filter.BacklogOnly {
		query = query.Where("sprint_id IS NULL")
	} else if filter.SprintID != nil {
		query = query.Where("sprint_id = ?", *filter.SprintID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("number ASC")
	if filter.Pagination != nil {
		listQuery = listQuery.Scopes(database.Paginate(*filter.Pagination))
	}

	var stories []models.UserStory
	if err := listQuery.Find(&stories).Error; err != nil {
		return nil, 0, err
	}

	return stories, total, nil
}

func (r *GormUserStoryRepository) Update(story *models.UserStory) error {
	return r.db.Omit("Tasks").Save(story).Error
}

func (r *GormUserStoryRepository) Delete(id uint64) error {
	return r.db.Delete(&models.UserStory{}, id).Error
}

func (r *GormUserStoryRepository) DeleteByProject(projectID uint64) error {
	return r.db.Where("project_id = ?", projectID).Delete(&models.UserStory{}).Error
}

func (r *GormUserStoryRepository) IDsByProject(projectID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.Model(&models.UserStory{}).
		Where("project_id = ?", projectID).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *GormUserStoryRepository) MaxNumber(projectID uint64) (int, error) {
	var max int
	err := r.db.Model(&models.UserStory{}).
		Where("project_id = ?", projectID).
		Select("COALESCE(MAX(number), 0)").
		Scan(&max).Error
	return max, err
}

func (r *GormUserStoryRepository) CountInProject(projectID uint64, ids []uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.UserStory{}).
		Where("project_id = ? AND id IN ?", projectID, ids).
		Count(&count).Error
	return count, err
}

func (r *GormUserStoryRepository) AssignToSprint(ids []uint64, sprintID uint64) error {
	return r.db.Model(&models.UserStory{}).
		Where("id IN ?", ids).
		Update("sprint_id", sprintID).Error
}

func (r *GormUserStoryRepository) UnassignSprint(sprintID uint64) error {
	return r.db.Model(&models.UserStory{}).
		Where("sprint_id = ?", sprintID).
		Update("sprint_id", nil).Error
}
