package repository

import (
	"github.com/yukikurage/scrumboard-api/internal/models"
	"gorm.io/gorm"
)

// GormSprintRepository is a GORM implementation of SprintRepository
type GormSprintRepository struct {
	db *gorm.DB
}

// NewSprintRepository creates a new SprintRepository
func NewSprintRepository(db *gorm.DB) SprintRepository {
	return &GormSprintRepository{db: db}
}

func (r *GormSprintRepository) Create(sprint *models.Sprint) error {
	return r.db.Omit("UserStories").Create(sprint).Error
}

func (r *GormSprintRepository) FindByID(id uint64) (*models.Sprint, error) {
	var sprint models.Sprint
	if err := r.db.First(&sprint, id).Error; err != nil {
		return nil, err
	}
	return &sprint, nil
}

func (r *GormSprintRepository) FindWithUserStories(id uint64) (*models.Sprint, error) {
	var sprint models.Sprint
	if err := r.db.Preload("UserStories", func(db *gorm.DB) *gorm.DB {
		return db.Order("number ASC")
	}).First(&sprint, id).Error; err != nil {
		return nil, err
	}
	return &sprint, nil
}

func (r *GormSprintRepository) ListByProject(projectID uint64) ([]models.Sprint, error) {
	var sprints []models.Sprint
	if err := r.db.Preload("UserStories", func(db *gorm.DB) *gorm.DB {
		return db.Order("number ASC")
	}).
		Where("project_id = ?", projectID).
		Order("number ASC").
		Find(&sprints).Error; err != nil {
		return nil, err
	}
	return sprints, nil
}

func (r *GormSprintRepository) Update(sprint *models.Sprint) error {
	return r.db.Omit("UserStories").Save(sprint).Error
}

func (r *GormSprintRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Sprint{}, id).Error
}

func (r *GormSprintRepository) DeleteByProject(projectID uint64) error {
	return r.db.Where("project_id = ?", projectID).Delete(&models.Sprint{}).Error
}

func (r *GormSprintRepository) MaxNumber(projectID uint64) (int, error) {
	var max int
	err := r.db.Model(&models.Sprint{}).
		Where("project_id = ?", projectID).
		Select("COALESCE(MAX(number), 0)").
		Scan(&max).Error
	return max, err
}
