package repository

import (
	"github.com/yukikurage/scrumboard-api/internal/models"
	"gorm.io/gorm"
)

// GormVersionRepository is a GORM implementation of VersionRepository
type GormVersionRepository struct {
	db *gorm.DB
}

// NewVersionRepository creates a new VersionRepository
func NewVersionRepository(db *gorm.DB) VersionRepository {
	return &GormVersionRepository{db: db}
}

func (r *GormVersionRepository) Create(version *models.Version) error {
	return r.db.Create(version).Error
}

func (r *GormVersionRepository) FindByID(id uint64) (*models.Version, error) {
	var version models.Version
	if err := r.db.First(&version, id).Error; err != nil {
		return nil, err
	}
	return &version, nil
}

func (r *GormVersionRepository) ListByProject(projectID uint64) ([]models.Version, error) {
	var versions []models.Version
	if err := r.db.Where("project_id = ?", projectID).
		Order("created_at DESC, id DESC").
		Find(&versions).Error; err != nil {
		return nil, err
	}
	return versions, nil
}

// LatestForProject orders by creation, not by the tag's semantic order
func (r *GormVersionRepository) LatestForProject(projectID uint64) (*models.Version, error) {
	var version models.Version
	if err := r.db.Where("project_id = ?", projectID).
		Order("created_at DESC, id DESC").
		Take(&version).Error; err != nil {
		return nil, err
	}
	return &version, nil
}

func (r *GormVersionRepository) Update(version *models.Version) error {
	return r.db.Save(version).Error
}

func (r *GormVersionRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Version{}, id).Error
}

func (r *GormVersionRepository) DeleteByProject(projectID uint64) error {
	return r.db.Where("project_id = ?", projectID).Delete(&models.Version{}).Error
}
