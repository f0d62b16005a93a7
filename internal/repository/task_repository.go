package repository

import (
	"github.com/yukikurage/scrumboard-api/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Omit("Assignee").Create(task).Error
}

// FindByID finds a task by ID with its assignee
func (r *GormTaskRepository) FindByID(id uint64) (*models.Task, error) {
	var task models.Task
	if err := r.db.Preload("Assignee").First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// ListByUserStory lists a story's tasks by number
func (r *GormTaskRepository) ListByUserStory(userStoryID uint64) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.Preload("Assignee").
		Where("user_story_id = ?", userStoryID).
		Order("number ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update updates a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Omit("Assignee").Save(task).Error
}

// Delete deletes a task
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Task{}, id).Error
}

// DeleteByUserStory deletes every task of a user story
func (r *GormTaskRepository) DeleteByUserStory(userStoryID uint64) error {
	return r.db.Where("user_story_id = ?", userStoryID).Delete(&models.Task{}).Error
}

// DeleteByProject deletes every task of a project
func (r *GormTaskRepository) DeleteByProject(projectID uint64) error {
	return r.db.Where("project_id = ?", projectID).Delete(&models.Task{}).Error
}

// MaxNumber returns the highest task number in the user story, or 0
func (r *GormTaskRepository) MaxNumber(userStoryID uint64) (int, error) {
	var max int
	err := r.db.Model(&models.Task{}).
		Where("user_story_id = ?", userStoryID).
		Select("COALESCE(MAX(number), 0)").
		Scan(&max).Error
	return max, err
}
