package repository

import (
	"context"

	"github.com/yukikurage/scrumboard-api/internal/models"
	"github.com/yukikurage/scrumboard-api/internal/utils"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)

	// FindByEmail finds a user by lowercased email
	FindByEmail(email string) (*models.User, error)
}

// ProjectRepository defines the interface for project and membership data access
type ProjectRepository interface {
	Create(project *models.Project) error
	FindByID(id uint64, preload ...string) (*models.Project, error)
	FindByOwnerAndName(ownerID uint64, name string) (*models.Project, error)

	// ListForUser lists projects the user owns or is a member of
	ListForUser(userID uint64, params utils.PaginationParams) ([]models.Project, int64, error)

	Update(project *models.Project) error

	// Delete removes only the project row; dependents are handled by the cascade
	Delete(id uint64) error

	AddMember(member *models.ProjectMember) error
	UpdateMemberRole(projectID, userID uint64, role models.ProjectRole) error
	RemoveMember(projectID, userID uint64) error
	FindMember(projectID, userID uint64) (*models.ProjectMember, error)
	ListMembers(projectID uint64) ([]models.ProjectMember, error)
	DeleteMembers(projectID uint64) error
}

// SprintRepository defines the interface for sprint data access
type SprintRepository interface {
	Create(sprint *models.Sprint) error
	FindByID(id uint64) (*models.Sprint, error)

	// ListByProject returns the project's sprints ordered by number with their user stories
	ListByProject(projectID uint64) ([]models.Sprint, error)

	// FindWithUserStories loads one sprint and its user stories
	FindWithUserStories(id uint64) (*models.Sprint, error)

	Update(sprint *models.Sprint) error
	Delete(id uint64) error
	DeleteByProject(projectID uint64) error

	// MaxNumber returns the highest sprint number in the project, or 0
	MaxNumber(projectID uint64) (int, error)
}

// UserStoryFilter holds filtering options for listing user stories
type UserStoryFilter struct {
	ProjectID   uint64
	SprintID    *uint64
	BacklogOnly bool
	Pagination  *utils.PaginationParams
}

// UserStoryRepository defines the interface for user story data access
type UserStoryRepository interface {
	Create(story *models.UserStory) error
	FindByID(id uint64, preload ...string) (*models.UserStory, error)
	List(filter UserStoryFilter) ([]models.UserStory, int64, error)
	Update(story *models.UserStory) error
	Delete(id uint64) error
	DeleteByProject(projectID uint64) error
	IDsByProject(projectID uint64) ([]uint64, error)
	MaxNumber(projectID uint64) (int, error)

	// CountInProject counts how many of ids are user stories of the project
	CountInProject(projectID uint64, ids []uint64) (int64, error)

	// AssignToSprint sets the sprint reference on every listed story
	AssignToSprint(ids []uint64, sprintID uint64) error

	// UnassignSprint moves every story of the sprint back to the backlog
	UnassignSprint(sprintID uint64) error
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	Create(task *models.Task) error
	FindByID(id uint64) (*models.Task, error)
	ListByUserStory(userStoryID uint64) ([]models.Task, error)
	Update(task *models.Task) error
	Delete(id uint64) error
	DeleteByUserStory(userStoryID uint64) error
	DeleteByProject(projectID uint64) error
	MaxNumber(userStoryID uint64) (int, error)
}

// VersionRepository defines the interface for version data access
type VersionRepository interface {
	Create(version *models.Version) error
	FindByID(id uint64) (*models.Version, error)

	// ListByProject returns versions newest first
	ListByProject(projectID uint64) ([]models.Version, error)

	// LatestForProject returns the most recently created version
	LatestForProject(projectID uint64) (*models.Version, error)

	Update(version *models.Version) error
	Delete(id uint64) error
	DeleteByProject(projectID uint64) error
}

// SequenceRepository hands out per-scope numbers
type SequenceRepository interface {
	// Next increments the scope's counter and returns the new value. floor
	// seeds a counter that does not exist yet.
	Next(scope models.SequenceScope, scopeID uint64, floor int) (int, error)

	// DeleteScopes drops the counters of the given scope IDs
	DeleteScopes(scope models.SequenceScope, scopeIDs []uint64) error
}

// Repositories bundles every repository over one connection or transaction.
type Repositories struct {
	db *gorm.DB

	Users       UserRepository
	Projects    ProjectRepository
	Sprints     SprintRepository
	UserStories UserStoryRepository
	Tasks       TaskRepository
	Versions    VersionRepository
	Sequences   SequenceRepository
}

// New builds the GORM-backed repositories on db
func New(db *gorm.DB) *Repositories {
	return &Repositories{
		db:          db,
		Users:       NewUserRepository(db),
		Projects:    NewProjectRepository(db),
		Sprints:     NewSprintRepository(db),
		UserStories: NewUserStoryRepository(db),
		Tasks:       NewTaskRepository(db),
		Versions:    NewVersionRepository(db),
		Sequences:   NewSequenceRepository(db),
	}
}

// WithContext returns repositories bound to ctx
func (r *Repositories) WithContext(ctx context.Context) *Repositories {
	return New(r.db.WithContext(ctx))
}

// Transaction runs fn with repositories bound to a single transaction.
// Any error returned by fn rolls every write back.
func (r *Repositories) Transaction(fn func(tx *Repositories) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}
