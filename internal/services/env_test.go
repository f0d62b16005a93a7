package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/scrumboard-api/internal/database"
	"github.com/yukikurage/scrumboard-api/internal/models"
	"github.com/yukikurage/scrumboard-api/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

type serviceTestEnv struct {
	ctx      context.Context
	db       *gorm.DB
	repos    *repository.Repositories
	auth     *AuthService
	projects *ProjectService
	sprints  *SprintService
	versions *VersionService
	stories  *UserStoryService
	tasks    *TaskService
	cascade  *CascadeDeleter
}

func setupServiceTestEnv(t *testing.T) *serviceTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), database.GormConfig(logger.Default.LogMode(logger.Silent)))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, database.Migrate(db))

	clock := func() time.Time { return testNow }
	repos := repository.New(db)
	cascade := NewCascadeDeleter(repos)

	projects := NewProjectService(repos, cascade)
	projects.now = clock
	sprints := NewSprintService(repos)
	sprints.now = clock
	versions := NewVersionService(repos)
	versions.now = clock

	return &serviceTestEnv{
		ctx:      context.Background(),
		db:       db,
		repos:    repos,
		auth:     NewAuthService(repos),
		projects: projects,
		sprints:  sprints,
		versions: versions,
		stories:  NewUserStoryService(repos, cascade, nil),
		tasks:    NewTaskService(repos),
		cascade:  cascade,
	}
}

func (e *serviceTestEnv) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hashedpassword",
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *serviceTestEnv) createProject(t *testing.T, owner *models.User, name string) *models.Project {
	t.Helper()
	project, err := e.projects.CreateProject(e.ctx, CreateProjectInput{Name: name, OwnerID: owner.ID})
	require.NoError(t, err)
	return project
}

func (e *serviceTestEnv) createSprint(t *testing.T, projectID uint64, name string) *models.Sprint {
	t.Helper()
	start := testNow.Add(-7 * 24 * time.Hour)
	end := testNow.Add(7 * 24 * time.Hour)
	sprint, err := e.sprints.CreateSprint(e.ctx, CreateSprintInput{
		ProjectID: projectID,
		Name:      name,
		StartDate: &start,
		EndDate:   &end,
	})
	require.NoError(t, err)
	return sprint
}

func (e *serviceTestEnv) createStory(t *testing.T, projectID uint64, title string) *models.UserStory {
	t.Helper()
	story, err := e.stories.CreateUserStory(e.ctx, CreateUserStoryInput{ProjectID: projectID, Title: title})
	require.NoError(t, err)
	return story
}

func (e *serviceTestEnv) insertVersion(t *testing.T, projectID uint64, tag string, createdAt time.Time) *models.Version {
	t.Helper()
	v := &models.Version{
		ProjectID:   projectID,
		Tag:         tag,
		ReleaseDate: createdAt,
		CreatedAt:   createdAt,
	}
	require.NoError(t, e.db.Create(v).Error)
	return v
}

func countRows(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Where(query, args...).Count(&n).Error)
	return n
}

func ptr[T any](v T) *T {
	return &v
}
