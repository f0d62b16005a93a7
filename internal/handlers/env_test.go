package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/scrumboard-api/internal/auth"
	"github.com/yukikurage/scrumboard-api/internal/constants"
	"github.com/yukikurage/scrumboard-api/internal/database"
	"github.com/yukikurage/scrumboard-api/internal/middleware"
	"github.com/yukikurage/scrumboard-api/internal/models"
	"github.com/yukikurage/scrumboard-api/internal/repository"
	"github.com/yukikurage/scrumboard-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type handlerTestEnv struct {
	db       *gorm.DB
	router   *gin.Engine
	tokens   *auth.TokenManager
	auth     *services.AuthService
	projects *services.ProjectService
	stories  *services.UserStoryService
}

type testSession struct {
	user  *models.User
	token string
}

func setupHandlerTestEnv(t *testing.T) *handlerTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), database.GormConfig(logger.Default.LogMode(logger.Silent)))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, database.Migrate(db))

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	repos := repository.New(db)
	cascade := services.NewCascadeDeleter(repos)
	tokens := auth.NewTokenManager("test-jwt-secret", time.Hour)

	authService := services.NewAuthService(repos)
	projectService := services.NewProjectService(repos, cascade)
	storyService := services.NewUserStoryService(repos, cascade, nil)

	h := Handlers{
		Auth:        NewAuthHandler(authService, tokens, time.Hour, log),
		Projects:    NewProjectHandler(projectService, log),
		Sprints:     NewSprintHandler(services.NewSprintService(repos), log),
		UserStories: NewUserStoryHandler(storyService, log),
		Tasks:       NewTaskHandler(services.NewTaskService(repos), log),
		Versions:    NewVersionHandler(services.NewVersionService(repos), log),
	}

	r := gin.New()
	r.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("test-session-secret"))))
	r.Use(middleware.RequestID())
	RegisterRoutes(r.Group("/api"), h, middleware.NewProjectGuard(repos, log), tokens)

	return &handlerTestEnv{
		db:       db,
		router:   r,
		tokens:   tokens,
		auth:     authService,
		projects: projectService,
		stories:  storyService,
	}
}

// signup registers a user directly through the service and returns a bearer token for it.
func (e *handlerTestEnv) signup(t *testing.T, username string) testSession {
	t.Helper()
	user, err := e.auth.Signup(context.Background(), services.SignupInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)

	token, err := e.tokens.GenerateToken(user)
	require.NoError(t, err)
	return testSession{user: user, token: token}
}

func (e *handlerTestEnv) createProject(t *testing.T, owner testSession, name string) uint64 {
	t.Helper()
	project, err := e.projects.CreateProject(context.Background(), services.CreateProjectInput{Name: name, OwnerID: owner.user.ID})
	require.NoError(t, err)
	return project.ID
}

func (e *handlerTestEnv) addMember(t *testing.T, projectID uint64, member testSession, role models.ProjectRole) {
	t.Helper()
	_, err := e.projects.AddMember(context.Background(), projectID, member.user.Username, role)
	require.NoError(t, err)
}

func (e *handlerTestEnv) do(t *testing.T, method, path string, as *testSession, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if as != nil {
		req.Header.Set("Authorization", "Bearer "+as.token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
