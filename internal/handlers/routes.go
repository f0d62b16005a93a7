package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/scrumboard-api/internal/auth"
	"github.com/yukikurage/scrumboard-api/internal/middleware"
	"github.com/yukikurage/scrumboard-api/internal/models"
)

// Handlers groups every HTTP handler of the API.
type Handlers struct {
	Auth        *AuthHandler
	Projects    *ProjectHandler
	Sprints     *SprintHandler
	UserStories *UserStoryHandler
	Tasks       *TaskHandler
	Versions    *VersionHandler
}

// RegisterRoutes mounts the API on api. Viewers are read-only, Scrum Masters
// run sprints, releases and membership, and only the owner may change or
// delete the project itself.
func RegisterRoutes(api *gin.RouterGroup, h Handlers, guard *middleware.ProjectGuard, tokens *auth.TokenManager) {
	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/signup", h.Auth.Signup)
		authRoutes.POST("/login", h.Auth.Login)
		authRoutes.POST("/logout", h.Auth.Logout)
		authRoutes.GET("/me", middleware.RequireAuth(tokens), h.Auth.GetCurrentUser)
	}

	protected := api.Group("")
	protected.Use(middleware.RequireAuth(tokens))

	protected.POST("/projects", h.Projects.CreateProject)
	protected.GET("/projects", h.Projects.ListProjects)
	protected.POST("/user-stories/suggest", h.UserStories.SuggestUserStories)

	project := protected.Group("/projects/:" + middleware.ProjectParam)
	project.Use(guard.RequireProjectAccess())

	contributor := guard.RequireProjectRole(models.RoleScrumMaster, models.RoleDeveloper)
	scrumMaster := guard.RequireProjectRole(models.RoleScrumMaster)
	owner := guard.RequireProjectOwner()

	{
		project.GET("", h.Projects.GetProject)
		project.PUT("", owner, h.Projects.UpdateProject)
		project.DELETE("", owner, h.Projects.DeleteProject)

		project.GET("/members", h.Projects.ListMembers)
		project.POST("/members", scrumMaster, h.Projects.AddMember)
		project.PUT("/members/:identifier", scrumMaster, h.Projects.ChangeMemberRole)
		project.DELETE("/members/:identifier", scrumMaster, h.Projects.RemoveMember)
	}

	{
		project.POST("/sprints", scrumMaster, h.Sprints.CreateSprint)
		project.GET("/sprints", h.Sprints.ListSprints)
		project.GET("/sprints/:sprintId", h.Sprints.GetSprint)
		project.PUT("/sprints/:sprintId", scrumMaster, h.Sprints.UpdateSprint)
		project.DELETE("/sprints/:sprintId", scrumMaster, h.Sprints.DeleteSprint)
		project.POST("/sprints/:sprintId/start", scrumMaster, h.Sprints.StartSprint)
		project.POST("/sprints/:sprintId/complete", scrumMaster, h.Sprints.CompleteSprint)
		project.POST("/sprints/:sprintId/user-stories", contributor, h.Sprints.AssignUserStories)
	}

	{
		project.POST("/user-stories", contributor, h.UserStories.CreateUserStory)
		project.GET("/user-stories", h.UserStories.ListUserStories)
		project.GET("/user-stories/:storyId", h.UserStories.GetUserStory)
		project.PUT("/user-stories/:storyId", contributor, h.UserStories.UpdateUserStory)
		project.DELETE("/user-stories/:storyId", contributor, h.UserStories.DeleteUserStory)

		project.POST("/user-stories/:storyId/tasks", contributor, h.Tasks.CreateTask)
		project.GET("/user-stories/:storyId/tasks", h.Tasks.ListTasks)
		project.GET("/tasks/:taskId", h.Tasks.GetTask)
		project.PUT("/tasks/:taskId", contributor, h.Tasks.UpdateTask)
		project.DELETE("/tasks/:taskId", contributor, h.Tasks.DeleteTask)
	}

	{
		project.POST("/versions", scrumMaster, h.Versions.CreateVersion)
		project.GET("/versions", h.Versions.ListVersions)
		project.GET("/versions/next", h.Versions.NextVersionTag)
		project.GET("/versions/:versionId", h.Versions.GetVersion)
		project.PUT("/versions/:versionId", scrumMaster, h.Versions.UpdateVersion)
		project.DELETE("/versions/:versionId", scrumMaster, h.Versions.DeleteVersion)
	}
}
