package middleware

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/scrumboard-api/internal/constants"
	apierrors "github.com/yukikurage/scrumboard-api/internal/errors"
	"github.com/yukikurage/scrumboard-api/internal/models"
	"github.com/yukikurage/scrumboard-api/internal/repository"
	"gorm.io/gorm"
)

// ProjectParam is the route parameter holding the project ID
const ProjectParam = "projectId"

// ProjectGuard authorizes requests against a project's owner and members.
type ProjectGuard struct {
	repos  *repository.Repositories
	logger *slog.Logger
}

func NewProjectGuard(repos *repository.Repositories, logger *slog.Logger) *ProjectGuard {
	return &ProjectGuard{repos: repos, logger: logger}
}

// RequireProjectAccess checks that the project exists and the user owns it or
// is a member. The project and the user's role are stored in the context.
func (g *ProjectGuard) RequireProjectAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, err := strconv.ParseUint(c.Param(ProjectParam), 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid project ID")
			c.Abort()
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		projects := g.repos.WithContext(c.Request.Context()).Projects
		project, err := projects.FindByID(projectID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				apierrors.NotFound(c, "Project not found")
			} else {
				g.logger.Error("failed to load project",
					"project_id", projectID,
					"request_id", GetRequestID(c),
					"error", err,
				)
				apierrors.InternalError(c, "")
			}
			c.Abort()
			return
		}

		var role models.ProjectRole
		member, err := projects.FindMember(projectID, userID)
		switch {
		case err == nil:
			role = member.Role
		case !errors.Is(err, gorm.ErrRecordNotFound):
			g.logger.Error("failed to load project member",
				"project_id", projectID,
				"user_id", userID,
				"request_id", GetRequestID(c),
				"error", err,
			)
			apierrors.InternalError(c, "")
			c.Abort()
			return
		case !project.IsOwner(userID):
			// Return 404 instead of 403 to avoid leaking project existence
			apierrors.NotFound(c, "Project not found")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyProject, *project)
		c.Set(constants.ContextKeyRole, role)
		c.Next()
	}
}

// RequireProjectRole lets the owner through and otherwise requires one of
// roles. It must run after RequireProjectAccess.
func (g *ProjectGuard) RequireProjectRole(roles ...models.ProjectRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		project, ok := GetProject(c)
		if !ok {
			apierrors.Forbidden(c, "Project access required")
			c.Abort()
			return
		}

		userID, _ := GetUserID(c)
		if project.IsOwner(userID) {
			c.Next()
			return
		}

		role, _ := GetProjectRole(c)
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		apierrors.Forbidden(c, "You do not have permission to perform this action")
		c.Abort()
	}
}

// RequireProjectOwner allows only the project's owner.
func (g *ProjectGuard) RequireProjectOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		project, ok := GetProject(c)
		if !ok {
			apierrors.Forbidden(c, "Project access required")
			c.Abort()
			return
		}

		userID, _ := GetUserID(c)
		if !project.IsOwner(userID) {
			apierrors.Forbidden(c, "Only the project owner can perform this action")
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetProject returns the project stored by RequireProjectAccess
func GetProject(c *gin.Context) (models.Project, bool) {
	v, exists := c.Get(constants.ContextKeyProject)
	if !exists {
		return models.Project{}, false
	}
	project, ok := v.(models.Project)
	return project, ok
}

// GetProjectRole returns the caller's member role. It is empty for an owner
// who is not in the member list.
func GetProjectRole(c *gin.Context) (models.ProjectRole, bool) {
	v, exists := c.Get(constants.ContextKeyRole)
	if !exists {
		return "", false
	}
	role, ok := v.(models.ProjectRole)
	return role, ok
}
