package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/scrumboard-api/internal/dto"
	apierrors "github.com/yukikurage/scrumboard-api/internal/errors"
	"github.com/yukikurage/scrumboard-api/internal/middleware"
	"github.com/yukikurage/scrumboard-api/internal/models"
	"github.com/yukikurage/scrumboard-api/internal/services"
	"github.com/yukikurage/scrumboard-api/internal/utils"
)

// ProjectHandler serves projects and their membership.
type ProjectHandler struct {
	projectService *services.ProjectService
	logger         *slog.Logger
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projectService *services.ProjectService, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{projectService: projectService, logger: logger}
}

// CreateProject creates a project owned by the caller.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.CreateProject(c.Request.Context(), services.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     userID,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondMessage(c, http.StatusCreated, "Project created successfully", gin.H{"project": dto.ToProjectDTO(*project)})
}

// ListProjects lists the projects the caller owns or belongs to.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	projects, total, err := h.projectService.ListProjects(c.Request.Context(), userID, params)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	out := make([]dto.ProjectDTO, len(projects))
	for i, p := range projects {
		out[i] = dto.ToProjectDTO(p)
	}

	c.JSON(http.StatusOK, dto.ProjectListResponse{
		Success:    true,
		Projects:   out,
		Pagination: params.Response(total),
	})
}

// GetProject returns the project with its owner and members.
func (h *ProjectHandler) GetProject(c *gin.Context) {
	current, ok := currentProject(c)
	if !ok {
		return
	}

	project, err := h.projectService.GetProject(c.Request.Context(), current.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "project": dto.ToProjectDetailDTO(*project)})
}

// UpdateProject patches the project's name or description.
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	current, ok := currentProject(c)
	if !ok {
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.UpdateProject(c.Request.Context(), current.ID, services.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondMessage(c, http.StatusOK, "Project updated successfully", gin.H{"project": dto.ToProjectDTO(*project)})
}

// DeleteProject removes the project and everything under it.
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	current, ok := currentProject(c)
	if !ok {
		return
	}

	if err := h.projectService.DeleteProject(c.Request.Context(), current.ID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondMessage(c, http.StatusOK, "Project deleted successfully", nil)
}

// ListMembers lists the project's members.
func (h *ProjectHandler) ListMembers(c *gin.Context) {
	current, ok := currentProject(c)
	if !ok {
		return
	}

	members, err := h.projectService.ListMembers(c.Request.Context(), current.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "members": dto.ToMemberDTOs(members)})
}

// AddMember adds a user, named by username or email, to the project.
func (h *ProjectHandler) AddMember(c *gin.Context) {
	current, ok := currentProject(c)
	if !ok {
		return
	}

	var req struct {
		Identifier string             `json:"identifier" binding:"required"`
		Role       models.ProjectRole `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Username or email is required")
		return
	}

	member, err := h.projectService.AddMember(c.Request.Context(), current.ID, req.Identifier, req.Role)
	if err != nil {
		respondErrorWithConflict(c, h.logger, err, http.StatusBadRequest)
		return
	}

	respondMessage(c, http.StatusCreated, "Member added successfully", gin.H{"member": dto.ToMemberDTO(*member)})
}

// RemoveMember removes a member from the project.
func (h *ProjectHandler) RemoveMember(c *gin.Context) {
	current, ok := currentProject(c)
	if !ok {
		return
	}

	if err := h.projectService.RemoveMember(c.Request.Context(), current.ID, c.Param("identifier")); err != nil {
		respondErrorWithConflict(c, h.logger, err, http.StatusBadRequest)
		return
	}

	respondMessage(c, http.StatusOK, "Member removed successfully", nil)
}

// ChangeMemberRole sets a member's role.
func (h *ProjectHandler) ChangeMemberRole(c *gin.Context) {
	current, ok := currentProject(c)
	if !ok {
		return
	}

	var req struct {
		Role models.ProjectRole `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Role is required")
		return
	}

	member, err := h.projectService.ChangeMemberRole(c.Request.Context(), current.ID, c.Param("identifier"), req.Role)
	if err != nil {
		respondErrorWithConflict(c, h.logger, err, http.StatusBadRequest)
		return
	}

	respondMessage(c, http.StatusOK, "Member role updated successfully", gin.H{"member": dto.ToMemberDTO(*member)})
}
