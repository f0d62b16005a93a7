package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/scrumboard-api/internal/dto"
	apierrors "github.com/yukikurage/scrumboard-api/internal/errors"
	"github.com/yukikurage/scrumboard-api/internal/models"
	"github.com/yukikurage/scrumboard-api/internal/services"
)

// SprintHandler serves the sprint lifecycle.
type SprintHandler struct {
	sprintService *services.SprintService
	logger        *slog.Logger
	now           services.Clock
}

// NewSprintHandler creates a new SprintHandler.
func NewSprintHandler(sprintService *services.SprintService, logger *slog.Logger) *SprintHandler {
	return &SprintHandler{sprintService: sprintService, logger: logger, now: time.Now}
}

type sprintRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
}

func (h *SprintHandler) sprintID(c *gin.Context) (uint64, bool) {
	return idParam(c, "sprintId", "sprint")
}

// CreateSprint creates a planned sprint.
func (h *SprintHandler) CreateSprint(c *gin.Context) {
	project, ok := currentProject(c)
	if !ok {
		return
	}

	var req sprintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.CreateSprintInput{
		ProjectID: project.ID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}
	if req.Name != nil {
		input.Name = *req.Name
	}
	if req.Description != nil {
		input.Description = *req.Description
	}

	sprint, err := h.sprintService.CreateSprint(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondMessage(c, http.StatusCreated, "Sprint created successfully", gin.H{"sprint": dto.ToSprintDTO(*sprint, h.now())})
}

// ListSprints lists the project's sprints with their user stories.
func (h *SprintHandler) ListSprints(c *gin.Context) {
	project, ok := currentProject(c)
	if !ok {
		return
	}

	sprints, err := h.sprintService.ListSprints(c.Request.Context(), project.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "sprints": dto.ToSprintDTOs(sprints, h.now())})
}

// GetSprint returns one sprint with its user stories and remaining days.
func (h *SprintHandler) GetSprint(c *gin.Context) {
	project, ok := currentProject(c)
	if !ok {
		return
	}
	sprintID, ok := h.sprintID(c)
	if !ok {
		return
	}

	sprint, err := h.sprintService.GetSprint(c.Request.Context(), project.ID, sprintID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "sprint": dto.ToSprintDTO(*sprint, h.now())})
}

// UpdateSprint patches a sprint's name, description or dates.
func (h *SprintHandler) UpdateSprint(c *gin.Context) {
	project, ok := currentProject(c)
	if !ok {
		return
	}
	sprintID, ok := h.sprintID(c)
	if !ok {
		return
	}

	var req sprintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	sprint, err := h.sprintService.UpdateSprint(c.Request.Context(), project.ID, sprintID, services.UpdateSprintInput{
		Name:        req.Name,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondMessage(c, http.StatusOK, "Sprint updated successfully", gin.H{"sprint": dto.ToSprintDTO(*sprint, h.now())})
}

// StartSprint moves a planned sprint to active.
func (h *SprintHandler) StartSprint(c *gin.Context) {
	project, ok := currentProject(c)
	if !ok {
		return
	}
	sprintID, ok := h.sprintID(c)
	if !ok {
		return
	}

	sprint, err := h.sprintService.StartSprint(c.Request.Context(), project.ID, sprintID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondMessage(c, http.StatusOK, "Sprint started successfully", gin.H{"sprint": dto.ToSprintDTO(*sprint, h.now())})
}

// CompleteSprint closes an active sprint and releases a version for it.
// The body is optional; without one the release is a minor bump.
func (h *SprintHandler) CompleteSprint(c *gin.Context) {
	project, ok := currentProject(c)
	if !ok {
		return
	}
	sprintID, ok := h.sprintID(c)
	if !ok {
		return
	}

	var req struct {
		Type        models.VersionType `json:"type"`
		Description string             `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	sprint, version, err := h.sprintService.CompleteSprint(c.Request.Context(), project.ID, sprintID, services.CompleteSprintInput{
		Type:        req.Type,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.Info("sprint completed",
		"project_id", project.ID,
		"sprint_id", sprint.ID,
		"version", version.Tag,
	)

	respondMessage(c, http.StatusOK, "Sprint completed successfully", gin.H{
		"sprint":  dto.ToSprintDTO(*sprint, h.now()),
		"version": dto.ToVersionDTO(*version),
	})
}

// DeleteSprint deletes a sprint. Its user stories return to the backlog.
func (h *SprintHandler) DeleteSprint(c *gin.Context) {
	project, ok := currentProject(c)
	if !ok {
		return
	}
	sprintID, ok := h.sprintID(c)
	if !ok {
		return
	}

	if err := h.sprintService.DeleteSprint(c.Request.Context(), project.ID, sprintID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondMessage(c, http.StatusOK, "Sprint deleted successfully", nil)
}

// AssignUserStories moves the listed user stories into the sprint.
func (h *SprintHandler) AssignUserStories(c *gin.Context) {
	project, ok := currentProject(c)
	if !ok {
		return
	}
	sprintID, ok := h.sprintID(c)
	if !ok {
		return
	}

	var req struct {
		UserStoryIDs []uint64 `json:"userStoriesIDs"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, services.ErrNoUserStoriesProvided)
		return
	}

	if err := h.sprintService.AssignUserStories(c.Request.Context(), project.ID, sprintID, req.UserStoryIDs); err != nil {
		respondError(c, h.logger, err)
		return
	}

	sprint, err := h.sprintService.GetSprint(c.Request.Context(), project.ID, sprintID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondMessage(c, http.StatusOK, "User Stories assigned to sprint successfully.", gin.H{"sprint": dto.ToSprintDTO(*sprint, h.now())})
}
