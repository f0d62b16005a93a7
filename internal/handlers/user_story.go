package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/scrumboard-api/internal/dto"
	apierrors "github.com/yukikurage/scrumboard-api/internal/errors"
	"github.com/yukikurage/scrumboard-api/internal/middleware"
	"github.com/yukikurage/scrumboard-api/internal/models"
	"github.com/yukikurage/scrumboard-api/internal/repository"
	"github.com/yukikurage/scrumboard-api/internal/services"
	"github.com/yukikurage/scrumboard-api/internal/utils"
)

// UserStoryHandler serves the product backlog.
type UserStoryHandler struct {
	userStoryService *services.UserStoryService
	logger           *slog.Logger
}

// NewUserStoryHandler creates a new UserStoryHandler.
func NewUserStoryHandler(userStoryService *services.UserStoryService, logger *slog.Logger) *UserStoryHandler {
	return &UserStoryHandler{userStoryService: userStoryService, logger: logger}
}

// CreateUserStory adds a story to the project, optionally inside a sprint.
func (h *UserStoryHandler) CreateUserStory(c *gin.Context) {
	project, ok := currentProject(c)
	if !ok {
		return
	}

	var req struct {
		Title       string          `json:"title"`
		Description string          `json:"description"`
		Priority    models.Priority `json:"priority"`
		StoryPoints *int            `json:"storyPoints"`
		SprintID    *uint64         `json:"sprintId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	story, err := h.userStoryService.CreateUserStory(c.Request.Context(), services.CreateUserStoryInput{
		ProjectID:   project.ID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		StoryPoints: req.StoryPoints,
		SprintID:    req.SprintID,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondMessage(c, http.StatusCreated, "User story created successfully", gin.H{"userStory": dto.ToUserStoryDTO(*story)})
}

// ListUserStories lists the project's stories. ?sprint=<id> narrows to one
// sprint and ?sprint=backlog to unassigned stories.
func (h *UserStoryHandler) ListUserStories(c *gin.Context) {
	project, ok := currentProject(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	filter := repository.UserStoryFilter{
		ProjectID:  project.ID,
		Pagination: &params,
	}
	switch sprint := strings.TrimSpace(c.Query("sprint")); sprint {
	case "":
	case "backlog":
		filter.BacklogOnly = true
	default:
		id, err := strconv.ParseUint(sprint, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid sprint ID")
			return
		}
		filter.SprintID = &id
	}

	stories, total, err := h.userStoryService.ListUserStories(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"userStories": dto.ToUserStoryDTOs(stories),
		"pagination":  params.Response(total),
	})
}

// GetUserStory returns a story with its tasks.
func (h *UserStoryHandler) GetUserStory(c *gin.Context) {
	project, ok := currentProject(c)
	if !ok {
		return
	}
	storyID, ok := idParam(c, "storyId", "user story")
	if !ok {
		return
	}

	story, err := h.userStoryService.GetUserStory(c.Request.Context(), project.ID, storyID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "userStory": dto.ToUserStoryDTO(*story)})
}

// UpdateUserStory patches a story. "sprintId": null moves it to the backlog.
func (h *UserStoryHandler) UpdateUserStory(c *gin.Context) {
	project, ok := currentProject(c)
	if !ok {
		return
	}
	storyID, ok := idParam(c, "storyId", "user story")
	if !ok {
		return
	}

	var req struct {
		Title       *string          `json:"title"`
		Description *string          `json:"description"`
		Priority    *models.Priority `json:"priority"`
		StoryPoints *int             `json:"storyPoints"`
		SprintID    optionalID       `json:"sprintId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	story, err := h.userStoryService.UpdateUserStory(c.Request.Context(), project.ID, storyID, services.UpdateUserStoryInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		StoryPoints: req.StoryPoints,
		SprintID:    req.SprintID.Value,
		ClearSprint: req.SprintID.Set && req.SprintID.Value == nil,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondMessage(c, http.StatusOK, "User story updated successfully", gin.H{"userStory": dto.ToUserStoryDTO(*story)})
}

// DeleteUserStory deletes a story and its tasks.
func (h *UserStoryHandler) DeleteUserStory(c *gin.Context) {
	project, ok := currentProject(c)
	if !ok {
		return
	}
	storyID, ok := idParam(c, "storyId", "user story")
	if !ok {
		return
	}

	if err := h.userStoryService.DeleteUserStory(c.Request.Context(), project.ID, storyID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondMessage(c, http.StatusOK, "User story deleted successfully", nil)
}

// SuggestUserStories drafts user stories from free text. Nothing is saved.
func (h *UserStoryHandler) SuggestUserStories(c *gin.Context) {
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Text is required")
		return
	}

	drafts, err := h.userStoryService.SuggestUserStories(c.Request.Context(), req.Text)
	if err != nil {
		if apierrors.KindOf(err) != apierrors.KindInternal {
			respondError(c, h.logger, err)
			return
		}
		// the model call itself failed
		h.logger.Error("user story suggestion failed", "request_id", middleware.GetRequestID(c), "error", err)
		apierrors.RespondWithError(c, http.StatusBadGateway,
			apierrors.NewAPIError(apierrors.ErrCodeServiceUnavailable, "Failed to generate user stories"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "userStories": drafts})
}
