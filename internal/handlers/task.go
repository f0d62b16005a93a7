package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/scrumboard-api/internal/dto"
	apierrors "github.com/yukikurage/scrumboard-api/internal/errors"
	"github.com/yukikurage/scrumboard-api/internal/models"
	"github.com/yukikurage/scrumboard-api/internal/services"
)

// TaskHandler serves the tasks of user stories.
type TaskHandler struct {
	taskService *services.TaskService
	logger      *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{taskService: taskService, logger: logger}
}

// CreateTask creates a task under a user story.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	project, ok := currentProject(c)
	if !ok {
		return
	}
	storyID, ok := idParam(c, "storyId", "user story")
	if !ok {
		return
	}

	var req struct {
		Title       string            `json:"title"`
		Description string            `json:"description"`
		Status      models.TaskStatus `json:"status"`
		AssigneeID  *uint64           `json:"assigneeId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), services.CreateTaskInput{
		ProjectID:   project.ID,
		UserStoryID: storyID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		AssigneeID:  req.AssigneeID,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondMessage(c, http.StatusCreated, "Task created successfully", gin.H{"task": dto.ToTaskDTO(*task)})
}

// ListTasks lists a user story's tasks.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	project, ok := currentProject(c)
	if !ok {
		return
	}
	storyID, ok := idParam(c, "storyId", "user story")
	if !ok {
		return
	}

	tasks, err := h.taskService.ListTasks(c.Request.Context(), project.ID, storyID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "tasks": dto.ToTaskDTOs(tasks)})
}

// GetTask returns a task.
func (h *TaskHandler) GetTask(c *gin.Context) {
	project, ok := currentProject(c)
	if !ok {
		return
	}
	taskID, ok := idParam(c, "taskId", "task")
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(c.Request.Context(), project.ID, taskID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "task": dto.ToTaskDTO(*task)})
}

// UpdateTask patches a task. "assigneeId": null unassigns it.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	project, ok := currentProject(c)
	if !ok {
		return
	}
	taskID, ok := idParam(c, "taskId", "task")
	if !ok {
		return
	}

	var req struct {
		Title       *string            `json:"title"`
		Description *string            `json:"description"`
		Status      *models.TaskStatus `json:"status"`
		AssigneeID  optionalID         `json:"assigneeId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), project.ID, taskID, services.UpdateTaskInput{
		Title:         req.Title,
		Description:   req.Description,
		Status:        req.Status,
		AssigneeID:    req.AssigneeID.Value,
		ClearAssignee: req.AssigneeID.Set && req.AssigneeID.Value == nil,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondMessage(c, http.StatusOK, "Task updated successfully", gin.H{"task": dto.ToTaskDTO(*task)})
}

// DeleteTask deletes a task.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	project, ok := currentProject(c)
	if !ok {
		return
	}
	taskID, ok := idParam(c, "taskId", "task")
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), project.ID, taskID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondMessage(c, http.StatusOK, "Task deleted successfully", nil)
}
