package services

import (
	"context"
	"fmt"
	"strings"

	apierrors "github.com/yukikurage/scrumboard-api/internal/errors"
	"github.com/yukikurage/scrumboard-api/internal/models"
	"github.com/yukikurage/scrumboard-api/internal/repository"
)

var (
	ErrTaskNotFound      = apierrors.NewNotFound("Task not found")
	ErrInvalidTaskStatus = apierrors.NewValidation("Status must be one of To Do, In Progress or Done")
	ErrInvalidAssignee   = apierrors.NewValidation("Assignee must be a member of the project")
)

// TaskService handles task business logic
type TaskService struct {
	repos *repository.Repositories
}

// NewTaskService creates a new TaskService
func NewTaskService(repos *repository.Repositories) *TaskService {
	return &TaskService{repos: repos}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	ProjectID   uint64
	UserStoryID uint64
	Title       string
	Description string
	Status      models.TaskStatus
	AssigneeID  *uint64
}

// UpdateTaskInput represents input for updating a task
type UpdateTaskInput struct {
	Title         *string
	Description   *string
	Status        *models.TaskStatus
	AssigneeID    *uint64
	ClearAssignee bool
}

// CreateTask creates a task under a user story with the story's next task number
func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if input.Status == "" {
		input.Status = models.TaskStatusTodo
	}
	if !input.Status.Valid() {
		return nil, ErrInvalidTaskStatus
	}

	var task *models.Task
	err := s.repos.WithContext(ctx).Transaction(func(tx *repository.Repositories) error {
		story, err := findUserStory(tx, input.ProjectID, input.UserStoryID)
		if err != nil {
			return err
		}
		if input.AssigneeID != nil {
			if err := ensureAssignable(tx, story.ProjectID, *input.AssigneeID); err != nil {
				return err
			}
		}

		number, err := assignNumber(tx, models.ScopeTask, story.ID)
		if err != nil {
			return err
		}

		task = &models.Task{
			Number:      number,
			Title:       title,
			Description: input.Description,
			Status:      input.Status,
			AssigneeID:  input.AssigneeID,
			UserStoryID: story.ID,
			ProjectID:   story.ProjectID,
		}
		if err := tx.Tasks.Create(task); err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// ListTasks returns a story's tasks by number
func (s *TaskService) ListTasks(ctx context.Context, projectID, storyID uint64) ([]models.Task, error) {
	repos := s.repos.WithContext(ctx)
	if _, err := findUserStory(repos, projectID, storyID); err != nil {
		return nil, err
	}

	tasks, err := repos.Tasks.ListByUserStory(storyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// GetTask returns a task of the project
func (s *TaskService) GetTask(ctx context.Context, projectID, taskID uint64) (*models.Task, error) {
	return findTask(s.repos.WithContext(ctx), projectID, taskID)
}

// UpdateTask updates an existing task
func (s *TaskService) UpdateTask(ctx context.Context, projectID, taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	var task *models.Task
	err := s.repos.WithContext(ctx).Transaction(func(tx *repository.Repositories) error {
		var err error
		task, err = findTask(tx, projectID, taskID)
		if err != nil {
			return err
		}

		if input.Title != nil {
			title := strings.TrimSpace(*input.Title)
			if title == "" {
				return ErrTitleRequired
			}
			task.Title = title
		}
		if input.Description != nil {
			task.Description = *input.Description
		}
		if input.Status != nil {
			if !input.Status.Valid() {
				return ErrInvalidTaskStatus
			}
			task.Status = *input.Status
		}
		if input.ClearAssignee {
			task.AssigneeID = nil
			task.Assignee = nil
		} else if input.AssigneeID != nil {
			if err := ensureAssignable(tx, projectID, *input.AssigneeID); err != nil {
				return err
			}
			task.AssigneeID = input.AssigneeID
			task.Assignee = nil
		}

		if err := tx.Tasks.Update(task); err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// DeleteTask deletes a task
func (s *TaskService) DeleteTask(ctx context.Context, projectID, taskID uint64) error {
	repos := s.repos.WithContext(ctx)
	if _, err := findTask(repos, projectID, taskID); err != nil {
		return err
	}
	if err := repos.Tasks.Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

func findTask(repos *repository.Repositories, projectID, taskID uint64) (*models.Task, error) {
	task, err := repos.Tasks.FindByID(taskID)
	if err != nil {
		return nil, lookupErr(err, ErrTaskNotFound, "task")
	}
	if task.ProjectID != projectID {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

func ensureAssignable(tx *repository.Repositories, projectID, userID uint64) error {
	project, err := tx.Projects.FindByID(projectID)
	if err != nil {
		return lookupErr(err, ErrProjectNotFound, "project")
	}
	ok, err := isProjectParticipant(tx, project, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidAssignee
	}
	return nil
}
