package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yukikurage/scrumboard-api/internal/constants"
	apierrors "github.com/yukikurage/scrumboard-api/internal/errors"
	"github.com/yukikurage/scrumboard-api/internal/models"
	"github.com/yukikurage/scrumboard-api/internal/repository"
)

var (
	ErrTitleRequired          = apierrors.NewValidation("Title is required")
	ErrInvalidPriority        = apierrors.NewValidation("Priority must be one of Low, Medium or High")
	ErrNegativeStoryPoints    = apierrors.NewValidation("Story points must be a non-negative integer")
	ErrAIServiceNotConfigured = apierrors.NewUnavailable("AI service is not configured")
	ErrAINoStoriesGenerated   = apierrors.NewValidation("AI did not generate any user stories")
)

// StorySuggester drafts user stories from free text.
type StorySuggester interface {
	GenerateUserStoriesFromText(ctx context.Context, text string) ([]GeneratedUserStory, error)
}

// UserStoryService handles user story business logic
type UserStoryService struct {
	repos     *repository.Repositories
	cascade   *CascadeDeleter
	suggester StorySuggester
}

// NewUserStoryService creates a new UserStoryService. suggester may be nil.
func NewUserStoryService(repos *repository.Repositories, cascade *CascadeDeleter, suggester StorySuggester) *UserStoryService {
	return &UserStoryService{
		repos:     repos,
		cascade:   cascade,
		suggester: suggester,
	}
}

// CreateUserStoryInput represents input for creating a user story
type CreateUserStoryInput struct {
	ProjectID   uint64
	Title       string
	Description string
	Priority    models.Priority
	StoryPoints *int
	SprintID    *uint64
}

// UpdateUserStoryInput represents input for updating a user story
type UpdateUserStoryInput struct {
	Title       *string
	Description *string
	Priority    *models.Priority
	StoryPoints *int
	SprintID    *uint64
	ClearSprint bool
}

// CreateUserStory validates and persists a story with the next number of its project
func (s *UserStoryService) CreateUserStory(ctx context.Context, input CreateUserStoryInput) (*models.UserStory, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if input.Priority == "" {
		input.Priority = models.PriorityMedium
	}
	if !input.Priority.Valid() {
		return nil, ErrInvalidPriority
	}
	points := 0
	if input.StoryPoints != nil {
		points = *input.StoryPoints
	}
	if points < 0 {
		return nil, ErrNegativeStoryPoints
	}

	story := &models.UserStory{
		Title:       title,
		Description: input.Description,
		Priority:    input.Priority,
		StoryPoints: points,
		ProjectID:   input.ProjectID,
		SprintID:    input.SprintID,
	}

	err := s.repos.WithContext(ctx).Transaction(func(tx *repository.Repositories) error {
		if _, err := tx.Projects.FindByID(input.ProjectID); err != nil {
			return lookupErr(err, ErrProjectNotFound, "project")
		}
		if input.SprintID != nil {
			if err := ensureSprintInProject(tx, input.ProjectID, *input.SprintID); err != nil {
				return err
			}
		}

		number, err := assignNumber(tx, models.ScopeUserStory, input.ProjectID)
		if err != nil {
			return err
		}
		story.Number = number

		if err := tx.UserStories.Create(story); err != nil {
			return fmt.Errorf("failed to create user story: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return story, nil
}

// ListUserStories returns the stories matching filter, ordered by number
func (s *UserStoryService) ListUserStories(ctx context.Context, filter repository.UserStoryFilter) ([]models.UserStory, int64, error) {
	stories, total, err := s.repos.WithContext(ctx).UserStories.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list user stories: %w", err)
	}
	return stories, total, nil
}

// GetUserStory returns a story of the project with its tasks
func (s *UserStoryService) GetUserStory(ctx context.Context, projectID, storyID uint64) (*models.UserStory, error) {
	return findUserStory(s.repos.WithContext(ctx), projectID, storyID, "Tasks", "Tasks.Assignee")
}

// UpdateUserStory updates an existing story
func (s *UserStoryService) UpdateUserStory(ctx context.Context, projectID, storyID uint64, input UpdateUserStoryInput) (*models.UserStory, error) {
	var story *models.UserStory
	err := s.repos.WithContext(ctx).Transaction(func(tx *repository.Repositories) error {
		var err error
		story, err = findUserStory(tx, projectID, storyID)
		if err != nil {
			return err
		}

		if input.Title != nil {
			title := strings.TrimSpace(*input.Title)
			if title == "" {
				return ErrTitleRequired
			}
			story.Title = title
		}
		if input.Description != nil {
			story.Description = *input.Description
		}
		if input.Priority != nil {
			if !input.Priority.Valid() {
				return ErrInvalidPriority
			}
			story.Priority = *input.Priority
		}
		if input.StoryPoints != nil {
			if *input.StoryPoints < 0 {
				return ErrNegativeStoryPoints
			}
			story.StoryPoints = *input.StoryPoints
		}
		if input.ClearSprint {
			story.SprintID = nil
		} else if input.SprintID != nil {
			if err := ensureSprintInProject(tx, projectID, *input.SprintID); err != nil {
				return err
			}
			story.SprintID = input.SprintID
		}

		if err := tx.UserStories.Update(story); err != nil {
			return fmt.Errorf("failed to update user story: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return story, nil
}

// DeleteUserStory deletes a story together with its tasks
func (s *UserStoryService) DeleteUserStory(ctx context.Context, projectID, storyID uint64) error {
	return s.cascade.DeleteUserStory(ctx, projectID, storyID)
}

// SuggestUserStories drafts user stories from text without saving them
func (s *UserStoryService) SuggestUserStories(ctx context.Context, text string) ([]GeneratedUserStory, error) {
	if s.suggester == nil {
		return nil, ErrAIServiceNotConfigured
	}

	drafts, err := s.suggester.GenerateUserStoriesFromText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate user stories: %w", err)
	}

	valid := make([]GeneratedUserStory, 0, len(drafts))
	for _, d := range drafts {
		d.Title = strings.TrimSpace(d.Title)
		if d.Title == "" {
			continue
		}
		if !models.Priority(d.Priority).Valid() {
			d.Priority = string(models.PriorityMedium)
		}
		if d.StoryPoints < 0 {
			d.StoryPoints = 0
		}
		valid = append(valid, d)
		if len(valid) == constants.MaxAIGeneratedStories {
			break
		}
	}

	if len(valid) == 0 {
		return nil, ErrAINoStoriesGenerated
	}
	return valid, nil
}

func findUserStory(repos *repository.Repositories, projectID, storyID uint64, preload ...string) (*models.UserStory, error) {
	story, err := repos.UserStories.FindByID(storyID, preload...)
	if err != nil {
		return nil, lookupErr(err, ErrUserStoryNotFound, "user story")
	}
	if story.ProjectID != projectID {
		return nil, ErrUserStoryNotFound
	}
	return story, nil
}

func ensureSprintInProject(tx *repository.Repositories, projectID, sprintID uint64) error {
	sprint, err := tx.Sprints.FindByID(sprintID)
	if err != nil {
		return lookupErr(err, ErrInvalidSprint, "sprint")
	}
	if sprint.ProjectID != projectID {
		return ErrInvalidSprint
	}
	return nil
}
