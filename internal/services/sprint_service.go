package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	apierrors "github.com/yukikurage/scrumboard-api/internal/errors"
	"github.com/yukikurage/scrumboard-api/internal/models"
	"github.com/yukikurage/scrumboard-api/internal/repository"
)

var (
	ErrSprintNotFound        = apierrors.NewNotFound("Sprint not found")
	ErrSprintNameRequired    = apierrors.NewValidation("Sprint name is required")
	ErrSprintDatesRequired   = apierrors.NewValidation("Start date and end date are required")
	ErrSprintDateOrder       = apierrors.NewValidation("Start date must be before end date")
	ErrSprintNotPlanned      = apierrors.NewInvalidState("Only planned sprints can be started")
	ErrSprintNotActive       = apierrors.NewInvalidState("Only active sprints can be completed")
	ErrSprintNotStartedYet   = apierrors.NewInvalidState("A sprint cannot be completed before its start date")
	ErrNoUserStoriesProvided = apierrors.NewValidation("User story IDs must be a non-empty array")
	ErrInvalidUserStories    = apierrors.NewValidation("Some user stories are invalid or do not belong to the sprint's project")
)

// SprintService drives the sprint lifecycle: planned, then active, then completed.
type SprintService struct {
	repos *repository.Repositories
	now   Clock
}

// NewSprintService creates a new SprintService
func NewSprintService(repos *repository.Repositories) *SprintService {
	return &SprintService{repos: repos, now: time.Now}
}

// CreateSprintInput represents input for creating a sprint
type CreateSprintInput struct {
	ProjectID   uint64
	Name        string
	Description string
	StartDate   *time.Time
	EndDate     *time.Time
}

// UpdateSprintInput holds the fields to patch. Nil fields are left unchanged.
type UpdateSprintInput struct {
	Name        *string
	Description *string
	StartDate   *time.Time
	EndDate     *time.Time
}

// CompleteSprintInput selects the release cut when a sprint completes.
// An empty Type means a minor bump.
type CompleteSprintInput struct {
	Type        models.VersionType
	Description string
}

// CreateSprint validates and persists a planned sprint with the next number
// of its project.
func (s *SprintService) CreateSprint(ctx context.Context, input CreateSprintInput) (*models.Sprint, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrSprintNameRequired
	}
	if input.StartDate == nil || input.EndDate == nil {
		return nil, ErrSprintDatesRequired
	}
	if !input.StartDate.Before(*input.EndDate) {
		return nil, ErrSprintDateOrder
	}

	sprint := &models.Sprint{
		Name:        name,
		Description: input.Description,
		StartDate:   *input.StartDate,
		EndDate:     *input.EndDate,
		Status:      models.SprintStatusPlanned,
		ProjectID:   input.ProjectID,
	}

	err := s.repos.WithContext(ctx).Transaction(func(tx *repository.Repositories) error {
		if _, err := tx.Projects.FindByID(input.ProjectID); err != nil {
			return lookupErr(err, ErrProjectNotFound, "project")
		}

		number, err := assignNumber(tx, models.ScopeSprint, input.ProjectID)
		if err != nil {
			return err
		}
		sprint.Number = number

		if err := tx.Sprints.Create(sprint); err != nil {
			return fmt.Errorf("failed to create sprint: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sprint, nil
}

// ListSprints returns the project's sprints by number with their user stories
func (s *SprintService) ListSprints(ctx context.Context, projectID uint64) ([]models.Sprint, error) {
	sprints, err := s.repos.WithContext(ctx).Sprints.ListByProject(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sprints: %w", err)
	}
	return sprints, nil
}

// GetSprint returns a sprint of the project with its user stories
func (s *SprintService) GetSprint(ctx context.Context, projectID, sprintID uint64) (*models.Sprint, error) {
	sprint, err := s.repos.WithContext(ctx).Sprints.FindWithUserStories(sprintID)
	if err != nil {
		return nil, lookupErr(err, ErrSprintNotFound, "sprint")
	}
	if sprint.ProjectID != projectID {
		return nil, ErrSprintNotFound
	}
	return sprint, nil
}

// UpdateSprint applies the patch and re-checks the date order on the
// resulting pair. Status never changes here.
func (s *SprintService) UpdateSprint(ctx context.Context, projectID, sprintID uint64, input UpdateSprintInput) (*models.Sprint, error) {
	repos := s.repos.WithContext(ctx)
	sprint, err := findSprint(repos, projectID, sprintID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrSprintNameRequired
		}
		sprint.Name = name
	}
	if input.Description != nil {
		sprint.Description = *input.Description
	}
	if input.StartDate != nil {
		sprint.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		sprint.EndDate = *input.EndDate
	}
	if !sprint.StartDate.Before(sprint.EndDate) {
		return nil, ErrSprintDateOrder
	}

	if err := repos.Sprints.Update(sprint); err != nil {
		return nil, fmt.Errorf("failed to update sprint: %w", err)
	}
	return sprint, nil
}

// StartSprint moves a planned sprint to active
func (s *SprintService) StartSprint(ctx context.Context, projectID, sprintID uint64) (*models.Sprint, error) {
	repos := s.repos.WithContext(ctx)
	sprint, err := findSprint(repos, projectID, sprintID)
	if err != nil {
		return nil, err
	}

	if !sprint.Start() {
		return nil, ErrSprintNotPlanned
	}

	if err := repos.Sprints.Update(sprint); err != nil {
		return nil, fmt.Errorf("failed to start sprint: %w", err)
	}
	return sprint, nil
}

// CompleteSprint closes an active sprint now and cuts its release. The status
// change and the new version commit together or not at all. Completion sets
// EndDate to now, so a sprint whose StartDate is not yet in the past is
// rejected to keep StartDate before EndDate.
func (s *SprintService) CompleteSprint(ctx context.Context, projectID, sprintID uint64, input CompleteSprintInput) (*models.Sprint, *models.Version, error) {
	bump := input.Type
	if bump == "" {
		bump = models.VersionMinor
	}

	var (
		sprint  *models.Sprint
		version *models.Version
	)
	err := s.repos.WithContext(ctx).Transaction(func(tx *repository.Repositories) error {
		var err error
		sprint, err = findSprint(tx, projectID, sprintID)
		if err != nil {
			return err
		}

		now := s.now()
		if sprint.Status == models.SprintStatusActive && !sprint.StartDate.Before(now) {
			return ErrSprintNotStartedYet
		}
		if !sprint.Complete(now) {
			return ErrSprintNotActive
		}
		if !bump.Valid() {
			return ErrInvalidVersionType
		}

		if err := tx.Sprints.Update(sprint); err != nil {
			return fmt.Errorf("failed to complete sprint: %w", err)
		}

		version, err = newVersion(tx, sprint, bump, input.Description, now)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return sprint, version, nil
}

// DeleteSprint removes the sprint and returns its user stories to the backlog.
// Versions cut from the sprint are kept.
func (s *SprintService) DeleteSprint(ctx context.Context, projectID, sprintID uint64) error {
	return s.repos.WithContext(ctx).Transaction(func(tx *repository.Repositories) error {
		if _, err := findSprint(tx, projectID, sprintID); err != nil {
			return err
		}
		if err := tx.UserStories.UnassignSprint(sprintID); err != nil {
			return fmt.Errorf("failed to unassign user stories: %w", err)
		}
		if err := tx.Sprints.Delete(sprintID); err != nil {
			return fmt.Errorf("failed to delete sprint: %w", err)
		}
		return nil
	})
}

// AssignUserStories puts every listed story of the sprint's project into the
// sprint. One foreign or unknown id rejects the whole request.
func (s *SprintService) AssignUserStories(ctx context.Context, projectID, sprintID uint64, storyIDs []uint64) error {
	if len(storyIDs) == 0 {
		return ErrNoUserStoriesProvided
	}

	return s.repos.WithContext(ctx).Transaction(func(tx *repository.Repositories) error {
		sprint, err := findSprint(tx, projectID, sprintID)
		if err != nil {
			return err
		}

		ids := uniqueUint64(storyIDs)
		count, err := tx.UserStories.CountInProject(sprint.ProjectID, ids)
		if err != nil {
			return fmt.Errorf("failed to verify user stories: %w", err)
		}
		if int(count) != len(ids) {
			return ErrInvalidUserStories
		}

		if err := tx.UserStories.AssignToSprint(ids, sprint.ID); err != nil {
			return fmt.Errorf("failed to assign user stories: %w", err)
		}
		return nil
	})
}

func findSprint(repos *repository.Repositories, projectID, sprintID uint64) (*models.Sprint, error) {
	sprint, err := repos.Sprints.FindByID(sprintID)
	if err != nil {
		return nil, lookupErr(err, ErrSprintNotFound, "sprint")
	}
	if sprint.ProjectID != projectID {
		return nil, ErrSprintNotFound
	}
	return sprint, nil
}
