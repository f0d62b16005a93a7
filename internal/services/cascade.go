package services

import (
	"context"
	"fmt"

	apierrors "github.com/yukikurage/scrumboard-api/internal/errors"
	"github.com/yukikurage/scrumboard-api/internal/models"
	"github.com/yukikurage/scrumboard-api/internal/repository"
)

var (
	ErrProjectNotFound   = apierrors.NewNotFound("Project not found")
	ErrUserStoryNotFound = apierrors.NewNotFound("User story not found")
)

// CascadeDeleter removes an entity together with everything it owns in a
// single transaction. Either the whole tree goes or nothing does.
type CascadeDeleter struct {
	repos *repository.Repositories
}

// NewCascadeDeleter creates a new CascadeDeleter
func NewCascadeDeleter(repos *repository.Repositories) *CascadeDeleter {
	return &CascadeDeleter{repos: repos}
}

// DeleteProject deletes the project with its versions, sprints, user stories,
// tasks, members and sequence counters.
func (d *CascadeDeleter) DeleteProject(ctx context.Context, projectID uint64) error {
	return d.repos.WithContext(ctx).Transaction(func(tx *repository.Repositories) error {
		if _, err := tx.Projects.FindByID(projectID); err != nil {
			return lookupErr(err, ErrProjectNotFound, "project")
		}
		return deleteProjectTree(tx, projectID)
	})
}

// DeleteUserStory deletes the user story and its tasks. Sprints and versions
// are left alone.
func (d *CascadeDeleter) DeleteUserStory(ctx context.Context, projectID, storyID uint64) error {
	return d.repos.WithContext(ctx).Transaction(func(tx *repository.Repositories) error {
		story, err := tx.UserStories.FindByID(storyID)
		if err != nil {
			return lookupErr(err, ErrUserStoryNotFound, "user story")
		}
		if story.ProjectID != projectID {
			return ErrUserStoryNotFound
		}
		return deleteUserStoryTree(tx, storyID)
	})
}

func deleteProjectTree(tx *repository.Repositories, projectID uint64) error {
	storyIDs, err := tx.UserStories.IDsByProject(projectID)
	if err != nil {
		return fmt.Errorf("failed to list user stories: %w", err)
	}

	steps := []struct {
		what string
		run  func() error
	}{
		{"tasks", func() error { return tx.Tasks.DeleteByProject(projectID) }},
		{"task counters", func() error { return tx.Sequences.DeleteScopes(models.ScopeTask, storyIDs) }},
		{"user stories", func() error { return tx.UserStories.DeleteByProject(projectID) }},
		{"sprints", func() error { return tx.Sprints.DeleteByProject(projectID) }},
		{"versions", func() error { return tx.Versions.DeleteByProject(projectID) }},
		{"project counters", func() error {
			if err := tx.Sequences.DeleteScopes(models.ScopeSprint, []uint64{projectID}); err != nil {
				return err
			}
			return tx.Sequences.DeleteScopes(models.ScopeUserStory, []uint64{projectID})
		}},
		{"members", func() error { return tx.Projects.DeleteMembers(projectID) }},
		{"project", func() error { return tx.Projects.Delete(projectID) }},
	}

	for _, step := range steps {
		if err := step.run(); err != nil {
			return fmt.Errorf("failed to delete %s: %w", step.what, err)
		}
	}
	return nil
}

func deleteUserStoryTree(tx *repository.Repositories, storyID uint64) error {
	if err := tx.Tasks.DeleteByUserStory(storyID); err != nil {
		return fmt.Errorf("failed to delete tasks: %w", err)
	}
	if err := tx.Sequences.DeleteScopes(models.ScopeTask, []uint64{storyID}); err != nil {
		return fmt.Errorf("failed to delete task counter: %w", err)
	}
	if err := tx.UserStories.Delete(storyID); err != nil {
		return fmt.Errorf("failed to delete user story: %w", err)
	}
	return nil
}
