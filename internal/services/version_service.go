package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apierrors "github.com/yukikurage/scrumboard-api/internal/errors"
	"github.com/yukikurage/scrumboard-api/internal/models"
	"github.com/yukikurage/scrumboard-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrVersionNotFound    = apierrors.NewNotFound("Version not found")
	ErrInvalidVersionType = apierrors.NewValidation("Invalid version type")
	ErrInvalidSprint      = apierrors.NewValidation("Invalid sprint for the specified project")
	ErrVersionTagExists   = apierrors.NewConflict("A version with this tag already exists for the project")
)

// VersionService handles release versions of a project
type VersionService struct {
	repos *repository.Repositories
	now   Clock
}

// NewVersionService creates a new VersionService
func NewVersionService(repos *repository.Repositories) *VersionService {
	return &VersionService{repos: repos, now: time.Now}
}

// CreateVersionInput represents input for creating a version
type CreateVersionInput struct {
	ProjectID   uint64
	SprintID    uint64
	Type        models.VersionType
	Description string
}

// UpdateVersionInput carries the mutable fields of a version. Tag and project
// are fixed once created.
type UpdateVersionInput struct {
	Description *string
	ReleaseDate *time.Time
}

// GenerateVersionTag returns the tag the project's next version would get.
// Nothing is persisted.
func (s *VersionService) GenerateVersionTag(ctx context.Context, projectID uint64, bump models.VersionType) (string, error) {
	if !bump.Valid() {
		return "", ErrInvalidVersionType
	}
	return generateVersionTag(s.repos.WithContext(ctx), projectID, bump)
}

// CreateVersion mints the next version for a sprint of the project
func (s *VersionService) CreateVersion(ctx context.Context, input CreateVersionInput) (*models.Version, error) {
	var version *models.Version
	err := s.repos.WithContext(ctx).Transaction(func(tx *repository.Repositories) error {
		sprint, err := tx.Sprints.FindByID(input.SprintID)
		if err != nil {
			return lookupErr(err, ErrInvalidSprint, "sprint")
		}
		if sprint.ProjectID != input.ProjectID {
			return ErrInvalidSprint
		}

		version, err = newVersion(tx, sprint, input.Type, input.Description, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return version, nil
}

// ListVersions returns the project's versions, newest first
func (s *VersionService) ListVersions(ctx context.Context, projectID uint64) ([]models.Version, error) {
	versions, err := s.repos.WithContext(ctx).Versions.ListByProject(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}
	return versions, nil
}

// GetVersion returns a version of the project
func (s *VersionService) GetVersion(ctx context.Context, projectID, versionID uint64) (*models.Version, error) {
	return findVersion(s.repos.WithContext(ctx), projectID, versionID)
}

// UpdateVersion changes the description and/or release date
func (s *VersionService) UpdateVersion(ctx context.Context, projectID, versionID uint64, input UpdateVersionInput) (*models.Version, error) {
	repos := s.repos.WithContext(ctx)
	version, err := findVersion(repos, projectID, versionID)
	if err != nil {
		return nil, err
	}

	if input.Description != nil {
		version.Description = *input.Description
	}
	if input.ReleaseDate != nil {
		version.ReleaseDate = *input.ReleaseDate
	}

	if err := repos.Versions.Update(version); err != nil {
		return nil, fmt.Errorf("failed to update version: %w", err)
	}
	return version, nil
}

// DeleteVersion removes a version
func (s *VersionService) DeleteVersion(ctx context.Context, projectID, versionID uint64) error {
	repos := s.repos.WithContext(ctx)
	if _, err := findVersion(repos, projectID, versionID); err != nil {
		return err
	}
	if err := repos.Versions.Delete(versionID); err != nil {
		return fmt.Errorf("failed to delete version: %w", err)
	}
	return nil
}

func findVersion(repos *repository.Repositories, projectID, versionID uint64) (*models.Version, error) {
	version, err := repos.Versions.FindByID(versionID)
	if err != nil {
		return nil, lookupErr(err, ErrVersionNotFound, "version")
	}
	if version.ProjectID != projectID {
		return nil, ErrVersionNotFound
	}
	return version, nil
}

// generateVersionTag bumps the tag of the most recently created version, or
// returns the bump's first tag when the project has none.
func generateVersionTag(repos *repository.Repositories, projectID uint64, bump models.VersionType) (string, error) {
	latest, err := repos.Versions.LatestForProject(projectID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return firstVersionTag(bump).String(), nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to find latest version: %w", err)
	}

	prev, err := parseVersionTag(latest.Tag)
	if err != nil {
		return "", err
	}
	return prev.bump(bump).String(), nil
}

// newVersion persists the next version for sprint. A duplicate tag is left
// to the (project, tag) unique index.
func newVersion(tx *repository.Repositories, sprint *models.Sprint, bump models.VersionType, description string, now time.Time) (*models.Version, error) {
	if !bump.Valid() {
		return nil, ErrInvalidVersionType
	}
	if strings.TrimSpace(description) == "" {
		description = fmt.Sprintf("Release for sprint %s", sprint.Name)
	}

	tag, err := generateVersionTag(tx, sprint.ProjectID, bump)
	if err != nil {
		return nil, err
	}

	sprintID := sprint.ID
	version := &models.Version{
		ProjectID:   sprint.ProjectID,
		Tag:         tag,
		Description: description,
		ReleaseDate: now,
		SprintID:    &sprintID,
	}
	if err := tx.Versions.Create(version); err != nil {
		return nil, writeErr(err, ErrVersionTagExists, "create version")
	}
	return version, nil
}
