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
	"github.com/yukikurage/scrumboard-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrProjectNameRequired   = apierrors.NewValidation("Project name is required")
	ErrProjectNameTaken      = apierrors.NewConflict("A project with this name already exists")
	ErrUserNotFound          = apierrors.NewNotFound("User not found")
	ErrAlreadyProjectMember  = apierrors.NewConflict("User is already a member of this project")
	ErrNotProjectMember      = apierrors.NewNotFound("User is not a member of this project")
	ErrCannotRemoveOwner     = apierrors.NewConflict("You cannot remove the project owner.")
	ErrCannotChangeOwnerRole = apierrors.NewConflict("You cannot change the role of the project owner.")
	ErrInvalidRole           = apierrors.NewValidation("Invalid role")
)

// ProjectService provides business logic for projects and their membership.
type ProjectService struct {
	repos   *repository.Repositories
	cascade *CascadeDeleter
	now     Clock
}

// NewProjectService creates a new ProjectService.
func NewProjectService(repos *repository.Repositories, cascade *CascadeDeleter) *ProjectService {
	return &ProjectService{repos: repos, cascade: cascade, now: time.Now}
}

// CreateProjectInput represents parameters to create a new project.
type CreateProjectInput struct {
	Name        string
	Description string
	OwnerID     uint64
}

// UpdateProjectInput holds the fields to patch.
type UpdateProjectInput struct {
	Name        *string
	Description *string
}

// CreateProject creates a project and adds the creator as Scrum Master.
func (s *ProjectService) CreateProject(ctx context.Context, input CreateProjectInput) (*models.Project, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrProjectNameRequired
	}

	project := &models.Project{
		Name:        name,
		Description: input.Description,
		OwnerID:     input.OwnerID,
	}

	err := s.repos.WithContext(ctx).Transaction(func(tx *repository.Repositories) error {
		if err := ensureProjectNameFree(tx, input.OwnerID, name, 0); err != nil {
			return err
		}
		if err := tx.Projects.Create(project); err != nil {
			return writeErr(err, ErrProjectNameTaken, "create project")
		}

		member := &models.ProjectMember{
			ProjectID: project.ID,
			UserID:    input.OwnerID,
			Role:      models.RoleScrumMaster,
			JoinedAt:  s.now(),
		}
		if err := tx.Projects.AddMember(member); err != nil {
			return fmt.Errorf("failed to add owner to project: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

// ListProjects returns projects the user owns or belongs to.
func (s *ProjectService) ListProjects(ctx context.Context, userID uint64, params utils.PaginationParams) ([]models.Project, int64, error) {
	projects, total, err := s.repos.WithContext(ctx).Projects.ListForUser(userID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, total, nil
}

// GetProject returns a project with its owner and members.
func (s *ProjectService) GetProject(ctx context.Context, projectID uint64) (*models.Project, error) {
	project, err := s.repos.WithContext(ctx).Projects.FindByID(projectID, "Owner", "Members", "Members.User")
	if err != nil {
		return nil, lookupErr(err, ErrProjectNotFound, "project")
	}
	return project, nil
}

// UpdateProject renames or re-describes a project.
func (s *ProjectService) UpdateProject(ctx context.Context, projectID uint64, input UpdateProjectInput) (*models.Project, error) {
	var project *models.Project
	err := s.repos.WithContext(ctx).Transaction(func(tx *repository.Repositories) error {
		var err error
		project, err = tx.Projects.FindByID(projectID)
		if err != nil {
			return lookupErr(err, ErrProjectNotFound, "project")
		}

		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return ErrProjectNameRequired
			}
			if err := ensureProjectNameFree(tx, project.OwnerID, name, project.ID); err != nil {
				return err
			}
			project.Name = name
		}
		if input.Description != nil {
			project.Description = *input.Description
		}

		if err := tx.Projects.Update(project); err != nil {
			return writeErr(err, ErrProjectNameTaken, "update project")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

// DeleteProject removes the project and everything it owns.
func (s *ProjectService) DeleteProject(ctx context.Context, projectID uint64) error {
	return s.cascade.DeleteProject(ctx, projectID)
}

// ListMembers returns the project's members in join order.
func (s *ProjectService) ListMembers(ctx context.Context, projectID uint64) ([]models.ProjectMember, error) {
	members, err := s.repos.WithContext(ctx).Projects.ListMembers(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project members: %w", err)
	}
	return members, nil
}

// AddMember adds the user named by identifier (username, then email) with
// role, defaulting to Developer.
func (s *ProjectService) AddMember(ctx context.Context, projectID uint64, identifier string, role models.ProjectRole) (*models.ProjectMember, error) {
	if role == "" {
		role = models.RoleDeveloper
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	var member *models.ProjectMember
	err := s.repos.WithContext(ctx).Transaction(func(tx *repository.Repositories) error {
		if _, err := tx.Projects.FindByID(projectID); err != nil {
			return lookupErr(err, ErrProjectNotFound, "project")
		}

		user, err := resolveUser(tx.Users, identifier)
		if err != nil {
			return err
		}

		if _, err := tx.Projects.FindMember(projectID, user.ID); err == nil {
			return ErrAlreadyProjectMember
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to verify membership: %w", err)
		}

		member = &models.ProjectMember{
			ProjectID: projectID,
			UserID:    user.ID,
			Role:      role,
			JoinedAt:  s.now(),
			User:      *user,
		}
		if err := tx.Projects.AddMember(member); err != nil {
			return writeErr(err, ErrAlreadyProjectMember, "add member")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

// RemoveMember removes the user named by identifier. The owner can never be
// removed, whatever their role.
func (s *ProjectService) RemoveMember(ctx context.Context, projectID uint64, identifier string) error {
	return s.repos.WithContext(ctx).Transaction(func(tx *repository.Repositories) error {
		project, user, err := resolveProjectUser(tx, projectID, identifier)
		if err != nil {
			return err
		}
		if project.IsOwner(user.ID) {
			return ErrCannotRemoveOwner
		}
		if _, err := tx.Projects.FindMember(projectID, user.ID); err != nil {
			return lookupErr(err, ErrNotProjectMember, "project member")
		}

		if err := tx.Projects.RemoveMember(projectID, user.ID); err != nil {
			return fmt.Errorf("failed to remove member: %w", err)
		}
		return nil
	})
}

// ChangeMemberRole sets a member's role. The owner's role is fixed.
func (s *ProjectService) ChangeMemberRole(ctx context.Context, projectID uint64, identifier string, role models.ProjectRole) (*models.ProjectMember, error) {
	var member *models.ProjectMember
	err := s.repos.WithContext(ctx).Transaction(func(tx *repository.Repositories) error {
		project, user, err := resolveProjectUser(tx, projectID, identifier)
		if err != nil {
			return err
		}
		if project.IsOwner(user.ID) {
			return ErrCannotChangeOwnerRole
		}
		member, err = tx.Projects.FindMember(projectID, user.ID)
		if err != nil {
			return lookupErr(err, ErrNotProjectMember, "project member")
		}
		if !role.Valid() {
			return ErrInvalidRole
		}

		if err := tx.Projects.UpdateMemberRole(projectID, user.ID, role); err != nil {
			return fmt.Errorf("failed to change member role: %w", err)
		}
		member.Role = role
		member.User = *user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

func resolveProjectUser(tx *repository.Repositories, projectID uint64, identifier string) (*models.Project, *models.User, error) {
	project, err := tx.Projects.FindByID(projectID)
	if err != nil {
		return nil, nil, lookupErr(err, ErrProjectNotFound, "project")
	}
	user, err := resolveUser(tx.Users, identifier)
	if err != nil {
		return nil, nil, err
	}
	return project, user, nil
}

// resolveUser looks identifier up as a username first, then as an email.
func resolveUser(users repository.UserRepository, identifier string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, ErrUserNotFound
	}

	user, err := users.FindByUsername(identifier)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	user, err = users.FindByEmail(strings.ToLower(identifier))
	if err != nil {
		return nil, lookupErr(err, ErrUserNotFound, "user")
	}
	return user, nil
}

// isProjectParticipant reports whether userID owns or belongs to the project.
func isProjectParticipant(tx *repository.Repositories, project *models.Project, userID uint64) (bool, error) {
	if project.IsOwner(userID) {
		return true, nil
	}
	if _, err := tx.Projects.FindMember(project.ID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to verify membership: %w", err)
	}
	return true, nil
}

func ensureProjectNameFree(tx *repository.Repositories, ownerID uint64, name string, selfID uint64) error {
	existing, err := tx.Projects.FindByOwnerAndName(ownerID, name)
	if err == nil {
		if existing.ID != selfID {
			return ErrProjectNameTaken
		}
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check project name: %w", err)
	}
	return nil
}
