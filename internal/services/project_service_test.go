package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apierrors "github.com/yukikurage/scrumboard-api/internal/errors"
	"github.com/yukikurage/scrumboard-api/internal/models"
	"github.com/yukikurage/scrumboard-api/internal/utils"
)

func TestCreateProjectAddsOwnerAsScrumMaster(t *testing.T) {
	env := setupServiceTestEnv(t)
	owner := env.createUser(t, "alice")

	project := env.createProject(t, owner, "Apollo")

	members, err := env.projects.ListMembers(env.ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, owner.ID, members[0].UserID)
	assert.Equal(t, models.RoleScrumMaster, members[0].Role)
	assert.Equal(t, "alice", members[0].User.Username)
}

func TestCreateProjectNameUniquePerOwner(t *testing.T) {
	env := setupServiceTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	env.createProject(t, alice, "Apollo")

	_, err := env.projects.CreateProject(env.ctx, CreateProjectInput{Name: "Apollo", OwnerID: alice.ID})
	require.EqualError(t, err, "A project with this name already exists")
	require.Equal(t, apierrors.KindConflict, apierrors.KindOf(err))

	_, err = env.projects.CreateProject(env.ctx, CreateProjectInput{Name: "Apollo", OwnerID: bob.ID})
	require.NoError(t, err)

	_, err = env.projects.CreateProject(env.ctx, CreateProjectInput{Name: " ", OwnerID: bob.ID})
	require.ErrorIs(t, err, ErrProjectNameRequired)
}

func TestUpdateProjectRechecksName(t *testing.T) {
	env := setupServiceTestEnv(t)
	alice := env.createUser(t, "alice")
	apollo := env.createProject(t, alice, "Apollo")
	env.createProject(t, alice, "Gemini")

	_, err := env.projects.UpdateProject(env.ctx, apollo.ID, UpdateProjectInput{Name: ptr("Gemini")})
	require.ErrorIs(t, err, ErrProjectNameTaken)

	updated, err := env.projects.UpdateProject(env.ctx, apollo.ID, UpdateProjectInput{Name: ptr("Apollo"), Description: ptr("moon")})
	require.NoError(t, err)
	assert.Equal(t, "moon", updated.Description)
}

func TestListProjectsIncludesMemberships(t *testing.T) {
	env := setupServiceTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	env.createProject(t, alice, "Apollo")
	gemini := env.createProject(t, bob, "Gemini")
	env.createProject(t, bob, "Mercury")
	_, err := env.projects.AddMember(env.ctx, gemini.ID, "alice", models.RoleViewer)
	require.NoError(t, err)

	projects, total, err := env.projects.ListProjects(env.ctx, alice.ID, utils.NewPaginationParams(1, 20))
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, projects, 2)

	projects, total, err = env.projects.ListProjects(env.ctx, alice.ID, utils.NewPaginationParams(2, 1))
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, projects, 1)
}

func TestAddMember(t *testing.T) {
	env := setupServiceTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	carol := env.createUser(t, "carol")
	project := env.createProject(t, alice, "Apollo")

	member, err := env.projects.AddMember(env.ctx, project.ID, "bob", "")
	require.NoError(t, err)
	assert.Equal(t, bob.ID, member.UserID)
	assert.Equal(t, models.RoleDeveloper, member.Role)

	member, err = env.projects.AddMember(env.ctx, project.ID, "CAROL@example.com", models.RoleViewer)
	require.NoError(t, err)
	assert.Equal(t, carol.ID, member.UserID)
	assert.Equal(t, models.RoleViewer, member.Role)

	_, err = env.projects.AddMember(env.ctx, project.ID, "bob@example.com", "")
	require.ErrorIs(t, err, ErrAlreadyProjectMember)

	_, err = env.projects.AddMember(env.ctx, project.ID, "nobody", "")
	require.ErrorIs(t, err, ErrUserNotFound)

	_, err = env.projects.AddMember(env.ctx, project.ID, "bob", "Chief")
	require.ErrorIs(t, err, ErrInvalidRole)
}

func TestRemoveMember(t *testing.T) {
	env := setupServiceTestEnv(t)
	alice := env.createUser(t, "alice")
	env.createUser(t, "bob")
	env.createUser(t, "dave")
	project := env.createProject(t, alice, "Apollo")
	_, err := env.projects.AddMember(env.ctx, project.ID, "bob", "")
	require.NoError(t, err)

	require.ErrorIs(t, env.projects.RemoveMember(env.ctx, project.ID, "nobody"), ErrUserNotFound)
	require.ErrorIs(t, env.projects.RemoveMember(env.ctx, project.ID, "dave"), ErrNotProjectMember)

	require.NoError(t, env.projects.RemoveMember(env.ctx, project.ID, "bob"))
	members, err := env.projects.ListMembers(env.ctx, project.ID)
	require.NoError(t, err)
	assert.Len(t, members, 1)
}

func TestOwnerCannotBeRemovedWhateverTheRole(t *testing.T) {
	env := setupServiceTestEnv(t)
	alice := env.createUser(t, "alice")
	project := env.createProject(t, alice, "Apollo")

	for _, role := range []models.ProjectRole{models.RoleScrumMaster, models.RoleDeveloper, models.RoleViewer} {
		require.NoError(t, env.repos.Projects.UpdateMemberRole(project.ID, alice.ID, role))

		err := env.projects.RemoveMember(env.ctx, project.ID, "alice")
		require.EqualError(t, err, "You cannot remove the project owner.")
		err = env.projects.RemoveMember(env.ctx, project.ID, "alice@example.com")
		require.EqualError(t, err, "You cannot remove the project owner.")
	}

	// also when the owner is missing from the member list
	require.NoError(t, env.repos.Projects.RemoveMember(project.ID, alice.ID))
	require.ErrorIs(t, env.projects.RemoveMember(env.ctx, project.ID, "alice"), ErrCannotRemoveOwner)
}

func TestChangeMemberRole(t *testing.T) {
	env := setupServiceTestEnv(t)
	alice := env.createUser(t, "alice")
	env.createUser(t, "bob")
	env.createUser(t, "dave")
	project := env.createProject(t, alice, "Apollo")
	_, err := env.projects.AddMember(env.ctx, project.ID, "bob", "")
	require.NoError(t, err)

	_, err = env.projects.ChangeMemberRole(env.ctx, project.ID, "nobody", models.RoleViewer)
	require.ErrorIs(t, err, ErrUserNotFound)

	_, err = env.projects.ChangeMemberRole(env.ctx, project.ID, "dave", models.RoleViewer)
	require.ErrorIs(t, err, ErrNotProjectMember)

	_, err = env.projects.ChangeMemberRole(env.ctx, project.ID, "alice", models.RoleViewer)
	require.ErrorIs(t, err, ErrCannotChangeOwnerRole)

	_, err = env.projects.ChangeMemberRole(env.ctx, project.ID, "bob", "Chief")
	require.ErrorIs(t, err, ErrInvalidRole)

	member, err := env.projects.ChangeMemberRole(env.ctx, project.ID, "bob", models.RoleScrumMaster)
	require.NoError(t, err)
	assert.Equal(t, models.RoleScrumMaster, member.Role)

	stored, err := env.repos.Projects.FindMember(project.ID, member.UserID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleScrumMaster, stored.Role)
}
