package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apierrors "github.com/yukikurage/scrumboard-api/internal/errors"
	"github.com/yukikurage/scrumboard-api/internal/models"
)

func TestCreateSprintValidation(t *testing.T) {
	env := setupServiceTestEnv(t)
	owner := env.createUser(t, "alice")
	project := env.createProject(t, owner, "Apollo")

	start := testNow
	end := testNow.Add(24 * time.Hour)

	cases := []struct {
		name  string
		input CreateSprintInput
		want  error
	}{
		{"missing name", CreateSprintInput{StartDate: &start, EndDate: &end}, ErrSprintNameRequired},
		{"blank name", CreateSprintInput{Name: "  ", StartDate: &start, EndDate: &end}, ErrSprintNameRequired},
		{"missing start", CreateSprintInput{Name: "S1", EndDate: &end}, ErrSprintDatesRequired},
		{"missing end", CreateSprintInput{Name: "S1", StartDate: &start}, ErrSprintDatesRequired},
		{"equal dates", CreateSprintInput{Name: "S1", StartDate: &start, EndDate: &start}, ErrSprintDateOrder},
		{"reversed dates", CreateSprintInput{Name: "S1", StartDate: &end, EndDate: &start}, ErrSprintDateOrder},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.input.ProjectID = project.ID
			_, err := env.sprints.CreateSprint(env.ctx, tc.input)
			require.ErrorIs(t, err, tc.want)
			require.Equal(t, apierrors.KindValidation, apierrors.KindOf(err))
		})
	}

	require.Zero(t, countRows(t, env.db, &models.Sprint{}, "project_id = ?", project.ID))
}

func TestCreateSprintUnknownProject(t *testing.T) {
	env := setupServiceTestEnv(t)
	start := testNow
	end := testNow.Add(time.Hour)

	_, err := env.sprints.CreateSprint(env.ctx, CreateSprintInput{ProjectID: 99, Name: "S1", StartDate: &start, EndDate: &end})
	require.ErrorIs(t, err, ErrProjectNotFound)
}

func TestCreateSprintIsPlanned(t *testing.T) {
	env := setupServiceTestEnv(t)
	owner := env.createUser(t, "alice")
	project := env.createProject(t, owner, "Apollo")

	sprint := env.createSprint(t, project.ID, "Sprint 1")
	assert.Equal(t, models.SprintStatusPlanned, sprint.Status)
	assert.Equal(t, 1, sprint.Number)
}

func TestUpdateSprintRevalidatesEffectiveDates(t *testing.T) {
	env := setupServiceTestEnv(t)
	owner := env.createUser(t, "alice")
	project := env.createProject(t, owner, "Apollo")
	sprint := env.createSprint(t, project.ID, "Sprint 1")

	// only the start moves, past the stored end
	tooLate := sprint.EndDate.Add(time.Hour)
	_, err := env.sprints.UpdateSprint(env.ctx, project.ID, sprint.ID, UpdateSprintInput{StartDate: &tooLate})
	require.ErrorIs(t, err, ErrSprintDateOrder)

	tooEarly := sprint.StartDate.Add(-time.Hour)
	_, err = env.sprints.UpdateSprint(env.ctx, project.ID, sprint.ID, UpdateSprintInput{EndDate: &tooEarly})
	require.ErrorIs(t, err, ErrSprintDateOrder)

	// both move together into a valid pair
	newStart := sprint.EndDate.Add(24 * time.Hour)
	newEnd := newStart.Add(14 * 24 * time.Hour)
	updated, err := env.sprints.UpdateSprint(env.ctx, project.ID, sprint.ID, UpdateSprintInput{
		Name:      ptr("Renamed"),
		StartDate: &newStart,
		EndDate:   &newEnd,
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, models.SprintStatusPlanned, updated.Status)

	stored, err := env.sprints.GetSprint(env.ctx, project.ID, sprint.ID)
	require.NoError(t, err)
	assert.True(t, stored.StartDate.Equal(newStart))
	assert.True(t, stored.EndDate.Equal(newEnd))
}

func TestStartSprintOnlyFromPlanned(t *testing.T) {
	env := setupServiceTestEnv(t)
	owner := env.createUser(t, "alice")
	project := env.createProject(t, owner, "Apollo")
	sprint := env.createSprint(t, project.ID, "Sprint 1")

	started, err := env.sprints.StartSprint(env.ctx, project.ID, sprint.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SprintStatusActive, started.Status)

	_, err = env.sprints.StartSprint(env.ctx, project.ID, sprint.ID)
	require.ErrorIs(t, err, ErrSprintNotPlanned)
	require.EqualError(t, err, "Only planned sprints can be started")

	_, _, err = env.sprints.CompleteSprint(env.ctx, project.ID, sprint.ID, CompleteSprintInput{})
	require.NoError(t, err)

	_, err = env.sprints.StartSprint(env.ctx, project.ID, sprint.ID)
	require.EqualError(t, err, "Only planned sprints can be started")
}

func TestCompleteSprintOnlyFromActive(t *testing.T) {
	env := setupServiceTestEnv(t)
	owner := env.createUser(t, "alice")
	project := env.createProject(t, owner, "Apollo")
	sprint := env.createSprint(t, project.ID, "Sprint 1")

	_, _, err := env.sprints.CompleteSprint(env.ctx, project.ID, sprint.ID, CompleteSprintInput{})
	require.EqualError(t, err, "Only active sprints can be completed")
	require.Equal(t, apierrors.KindInvalidState, apierrors.KindOf(err))
	require.Zero(t, countRows(t, env.db, &models.Version{}, "project_id = ?", project.ID))

	_, err = env.sprints.StartSprint(env.ctx, project.ID, sprint.ID)
	require.NoError(t, err)
	_, _, err = env.sprints.CompleteSprint(env.ctx, project.ID, sprint.ID, CompleteSprintInput{})
	require.NoError(t, err)

	_, _, err = env.sprints.CompleteSprint(env.ctx, project.ID, sprint.ID, CompleteSprintInput{})
	require.EqualError(t, err, "Only active sprints can be completed")
	require.EqualValues(t, 1, countRows(t, env.db, &models.Version{}, "project_id = ?", project.ID))
}

func TestCompleteSprintDefaultsToMinorRelease(t *testing.T) {
	env := setupServiceTestEnv(t)
	owner := env.createUser(t, "alice")
	project := env.createProject(t, owner, "Apollo")
	sprint := env.createSprint(t, project.ID, "Sprint 1")
	_, err := env.sprints.StartSprint(env.ctx, project.ID, sprint.ID)
	require.NoError(t, err)

	completed, version, err := env.sprints.CompleteSprint(env.ctx, project.ID, sprint.ID, CompleteSprintInput{})
	require.NoError(t, err)

	assert.Equal(t, models.SprintStatusCompleted, completed.Status)
	assert.True(t, completed.EndDate.Equal(testNow))
	assert.Equal(t, "v0.1.0", version.Tag)
	assert.Equal(t, "Release for sprint Sprint 1", version.Description)
	assert.True(t, version.ReleaseDate.Equal(testNow))
	require.NotNil(t, version.SprintID)
	assert.Equal(t, sprint.ID, *version.SprintID)

	stored, err := env.sprints.GetSprint(env.ctx, project.ID, sprint.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SprintStatusCompleted, stored.Status)
}

func TestCompleteSprintBumpsFromLatestVersion(t *testing.T) {
	env := setupServiceTestEnv(t)
	owner := env.createUser(t, "alice")
	project := env.createProject(t, owner, "Apollo")
	env.insertVersion(t, project.ID, "v1.2.3", testNow.Add(-time.Hour))

	sprint := env.createSprint(t, project.ID, "Sprint 1")
	_, err := env.sprints.StartSprint(env.ctx, project.ID, sprint.ID)
	require.NoError(t, err)

	_, version, err := env.sprints.CompleteSprint(env.ctx, project.ID, sprint.ID, CompleteSprintInput{
		Type:        models.VersionMajor,
		Description: "Big bang",
	})
	require.NoError(t, err)
	assert.Equal(t, "v2.0.0", version.Tag)
	assert.Equal(t, "Big bang", version.Description)
}

func TestCompleteSprintInvalidTypePersistsNothing(t *testing.T) {
	env := setupServiceTestEnv(t)
	owner := env.createUser(t, "alice")
	project := env.createProject(t, owner, "Apollo")
	sprint := env.createSprint(t, project.ID, "Sprint 1")
	_, err := env.sprints.StartSprint(env.ctx, project.ID, sprint.ID)
	require.NoError(t, err)

	_, _, err = env.sprints.CompleteSprint(env.ctx, project.ID, sprint.ID, CompleteSprintInput{Type: "huge"})
	require.EqualError(t, err, "Invalid version type")

	stored, err := env.sprints.GetSprint(env.ctx, project.ID, sprint.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SprintStatusActive, stored.Status)
	assert.True(t, stored.EndDate.Equal(sprint.EndDate))
	require.Zero(t, countRows(t, env.db, &models.Version{}, "project_id = ?", project.ID))
}

func TestCompleteSprintChecksStateBeforeType(t *testing.T) {
	env := setupServiceTestEnv(t)
	owner := env.createUser(t, "alice")
	project := env.createProject(t, owner, "Apollo")
	sprint := env.createSprint(t, project.ID, "Sprint 1")

	_, _, err := env.sprints.CompleteSprint(env.ctx, project.ID, sprint.ID, CompleteSprintInput{Type: "bogus"})
	require.ErrorIs(t, err, ErrSprintNotActive)

	_, _, err = env.sprints.CompleteSprint(env.ctx, project.ID, 9999, CompleteSprintInput{Type: "bogus"})
	require.ErrorIs(t, err, ErrSprintNotFound)

	stored, err := env.sprints.GetSprint(env.ctx, project.ID, sprint.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SprintStatusPlanned, stored.Status)
	require.Zero(t, countRows(t, env.db, &models.Version{}, "project_id = ?", project.ID))
}

func TestCompleteSprintRollsBackWhenVersionFails(t *testing.T) {
	env := setupServiceTestEnv(t)
	owner := env.createUser(t, "alice")
	project := env.createProject(t, owner, "Apollo")
	// next minor after v0.1.0 would be v0.2.0, which is already taken
	env.insertVersion(t, project.ID, "v0.2.0", testNow.Add(-2*time.Hour))
	env.insertVersion(t, project.ID, "v0.1.0", testNow.Add(-time.Hour))

	sprint := env.createSprint(t, project.ID, "Sprint 1")
	_, err := env.sprints.StartSprint(env.ctx, project.ID, sprint.ID)
	require.NoError(t, err)

	_, _, err = env.sprints.CompleteSprint(env.ctx, project.ID, sprint.ID, CompleteSprintInput{})
	require.ErrorIs(t, err, ErrVersionTagExists)

	stored, err := env.sprints.GetSprint(env.ctx, project.ID, sprint.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SprintStatusActive, stored.Status)
}

func TestCompleteSprintBeforeStartDate(t *testing.T) {
	env := setupServiceTestEnv(t)
	owner := env.createUser(t, "alice")
	project := env.createProject(t, owner, "Apollo")

	start := testNow.Add(24 * time.Hour)
	end := testNow.Add(8 * 24 * time.Hour)
	sprint, err := env.sprints.CreateSprint(env.ctx, CreateSprintInput{ProjectID: project.ID, Name: "Future", StartDate: &start, EndDate: &end})
	require.NoError(t, err)
	_, err = env.sprints.StartSprint(env.ctx, project.ID, sprint.ID)
	require.NoError(t, err)

	_, _, err = env.sprints.CompleteSprint(env.ctx, project.ID, sprint.ID, CompleteSprintInput{})
	require.ErrorIs(t, err, ErrSprintNotStartedYet)
}

func TestDeleteSprintUnassignsStories(t *testing.T) {
	env := setupServiceTestEnv(t)
	owner := env.createUser(t, "alice")
	project := env.createProject(t, owner, "Apollo")
	sprint := env.createSprint(t, project.ID, "Sprint 1")
	story := env.createStory(t, project.ID, "Login")
	require.NoError(t, env.sprints.AssignUserStories(env.ctx, project.ID, sprint.ID, []uint64{story.ID}))

	require.NoError(t, env.sprints.DeleteSprint(env.ctx, project.ID, sprint.ID))

	_, err := env.sprints.GetSprint(env.ctx, project.ID, sprint.ID)
	require.ErrorIs(t, err, ErrSprintNotFound)

	stored, err := env.stories.GetUserStory(env.ctx, project.ID, story.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.SprintID)
}

func TestAssignUserStories(t *testing.T) {
	env := setupServiceTestEnv(t)
	owner := env.createUser(t, "alice")
	project := env.createProject(t, owner, "Apollo")
	other := env.createProject(t, owner, "Gemini")
	sprint := env.createSprint(t, project.ID, "Sprint 1")
	a := env.createStory(t, project.ID, "a")
	b := env.createStory(t, project.ID, "b")
	foreign := env.createStory(t, other.ID, "foreign")

	t.Run("empty list", func(t *testing.T) {
		err := env.sprints.AssignUserStories(env.ctx, project.ID, sprint.ID, nil)
		require.ErrorIs(t, err, ErrNoUserStoriesProvided)
	})

	t.Run("cross project id", func(t *testing.T) {
		err := env.sprints.AssignUserStories(env.ctx, project.ID, sprint.ID, []uint64{a.ID, foreign.ID})
		require.EqualError(t, err, "Some user stories are invalid or do not belong to the sprint's project")
		require.Zero(t, countRows(t, env.db, &models.UserStory{}, "sprint_id = ?", sprint.ID))
	})

	t.Run("unknown id", func(t *testing.T) {
		err := env.sprints.AssignUserStories(env.ctx, project.ID, sprint.ID, []uint64{a.ID, 9999})
		require.ErrorIs(t, err, ErrInvalidUserStories)
	})

	t.Run("success with duplicates", func(t *testing.T) {
		err := env.sprints.AssignUserStories(env.ctx, project.ID, sprint.ID, []uint64{a.ID, b.ID, a.ID})
		require.NoError(t, err)

		loaded, err := env.sprints.GetSprint(env.ctx, project.ID, sprint.ID)
		require.NoError(t, err)
		require.Len(t, loaded.UserStories, 2)
		assert.Equal(t, "a", loaded.UserStories[0].Title)
	})
}

func TestSprintScopedToProject(t *testing.T) {
	env := setupServiceTestEnv(t)
	owner := env.createUser(t, "alice")
	project := env.createProject(t, owner, "Apollo")
	other := env.createProject(t, owner, "Gemini")
	sprint := env.createSprint(t, project.ID, "Sprint 1")

	_, err := env.sprints.StartSprint(env.ctx, other.ID, sprint.ID)
	require.ErrorIs(t, err, ErrSprintNotFound)
}
