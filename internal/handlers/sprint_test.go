package handlers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/scrumboard-api/internal/dto"
	"github.com/yukikurage/scrumboard-api/internal/models"
)

type sprintResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Sprint  dto.SprintDTO `json:"sprint"`
}

func createSprintRequest(t *testing.T, env *handlerTestEnv, as testSession, base, name string) dto.SprintDTO {
	t.Helper()
	now := time.Now().UTC()
	w := env.do(t, http.MethodPost, base+"/sprints", &as, map[string]interface{}{
		"name":      name,
		"startDate": now.Add(-24 * time.Hour),
		"endDate":   now.Add(36 * time.Hour),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decode[sprintResponse](t, w)
	require.Equal(t, "Sprint created successfully", resp.Message)
	return resp.Sprint
}

func TestSprintHandler_Lifecycle(t *testing.T) {
	env := setupHandlerTestEnv(t)
	owner := env.signup(t, "owner")
	projectID := env.createProject(t, owner, "Artemis")
	base := fmt.Sprintf("/api/projects/%d", projectID)

	sprint := createSprintRequest(t, env, owner, base, "Sprint 1")
	require.Equal(t, 1, sprint.Number)
	require.Equal(t, models.SprintStatusPlanned, sprint.Status)
	require.Equal(t, 2, sprint.TimeRemaining)
	require.NotNil(t, sprint.UserStories)

	sprintPath := fmt.Sprintf("%s/sprints/%d", base, sprint.ID)

	w := env.do(t, http.MethodPost, sprintPath+"/complete", &owner, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Only active sprints can be completed", decode[messageResponse](t, w).Message)

	w = env.do(t, http.MethodPost, sprintPath+"/start", &owner, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	started := decode[sprintResponse](t, w)
	require.Equal(t, "Sprint started successfully", started.Message)
	require.Equal(t, models.SprintStatusActive, started.Sprint.Status)

	w = env.do(t, http.MethodPost, sprintPath+"/start", &owner, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Only planned sprints can be started", decode[messageResponse](t, w).Message)

	w = env.do(t, http.MethodPost, sprintPath+"/complete", &owner, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	completed := decode[struct {
		Message string         `json:"message"`
		Sprint  dto.SprintDTO  `json:"sprint"`
		Version dto.VersionDTO `json:"version"`
	}](t, w)
	require.Equal(t, "Sprint completed successfully", completed.Message)
	require.Equal(t, models.SprintStatusCompleted, completed.Sprint.Status)
	require.Equal(t, 0, completed.Sprint.TimeRemaining)
	require.Equal(t, "v0.1.0", completed.Version.Tag)
	require.NotNil(t, completed.Version.SprintID)
	require.Equal(t, sprint.ID, *completed.Version.SprintID)

	w = env.do(t, http.MethodPost, sprintPath+"/complete", &owner, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSprintHandler_CompleteWithType(t *testing.T) {
	env := setupHandlerTestEnv(t)
	owner := env.signup(t, "owner")
	projectID := env.createProject(t, owner, "Soyuz")
	base := fmt.Sprintf("/api/projects/%d", projectID)

	sprint := createSprintRequest(t, env, owner, base, "Sprint 1")
	sprintPath := fmt.Sprintf("%s/sprints/%d", base, sprint.ID)

	w := env.do(t, http.MethodPost, sprintPath+"/complete", &owner, map[string]string{"type": "hotfix"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Only active sprints can be completed", decode[messageResponse](t, w).Message)

	w = env.do(t, http.MethodPost, base+"/sprints/9999/complete", &owner, map[string]string{"type": "hotfix"})
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "Sprint not found", decode[messageResponse](t, w).Message)

	w = env.do(t, http.MethodPost, sprintPath+"/start", &owner, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, sprintPath+"/complete", &owner, map[string]string{"type": "hotfix"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Invalid version type", decode[messageResponse](t, w).Message)

	w = env.do(t, http.MethodPost, sprintPath+"/complete", &owner, map[string]string{
		"type":        "major",
		"description": "First stable cut",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	completed := decode[struct {
		Version dto.VersionDTO `json:"version"`
	}](t, w)
	require.Equal(t, "v1.0.0", completed.Version.Tag)
	require.Equal(t, "First stable cut", completed.Version.Description)
}

func TestSprintHandler_Validation(t *testing.T) {
	env := setupHandlerTestEnv(t)
	owner := env.signup(t, "owner")
	projectID := env.createProject(t, owner, "Gemini")
	base := fmt.Sprintf("/api/projects/%d", projectID)

	now := time.Now().UTC()
	w := env.do(t, http.MethodPost, base+"/sprints", &owner, map[string]interface{}{
		"name":      "Backwards",
		"startDate": now,
		"endDate":   now.Add(-time.Hour),
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Start date must be before end date", decode[messageResponse](t, w).Message)

	w = env.do(t, http.MethodPost, base+"/sprints", &owner, map[string]interface{}{"name": "No dates"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Start date and end date are required", decode[messageResponse](t, w).Message)

	w = env.do(t, http.MethodGet, base+"/sprints/999", &owner, nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, base+"/sprints/abc", &owner, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSprintHandler_AssignUserStories(t *testing.T) {
	env := setupHandlerTestEnv(t)
	owner := env.signup(t, "owner")
	projectID := env.createProject(t, owner, "Apollo")
	otherID := env.createProject(t, owner, "Skylab")
	base := fmt.Sprintf("/api/projects/%d", projectID)

	sprint := createSprintRequest(t, env, owner, base, "Sprint 1")
	sprintPath := fmt.Sprintf("%s/sprints/%d", base, sprint.ID)

	var storyIDs []uint64
	for _, title := range []string{"Login", "Logout"} {
		w := env.do(t, http.MethodPost, base+"/user-stories", &owner, map[string]string{"title": title})
		require.Equal(t, http.StatusCreated, w.Code)
		storyIDs = append(storyIDs, decode[struct {
			UserStory dto.UserStoryDTO `json:"userStory"`
		}](t, w).UserStory.ID)
	}

	foreign := env.do(t, http.MethodPost, fmt.Sprintf("/api/projects/%d/user-stories", otherID), &owner, map[string]string{"title": "Elsewhere"})
	require.Equal(t, http.StatusCreated, foreign.Code)
	foreignID := decode[struct {
		UserStory dto.UserStoryDTO `json:"userStory"`
	}](t, foreign).UserStory.ID

	w := env.do(t, http.MethodPost, sprintPath+"/user-stories", &owner, map[string]interface{}{"userStoriesIDs": []uint64{}})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "User story IDs must be a non-empty array", decode[messageResponse](t, w).Message)

	w = env.do(t, http.MethodPost, sprintPath+"/user-stories", &owner, map[string]interface{}{"userStoriesIDs": "nope"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "User story IDs must be a non-empty array", decode[messageResponse](t, w).Message)

	w = env.do(t, http.MethodPost, sprintPath+"/user-stories", &owner, map[string]interface{}{"userStoriesIDs": []uint64{storyIDs[0], foreignID}})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Some user stories are invalid or do not belong to the sprint's project", decode[messageResponse](t, w).Message)

	w = env.do(t, http.MethodPost, sprintPath+"/user-stories", &owner, map[string]interface{}{"userStoriesIDs": storyIDs})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assigned := decode[sprintResponse](t, w)
	require.Equal(t, "User Stories assigned to sprint successfully.", assigned.Message)
	require.Len(t, assigned.Sprint.UserStories, 2)

	w = env.do(t, http.MethodGet, base+"/sprints", &owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct {
		Sprints []dto.SprintDTO `json:"sprints"`
	}](t, w)
	require.Len(t, list.Sprints, 1)
	require.Len(t, list.Sprints[0].UserStories, 2)

	w = env.do(t, http.MethodDelete, sprintPath, &owner, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, base+"/user-stories?sprint=backlog", &owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	backlog := decode[struct {
		UserStories []dto.UserStoryDTO `json:"userStories"`
	}](t, w)
	require.Len(t, backlog.UserStories, 2)
}

func TestSprintHandler_DeveloperCannotRunLifecycle(t *testing.T) {
	env := setupHandlerTestEnv(t)
	owner := env.signup(t, "owner")
	dev := env.signup(t, "developer")
	projectID := env.createProject(t, owner, "Apollo")
	env.addMember(t, projectID, dev, models.RoleDeveloper)
	base := fmt.Sprintf("/api/projects/%d", projectID)

	sprint := createSprintRequest(t, env, owner, base, "Sprint 1")

	w := env.do(t, http.MethodPost, fmt.Sprintf("%s/sprints/%d/start", base, sprint.ID), &dev, nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodGet, fmt.Sprintf("%s/sprints/%d", base, sprint.ID), &dev, nil)
	require.Equal(t, http.StatusOK, w.Code)
}
