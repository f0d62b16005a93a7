package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/scrumboard-api/internal/dto"
	apierrors "github.com/yukikurage/scrumboard-api/internal/errors"
	"github.com/yukikurage/scrumboard-api/internal/models"
	"github.com/yukikurage/scrumboard-api/internal/services"
)

// VersionHandler serves the project's release versions.
type VersionHandler struct {
	versionService *services.VersionService
	logger         *slog.Logger
}

// NewVersionHandler creates a new VersionHandler.
func NewVersionHandler(versionService *services.VersionService, logger *slog.Logger) *VersionHandler {
	return &VersionHandler{versionService: versionService, logger: logger}
}

// CreateVersion releases a version for one of the project's sprints.
func (h *VersionHandler) CreateVersion(c *gin.Context) {
	project, ok := currentProject(c)
	if !ok {
		return
	}

	var req struct {
		Description string             `json:"description"`
		SprintID    uint64             `json:"sprintId" binding:"required"`
		Type        models.VersionType `json:"type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, services.ErrInvalidSprint)
		return
	}

	version, err := h.versionService.CreateVersion(c.Request.Context(), services.CreateVersionInput{
		ProjectID:   project.ID,
		SprintID:    req.SprintID,
		Type:        req.Type,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondMessage(c, http.StatusCreated, "Version created successfully", gin.H{"version": dto.ToVersionDTO(*version)})
}

// ListVersions lists the project's versions, newest first.
func (h *VersionHandler) ListVersions(c *gin.Context) {
	project, ok := currentProject(c)
	if !ok {
		return
	}

	versions, err := h.versionService.ListVersions(c.Request.Context(), project.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "versions": dto.ToVersionDTOs(versions)})
}

// NextVersionTag previews the tag the next release would get. ?type= picks
// the bump and defaults to minor.
func (h *VersionHandler) NextVersionTag(c *gin.Context) {
	project, ok := currentProject(c)
	if !ok {
		return
	}

	bump := models.VersionType(c.DefaultQuery("type", string(models.VersionMinor)))
	tag, err := h.versionService.GenerateVersionTag(c.Request.Context(), project.ID, bump)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "tag": tag, "type": bump})
}

// GetVersion returns a version.
func (h *VersionHandler) GetVersion(c *gin.Context) {
	project, ok := currentProject(c)
	if !ok {
		return
	}
	versionID, ok := idParam(c, "versionId", "version")
	if !ok {
		return
	}

	version, err := h.versionService.GetVersion(c.Request.Context(), project.ID, versionID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "version": dto.ToVersionDTO(*version)})
}

// UpdateVersion edits a version's description or release date. The tag is fixed.
func (h *VersionHandler) UpdateVersion(c *gin.Context) {
	project, ok := currentProject(c)
	if !ok {
		return
	}
	versionID, ok := idParam(c, "versionId", "version")
	if !ok {
		return
	}

	var req struct {
		Description *string    `json:"description"`
		ReleaseDate *time.Time `json:"releaseDate"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	version, err := h.versionService.UpdateVersion(c.Request.Context(), project.ID, versionID, services.UpdateVersionInput{
		Description: req.Description,
		ReleaseDate: req.ReleaseDate,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondMessage(c, http.StatusOK, "Version updated successfully", gin.H{"version": dto.ToVersionDTO(*version)})
}

// DeleteVersion deletes a version.
func (h *VersionHandler) DeleteVersion(c *gin.Context) {
	project, ok := currentProject(c)
	if !ok {
		return
	}
	versionID, ok := idParam(c, "versionId", "version")
	if !ok {
		return
	}

	if err := h.versionService.DeleteVersion(c.Request.Context(), project.ID, versionID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondMessage(c, http.StatusOK, "Version deleted successfully", nil)
}
