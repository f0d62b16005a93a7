package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/scrumboard-api/internal/errors"
	"github.com/yukikurage/scrumboard-api/internal/middleware"
	"github.com/yukikurage/scrumboard-api/internal/models"
)

// respondError writes err with the status of its kind. Internal failures are
// logged and answered with a generic message.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	respondErrorWithConflict(c, logger, err, http.StatusConflict)
}

func respondErrorWithConflict(c *gin.Context, logger *slog.Logger, err error, conflictStatus int) {
	if apierrors.KindOf(err) == apierrors.KindInternal {
		logger.Error("request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"request_id", middleware.GetRequestID(c),
			"error", err,
		)
	}
	apierrors.RespondDomainError(c, err, conflictStatus)
}

// respondMessage writes a success body with a message and optional extra fields.
func respondMessage(c *gin.Context, status int, message string, fields gin.H) {
	body := gin.H{"success": true, "message": message}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(status, body)
}

// idParam parses a numeric path parameter, answering 400 when it is malformed.
func idParam(c *gin.Context, name, label string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid "+label+" ID")
		return 0, false
	}
	return id, true
}

// currentProject returns the project loaded by RequireProjectAccess.
func currentProject(c *gin.Context) (models.Project, bool) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.InternalError(c, "Project not found in context")
	}
	return project, ok
}

// optionalID tells an absent field apart from an explicit null.
type optionalID struct {
	Set   bool
	Value *uint64
}

func (o *optionalID) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var v uint64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}
