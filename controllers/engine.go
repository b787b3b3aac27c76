package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"syllabus-approval-api/services"
)

var (
	engine            *services.WorkflowEngine
	approverDirectory *services.GormApproverDirectory
)

// SetEngine wires the workflow engine the controllers dispatch to. Called
// once from main; tests inject an engine over the in-memory store.
func SetEngine(e *services.WorkflowEngine) {
	engine = e
}

// SetApproverDirectory wires the cached directory so admin user changes can
// invalidate it.
func SetApproverDirectory(d *services.GormApproverDirectory) {
	approverDirectory = d
}

func clearApproverCache() {
	if approverDirectory != nil {
		approverDirectory.ClearApproverCache()
	}
}

func getCurrentUserID(c *gin.Context) (int, bool) {
	if v, ok := c.Get("userID"); ok {
		if id, ok := v.(int); ok {
			return id, true
		}
	}
	return 0, false
}

func getCurrentRoleID(c *gin.Context) (int, bool) {
	if v, ok := c.Get("roleID"); ok {
		if id, ok := v.(int); ok {
			return id, true
		}
	}
	return 0, false
}

// respondWorkflowError maps engine error kinds onto HTTP statuses.
func respondWorkflowError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrInvalidState), errors.Is(err, services.ErrConflict):
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
