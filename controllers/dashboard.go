package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"syllabus-approval-api/models"
)

// GetDashboardStats returns dashboard statistics scoped to the caller's
// role. Everything is recomputed from current store state per request.
func GetDashboardStats(c *gin.Context) {
	userID, okUser := getCurrentUserID(c)
	roleID, okRole := getCurrentRoleID(c)
	if !okUser || !okRole {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   "authentication context missing",
		})
		return
	}

	var (
		stats map[string]interface{}
		err   error
	)
	switch {
	case models.RoleHasCapability(roleID, models.CapabilityViewAll):
		stats, err = getAdminDashboard(c)
	case roleID == models.RoleFaculty:
		stats, err = getFacultyDashboard(c, userID)
	default:
		stats, err = getApproverDashboard(c, roleID)
	}
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	stats["current_date"] = time.Now().Format("2006-01-02")

	c.JSON(http.StatusOK, gin.H{
		"stats": stats,
	})
}

// getFacultyDashboard counts the caller's own syllabi by lifecycle bucket.
func getFacultyDashboard(c *gin.Context, userID int) (map[string]interface{}, error) {
	syllabi, err := engine.QueueForFaculty(c.Request.Context(), userID)
	if err != nil {
		return nil, err
	}

	var pending, approved, revision int64
	for _, s := range syllabi {
		switch s.Status {
		case models.StatusApproved:
			approved++
		case models.StatusRevisionRequired:
			revision++
		default:
			pending++
		}
	}

	return map[string]interface{}{
		"total":             len(syllabi),
		"pending":           pending,
		"approved":          approved,
		"revision_required": revision,
	}, nil
}

// getApproverDashboard counts syllabi waiting on the caller's role.
func getApproverDashboard(c *gin.Context, roleID int) (map[string]interface{}, error) {
	queue, err := engine.QueueForRole(c.Request.Context(), roleID)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"awaiting_review": len(queue),
		"role":            models.RoleLabel(roleID),
	}, nil
}

// getAdminDashboard aggregates totals across all faculties and roles.
func getAdminDashboard(c *gin.Context) (map[string]interface{}, error) {
	syllabi, err := engine.ListAll(c.Request.Context())
	if err != nil {
		return nil, err
	}

	byStatus := make(map[string]int64)
	byDepartment := make(map[string]int64)
	for _, s := range syllabi {
		byStatus[s.Status]++
		byDepartment[s.Department]++
	}

	return map[string]interface{}{
		"total":         len(syllabi),
		"by_status":     byStatus,
		"by_department": byDepartment,
	}, nil
}
