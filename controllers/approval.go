package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"syllabus-approval-api/utils"
)

// GetApprovalQueue lists syllabi waiting on the caller's role.
func GetApprovalQueue(c *gin.Context) {
	roleID, ok := getCurrentRoleID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	syllabi, err := engine.QueueForRole(c.Request.Context(), roleID)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"syllabi": syllabi,
		"total":   len(syllabi),
	})
}

// ApproveSyllabus records the caller's approval with signature and advances
// the chain.
func ApproveSyllabus(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	roleID, _ := getCurrentRoleID(c)

	var req struct {
		Signature string `json:"signature"`
		Comment   string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	syllabus, err := engine.Approve(c.Request.Context(), c.Param("id"), roleID, userID,
		utils.SanitizeInput(req.Signature), utils.SanitizeInput(req.Comment))
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Syllabus approved",
		"syllabus": syllabus,
	})
}

// RequestSyllabusRevision sends the syllabus back to faculty with a
// mandatory comment.
func RequestSyllabusRevision(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	roleID, _ := getCurrentRoleID(c)

	var req struct {
		Comment string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	syllabus, err := engine.RequestRevision(c.Request.Context(), c.Param("id"), roleID, userID,
		utils.SanitizeInput(req.Comment))
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Syllabus sent back for revision",
		"syllabus": syllabus,
	})
}
