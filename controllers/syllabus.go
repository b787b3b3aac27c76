package controllers

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"syllabus-approval-api/config"
	"syllabus-approval-api/models"
	"syllabus-approval-api/services"
	"syllabus-approval-api/utils"
)

// SubmitSyllabus accepts a multipart upload from faculty. Without a
// syllabus_id field it creates a new syllabus; with one it resubmits a
// revised document for a syllabus awaiting revision.
func SubmitSyllabus(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	roleID, _ := getCurrentRoleID(c)

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	if ok, msg := utils.ValidateSyllabusFile(file.Filename, file.Size); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	var user models.User
	if err := config.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User not found"})
		return
	}

	uploadPath := os.Getenv("UPLOAD_PATH")
	if uploadPath == "" {
		uploadPath = "./uploads"
	}
	userDir := filepath.Join(uploadPath, strconv.Itoa(userID))
	if err := os.MkdirAll(userDir, os.ModePerm); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create upload directory"})
		return
	}

	safeFilename := utils.GenerateUniqueFilename(userDir, file.Filename)
	fullPath := filepath.Join(userDir, safeFilename)

	if err := c.SaveUploadedFile(file, fullPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
		return
	}

	now := time.Now()
	fileUpload := models.FileUpload{
		OriginalName: file.Filename,
		StoredPath:   fullPath,
		FileSize:     file.Size,
		MimeType:     file.Header.Get("Content-Type"),
		UploadedBy:   userID,
		UploadedAt:   now,
		CreateAt:     now,
		UpdateAt:     now,
	}
	if err := config.DB.Create(&fileUpload).Error; err != nil {
		os.Remove(fullPath)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file info"})
		return
	}

	input := services.SubmitInput{
		SyllabusID:   utils.SanitizeInput(c.PostForm("syllabus_id")),
		FacultyID:    userID,
		FacultyName:  user.FullName(),
		CourseCode:   utils.SanitizeInput(c.PostForm("course_code")),
		CourseTitle:  utils.SanitizeInput(c.PostForm("course_title")),
		Semester:     utils.SanitizeInput(c.PostForm("semester")),
		Department:   utils.SanitizeInput(c.PostForm("department")),
		FileID:       fileUpload.FileID,
		FileName:     file.Filename,
		SignatureRef: utils.SanitizeInput(c.PostForm("signature")),
	}

	syllabus, err := engine.Submit(c.Request.Context(), roleID, input)
	if err != nil {
		// The file record stays orphaned only on engine rejection; clean up.
		config.DB.Delete(&fileUpload)
		os.Remove(fullPath)
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"syllabus": syllabus,
	})
}

// GetSyllabi lists syllabi scoped to the caller: faculty see their own,
// approvers see their queue, admins see everything.
func GetSyllabi(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	roleID, _ := getCurrentRoleID(c)

	var (
		syllabi []models.Syllabus
		err     error
	)
	switch {
	case roleID == models.RoleFaculty:
		syllabi, err = engine.QueueForFaculty(c.Request.Context(), userID)
	case models.RoleHasCapability(roleID, models.CapabilityViewAll):
		syllabi, err = engine.ListAll(c.Request.Context())
	default:
		syllabi, err = engine.QueueForRole(c.Request.Context(), roleID)
	}
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

// GetSyllabus returns one syllabus with its full chain, comments and versions.
func GetSyllabus(c *gin.Context) {
	syllabus, err := engine.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWorkflowError(c, err)
		return
	}
	if !canViewSyllabus(c, syllabus) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"syllabus": syllabus,
	})
}

// GetSyllabusTimeline returns the ordered approval steps.
func GetSyllabusTimeline(c *gin.Context) {
	steps, err := engine.Timeline(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWorkflowError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"timeline": steps,
	})
}

// GetSyllabusVersions returns the version history.
func GetSyllabusVersions(c *gin.Context) {
	versions, err := engine.Versions(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWorkflowError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"versions": versions,
	})
}

// GetSyllabusComments returns the append-only comment log.
func GetSyllabusComments(c *gin.Context) {
	comments, err := engine.CommentLog(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWorkflowError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"comments": comments,
	})
}

// DownloadSyllabus streams the current version's stored file.
func DownloadSyllabus(c *gin.Context) {
	syllabus, err := engine.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWorkflowError(c, err)
		return
	}
	if !canViewSyllabus(c, syllabus) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
		return
	}

	version := syllabus.CurrentVersion()
	if n := c.Query("version"); n != "" {
		wanted, convErr := strconv.Atoi(n)
		if convErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid version number"})
			return
		}
		version = nil
		for i := range syllabus.Versions {
			if syllabus.Versions[i].VersionNumber == wanted {
				version = &syllabus.Versions[i]
				break
			}
		}
	}
	if version == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Version not found"})
		return
	}

	var fileUpload models.FileUpload
	if err := config.DB.Where("file_id = ? AND delete_at IS NULL", version.FileID).First(&fileUpload).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}

	c.FileAttachment(fileUpload.StoredPath, fileUpload.OriginalName)
}

// canViewSyllabus gates record visibility: the owning faculty, any chain
// role, and admins may view.
func canViewSyllabus(c *gin.Context, s *models.Syllabus) bool {
	userID, ok := getCurrentUserID(c)
	if !ok {
		return false
	}
	roleID, _ := getCurrentRoleID(c)

	if roleID == models.RoleFaculty {
		return s.FacultyID == userID
	}
	return true
}
