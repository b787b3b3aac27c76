package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"syllabus-approval-api/config"
	"syllabus-approval-api/models"
	"syllabus-approval-api/utils"
)

// GetUsers lists accounts for the admin console.
func GetUsers(c *gin.Context) {
	var users []models.User
	query := config.DB.Preload("Role").Where("delete_at IS NULL")

	if roleParam := c.Query("role_id"); roleParam != "" {
		roleID, err := strconv.Atoi(roleParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role filter"})
			return
		}
		query = query.Where("role_id = ?", roleID)
	}

	if err := query.Order("user_id ASC").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"users":   users,
		"total":   len(users),
	})
}

type createUserRequest struct {
	UserFname  string `json:"user_fname" binding:"required"`
	UserLname  string `json:"user_lname" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required"`
	RoleID     int    `json:"role_id" binding:"required"`
	Department string `json:"department"`
}

// CreateUser registers a new account with a bcrypt-hashed password.
func CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if ok, msg := utils.ValidatePassword(req.Password); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}
	if _, ok := models.RoleCapabilities[req.RoleID]; !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown role"})
		return
	}

	var existing int64
	config.DB.Model(&models.User{}).
		Where("email = ? AND delete_at IS NULL", req.Email).
		Count(&existing)
	if existing > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	}

	hashed, err := HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	now := time.Now()
	user := models.User{
		UserFname:  utils.SanitizeInput(req.UserFname),
		UserLname:  utils.SanitizeInput(req.UserLname),
		Email:      utils.SanitizeInput(req.Email),
		Password:   hashed,
		RoleID:     req.RoleID,
		Department: utils.SanitizeInput(req.Department),
		IsActive:   true,
		CreateAt:   &now,
		UpdateAt:   &now,
	}

	if err := config.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"user":    user,
	})
}

type updateUserRequest struct {
	UserFname  *string `json:"user_fname"`
	UserLname  *string `json:"user_lname"`
	RoleID     *int    `json:"role_id"`
	Department *string `json:"department"`
	IsActive   *bool   `json:"is_active"`
}

// UpdateUser edits profile fields, role and active flag.
func UpdateUser(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil || userID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := config.DB.Where("user_id = ? AND delete_at IS NULL", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if req.UserFname != nil {
		user.UserFname = utils.SanitizeInput(*req.UserFname)
	}
	if req.UserLname != nil {
		user.UserLname = utils.SanitizeInput(*req.UserLname)
	}
	if req.RoleID != nil {
		if _, ok := models.RoleCapabilities[*req.RoleID]; !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown role"})
			return
		}
		user.RoleID = *req.RoleID
	}
	if req.Department != nil {
		user.Department = utils.SanitizeInput(*req.Department)
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	now := time.Now()
	user.UpdateAt = &now

	if err := config.DB.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}

	clearApproverCache()

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user,
	})
}

// DeleteUser soft-deletes an account.
func DeleteUser(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil || userID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	now := time.Now()
	res := config.DB.Model(&models.User{}).
		Where("user_id = ? AND delete_at IS NULL", userID).
		Updates(map[string]interface{}{
			"delete_at": now,
			"is_active": false,
		})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	clearApproverCache()

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User deleted",
	})
}
