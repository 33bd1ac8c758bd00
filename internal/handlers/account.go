package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"landlordhq/internal/auth"
	"landlordhq/internal/database"
	"landlordhq/internal/models"
	"landlordhq/internal/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Register creates a new landlord account
func Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to create account", err)
		return
	}

	user := models.User{
		Email:            req.Email,
		Name:             req.Name,
		HashedPass:       string(hashed),
		RemindersEnabled: true,
		IsActive:         true,
	}

	db := database.GetDB()
	if err := db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
			return
		}
		handleError(c, http.StatusInternalServerError, "Failed to create account", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":    user.ID,
		"email": user.Email,
		"name":  user.Name,
	})
}

// Login handles user authentication and issues a token cookie
func Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := database.GetDB()
	var user models.User
	if err := db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			recordLogin(db, 0, req.Email, utils.GetRealClientIP(c), false)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		handleError(c, http.StatusInternalServerError, "database error", err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPass), []byte(req.Password)); err != nil {
		recordLogin(db, user.ID, user.Email, utils.GetRealClientIP(c), false)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	if !user.IsActive {
		c.JSON(http.StatusForbidden, gin.H{"error": "account disabled"})
		return
	}

	if err := db.Model(&user).Update("last_login", time.Now()).Error; err != nil {
		// Not fatal for login; the audit row below still records the attempt
		log.Printf("Warning: failed to update last_login for user %d: %v", user.ID, err)
	}
	recordLogin(db, user.ID, user.Email, utils.GetRealClientIP(c), true)

	if err := auth.SetAuthCookie(c, &user); err != nil {
		handleError(c, http.StatusInternalServerError, "failed to generate token", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "login successful",
		"user": gin.H{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Name,
		},
	})
}

// Logout invalidates every issued token by bumping the token version
func Logout(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	db := database.GetDB()
	if err := db.Model(&models.User{}).Where("id = ?", userID).
		UpdateColumn("token_version", gorm.Expr("token_version + 1")).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "failed to log out", err)
		return
	}

	auth.ClearAuthCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// GetCurrentUser returns the authenticated user's profile
func GetCurrentUser(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	db := database.GetDB()
	var user models.User
	if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
		handleError(c, http.StatusNotFound, "Account not found", err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateReminderSettings changes whether and where reminder digests are sent
func UpdateReminderSettings(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req models.ReminderSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := database.GetDB()
	updates := map[string]interface{}{
		"reminders_enabled": *req.Enabled,
	}
	// Toggling the enabled flag alone must not erase an existing override
	if req.Email != nil {
		updates["reminder_email"] = *req.Email
	}
	if err := db.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "failed to update reminder settings", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "reminder settings updated"})
}

func recordLogin(db *gorm.DB, userID uint, email, ip string, success bool) {
	entry := models.LoginLog{
		UserID:    userID,
		Email:     email,
		IP:        ip,
		Success:   success,
		CreatedAt: time.Now(),
	}
	if err := db.Create(&entry).Error; err != nil {
		log.Printf("Warning: failed to record login attempt: %v", err)
	}
}
