package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"landlordhq/internal/auth"
	"landlordhq/internal/database"
	"landlordhq/internal/models"

	"github.com/gin-gonic/gin"
)

// CreateProperty handles the creation of a new property
func CreateProperty(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req models.CreatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	property := models.Property{
		UserID:       userID,
		Address:      req.Address,
		Postcode:     strings.ToUpper(strings.TrimSpace(req.Postcode)),
		PropertyType: req.PropertyType,
	}

	db := database.GetDB()
	if err := db.Create(&property).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to create property", err)
		return
	}

	c.JSON(http.StatusCreated, property)
}

// GetProperties lists the requesting user's properties
func GetProperties(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	db := database.GetDB()
	var properties []models.Property
	if err := db.Where("user_id = ?", userID).Order("address").Find(&properties).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to fetch properties", err)
		return
	}

	c.JSON(http.StatusOK, properties)
}

// GetPropertyByID fetches one property with its tenancies and certificates
func GetPropertyByID(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	propertyID, err := strconv.ParseUint(c.Param("property_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid property id"})
		return
	}

	db := database.GetDB()
	var property models.Property
	if err := db.Where("id = ? AND user_id = ?", propertyID, userID).First(&property).Error; err != nil {
		handleError(c, http.StatusNotFound, "Property not found", err)
		return
	}

	var tenancies []models.Tenancy
	if err := db.Where("property_id = ? AND user_id = ?", propertyID, userID).
		Order("created_at DESC").Find(&tenancies).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to fetch tenancies", err)
		return
	}

	var certificates []models.Certificate
	if err := db.Where("property_id = ? AND user_id = ?", propertyID, userID).
		Order("issue_date DESC").Find(&certificates).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to fetch certificates", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"property":     property,
		"tenancies":    tenancies,
		"certificates": certificates,
	})
}

// UpdateProperty changes the user-editable fields of a property
func UpdateProperty(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	propertyID, err := strconv.ParseUint(c.Param("property_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid property id"})
		return
	}

	var req models.UpdatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := database.GetDB()
	var property models.Property
	if err := db.Where("id = ? AND user_id = ?", propertyID, userID).First(&property).Error; err != nil {
		handleError(c, http.StatusNotFound, "Property not found", err)
		return
	}

	if req.Address != "" {
		property.Address = req.Address
	}
	if req.Postcode != "" {
		property.Postcode = strings.ToUpper(strings.TrimSpace(req.Postcode))
	}
	if req.PropertyType != "" {
		property.PropertyType = req.PropertyType
	}

	if err := db.Save(&property).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to update property", err)
		return
	}

	c.JSON(http.StatusOK, property)
}
