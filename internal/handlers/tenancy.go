package handlers

import (
	"net/http"
	"strconv"
	"time"

	"landlordhq/internal/auth"
	"landlordhq/internal/database"
	"landlordhq/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

// CreateTenancy handles the creation of a new tenancy
func CreateTenancy(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req models.CreateTenancyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start_date, expected YYYY-MM-DD"})
		return
	}
	endDate, err := parseOptionalDate(req.FixedTermEndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid fixed_term_end_date, expected YYYY-MM-DD"})
		return
	}
	if endDate != nil && endDate.Before(startDate) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fixed term cannot end before the tenancy starts"})
		return
	}

	db := database.GetDB()

	// The property must belong to the requesting user
	var property models.Property
	if err := db.Where("id = ? AND user_id = ?", req.PropertyID, userID).First(&property).Error; err != nil {
		handleError(c, http.StatusNotFound, "Property not found", err)
		return
	}

	tenancy := models.Tenancy{
		UserID:           userID,
		PropertyID:       property.ID,
		TenantNames:      datatypes.NewJSONSlice(req.TenantNames),
		StartDate:        &startDate,
		FixedTermEndDate: endDate,
		RentAmount:       req.RentAmount,
		RentFrequency:    req.RentFrequency,
		DepositAmount:    req.DepositAmount,
		DepositScheme:    req.DepositScheme,
		IsActive:         true,
		Notes:            req.Notes,
	}

	if err := db.Create(&tenancy).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to create tenancy", err)
		return
	}

	c.JSON(http.StatusCreated, tenancy)
}

// GetTenancies lists the requesting user's tenancies
func GetTenancies(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	db := database.GetDB()
	query := db.Where("user_id = ?", userID)
	if c.Query("active") == "true" {
		query = query.Where("is_active = ?", true)
	}

	var tenancies []models.Tenancy
	if err := query.Order("created_at DESC").Find(&tenancies).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to fetch tenancies", err)
		return
	}

	c.JSON(http.StatusOK, tenancies)
}

// GetTenancyByID fetches a single tenancy
func GetTenancyByID(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	tenancyID, err := strconv.ParseUint(c.Param("tenancy_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tenancy id"})
		return
	}

	db := database.GetDB()
	var tenancy models.Tenancy
	if err := db.Where("id = ? AND user_id = ?", tenancyID, userID).First(&tenancy).Error; err != nil {
		handleError(c, http.StatusNotFound, "Tenancy not found", err)
		return
	}

	c.JSON(http.StatusOK, tenancy)
}

// EndTenancy marks a tenancy inactive
func EndTenancy(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	tenancyID, err := strconv.ParseUint(c.Param("tenancy_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tenancy id"})
		return
	}

	db := database.GetDB()
	var tenancy models.Tenancy
	if err := db.Where("id = ? AND user_id = ?", tenancyID, userID).First(&tenancy).Error; err != nil {
		handleError(c, http.StatusNotFound, "Tenancy not found", err)
		return
	}

	if err := db.Model(&tenancy).Update("is_active", false).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to end tenancy", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Tenancy ended"})
}

// MarkDocumentServed records that a statutory document was served on the
// tenant. Once served, the matching timeline event stays "ok" and generates
// no further reminders.
func MarkDocumentServed(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	tenancyID, err := strconv.ParseUint(c.Param("tenancy_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tenancy id"})
		return
	}
	docType := c.Param("document_type")

	var req models.ServeDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	servedDate, err := parseDate(req.ServedDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid served_date, expected YYYY-MM-DD"})
		return
	}
	if servedDate.After(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "served_date cannot be in the future"})
		return
	}

	updates, ok := servedFlagUpdates(docType, servedDate)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown document type"})
		return
	}

	db := database.GetDB()
	var tenancy models.Tenancy
	if err := db.Where("id = ? AND user_id = ?", tenancyID, userID).First(&tenancy).Error; err != nil {
		handleError(c, http.StatusNotFound, "Tenancy not found", err)
		return
	}

	if err := db.Model(&tenancy).Updates(updates).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to mark document served", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Document marked as served"})
}

func servedFlagUpdates(docType string, servedDate time.Time) (map[string]interface{}, bool) {
	switch docType {
	case string(models.HowToRentEvent):
		return map[string]interface{}{"how_to_rent_served": true, "how_to_rent_date": servedDate}, true
	case string(models.PrescribedInfoEvent):
		return map[string]interface{}{"prescribed_info_served": true, "prescribed_info_date": servedDate}, true
	case string(models.DepositProtectionEvent):
		return map[string]interface{}{"deposit_protected": true, "deposit_protection_date": servedDate}, true
	}
	return nil, false
}
