package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"landlordhq/internal/auth"
	"landlordhq/internal/database"
	"landlordhq/internal/models"
	"landlordhq/internal/services"

	"github.com/gin-gonic/gin"
)

// CreateCertificate records a new compliance certificate. When no expiry
// date is supplied it is derived from the issue date and the certificate
// type's statutory validity period.
func CreateCertificate(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req models.CreateCertificateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	issueDate, err := parseDate(req.IssueDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue_date, expected YYYY-MM-DD"})
		return
	}
	if issueDate.After(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "issue_date cannot be in the future"})
		return
	}

	var expiryDate time.Time
	if req.ExpiryDate != "" {
		expiryDate, err = parseDate(req.ExpiryDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid expiry_date, expected YYYY-MM-DD"})
			return
		}
		if expiryDate.Before(issueDate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "expiry_date cannot be before issue_date"})
			return
		}
	} else {
		expiryDate, err = services.CertificateExpiry(req.CertificateType, issueDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	db := database.GetDB()

	var property models.Property
	if err := db.Where("id = ? AND user_id = ?", req.PropertyID, userID).First(&property).Error; err != nil {
		handleError(c, http.StatusNotFound, "Property not found", err)
		return
	}

	certificate := models.Certificate{
		UserID:          userID,
		PropertyID:      property.ID,
		CertificateType: req.CertificateType,
		IssueDate:       issueDate,
		ExpiryDate:      expiryDate,
		ReferenceNumber: req.ReferenceNumber,
		Notes:           req.Notes,
	}

	if err := db.Create(&certificate).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to create certificate", err)
		return
	}

	c.JSON(http.StatusCreated, certificate)
}

// GetCertificates lists certificates, optionally filtered by property or type
func GetCertificates(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	db := database.GetDB()
	query := db.Where("user_id = ?", userID)
	if propertyID := c.Query("property_id"); propertyID != "" {
		query = query.Where("property_id = ?", propertyID)
	}
	if certType := c.Query("certificate_type"); certType != "" {
		query = query.Where("certificate_type = ?", certType)
	}

	var certificates []models.Certificate
	if err := query.Order("issue_date DESC").Find(&certificates).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to fetch certificates", err)
		return
	}

	c.JSON(http.StatusOK, certificates)
}

// UploadCertificateDocument attaches a scanned document to a certificate
func UploadCertificateDocument(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	certificateID, err := strconv.ParseUint(c.Param("certificate_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid certificate id"})
		return
	}

	db := database.GetDB()
	var certificate models.Certificate
	if err := db.Where("id = ? AND user_id = ?", certificateID, userID).First(&certificate).Error; err != nil {
		handleError(c, http.StatusNotFound, "Certificate not found", err)
		return
	}

	file, header, err := c.Request.FormFile("document")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing document file"})
		return
	}
	defer file.Close()

	documentService, err := services.NewDocumentService()
	if err != nil {
		handleError(c, http.StatusServiceUnavailable, "Document storage not configured", err)
		return
	}

	url, err := documentService.UploadCertificateDocument(file, header.Filename, userID, certificate.ID)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to upload document", err)
		return
	}

	if err := db.Model(&certificate).Update("document_url", url).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to save document reference", err)
		return
	}

	log.Printf("Stored document for certificate %d (user %d)", certificate.ID, userID)
	c.JSON(http.StatusOK, gin.H{"document_url": url})
}
