package models

import (
	"time"

	"gorm.io/gorm"
)

// CertificateType represents the kind of compliance certificate
type CertificateType string

const (
	GasSafetyCertificate  CertificateType = "gas_safety"
	EICRCertificate       CertificateType = "eicr"
	EPCCertificate        CertificateType = "epc"
	FireSafetyCertificate CertificateType = "fire_safety"
)

// Certificate represents a compliance certificate held for a property.
// Multiple certificates of the same type may exist over time; only the most
// recently issued one per type counts towards the compliance timeline.
type Certificate struct {
	ID              uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID          uint            `gorm:"not null;index" json:"user_id"`
	PropertyID      uint            `gorm:"not null;index" json:"property_id"`
	CertificateType CertificateType `gorm:"size:20;not null" json:"certificate_type"`
	IssueDate       time.Time       `gorm:"type:date;not null" json:"issue_date"`
	ExpiryDate      time.Time       `gorm:"type:date;not null" json:"expiry_date"`
	DocumentURL     string          `gorm:"size:512" json:"document_url"`
	ReferenceNumber string          `gorm:"size:100" json:"reference_number"`
	Notes           string          `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null" json:"updated_at"`
}

// BeforeCreate hook for certificates
func (c *Certificate) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = now
	}
	return nil
}

// TableName specifies the table name for the Certificate model
func (Certificate) TableName() string {
	return "certificate"
}

// CreateCertificateRequest represents the data needed to record a certificate.
// ExpiryDate is optional; when omitted it is derived from the issue date and
// the certificate type's statutory validity period.
type CreateCertificateRequest struct {
	PropertyID      uint            `json:"property_id" binding:"required"`
	CertificateType CertificateType `json:"certificate_type" binding:"required,oneof=gas_safety eicr epc fire_safety"`
	IssueDate       string          `json:"issue_date" binding:"required"` // YYYY-MM-DD
	ExpiryDate      string          `json:"expiry_date" binding:"omitempty"`
	ReferenceNumber string          `json:"reference_number" binding:"omitempty"`
	Notes           string          `json:"notes" binding:"omitempty"`
}
