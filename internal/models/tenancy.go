package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RentFrequency represents how often rent is collected
type RentFrequency string

const (
	WeeklyRent      RentFrequency = "weekly"
	FortnightlyRent RentFrequency = "fortnightly"
	MonthlyRent     RentFrequency = "monthly"
	QuarterlyRent   RentFrequency = "quarterly"
	AnnualRent      RentFrequency = "annually"
)

// Tenancy represents a tenancy agreement for a property. The statutory
// served flags (How to Rent guide, prescribed information) and the deposit
// protection fields drive the document-serve deadlines on the compliance
// timeline.
type Tenancy struct {
	ID                    uint                       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID                uint                       `gorm:"not null;index" json:"user_id"`
	PropertyID            uint                       `gorm:"not null;index" json:"property_id"`
	TenantNames           datatypes.JSONSlice[string] `json:"tenant_names"`
	StartDate             *time.Time                 `gorm:"type:date" json:"start_date"`
	FixedTermEndDate      *time.Time                 `gorm:"type:date" json:"fixed_term_end_date"`
	RentAmount            float64                    `gorm:"type:decimal(10,2);not null;default:0" json:"rent_amount"`
	RentFrequency         RentFrequency              `gorm:"size:20;not null;default:'monthly'" json:"rent_frequency"`
	DepositAmount         float64                    `gorm:"type:decimal(10,2);not null;default:0" json:"deposit_amount"`
	DepositProtected      bool                       `gorm:"not null;default:false" json:"deposit_protected"`
	DepositProtectionDate *time.Time                 `gorm:"type:date" json:"deposit_protection_date"`
	DepositScheme         string                     `gorm:"size:50" json:"deposit_scheme"`
	PrescribedInfoServed  bool                       `gorm:"not null;default:false" json:"prescribed_info_served"`
	PrescribedInfoDate    *time.Time                 `gorm:"type:date" json:"prescribed_info_date"`
	HowToRentServed       bool                       `gorm:"not null;default:false" json:"how_to_rent_served"`
	HowToRentDate         *time.Time                 `gorm:"type:date" json:"how_to_rent_date"`
	IsActive              bool                       `gorm:"not null;default:true;index" json:"is_active"`
	Notes                 string                     `gorm:"type:text" json:"notes"`
	CreatedAt             time.Time                  `gorm:"not null" json:"created_at"`
	UpdatedAt             time.Time                  `gorm:"not null" json:"updated_at"`
}

// BeforeCreate hook for tenancies
func (t *Tenancy) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}
	return nil
}

// IsPeriodic reports whether the tenancy has rolled past its fixed term
func (t *Tenancy) IsPeriodic(now time.Time) bool {
	if t.FixedTermEndDate == nil {
		return true
	}
	return now.After(*t.FixedTermEndDate)
}

// WeeklyRent converts the rent amount to its weekly equivalent
func (t *Tenancy) WeeklyRent() float64 {
	switch t.RentFrequency {
	case WeeklyRent:
		return t.RentAmount
	case FortnightlyRent:
		return t.RentAmount / 2
	case MonthlyRent:
		return (t.RentAmount * 12) / 52
	case QuarterlyRent:
		return (t.RentAmount * 4) / 52
	case AnnualRent:
		return t.RentAmount / 52
	}
	return t.RentAmount
}

// TableName specifies the table name for the Tenancy model
func (Tenancy) TableName() string {
	return "tenancy"
}

// CreateTenancyRequest represents the data needed to create a new tenancy
type CreateTenancyRequest struct {
	PropertyID       uint          `json:"property_id" binding:"required"`
	TenantNames      []string      `json:"tenant_names" binding:"required,min=1"`
	StartDate        string        `json:"start_date" binding:"required"` // YYYY-MM-DD
	FixedTermEndDate string        `json:"fixed_term_end_date" binding:"omitempty"`
	RentAmount       float64       `json:"rent_amount" binding:"required,min=0"`
	RentFrequency    RentFrequency `json:"rent_frequency" binding:"required,oneof=weekly fortnightly monthly quarterly annually"`
	DepositAmount    float64       `json:"deposit_amount" binding:"omitempty,min=0"`
	DepositScheme    string        `json:"deposit_scheme" binding:"omitempty"`
	Notes            string        `json:"notes" binding:"omitempty"`
}

// ServeDocumentRequest marks a statutory document as served on a date
type ServeDocumentRequest struct {
	ServedDate string `json:"served_date" binding:"required"` // YYYY-MM-DD
}
