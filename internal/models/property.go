package models

import (
	"time"

	"gorm.io/gorm"
)

// PropertyType represents the kind of rental property
type PropertyType string

const (
	HouseProperty      PropertyType = "house"
	FlatProperty       PropertyType = "flat"
	MaisonetteProperty PropertyType = "maisonette"
	StudioProperty     PropertyType = "studio"
	RoomProperty       PropertyType = "room"
	OtherProperty      PropertyType = "other"
)

// Property represents a rental property owned by a user
type Property struct {
	ID           uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       uint         `gorm:"not null;index" json:"user_id"`
	Address      string       `gorm:"size:255;not null" json:"address"`
	Postcode     string       `gorm:"size:10;not null" json:"postcode"`
	PropertyType PropertyType `gorm:"size:20;not null;default:'house'" json:"property_type"`
	CreatedAt    time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null" json:"updated_at"`
}

// BeforeCreate hook for properties
func (p *Property) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = now
	}
	return nil
}

// FullAddress returns the display address used in reminder emails
func (p *Property) FullAddress() string {
	if p.Postcode == "" {
		return p.Address
	}
	return p.Address + ", " + p.Postcode
}

// TableName specifies the table name for the Property model
func (Property) TableName() string {
	return "property"
}

// CreatePropertyRequest represents the data needed to create a new property
type CreatePropertyRequest struct {
	Address      string       `json:"address" binding:"required"`
	Postcode     string       `json:"postcode" binding:"required"`
	PropertyType PropertyType `json:"property_type" binding:"required,oneof=house flat maisonette studio room other"`
}

// UpdatePropertyRequest represents the user-editable property fields
type UpdatePropertyRequest struct {
	Address      string       `json:"address" binding:"omitempty"`
	Postcode     string       `json:"postcode" binding:"omitempty"`
	PropertyType PropertyType `json:"property_type" binding:"omitempty,oneof=house flat maisonette studio room other"`
}
