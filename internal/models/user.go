package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a landlord account. Every property, tenancy, certificate
// and reminder ledger row is owned by exactly one user, and all engine
// queries are scoped by UserID.
type User struct {
	ID               uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Email            string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name             string         `gorm:"size:100;not null" json:"name"`
	HashedPass       string         `gorm:"size:255;not null" json:"-"`
	RemindersEnabled bool           `gorm:"not null;default:true" json:"reminders_enabled"`
	ReminderEmail    string         `gorm:"size:255" json:"reminder_email"` // falls back to Email when empty
	TokenVersion     int            `gorm:"not null;default:0" json:"-"`
	IsActive         bool           `gorm:"not null;default:true" json:"-"`
	LastLogin        time.Time      `json:"last_login"`
	CreatedAt        time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate hook is called before creating a new user
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = now
	}
	if u.LastLogin.IsZero() {
		u.LastLogin = now
	}
	return nil
}

// BeforeSave hook is called before saving the user
func (u *User) BeforeSave(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}

// NotificationAddress returns the address reminder digests should go to.
func (u *User) NotificationAddress() string {
	if u.ReminderEmail != "" {
		return u.ReminderEmail
	}
	return u.Email
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "user"
}

// LoginLog records an authentication attempt for auditing
type LoginLog struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"index" json:"user_id"`
	Email     string    `gorm:"size:255;not null" json:"email"`
	IP        string    `gorm:"size:45" json:"ip"`
	Success   bool      `gorm:"not null" json:"success"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

// TableName specifies the table name for the LoginLog model
func (LoginLog) TableName() string {
	return "login_log"
}

// RegisterRequest represents the data needed to create a new user
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest represents the data needed for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ReminderSettingsRequest updates where and whether reminder digests are
// sent. A nil Email leaves any existing override untouched; an empty string
// clears it back to the account address.
type ReminderSettingsRequest struct {
	Enabled *bool   `json:"enabled" binding:"required"`
	Email   *string `json:"email" binding:"omitempty,email"`
}
