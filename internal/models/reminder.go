package models

import "time"

// ReminderSent is the ledger of dispatched reminders. The composite unique
// index is the sole guard against duplicate sends: at most one row may exist
// per (user, item type, item id, lead time), and a rejected duplicate insert
// means the reminder was already handled by an earlier or concurrent run.
type ReminderSent struct {
	ID       uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID   uint      `gorm:"not null;uniqueIndex:idx_reminder_dedup" json:"user_id"`
	ItemType string    `gorm:"size:40;not null;uniqueIndex:idx_reminder_dedup" json:"item_type"`
	ItemID   uint      `gorm:"not null;uniqueIndex:idx_reminder_dedup" json:"item_id"`
	LeadDays int       `gorm:"not null;uniqueIndex:idx_reminder_dedup" json:"lead_days"`
	SentAt   time.Time `gorm:"not null" json:"sent_at"`
}

// TableName specifies the table name for the ReminderSent model
func (ReminderSent) TableName() string {
	return "reminder_sent"
}
