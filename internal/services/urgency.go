package services

import (
	"time"

	"landlordhq/internal/models"
)

// UrgencyStatus classifies how close a compliance event is to its deadline
type UrgencyStatus string

const (
	StatusOK       UrgencyStatus = "ok"
	StatusUpcoming UrgencyStatus = "upcoming"
	StatusDueSoon  UrgencyStatus = "due_soon"
	StatusOverdue  UrgencyStatus = "overdue"
)

// ClassifyUrgency labels an event relative to now using day thresholds
// aligned with the reminder schedule. Served documents are always ok no
// matter how long ago their deadline passed. Pure: no clock reads, no side
// effects, shared by the dashboard and the reminder scheduler.
func ClassifyUrgency(event models.ComplianceEvent, now time.Time) UrgencyStatus {
	if event.Served {
		return StatusOK
	}

	days := DaysBetween(now, event.DueDate)
	switch {
	case days < 0:
		return StatusOverdue
	case days <= NearestLeadDays():
		return StatusDueSoon
	case days <= FurthestLeadDays():
		return StatusUpcoming
	default:
		return StatusOK
	}
}
