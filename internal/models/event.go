package models

import "time"

// EventKind identifies what obligation a compliance event was derived from
type EventKind string

const (
	CertificateExpiryEvent  EventKind = "certificate_expiry"
	CertificateMissingEvent EventKind = "certificate_missing"
	HowToRentEvent          EventKind = "how_to_rent"
	PrescribedInfoEvent     EventKind = "prescribed_info"
	DepositProtectionEvent  EventKind = "deposit_protection"
	FixedTermEndEvent       EventKind = "fixed_term_end"
)

// EventPriority represents how serious missing a deadline would be
type EventPriority string

const (
	CriticalPriority EventPriority = "critical"
	HighPriority     EventPriority = "high"
	MediumPriority   EventPriority = "medium"
	LowPriority      EventPriority = "low"
)

// ComplianceEvent is one derived deadline on a property's compliance
// timeline. Events are regenerated from tenancy and certificate records on
// every request and are never stored or edited directly; SourceType and
// SourceID identify the originating record for the reminder ledger.
type ComplianceEvent struct {
	Kind            EventKind       `json:"kind"`
	Name            string          `json:"name"`
	DueDate         time.Time       `json:"due_date"`
	Priority        EventPriority   `json:"priority"`
	Served          bool            `json:"served"`
	ServedDate      *time.Time      `json:"served_date,omitempty"`
	SourceType      string          `json:"source_type"`
	SourceID        uint            `json:"source_id"`
	CertificateType CertificateType `json:"certificate_type,omitempty"`
	PropertyID      uint            `json:"property_id"`
	PropertyAddress string          `json:"property_address"`
	TenancyID       uint            `json:"tenancy_id,omitempty"`
}
