package services

import (
	"fmt"
	"time"

	"landlordhq/internal/models"
)

// CertificateRule describes the statutory renewal cycle for one certificate type
type CertificateRule struct {
	Name          string
	ValidityYears int
	Priority      models.EventPriority
}

// DocumentRule describes a statutory document that must be served on the
// tenant within a fixed number of days of the tenancy starting
type DocumentRule struct {
	Kind       models.EventKind
	Name       string
	OffsetDays int
	// DepositOnly rules apply only when a deposit was actually taken
	DepositOnly bool
}

// ReminderLeadTime is one entry in the shared reminder schedule
type ReminderLeadTime struct {
	Label string
	Days  int
}

// certificateRules maps each certificate type to its UK validity period
var certificateRules = map[models.CertificateType]CertificateRule{
	models.GasSafetyCertificate:  {Name: "Gas Safety Certificate", ValidityYears: 1, Priority: models.CriticalPriority},
	models.EICRCertificate:       {Name: "EICR (Electrical)", ValidityYears: 5, Priority: models.HighPriority},
	models.EPCCertificate:        {Name: "EPC", ValidityYears: 10, Priority: models.MediumPriority},
	models.FireSafetyCertificate: {Name: "Fire Safety Certificate", ValidityYears: 1, Priority: models.HighPriority},
}

// documentRules lists the statutory documents due after a tenancy starts
var documentRules = []DocumentRule{
	{Kind: models.HowToRentEvent, Name: "Serve 'How to Rent' guide", OffsetDays: 30},
	{Kind: models.PrescribedInfoEvent, Name: "Serve deposit prescribed information", OffsetDays: 30, DepositOnly: true},
	{Kind: models.DepositProtectionEvent, Name: "Protect deposit in approved scheme", OffsetDays: 30, DepositOnly: true},
}

// ReminderSchedule is the fixed set of lead times, furthest first, at which
// reminders fire before a deadline. Shared by the scheduler and the urgency
// classifier so their day thresholds never drift apart.
var ReminderSchedule = []ReminderLeadTime{
	{Label: "3 months", Days: 90},
	{Label: "2 months", Days: 60},
	{Label: "4 weeks", Days: 28},
	{Label: "3 weeks", Days: 21},
	{Label: "2 weeks", Days: 14},
	{Label: "1 week", Days: 7},
}

// CertificateRuleFor returns the renewal rule for a certificate type
func CertificateRuleFor(certType models.CertificateType) (CertificateRule, error) {
	rule, ok := certificateRules[certType]
	if !ok {
		return CertificateRule{}, fmt.Errorf("%w: %q", ErrUnknownCertificateType, certType)
	}
	return rule, nil
}

// CertificateTypes returns all known certificate types in a fixed order
func CertificateTypes() []models.CertificateType {
	return []models.CertificateType{
		models.GasSafetyCertificate,
		models.EICRCertificate,
		models.EPCCertificate,
		models.FireSafetyCertificate,
	}
}

// DocumentRules returns the statutory document deadlines in catalog order
func DocumentRules() []DocumentRule {
	return documentRules
}

// CertificateExpiry derives the expiry date from an issue date and the
// certificate type's validity period
func CertificateExpiry(certType models.CertificateType, issueDate time.Time) (time.Time, error) {
	rule, err := CertificateRuleFor(certType)
	if err != nil {
		return time.Time{}, err
	}
	return issueDate.AddDate(rule.ValidityYears, 0, 0), nil
}

// FurthestLeadDays returns the longest lead time in the schedule
func FurthestLeadDays() int {
	return ReminderSchedule[0].Days
}

// NearestLeadDays returns the shortest lead time in the schedule
func NearestLeadDays() int {
	return ReminderSchedule[len(ReminderSchedule)-1].Days
}

// LeadLabelFor returns the schedule label closest to the given number of
// days before a deadline, e.g. 5 days out reads "1 week"
func LeadLabelFor(daysUntil int) string {
	for i := len(ReminderSchedule) - 1; i >= 0; i-- {
		if daysUntil <= ReminderSchedule[i].Days {
			return ReminderSchedule[i].Label
		}
	}
	return ReminderSchedule[0].Label
}
