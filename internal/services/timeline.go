package services

import (
	"fmt"
	"sort"
	"time"

	"landlordhq/internal/models"
)

// TimelineInput bundles the records a single tenancy's timeline is derived
// from: the tenancy, its property, and every certificate held for that
// property (all types, full history).
type TimelineInput struct {
	Property     models.Property
	Tenancy      models.Tenancy
	Certificates []models.Certificate
}

// GenerateTenancyTimeline derives the ordered compliance events for one
// tenancy. Due dates depend only on the source records, never on now; now is
// used only to validate inputs and to date "never obtained" events. The
// returned warnings flag data-integrity oddities (issue-date ties, missing
// start date) that are worth surfacing but do not invalidate the timeline.
func GenerateTenancyTimeline(in TimelineInput, now time.Time) ([]models.ComplianceEvent, []string, error) {
	events, warnings, err := generateCertificateEvents(in.Property, in.Certificates, now)
	if err != nil {
		return nil, nil, err
	}

	docEvents, docWarnings := generateDocumentEvents(in.Property, in.Tenancy)
	events = append(events, docEvents...)
	warnings = append(warnings, docWarnings...)

	if in.Tenancy.FixedTermEndDate != nil {
		events = append(events, models.ComplianceEvent{
			Kind:            models.FixedTermEndEvent,
			Name:            "Fixed term ends (review or renew tenancy)",
			DueDate:         DateOnly(*in.Tenancy.FixedTermEndDate),
			Priority:        models.MediumPriority,
			SourceType:      string(models.FixedTermEndEvent),
			SourceID:        in.Tenancy.ID,
			PropertyID:      in.Property.ID,
			PropertyAddress: in.Property.FullAddress(),
			TenancyID:       in.Tenancy.ID,
		})
	}

	sortEvents(events)
	return events, warnings, nil
}

// generateCertificateEvents emits one event per certificate type: the next
// expiry of the most recent certificate, or a "never obtained" event dated
// today when the property holds none of that type.
func generateCertificateEvents(prop models.Property, certs []models.Certificate, now time.Time) ([]models.ComplianceEvent, []string, error) {
	today := DateOnly(now)

	for _, cert := range certs {
		if DateOnly(cert.IssueDate).After(today) {
			return nil, nil, validationErrorf(
				"certificate %d (%s) has issue date %s in the future",
				cert.ID, cert.CertificateType, cert.IssueDate.Format("2006-01-02"))
		}
		if DateOnly(cert.ExpiryDate).Before(DateOnly(cert.IssueDate)) {
			return nil, nil, validationErrorf(
				"certificate %d (%s) expires %s before it was issued %s",
				cert.ID, cert.CertificateType,
				cert.ExpiryDate.Format("2006-01-02"), cert.IssueDate.Format("2006-01-02"))
		}
	}

	var events []models.ComplianceEvent
	var warnings []string

	for _, certType := range CertificateTypes() {
		rule, err := CertificateRuleFor(certType)
		if err != nil {
			return nil, nil, err
		}

		latest, tied := latestCertificate(certs, certType)
		if tied {
			warnings = append(warnings, fmt.Sprintf(
				"property %d has multiple %s certificates issued on the same date; using the most recently added",
				prop.ID, certType))
		}

		if latest == nil {
			events = append(events, models.ComplianceEvent{
				Kind:            models.CertificateMissingEvent,
				Name:            rule.Name + " never obtained",
				DueDate:         today,
				Priority:        models.CriticalPriority,
				SourceType:      "missing_" + string(certType),
				SourceID:        prop.ID,
				CertificateType: certType,
				PropertyID:      prop.ID,
				PropertyAddress: prop.FullAddress(),
			})
			continue
		}

		events = append(events, models.ComplianceEvent{
			Kind:            models.CertificateExpiryEvent,
			Name:            rule.Name + " expires",
			DueDate:         DateOnly(latest.ExpiryDate),
			Priority:        rule.Priority,
			SourceType:      "certificate",
			SourceID:        latest.ID,
			CertificateType: certType,
			PropertyID:      prop.ID,
			PropertyAddress: prop.FullAddress(),
		})
	}

	return events, warnings, nil
}

// generateDocumentEvents emits the statutory document-serve deadlines for a
// tenancy. A served flag short-circuits further reminders for that document;
// deposit-related deadlines apply only when a deposit was taken.
func generateDocumentEvents(prop models.Property, tenancy models.Tenancy) ([]models.ComplianceEvent, []string) {
	if tenancy.StartDate == nil {
		return nil, []string{fmt.Sprintf(
			"tenancy %d has no start date; statutory document deadlines not generated", tenancy.ID)}
	}
	start := DateOnly(*tenancy.StartDate)

	var events []models.ComplianceEvent
	for _, rule := range DocumentRules() {
		if rule.DepositOnly && tenancy.DepositAmount <= 0 {
			continue
		}

		served, servedDate := documentServedState(tenancy, rule.Kind)
		events = append(events, models.ComplianceEvent{
			Kind:            rule.Kind,
			Name:            rule.Name,
			DueDate:         start.AddDate(0, 0, rule.OffsetDays),
			Priority:        models.HighPriority,
			Served:          served,
			ServedDate:      servedDate,
			SourceType:      string(rule.Kind),
			SourceID:        tenancy.ID,
			PropertyID:      prop.ID,
			PropertyAddress: prop.FullAddress(),
			TenancyID:       tenancy.ID,
		})
	}
	return events, nil
}

func documentServedState(tenancy models.Tenancy, kind models.EventKind) (bool, *time.Time) {
	switch kind {
	case models.HowToRentEvent:
		return tenancy.HowToRentServed, tenancy.HowToRentDate
	case models.PrescribedInfoEvent:
		return tenancy.PrescribedInfoServed, tenancy.PrescribedInfoDate
	case models.DepositProtectionEvent:
		return tenancy.DepositProtected, tenancy.DepositProtectionDate
	}
	return false, nil
}

// latestCertificate picks the current certificate of a type: most recent
// issue date, ties broken by highest ID (latest insertion). The tied flag is
// set when a tie-break actually happened.
func latestCertificate(certs []models.Certificate, certType models.CertificateType) (*models.Certificate, bool) {
	var latest *models.Certificate
	tied := false

	for i := range certs {
		cert := &certs[i]
		if cert.CertificateType != certType {
			continue
		}
		if latest == nil {
			latest = cert
			continue
		}
		switch {
		case DateOnly(cert.IssueDate).After(DateOnly(latest.IssueDate)):
			latest = cert
			tied = false
		case SameDate(cert.IssueDate, latest.IssueDate):
			tied = true
			if cert.ID > latest.ID {
				latest = cert
			}
		}
	}
	return latest, tied
}

// sortEvents orders events by due date, then kind and source, so identical
// inputs always produce byte-identical output
func sortEvents(events []models.ComplianceEvent) {
	sort.Slice(events, func(i, j int) bool {
		return eventLess(events[i], events[j])
	})
}

func eventLess(a, b models.ComplianceEvent) bool {
	if !a.DueDate.Equal(b.DueDate) {
		return a.DueDate.Before(b.DueDate)
	}
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	if a.SourceType != b.SourceType {
		return a.SourceType < b.SourceType
	}
	return a.SourceID < b.SourceID
}
