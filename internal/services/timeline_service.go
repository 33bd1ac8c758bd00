package services

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"landlordhq/internal/models"

	"gorm.io/gorm"
)

// TimelineEntry is a compliance event with its urgency classification
// attached for presentation
type TimelineEntry struct {
	models.ComplianceEvent
	Status        UrgencyStatus `json:"status"`
	DaysRemaining int           `json:"days_remaining"`
}

// TimelineProblem reports a tenancy whose timeline could not be generated.
// One bad record degrades to "skip and report", never to an aborted request.
type TimelineProblem struct {
	PropertyID      uint   `json:"property_id"`
	PropertyAddress string `json:"property_address"`
	TenancyID       uint   `json:"tenancy_id,omitempty"`
	Reason          string `json:"reason"`
}

// Timeline is the full classified compliance calendar for one user
type Timeline struct {
	Events   []TimelineEntry   `json:"events"`
	Problems []TimelineProblem `json:"problems,omitempty"`
	Warnings []string          `json:"warnings,omitempty"`
}

// PreviewItem is an event that sits inside the reminder window, labelled
// with the schedule bucket it falls in
type PreviewItem struct {
	TimelineEntry
	LeadLabel string `json:"lead_label"`
}

// TimelineService derives compliance timelines from a user's stored
// properties, tenancies and certificates. Every query it issues is scoped by
// the owning user.
type TimelineService struct {
	db *gorm.DB
}

func NewTimelineService(db *gorm.DB) *TimelineService {
	return &TimelineService{db: db}
}

// GetTimeline regenerates and classifies the full compliance timeline for a
// user at the given time. Tenancies with contradictory source dates are
// reported as problems alongside the events of the healthy ones.
func (s *TimelineService) GetTimeline(userID uint, now time.Time) (*Timeline, error) {
	var properties []models.Property
	if err := s.db.Where("user_id = ?", userID).Order("id").Find(&properties).Error; err != nil {
		return nil, fmt.Errorf("failed to load properties: %w", err)
	}

	timeline := &Timeline{Events: []TimelineEntry{}}
	seen := make(map[string]bool)

	for _, prop := range properties {
		var certs []models.Certificate
		if err := s.db.Where("user_id = ? AND property_id = ?", userID, prop.ID).
			Order("id").Find(&certs).Error; err != nil {
			return nil, fmt.Errorf("failed to load certificates for property %d: %w", prop.ID, err)
		}

		var tenancies []models.Tenancy
		if err := s.db.Where("user_id = ? AND property_id = ? AND is_active = ?", userID, prop.ID, true).
			Order("id").Find(&tenancies).Error; err != nil {
			return nil, fmt.Errorf("failed to load tenancies for property %d: %w", prop.ID, err)
		}

		if len(tenancies) == 0 {
			// Vacant property: certificate obligations still apply
			events, warnings, err := generateCertificateEvents(prop, certs, now)
			if err != nil {
				timeline.Problems = append(timeline.Problems, problemFor(prop, 0, err))
				continue
			}
			timeline.Warnings = append(timeline.Warnings, warnings...)
			appendUnseen(timeline, events, seen, now)
			continue
		}

		for _, tenancy := range tenancies {
			events, warnings, err := GenerateTenancyTimeline(TimelineInput{
				Property:     prop,
				Tenancy:      tenancy,
				Certificates: certs,
			}, now)
			if err != nil {
				timeline.Problems = append(timeline.Problems, problemFor(prop, tenancy.ID, err))
				continue
			}
			timeline.Warnings = append(timeline.Warnings, warnings...)
			appendUnseen(timeline, events, seen, now)
		}
	}

	sortEntries(timeline.Events)
	return timeline, nil
}

// GetPendingRemindersPreview returns the unserved events due within the
// furthest lead time, i.e. everything the reminder passes will be nagging
// about over the coming weeks.
func (s *TimelineService) GetPendingRemindersPreview(userID uint, now time.Time) ([]PreviewItem, error) {
	timeline, err := s.GetTimeline(userID, now)
	if err != nil {
		return nil, err
	}

	items := []PreviewItem{}
	for _, entry := range timeline.Events {
		if entry.Served {
			continue
		}
		// Due today still counts; only past-due items fall out of the window
		if entry.DaysRemaining < 0 || entry.DaysRemaining > FurthestLeadDays() {
			continue
		}
		items = append(items, PreviewItem{
			TimelineEntry: entry,
			LeadLabel:     LeadLabelFor(entry.DaysRemaining),
		})
	}
	return items, nil
}

func appendUnseen(timeline *Timeline, events []models.ComplianceEvent, seen map[string]bool, now time.Time) {
	for _, event := range events {
		// Property-level events reappear for every active tenancy of the
		// same property; keep the first occurrence only
		key := fmt.Sprintf("%s/%d", event.SourceType, event.SourceID)
		if seen[key] {
			continue
		}
		seen[key] = true
		timeline.Events = append(timeline.Events, TimelineEntry{
			ComplianceEvent: event,
			Status:          ClassifyUrgency(event, now),
			DaysRemaining:   DaysBetween(now, event.DueDate),
		})
	}
}

func problemFor(prop models.Property, tenancyID uint, err error) TimelineProblem {
	var verr *ValidationError
	reason := err.Error()
	if errors.As(err, &verr) {
		reason = verr.Msg
	}
	return TimelineProblem{
		PropertyID:      prop.ID,
		PropertyAddress: prop.FullAddress(),
		TenancyID:       tenancyID,
		Reason:          reason,
	}
}

func sortEntries(entries []TimelineEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return eventLess(entries[i].ComplianceEvent, entries[j].ComplianceEvent)
	})
}
