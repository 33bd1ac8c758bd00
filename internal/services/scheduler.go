package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"landlordhq/internal/models"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DueReminder is one (event, lead time) pair that is due today and has no
// ledger entry yet
type DueReminder struct {
	Name            string
	PropertyAddress string
	DueDate         time.Time
	DaysUntilDue    int
	LeadDays        int
	LeadLabel       string
	ItemType        string
	ItemID          uint
}

// ReminderMailer dispatches one grouped digest per user per pass. The
// scheduler treats each call as a single attempt; transport-level retries
// live behind this interface.
type ReminderMailer interface {
	SendReminderDigest(toEmail, toName string, items []DueReminder) error
}

// RunOutcome summarises what happened for one user during a reminder pass
type RunOutcome string

const (
	OutcomeSent    RunOutcome = "sent"
	OutcomeSkipped RunOutcome = "skipped"
	OutcomeFailed  RunOutcome = "failed"
)

// UserRunResult is the per-user result of a reminder pass
type UserRunResult struct {
	UserID  uint       `json:"user_id"`
	Email   string     `json:"email"`
	Outcome RunOutcome `json:"outcome"`
	Sent    int        `json:"sent"`
	Error   string     `json:"error,omitempty"`
}

// ReminderScheduler scans every active user's compliance timeline and sends
// the reminders that are newly due, recording each dispatched (item, lead
// time) pair in the reminder ledger so it is never sent twice.
type ReminderScheduler struct {
	db       *gorm.DB
	mailer   ReminderMailer
	timeline *TimelineService
	workers  int
}

func NewReminderScheduler(db *gorm.DB, mailer ReminderMailer, workers int) *ReminderScheduler {
	if workers < 1 {
		workers = 1
	}
	return &ReminderScheduler{
		db:       db,
		mailer:   mailer,
		timeline: NewTimelineService(db),
		workers:  workers,
	}
}

// Run executes one reminder pass at the given time. Users are processed
// independently in a bounded pool; one user's dispatch failure never affects
// another's. Cancelling the context stops picking up further users but never
// interrupts a user mid-dispatch.
func (s *ReminderScheduler) Run(ctx context.Context, now time.Time) ([]UserRunResult, error) {
	var users []models.User
	if err := s.db.Where("is_active = ? AND reminders_enabled = ?", true, true).
		Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}

	results := make([]UserRunResult, 0, len(users))
	resultCh := make(chan UserRunResult, len(users))

	group := &errgroup.Group{}
	group.SetLimit(s.workers)

	for _, user := range users {
		if ctx.Err() != nil {
			break
		}
		user := user
		group.Go(func() error {
			resultCh <- s.processUser(user, now)
			return nil
		})
	}

	group.Wait()
	close(resultCh)
	for result := range resultCh {
		results = append(results, result)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].UserID < results[j].UserID })
	return results, nil
}

// processUser computes the newly-due reminders for one user, dispatches a
// single digest, and records the ledger entries. Ledger writes happen only
// after a successful dispatch; a failed dispatch leaves every item eligible
// for the next pass.
func (s *ReminderScheduler) processUser(user models.User, now time.Time) UserRunResult {
	result := UserRunResult{UserID: user.ID, Email: user.NotificationAddress()}

	timeline, err := s.timeline.GetTimeline(user.ID, now)
	if err != nil {
		result.Outcome = OutcomeFailed
		result.Error = err.Error()
		return result
	}
	for _, problem := range timeline.Problems {
		log.Printf("Warning: skipping tenancy %d for user %d: %s", problem.TenancyID, user.ID, problem.Reason)
	}

	due, err := s.collectNewlyDue(user.ID, timeline.Events, now)
	if err != nil {
		result.Outcome = OutcomeFailed
		result.Error = err.Error()
		return result
	}
	if len(due) == 0 {
		result.Outcome = OutcomeSkipped
		return result
	}

	if err := s.mailer.SendReminderDigest(user.NotificationAddress(), user.Name, due); err != nil {
		dispatchErr := &DispatchError{Err: err}
		log.Printf("Error: %v (user %d)", dispatchErr, user.ID)
		result.Outcome = OutcomeFailed
		result.Error = dispatchErr.Error()
		return result
	}

	if err := s.recordSent(user.ID, due, now); err != nil {
		// The digest went out but the ledger write failed; the items stay
		// eligible and the next pass may send them again (at-least-once)
		log.Printf("Error: failed to record reminder ledger for user %d: %v", user.ID, err)
		result.Outcome = OutcomeFailed
		result.Error = "ledger write failed: " + err.Error()
		return result
	}

	result.Outcome = OutcomeSent
	result.Sent = len(due)
	return result
}

// collectNewlyDue finds every (event, lead time) pair where due date minus
// the lead time lands exactly on today and no ledger entry exists yet.
// Date-only comparison: the scheduler may run at any time of day.
func (s *ReminderScheduler) collectNewlyDue(userID uint, entries []TimelineEntry, now time.Time) ([]DueReminder, error) {
	var due []DueReminder

	for _, entry := range entries {
		if entry.Served {
			continue
		}

		for _, lead := range ReminderSchedule {
			if !SameDate(entry.DueDate.AddDate(0, 0, -lead.Days), now) {
				continue
			}

			var count int64
			err := s.db.Model(&models.ReminderSent{}).
				Where("user_id = ? AND item_type = ? AND item_id = ? AND lead_days = ?",
					userID, entry.SourceType, entry.SourceID, lead.Days).
				Count(&count).Error
			if err != nil {
				return nil, fmt.Errorf("failed to check reminder ledger: %w", err)
			}
			if count > 0 {
				continue
			}

			due = append(due, DueReminder{
				Name:            entry.Name,
				PropertyAddress: entry.PropertyAddress,
				DueDate:         entry.DueDate,
				DaysUntilDue:    entry.DaysRemaining,
				LeadDays:        lead.Days,
				LeadLabel:       lead.Label,
				ItemType:        entry.SourceType,
				ItemID:          entry.SourceID,
			})
		}
	}
	return due, nil
}

// recordSent writes the ledger rows for a dispatched digest in one
// transaction. A conflicting row means an overlapping run already recorded
// that (item, lead time) pair, which counts as handled, not as an error, so
// inserts use ON CONFLICT DO NOTHING against the dedup index.
func (s *ReminderScheduler) recordSent(userID uint, due []DueReminder, now time.Time) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range due {
			entry := models.ReminderSent{
				UserID:   userID,
				ItemType: item.ItemType,
				ItemID:   item.ItemID,
				LeadDays: item.LeadDays,
				SentAt:   now,
			}
			err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&entry).Error
			if err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					continue
				}
				return err
			}
		}
		return nil
	})
}
