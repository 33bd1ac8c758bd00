package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"landlordhq/internal/database"
	"landlordhq/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

type sentDigest struct {
	toEmail string
	toName  string
	items   []DueReminder
}

// fakeMailer records digests and can be told to fail for specific addresses
type fakeMailer struct {
	mu      sync.Mutex
	failFor map[string]error
	digests []sentDigest
}

func (m *fakeMailer) SendReminderDigest(toEmail, toName string, items []DueReminder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.failFor[toEmail]; ok {
		return err
	}
	m.digests = append(m.digests, sentDigest{toEmail: toEmail, toName: toName, items: items})
	return nil
}

func (m *fakeMailer) sent() []sentDigest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentDigest(nil), m.digests...)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{SingularTable: true},
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	user := models.User{
		Email:            email,
		Name:             "Test Landlord",
		HashedPass:       "not-a-real-hash",
		RemindersEnabled: true,
		IsActive:         true,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedProperty(t *testing.T, db *gorm.DB, userID uint) models.Property {
	t.Helper()
	property := models.Property{
		UserID:       userID,
		Address:      "12 Rose Lane",
		Postcode:     "M1 2AB",
		PropertyType: models.HouseProperty,
	}
	require.NoError(t, db.Create(&property).Error)
	return property
}

func seedTenancy(t *testing.T, db *gorm.DB, userID, propertyID uint, start time.Time) models.Tenancy {
	t.Helper()
	tenancy := models.Tenancy{
		UserID:        userID,
		PropertyID:    propertyID,
		StartDate:     &start,
		RentAmount:    950,
		RentFrequency: models.MonthlyRent,
		IsActive:      true,
	}
	require.NoError(t, db.Create(&tenancy).Error)
	return tenancy
}

func seedCertificate(t *testing.T, db *gorm.DB, userID, propertyID uint, certType models.CertificateType, issue, expiry time.Time) models.Certificate {
	t.Helper()
	cert := models.Certificate{
		UserID:          userID,
		PropertyID:      propertyID,
		CertificateType: certType,
		IssueDate:       issue,
		ExpiryDate:      expiry,
	}
	require.NoError(t, db.Create(&cert).Error)
	return cert
}

func ledgerCount(t *testing.T, db *gorm.DB, userID uint) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.ReminderSent{}).Where("user_id = ?", userID).Count(&count).Error)
	return count
}

func resultFor(t *testing.T, results []UserRunResult, userID uint) UserRunResult {
	t.Helper()
	for _, result := range results {
		if result.UserID == userID {
			return result
		}
	}
	t.Fatalf("no result for user %d", userID)
	return UserRunResult{}
}

func TestSchedulerSendsDocumentRemindersOnExactLeadDates(t *testing.T) {
	db := newTestDB(t)
	mailer := &fakeMailer{}
	scheduler := NewReminderScheduler(db, mailer, 1)

	user := seedUser(t, db, "landlord@example.com")
	property := seedProperty(t, db, user.ID)
	tenancy := seedTenancy(t, db, user.ID, property.ID, dateAt(2024, 1, 1))

	// How to Rent is due 2024-01-31; 2024-01-03 is exactly 28 days before
	results, err := scheduler.Run(context.Background(), dateAt(2024, 1, 3))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, OutcomeSent, results[0].Outcome)
	assert.Equal(t, 1, results[0].Sent)

	digests := mailer.sent()
	require.Len(t, digests, 1)
	assert.Equal(t, "landlord@example.com", digests[0].toEmail)
	require.Len(t, digests[0].items, 1)
	assert.Equal(t, string(models.HowToRentEvent), digests[0].items[0].ItemType)
	assert.Equal(t, tenancy.ID, digests[0].items[0].ItemID)
	assert.Equal(t, 28, digests[0].items[0].LeadDays)

	// Running again the same day sends nothing: the ledger already has the row
	results, err = scheduler.Run(context.Background(), dateAt(2024, 1, 3))
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, results[0].Outcome)
	assert.Len(t, mailer.sent(), 1)

	// A week later the 21-day lead fires, once
	results, err = scheduler.Run(context.Background(), dateAt(2024, 1, 10))
	require.NoError(t, err)
	assert.Equal(t, OutcomeSent, results[0].Outcome)

	digests = mailer.sent()
	require.Len(t, digests, 2)
	require.Len(t, digests[1].items, 1)
	assert.Equal(t, 21, digests[1].items[0].LeadDays)

	assert.Equal(t, int64(2), ledgerCount(t, db, user.ID))
}

func TestSchedulerMatchesLeadDatesExactly(t *testing.T) {
	db := newTestDB(t)
	mailer := &fakeMailer{}
	scheduler := NewReminderScheduler(db, mailer, 1)

	user := seedUser(t, db, "landlord@example.com")
	property := seedProperty(t, db, user.ID)
	now := dateAt(2024, 1, 15)

	// Expiry 8 days out sits between the 14 and 7 day leads: nothing fires
	cert := seedCertificate(t, db, user.ID, property.ID, models.GasSafetyCertificate,
		dateAt(2023, 1, 23), dateAt(2024, 1, 23))

	results, err := scheduler.Run(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, results[0].Outcome)
	assert.Empty(t, mailer.sent())

	// Move the expiry to exactly 7 days out and the 1-week reminder fires
	require.NoError(t, db.Model(&cert).
		Updates(map[string]interface{}{"issue_date": dateAt(2023, 1, 22), "expiry_date": dateAt(2024, 1, 22)}).Error)

	results, err = scheduler.Run(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSent, results[0].Outcome)

	digests := mailer.sent()
	require.Len(t, digests, 1)
	require.Len(t, digests[0].items, 1)
	assert.Equal(t, "certificate", digests[0].items[0].ItemType)
	assert.Equal(t, cert.ID, digests[0].items[0].ItemID)
	assert.Equal(t, 7, digests[0].items[0].LeadDays)
}

func TestSchedulerSkipsServedDocuments(t *testing.T) {
	db := newTestDB(t)
	mailer := &fakeMailer{}
	scheduler := NewReminderScheduler(db, mailer, 1)

	user := seedUser(t, db, "landlord@example.com")
	property := seedProperty(t, db, user.ID)
	tenancy := seedTenancy(t, db, user.ID, property.ID, dateAt(2024, 1, 1))

	served := dateAt(2024, 1, 2)
	require.NoError(t, db.Model(&tenancy).
		Updates(map[string]interface{}{"how_to_rent_served": true, "how_to_rent_date": served}).Error)

	results, err := scheduler.Run(context.Background(), dateAt(2024, 1, 3))
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, results[0].Outcome)
	assert.Empty(t, mailer.sent())
}

func TestSchedulerIsolatesUsers(t *testing.T) {
	db := newTestDB(t)
	mailer := &fakeMailer{}
	scheduler := NewReminderScheduler(db, mailer, 2)

	alice := seedUser(t, db, "alice@example.com")
	alicePlace := seedProperty(t, db, alice.ID)
	seedTenancy(t, db, alice.ID, alicePlace.ID, dateAt(2024, 1, 1))

	bob := seedUser(t, db, "bob@example.com")
	bobPlace := seedProperty(t, db, bob.ID)
	seedTenancy(t, db, bob.ID, bobPlace.ID, dateAt(2024, 1, 1))

	results, err := scheduler.Run(context.Background(), dateAt(2024, 1, 3))
	require.NoError(t, err)
	require.Len(t, results, 2)

	digests := mailer.sent()
	require.Len(t, digests, 2)
	for _, d := range digests {
		require.Len(t, d.items, 1, "digest for %s", d.toEmail)
	}

	assert.Equal(t, int64(1), ledgerCount(t, db, alice.ID))
	assert.Equal(t, int64(1), ledgerCount(t, db, bob.ID))
}

func TestSchedulerDispatchFailureLeavesItemsEligible(t *testing.T) {
	db := newTestDB(t)
	mailer := &fakeMailer{failFor: map[string]error{
		"landlord@example.com": errors.New("smtp unreachable"),
	}}
	scheduler := NewReminderScheduler(db, mailer, 1)

	user := seedUser(t, db, "landlord@example.com")
	property := seedProperty(t, db, user.ID)
	seedTenancy(t, db, user.ID, property.ID, dateAt(2024, 1, 1))

	results, err := scheduler.Run(context.Background(), dateAt(2024, 1, 3))
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailed, results[0].Outcome)
	assert.Contains(t, results[0].Error, "dispatch failed")

	// Nothing was recorded, so the next pass can retry the same reminder
	assert.Equal(t, int64(0), ledgerCount(t, db, user.ID))

	mailer.mu.Lock()
	delete(mailer.failFor, "landlord@example.com")
	mailer.mu.Unlock()

	results, err = scheduler.Run(context.Background(), dateAt(2024, 1, 3))
	require.NoError(t, err)
	assert.Equal(t, OutcomeSent, results[0].Outcome)
	assert.Equal(t, int64(1), ledgerCount(t, db, user.ID))
}

func TestSchedulerOneFailureDoesNotStopOthers(t *testing.T) {
	db := newTestDB(t)
	mailer := &fakeMailer{failFor: map[string]error{
		"alice@example.com": errors.New("mailbox full"),
	}}
	scheduler := NewReminderScheduler(db, mailer, 2)

	alice := seedUser(t, db, "alice@example.com")
	alicePlace := seedProperty(t, db, alice.ID)
	seedTenancy(t, db, alice.ID, alicePlace.ID, dateAt(2024, 1, 1))

	bob := seedUser(t, db, "bob@example.com")
	bobPlace := seedProperty(t, db, bob.ID)
	seedTenancy(t, db, bob.ID, bobPlace.ID, dateAt(2024, 1, 1))

	results, err := scheduler.Run(context.Background(), dateAt(2024, 1, 3))
	require.NoError(t, err)

	assert.Equal(t, OutcomeFailed, resultFor(t, results, alice.ID).Outcome)
	assert.Equal(t, OutcomeSent, resultFor(t, results, bob.ID).Outcome)

	digests := mailer.sent()
	require.Len(t, digests, 1)
	assert.Equal(t, "bob@example.com", digests[0].toEmail)
}

func TestSchedulerTreatsExistingLedgerRowAsHandled(t *testing.T) {
	db := newTestDB(t)
	mailer := &fakeMailer{}
	scheduler := NewReminderScheduler(db, mailer, 1)

	user := seedUser(t, db, "landlord@example.com")
	property := seedProperty(t, db, user.ID)
	tenancy := seedTenancy(t, db, user.ID, property.ID, dateAt(2024, 1, 1))

	// An earlier (or concurrent) run already recorded this reminder
	require.NoError(t, db.Create(&models.ReminderSent{
		UserID:   user.ID,
		ItemType: string(models.HowToRentEvent),
		ItemID:   tenancy.ID,
		LeadDays: 28,
		SentAt:   dateAt(2024, 1, 3),
	}).Error)

	results, err := scheduler.Run(context.Background(), dateAt(2024, 1, 3))
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, results[0].Outcome)
	assert.Empty(t, mailer.sent())
	assert.Equal(t, int64(1), ledgerCount(t, db, user.ID))
}

func TestSchedulerIgnoresDisabledAndInactiveUsers(t *testing.T) {
	db := newTestDB(t)
	mailer := &fakeMailer{}
	scheduler := NewReminderScheduler(db, mailer, 1)

	optedOut := seedUser(t, db, "optout@example.com")
	require.NoError(t, db.Model(&optedOut).Update("reminders_enabled", false).Error)
	place := seedProperty(t, db, optedOut.ID)
	seedTenancy(t, db, optedOut.ID, place.ID, dateAt(2024, 1, 1))

	results, err := scheduler.Run(context.Background(), dateAt(2024, 1, 3))
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Empty(t, mailer.sent())
}

func TestSchedulerUsesReminderEmailOverride(t *testing.T) {
	db := newTestDB(t)
	mailer := &fakeMailer{}
	scheduler := NewReminderScheduler(db, mailer, 1)

	user := seedUser(t, db, "landlord@example.com")
	require.NoError(t, db.Model(&user).Update("reminder_email", "alerts@example.com").Error)
	property := seedProperty(t, db, user.ID)
	seedTenancy(t, db, user.ID, property.ID, dateAt(2024, 1, 1))

	results, err := scheduler.Run(context.Background(), dateAt(2024, 1, 3))
	require.NoError(t, err)
	assert.Equal(t, OutcomeSent, results[0].Outcome)

	digests := mailer.sent()
	require.Len(t, digests, 1)
	assert.Equal(t, "alerts@example.com", digests[0].toEmail)
}

func TestSchedulerReportsBadTenancyWithoutAborting(t *testing.T) {
	db := newTestDB(t)
	mailer := &fakeMailer{}
	scheduler := NewReminderScheduler(db, mailer, 1)

	user := seedUser(t, db, "landlord@example.com")

	badPlace := seedProperty(t, db, user.ID)
	seedTenancy(t, db, user.ID, badPlace.ID, dateAt(2024, 1, 1))
	// Certificate issued in the future: this tenancy's timeline is invalid
	seedCertificate(t, db, user.ID, badPlace.ID, models.GasSafetyCertificate,
		dateAt(2024, 6, 1), dateAt(2025, 6, 1))

	goodPlace := seedProperty(t, db, user.ID)
	seedTenancy(t, db, user.ID, goodPlace.ID, dateAt(2024, 1, 1))

	results, err := scheduler.Run(context.Background(), dateAt(2024, 1, 3))
	require.NoError(t, err)
	assert.Equal(t, OutcomeSent, results[0].Outcome)

	// Only the healthy property's document reminder goes out
	digests := mailer.sent()
	require.Len(t, digests, 1)
	require.Len(t, digests[0].items, 1)
	assert.Equal(t, string(models.HowToRentEvent), digests[0].items[0].ItemType)
}

func TestSchedulerStopsBetweenUsersOnCancel(t *testing.T) {
	db := newTestDB(t)
	mailer := &fakeMailer{}
	scheduler := NewReminderScheduler(db, mailer, 1)

	alice := seedUser(t, db, "alice@example.com")
	alicePlace := seedProperty(t, db, alice.ID)
	seedTenancy(t, db, alice.ID, alicePlace.ID, dateAt(2024, 1, 1))

	bob := seedUser(t, db, "bob@example.com")
	bobPlace := seedProperty(t, db, bob.ID)
	seedTenancy(t, db, bob.ID, bobPlace.ID, dateAt(2024, 1, 1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Both users have a reminder due, but the cancelled context means no
	// further users are picked up: no digests, no ledger rows, no partial state
	results, err := scheduler.Run(ctx, dateAt(2024, 1, 3))
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Empty(t, mailer.sent())
	assert.Equal(t, int64(0), ledgerCount(t, db, alice.ID))
	assert.Equal(t, int64(0), ledgerCount(t, db, bob.ID))

	// A fresh run delivers everything the cancelled one left behind
	results, err = scheduler.Run(context.Background(), dateAt(2024, 1, 3))
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, OutcomeSent, resultFor(t, results, alice.ID).Outcome)
	assert.Equal(t, OutcomeSent, resultFor(t, results, bob.ID).Outcome)
}

func TestSchedulerIssueDateChangeKeepsExistingLedgerRows(t *testing.T) {
	db := newTestDB(t)
	mailer := &fakeMailer{}
	scheduler := NewReminderScheduler(db, mailer, 1)

	user := seedUser(t, db, "landlord@example.com")
	property := seedProperty(t, db, user.ID)
	cert := seedCertificate(t, db, user.ID, property.ID, models.GasSafetyCertificate,
		dateAt(2023, 4, 14), dateAt(2024, 4, 14))

	// 2024-01-15 is exactly 90 days before the expiry
	results, err := scheduler.Run(context.Background(), dateAt(2024, 1, 15))
	require.NoError(t, err)
	require.Equal(t, OutcomeSent, results[0].Outcome)
	require.Equal(t, int64(1), ledgerCount(t, db, user.ID))

	// Correcting the certificate's dates moves the deadline but must not
	// touch the reminder already on record
	require.NoError(t, db.Model(&cert).
		Updates(map[string]interface{}{"issue_date": dateAt(2023, 1, 29), "expiry_date": dateAt(2024, 1, 29)}).Error)

	results, err = scheduler.Run(context.Background(), dateAt(2024, 1, 22))
	require.NoError(t, err)
	require.Equal(t, OutcomeSent, results[0].Outcome)

	assert.Equal(t, int64(2), ledgerCount(t, db, user.ID))

	var original models.ReminderSent
	require.NoError(t, db.Where("user_id = ? AND item_id = ? AND lead_days = ?",
		user.ID, cert.ID, 90).First(&original).Error)
	assert.True(t, SameDate(original.SentAt, dateAt(2024, 1, 15)),
		"90-day ledger row should keep its original sent date")

	var followup models.ReminderSent
	require.NoError(t, db.Where("user_id = ? AND item_id = ? AND lead_days = ?",
		user.ID, cert.ID, 7).First(&followup).Error)
	assert.True(t, SameDate(followup.SentAt, dateAt(2024, 1, 22)))
}
