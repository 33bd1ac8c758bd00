package services

import (
	"context"
	"log"
	"os"
	"time"

	"gorm.io/gorm"
)

const defaultCheckInterval = time.Hour

// ReminderWorker periodically triggers a reminder pass. The ledger makes
// repeated passes on the same day idempotent, so the interval only controls
// how soon after midnight newly-due reminders go out.
type ReminderWorker struct {
	scheduler *ReminderScheduler
	interval  time.Duration
}

func NewReminderWorker(db *gorm.DB, mailer ReminderMailer, workers int) *ReminderWorker {
	interval := defaultCheckInterval
	if raw := os.Getenv("REMINDER_CHECK_INTERVAL"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			log.Printf("Warning: invalid REMINDER_CHECK_INTERVAL %q, using %s", raw, defaultCheckInterval)
		} else {
			interval = parsed
		}
	}

	return &ReminderWorker{
		scheduler: NewReminderScheduler(db, mailer, workers),
		interval:  interval,
	}
}

// Scheduler exposes the underlying scheduler for the cron-triggered endpoint
func (w *ReminderWorker) Scheduler() *ReminderScheduler {
	return w.scheduler
}

func (w *ReminderWorker) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *ReminderWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.runPass(ctx)
		}
	}
}

func (w *ReminderWorker) runPass(ctx context.Context) {
	results, err := w.scheduler.Run(ctx, time.Now())
	if err != nil {
		log.Printf("Error: reminder pass failed: %v", err)
		return
	}

	var sent, skipped, failed int
	for _, result := range results {
		switch result.Outcome {
		case OutcomeSent:
			sent++
		case OutcomeSkipped:
			skipped++
		case OutcomeFailed:
			failed++
		}
	}
	if sent > 0 || failed > 0 {
		log.Printf("Reminder pass complete: %d sent, %d skipped, %d failed", sent, skipped, failed)
	}
}
