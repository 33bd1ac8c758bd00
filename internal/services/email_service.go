package services

import (
	"fmt"
	"html"
	"os"
	"strings"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

const dispatchAttempts = 3

type EmailService struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

func NewEmailService() *EmailService {
	apiKey := os.Getenv("SENDGRID_API_KEY")
	fromEmail := os.Getenv("SENDGRID_NOTIFICATIONS_FROM_EMAIL")
	fromName := os.Getenv("SENDGRID_FROM_NAME")

	client := sendgrid.NewSendClient(apiKey)

	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

// SendReminderDigest sends one grouped compliance reminder email. The send
// is retried with backoff a bounded number of times per pass; items stay
// eligible for the next pass if every attempt fails.
func (s *EmailService) SendReminderDigest(toEmail, toName string, items []DueReminder) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(toName, toEmail)

	subject := fmt.Sprintf("Compliance reminders: %d item(s) need attention", len(items))
	plainContent := BuildDigestBody(items)
	htmlContent := buildDigestHTML(items)

	message := mail.NewSingleEmail(from, subject, to, plainContent, htmlContent)

	var lastErr error
	for attempt := 1; attempt <= dispatchAttempts; attempt++ {
		response, err := s.client.Send(message)
		if err == nil && response.StatusCode < 400 {
			return nil
		}
		if err != nil {
			lastErr = err
		} else {
			lastErr = fmt.Errorf("sendgrid returned status %d", response.StatusCode)
		}
		if attempt < dispatchAttempts {
			time.Sleep(time.Duration(attempt) * 2 * time.Second)
		}
	}
	return fmt.Errorf("failed to send digest to %s after %d attempts: %w", toEmail, dispatchAttempts, lastErr)
}

// BuildDigestBody renders the plain-text digest, grouping items by lead-time
// bucket with the most urgent group first
func BuildDigestBody(items []DueReminder) string {
	var lines []string
	lines = append(lines,
		"LANDLORDHQ - COMPLIANCE REMINDERS",
		strings.Repeat("=", 50),
		"",
	)

	for _, group := range groupByLead(items) {
		lines = append(lines,
			fmt.Sprintf("DUE IN %s (%d item(s))", strings.ToUpper(group.label), len(group.items)),
			strings.Repeat("-", 40),
		)
		for _, item := range group.items {
			lines = append(lines,
				fmt.Sprintf("  - %s", item.Name),
				fmt.Sprintf("    Property: %s", item.PropertyAddress),
				fmt.Sprintf("    Due: %s (%d days)", item.DueDate.Format("02 January 2006"), item.DaysUntilDue),
				"",
			)
		}
		lines = append(lines, "")
	}

	lines = append(lines,
		"---",
		"Log in to LandlordHQ to take action.",
		"",
		"This is an automated reminder. Do not reply to this email.",
	)
	return strings.Join(lines, "\n")
}

func buildDigestHTML(items []DueReminder) string {
	var b strings.Builder
	b.WriteString("<h2>Compliance reminders</h2>")
	for _, group := range groupByLead(items) {
		b.WriteString(fmt.Sprintf("<h3>Due in %s</h3><ul>", html.EscapeString(group.label)))
		for _, item := range group.items {
			b.WriteString(fmt.Sprintf("<li><strong>%s</strong> at %s, due %s (%d days)</li>",
				html.EscapeString(item.Name),
				html.EscapeString(item.PropertyAddress),
				item.DueDate.Format("02 January 2006"),
				item.DaysUntilDue))
		}
		b.WriteString("</ul>")
	}
	b.WriteString("<p>Log in to LandlordHQ to take action.</p>")
	return b.String()
}

type leadGroup struct {
	label string
	items []DueReminder
}

// groupByLead buckets items by their schedule label, nearest deadline first
func groupByLead(items []DueReminder) []leadGroup {
	byLabel := make(map[string][]DueReminder)
	for _, item := range items {
		byLabel[item.LeadLabel] = append(byLabel[item.LeadLabel], item)
	}

	var groups []leadGroup
	for i := len(ReminderSchedule) - 1; i >= 0; i-- {
		label := ReminderSchedule[i].Label
		if bucket, ok := byLabel[label]; ok {
			groups = append(groups, leadGroup{label: label, items: bucket})
		}
	}
	return groups
}
