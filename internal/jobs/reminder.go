package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/taskdeck/taskdeck/internal/platform/mail"
)

// ReminderJob sleeps until its alert time and then emails the user a
// nudge about their open tasks.
type ReminderJob struct {
	sender  mail.Sender
	to      string
	alertAt time.Time
}

// NewReminderJob creates a reminder for the given recipient and alert
// time.
func NewReminderJob(sender mail.Sender, to string, alertAt time.Time) *ReminderJob {
	return &ReminderJob{
		sender:  sender,
		to:      to,
		alertAt: alertAt,
	}
}

// Type implements the Job interface.
func (j *ReminderJob) Type() string {
	return "reminder"
}

// AlertAt returns the scheduled alert time.
func (j *ReminderJob) AlertAt() time.Time {
	return j.alertAt
}

// Execute waits until the alert time and sends the reminder. A runner
// shutdown cancels the wait.
func (j *ReminderJob) Execute(ctx context.Context) error {
	wait := time.Until(j.alertAt)
	if wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	subject := "Task reminder"
	body := "This is your scheduled reminder to check your task list."
	if err := j.sender.Send(ctx, j.to, subject, body); err != nil {
		return fmt.Errorf("failed to send reminder to %s: %w", j.to, err)
	}
	return nil
}

// ResolveAlertTime parses the requested alert time in the given IANA
// timezone and resolves it to an absolute instant. Accepted formats are
// a bare clock time ("15:04"), which resolves to its next occurrence in
// that zone, and RFC3339, which is taken as-is.
func ResolveAlertTime(alertTime, timezone string, now time.Time) (time.Time, error) {
	if absolute, err := time.Parse(time.RFC3339, alertTime); err == nil {
		return absolute, nil
	}

	loc := time.UTC
	if timezone != "" {
		var err error
		loc, err = time.LoadLocation(timezone)
		if err != nil {
			return time.Time{}, fmt.Errorf("unknown timezone %q: %w", timezone, err)
		}
	}

	clock, err := time.Parse("15:04", alertTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid alert time %q, want HH:MM or RFC3339: %w", alertTime, err)
	}

	local := now.In(loc)
	candidate := time.Date(local.Year(), local.Month(), local.Day(),
		clock.Hour(), clock.Minute(), 0, 0, loc)
	if !candidate.After(now) {
		// Already past for today, schedule for tomorrow.
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate, nil
}
