package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"esg-assess/internal/config"
	"esg-assess/internal/email"
	"esg-assess/internal/models"
)

// ChatPurger deletes expired chat transcripts
type ChatPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// StaleAssessments lists businesses whose latest assessment predates cutoff
type StaleAssessments interface {
	ListStale(ctx context.Context, cutoff time.Time) ([]models.ReassessmentCandidate, error)
}

// Mailer sends reassessment reminders
type Mailer interface {
	Enabled() bool
	SendReassessmentReminder(to string, r email.ReassessmentReminder) error
}

// taskTimeout bounds a single run of a scheduled task
const taskTimeout = 5 * time.Minute

// Scheduler handles periodic tasks
type Scheduler struct {
	chats       ChatPurger
	assessments StaleAssessments
	mailer      Mailer
	config      *config.SchedulerConfig
	stopChan    chan struct{}
}

// NewScheduler creates a new scheduler
func NewScheduler(chats ChatPurger, assessments StaleAssessments, mailer Mailer, cfg *config.SchedulerConfig) *Scheduler {
	return &Scheduler{
		chats:       chats,
		assessments: assessments,
		mailer:      mailer,
		config:      cfg,
		stopChan:    make(chan struct{}),
	}
}

// Start starts all scheduled tasks
func (s *Scheduler) Start() {
	slog.Info("Starting scheduler",
		"chat_retention_enabled", s.config.EnableChatRetention,
		"reassessment_mail_enabled", s.config.EnableReassessmentMail)

	if s.config.EnableChatRetention {
		if err := s.startCronTask(s.config.ChatRetentionCron, "chat_retention", s.purgeChats); err != nil {
			slog.Error("Failed to start chat retention", "error", err)
		}
	}

	if s.config.EnableReassessmentMail {
		if s.mailer == nil || !s.mailer.Enabled() {
			slog.Warn("Reassessment reminders enabled but no SMTP host configured")
		} else if err := s.startCronTask(s.config.ReassessmentCron, "reassessment_reminders", s.sendReassessmentReminders); err != nil {
			slog.Error("Failed to start reassessment reminders", "error", err)
		}
	}

	slog.Info("Scheduler started")
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	slog.Info("Stopping scheduler")
	close(s.stopChan)
}

// schedule describes when a task runs. A zero interval means a fixed time of
// day, optionally restricted to one weekday.
type schedule struct {
	interval   time.Duration
	hourEvery  int
	minute     int
	hour       int
	weekday    time.Weekday
	hasWeekday bool
}

// parseCron understands the subset "minute hour * * weekday" with */n in
// the minute or hour field. Examples: "0 9 * * 1" is Monday 9 AM, "0 3 * * *"
// is daily 3 AM, "*/5 * * * *" is every 5 minutes.
func parseCron(expr string) (schedule, error) {
	parts := strings.Fields(expr)
	if len(parts) != 5 {
		return schedule{}, fmt.Errorf("invalid cron expression: %s (expected 5 fields)", expr)
	}

	if strings.HasPrefix(parts[0], "*/") {
		interval, err := strconv.Atoi(parts[0][2:])
		if err != nil || interval < 1 || interval > 59 {
			return schedule{}, fmt.Errorf("invalid minute interval in cron: %s", parts[0])
		}
		return schedule{interval: time.Duration(interval) * time.Minute}, nil
	}

	minute, err := strconv.Atoi(parts[0])
	if err != nil || minute < 0 || minute > 59 {
		return schedule{}, fmt.Errorf("invalid minute in cron: %s", parts[0])
	}

	if strings.HasPrefix(parts[1], "*/") {
		interval, err := strconv.Atoi(parts[1][2:])
		if err != nil || interval < 1 || interval > 23 {
			return schedule{}, fmt.Errorf("invalid hour interval in cron: %s", parts[1])
		}
		return schedule{hourEvery: interval, minute: minute}, nil
	}

	hour, err := strconv.Atoi(parts[1])
	if err != nil || hour < 0 || hour > 23 {
		return schedule{}, fmt.Errorf("invalid hour in cron: %s", parts[1])
	}

	sched := schedule{hour: hour, minute: minute}
	if parts[4] != "*" {
		weekday, err := strconv.Atoi(parts[4])
		if err != nil || weekday < 0 || weekday > 6 {
			return schedule{}, fmt.Errorf("invalid weekday in cron: %s (0-6, 0=Sunday)", parts[4])
		}
		sched.weekday = time.Weekday(weekday)
		sched.hasWeekday = true
	}
	return sched, nil
}

// next returns the first run strictly after from
func (c schedule) next(from time.Time) time.Time {
	switch {
	case c.interval > 0:
		return from.Add(c.interval)
	case c.hourEvery > 0:
		return nextHourlyInterval(from, c.hourEvery, c.minute)
	case c.hasWeekday:
		return nextWeekday(from, c.weekday, c.hour, c.minute)
	default:
		return nextDailyRun(from, c.hour, c.minute)
	}
}

func (s *Scheduler) startCronTask(cronExpr, taskName string, task func(context.Context)) error {
	sched, err := parseCron(cronExpr)
	if err != nil {
		return err
	}
	go s.run(sched, taskName, task)
	return nil
}

func (s *Scheduler) run(sched schedule, taskName string, task func(context.Context)) {
	for {
		now := time.Now()
		next := sched.next(now)
		slog.Debug("Next task run scheduled", "task", taskName, "next_run", next.Format("2006-01-02 15:04:05"))

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-timer.C:
			slog.Info("Running scheduled task", "task", taskName)
			ctx, cancel := context.WithTimeout(context.Background(), taskTimeout)
			task(ctx)
			cancel()
		case <-s.stopChan:
			timer.Stop()
			return
		}
	}
}

func nextHourlyInterval(from time.Time, hourInterval, minute int) time.Time {
	next := time.Date(from.Year(), from.Month(), from.Day(), from.Hour(), minute, 0, 0, from.Location())
	if !next.After(from) {
		next = next.Add(time.Hour)
	}
	for next.Hour()%hourInterval != 0 {
		next = next.Add(time.Hour)
	}
	return next
}

func nextWeekday(from time.Time, weekday time.Weekday, hour, minute int) time.Time {
	next := time.Date(from.Year(), from.Month(), from.Day(), hour, minute, 0, 0, from.Location())

	daysUntil := int(weekday - from.Weekday())
	if daysUntil < 0 {
		daysUntil += 7
	}
	next = next.AddDate(0, 0, daysUntil)

	if !next.After(from) {
		next = next.AddDate(0, 0, 7)
	}
	return next
}

func nextDailyRun(from time.Time, hour, minute int) time.Time {
	next := time.Date(from.Year(), from.Month(), from.Day(), hour, minute, 0, 0, from.Location())
	if !next.After(from) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func (s *Scheduler) purgeChats(ctx context.Context) {
	deleted, err := s.chats.PurgeExpired(ctx)
	if err != nil {
		slog.Error("Failed to purge chat sessions", "error", err)
		return
	}
	slog.Info("Chat retention completed", "sessions_deleted", deleted)
}

// sendReassessmentReminders mails every business whose latest assessment is
// older than the configured age. Reminders repeat on every run until the
// business assesses again.
func (s *Scheduler) sendReassessmentReminders(ctx context.Context) {
	cutoff := time.Now().AddDate(0, 0, -s.config.ReassessmentAfterDays)
	candidates, err := s.assessments.ListStale(ctx, cutoff)
	if err != nil {
		slog.Error("Failed to list stale assessments", "error", err)
		return
	}

	sent := 0
	for _, c := range candidates {
		err := s.mailer.SendReassessmentReminder(c.Email, email.ReassessmentReminder{
			FirstName:      c.FirstName,
			BusinessName:   c.BusinessName,
			LastAssessedAt: c.LastAssessedAt,
		})
		if err != nil {
			slog.Error("Failed to send reassessment reminder", "user_id", c.UserID, "error", err)
			continue
		}
		sent++
	}

	slog.Info("Reassessment reminders completed", "candidates", len(candidates), "reminders_sent", sent)
}
