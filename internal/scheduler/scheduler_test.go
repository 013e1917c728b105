package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"esg-assess/internal/config"
	"esg-assess/internal/email"
	"esg-assess/internal/models"
)

func TestParseCron(t *testing.T) {
	tests := []struct {
		expr string
		want schedule
	}{
		{"*/5 * * * *", schedule{interval: 5 * time.Minute}},
		{"30 */2 * * *", schedule{hourEvery: 2, minute: 30}},
		{"0 3 * * *", schedule{hour: 3}},
		{"0 9 * * 1", schedule{hour: 9, weekday: time.Monday, hasWeekday: true}},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := parseCron(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "0 9 * *", "61 9 * * *", "0 24 * * *", "0 9 * * 7", "*/0 * * * *"} {
		_, err := parseCron(bad)
		assert.Error(t, err, bad)
	}
}

func TestNextRuns(t *testing.T) {
	// Wednesday
	from := time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2026, 10, 15, 3, 0, 0, 0, time.UTC), nextDailyRun(from, 3, 0))
	assert.Equal(t, time.Date(2026, 10, 14, 11, 0, 0, 0, time.UTC), nextDailyRun(from, 11, 0))
	assert.Equal(t, time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC), nextWeekday(from, time.Monday, 9, 0))
	assert.Equal(t, time.Date(2026, 10, 21, 10, 0, 0, 0, time.UTC), nextWeekday(from, time.Wednesday, 10, 0))
	assert.Equal(t, time.Date(2026, 10, 14, 12, 15, 0, 0, time.UTC), nextHourlyInterval(from, 4, 15))
}

type fakePurger struct {
	deleted int64
	calls   int
}

func (f *fakePurger) PurgeExpired(context.Context) (int64, error) {
	f.calls++
	return f.deleted, nil
}

type fakeStale struct {
	cutoff     time.Time
	candidates []models.ReassessmentCandidate
}

func (f *fakeStale) ListStale(_ context.Context, cutoff time.Time) ([]models.ReassessmentCandidate, error) {
	f.cutoff = cutoff
	return f.candidates, nil
}

type fakeMailer struct {
	sent []string
	fail string
}

func (f *fakeMailer) Enabled() bool { return true }

func (f *fakeMailer) SendReassessmentReminder(to string, _ email.ReassessmentReminder) error {
	if to == f.fail {
		return errors.New("smtp down")
	}
	f.sent = append(f.sent, to)
	return nil
}

func TestPurgeChats(t *testing.T) {
	purger := &fakePurger{deleted: 3}
	s := NewScheduler(purger, &fakeStale{}, &fakeMailer{}, &config.SchedulerConfig{})

	s.purgeChats(context.Background())
	assert.Equal(t, 1, purger.calls)
}

func TestSendReassessmentReminders(t *testing.T) {
	stale := &fakeStale{candidates: []models.ReassessmentCandidate{
		{UserID: 1, Email: "a@example.com", BusinessName: "A"},
		{UserID: 2, Email: "b@example.com", BusinessName: "B"},
		{UserID: 3, Email: "c@example.com", BusinessName: "C"},
	}}
	mailer := &fakeMailer{fail: "b@example.com"}
	s := NewScheduler(&fakePurger{}, stale, mailer, &config.SchedulerConfig{ReassessmentAfterDays: 90})

	s.sendReassessmentReminders(context.Background())

	assert.Equal(t, []string{"a@example.com", "c@example.com"}, mailer.sent)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, -90), stale.cutoff, time.Minute)
}

func TestStartStop(t *testing.T) {
	s := NewScheduler(&fakePurger{}, &fakeStale{}, &fakeMailer{}, &config.SchedulerConfig{
		ChatRetentionCron:      "0 3 * * *",
		ReassessmentCron:       "invalid",
		EnableChatRetention:    true,
		EnableReassessmentMail: true,
	})
	s.Start()
	s.Stop()
}
