package email

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"esg-assess/internal/config"
)

func TestRenderReassessmentReminder(t *testing.T) {
	body, err := RenderReassessmentReminder(ReassessmentReminder{
		FirstName:      "Ada",
		BusinessName:   "Green <Corner> Shop",
		LastAssessedAt: time.Now().AddDate(0, 0, -95),
		AppURL:         "https://esg.example.com",
	})
	require.NoError(t, err)

	assert.Contains(t, body, "Hello Ada,")
	assert.Contains(t, body, "Green &lt;Corner&gt; Shop")
	assert.Contains(t, body, "95 days ago")
	assert.Contains(t, body, `href="https://esg.example.com/assessments/new"`)
}

func TestRenderReassessmentReminderWithoutName(t *testing.T) {
	body, err := RenderReassessmentReminder(ReassessmentReminder{BusinessName: "Shop", LastAssessedAt: time.Now()})
	require.NoError(t, err)
	assert.Contains(t, body, "Hello,")
}

func TestBuildMessage(t *testing.T) {
	msg := string(buildMessage("noreply@example.com", "owner@example.com", "Subject line", "<p>hi</p>"))

	header, body, ok := strings.Cut(msg, "\r\n\r\n")
	require.True(t, ok)
	assert.Equal(t, "<p>hi</p>", body)
	assert.Equal(t, []string{
		"From: noreply@example.com",
		"To: owner@example.com",
		"Subject: Subject line",
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=UTF-8",
	}, strings.Split(header, "\r\n"))
}

func TestEnabled(t *testing.T) {
	assert.False(t, NewService(&config.EmailConfig{}).Enabled())
	assert.True(t, NewService(&config.EmailConfig{SMTPHost: "localhost"}).Enabled())
}
