package email

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/smtp"
	"time"

	"esg-assess/internal/config"
)

// Service sends notification mails over SMTP
type Service struct {
	config *config.EmailConfig
}

// NewService creates a new email service
func NewService(cfg *config.EmailConfig) *Service {
	return &Service{
		config: cfg,
	}
}

// Enabled reports whether an SMTP host is configured
func (s *Service) Enabled() bool {
	return s.config.SMTPHost != ""
}

// ReassessmentReminder is the data of one reassessment reminder mail
type ReassessmentReminder struct {
	FirstName      string
	BusinessName   string
	LastAssessedAt time.Time
	AppURL         string
}

// DaysSince is the age of the last assessment in whole days
func (r ReassessmentReminder) DaysSince() int {
	return int(time.Since(r.LastAssessedAt).Hours() / 24)
}

var reassessmentTemplate = template.Must(template.New("reassessment").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Time for a new ESG assessment</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #2e7d32;">Time to check your ESG progress</h2>
        <p>Hello{{if .FirstName}} {{.FirstName}}{{end}},</p>
        <p>The last ESG assessment for <strong>{{.BusinessName}}</strong> was {{.DaysSince}} days ago.</p>
        <div style="background-color: #e8f5e9; border-left: 4px solid #2e7d32; padding: 15px; margin: 20px 0;">
            <p style="margin: 5px 0;"><strong>Last assessed:</strong> {{.LastAssessedAt.Format "2006-01-02"}}</p>
        </div>
        <p>A fresh assessment shows how the actions on your roadmap have moved your scores.</p>
        <div style="text-align: center; margin: 30px 0;">
            <a href="{{.AppURL}}/assessments/new" style="background-color: #2e7d32; color: white; padding: 12px 30px; text-decoration: none; border-radius: 5px; display: inline-block;">Start assessment</a>
        </div>
        <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
        <p style="color: #999; font-size: 12px;">This is an automated email. Please do not reply.</p>
    </div>
</body>
</html>
`))

// RenderReassessmentReminder renders the reminder body
func RenderReassessmentReminder(r ReassessmentReminder) (string, error) {
	var buf bytes.Buffer
	if err := reassessmentTemplate.Execute(&buf, r); err != nil {
		return "", fmt.Errorf("failed to render reassessment reminder: %w", err)
	}
	return buf.String(), nil
}

// SendReassessmentReminder asks a business owner to assess again
func (s *Service) SendReassessmentReminder(to string, r ReassessmentReminder) error {
	if r.AppURL == "" {
		r.AppURL = s.config.AppURL
	}
	body, err := RenderReassessmentReminder(r)
	if err != nil {
		return err
	}
	return s.sendEmail(to, "Time for a new ESG assessment", body)
}

// buildMessage assembles the raw RFC 5322 message with a fixed header order
func buildMessage(from, to, subject, body string) []byte {
	var message bytes.Buffer
	fmt.Fprintf(&message, "From: %s\r\n", from)
	fmt.Fprintf(&message, "To: %s\r\n", to)
	fmt.Fprintf(&message, "Subject: %s\r\n", subject)
	message.WriteString("MIME-Version: 1.0\r\n")
	message.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	message.WriteString("\r\n")
	message.WriteString(body)
	return message.Bytes()
}

func (s *Service) sendEmail(to, subject, body string) error {
	message := buildMessage(s.config.SMTPFrom, to, subject, body)

	addr := net.JoinHostPort(s.config.SMTPHost, s.config.SMTPPort)
	slog.Debug("Attempting to connect to SMTP server", "address", addr)

	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		slog.Error("Failed to connect to SMTP server", "address", addr, "error", err)
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer func(conn net.Conn) {
		if err := conn.Close(); err != nil {
			slog.Debug("Failed to close SMTP connection", "error", err)
		}
	}(conn)

	client, err := smtp.NewClient(conn, s.config.SMTPHost)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer func(client *smtp.Client) {
		if err := client.Close(); err != nil {
			slog.Debug("Failed to close SMTP client", "error", err)
		}
	}(client)

	// Development relays such as Mailpit accept unauthenticated mail
	if s.config.SMTPUsername != "" && s.config.SMTPPassword != "" {
		auth := smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)
		if err := client.Auth(auth); err != nil {
			slog.Warn("SMTP authentication failed, sending unauthenticated", "error", err)
		}
	}

	if err := client.Mail(s.config.SMTPFrom); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to initiate data transfer: %w", err)
	}
	if _, err := wc.Write(message); err != nil {
		_ = wc.Close()
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to finish message: %w", err)
	}

	slog.Info("Email sent successfully", "to", to)
	return client.Quit()
}
