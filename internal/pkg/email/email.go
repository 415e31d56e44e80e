package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"time"

	"github.com/leavedesk/leave-backend-go/internal/config"
)

//go:embed templates/*.html
var templateFS embed.FS

// Notifier sends leave lifecycle emails. Delivery is best effort: callers log
// failures and carry on.
type Notifier interface {
	SendLeaveApplied(to string, start, end time.Time) error
	SendLeaveApproved(to string, start, end time.Time, approvedBy string) error
	SendLeaveRejected(to string, start, end time.Time, rejectedBy string) error
}

type smtpNotifier struct {
	cfg       config.SMTPConfig
	templates *template.Template
}

// NewNotifier creates an SMTP-backed notifier.
func NewNotifier(cfg config.SMTPConfig) (Notifier, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	return &smtpNotifier{
		cfg:       cfg,
		templates: tmpl,
	}, nil
}

type leaveEmailData struct {
	StartDate string
	EndDate   string
	DecidedBy string
}

func (s *smtpNotifier) SendLeaveApplied(to string, start, end time.Time) error {
	data := leaveEmailData{
		StartDate: start.Format("2006-01-02"),
		EndDate:   end.Format("2006-01-02"),
	}

	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, "leave_applied.html", data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	return s.sendHTML(to, "Leave Applied", body.String())
}

func (s *smtpNotifier) SendLeaveApproved(to string, start, end time.Time, approvedBy string) error {
	data := leaveEmailData{
		StartDate: start.Format("2006-01-02"),
		EndDate:   end.Format("2006-01-02"),
		DecidedBy: approvedBy,
	}

	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, "leave_approved.html", data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	return s.sendHTML(to, "Leave Approved", body.String())
}

func (s *smtpNotifier) SendLeaveRejected(to string, start, end time.Time, rejectedBy string) error {
	data := leaveEmailData{
		StartDate: start.Format("2006-01-02"),
		EndDate:   end.Format("2006-01-02"),
		DecidedBy: rejectedBy,
	}

	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, "leave_rejected.html", data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	return s.sendHTML(to, "Leave Rejected", body.String())
}

func (s *smtpNotifier) sendHTML(to, subject, htmlBody string) error {
	// Skip sending if SMTP is not configured
	if s.cfg.Host == "" {
		slog.Warn("SMTP not configured, skipping email send", "to", to, "subject", subject)
		return nil
	}

	from := s.cfg.From

	headers := fmt.Sprintf("From: %s <%s>\r\n", s.cfg.FromName, from)
	headers += fmt.Sprintf("To: %s\r\n", to)
	headers += fmt.Sprintf("Subject: %s\r\n", subject)
	headers += "MIME-Version: 1.0\r\n"
	headers += "Content-Type: text/html; charset=\"UTF-8\"\r\n"
	headers += "\r\n"

	message := []byte(headers + htmlBody)

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	if err := smtp.SendMail(addr, auth, from, []string{to}, message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	slog.Info("Email sent successfully", "to", to, "subject", subject)
	return nil
}
