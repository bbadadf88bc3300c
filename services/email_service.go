package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/packwise/packwise-backend/config"
	apperrors "github.com/packwise/packwise-backend/errors"
	"github.com/packwise/packwise-backend/logger"
	"github.com/packwise/packwise-backend/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/resend/resend-go/v2"
)

const (
	emailProvider = "email provider"

	maxContactNameLength    = 100
	minContactMessageLength = 10
	maxContactMessageLength = 5000
	maxContactSubjectLength = 200
)

// EmailSender is the part of the Resend client the service uses.
type EmailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// ListRenderer renders a packing list as an HTML document.
type ListRenderer interface {
	Render(items []types.PackingItem, trip types.TripContext) (string, error)
}

type EmailMetrics struct {
	sendLatency prometheus.Histogram
	errorCount  prometheus.Counter
	sentCount   prometheus.Counter
}

type EmailService struct {
	config   *config.EmailConfig
	sender   EmailSender
	lists    ItemResolver
	renderer ListRenderer
	metrics  *EmailMetrics
}

func NewEmailService(cfg *config.EmailConfig, lists ItemResolver, renderer ListRenderer) *EmailService {
	return NewEmailServiceWithRegistry(cfg, lists, renderer, prometheus.DefaultRegisterer)
}

func NewEmailServiceWithRegistry(cfg *config.EmailConfig, lists ItemResolver, renderer ListRenderer, reg prometheus.Registerer) *EmailService {
	logger.GetLogger().Infow("Initializing email service",
		"from", cfg.FromAddress,
		"apiKey", logger.MaskSensitiveString(cfg.ResendAPIKey, 3, 0))

	metrics := &EmailMetrics{
		sendLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "packwise_email_send_duration_seconds",
			Help:    "Time taken to send emails",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		}),
		errorCount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "packwise_email_errors_total",
			Help: "Total number of email sending errors",
		}),
		sentCount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "packwise_emails_sent_total",
			Help: "Total number of emails sent",
		}),
	}

	reg.MustRegister(metrics.sendLatency)
	reg.MustRegister(metrics.errorCount)
	reg.MustRegister(metrics.sentCount)

	s := &EmailService{
		config:   cfg,
		lists:    lists,
		renderer: renderer,
		metrics:  metrics,
	}
	if cfg.ResendAPIKey != "" {
		s.sender = resend.NewClient(cfg.ResendAPIKey).Emails
	}
	return s
}

// SendListEmail delivers a saved or inline packing list and returns the
// provider message id.
func (s *EmailService) SendListEmail(ctx context.Context, req types.SendListEmailRequest) (string, error) {
	to, err := ValidateEmailAddress(req.Email)
	if err != nil {
		return "", err
	}

	items, trip, err := s.lists.ResolveItems(ctx, req.ListID, req.Items, req.Trip)
	if err != nil {
		return "", err
	}
	return s.SendPackingList(ctx, to, items, trip)
}

func (s *EmailService) SendPackingList(ctx context.Context, to string, items []types.PackingItem, trip types.TripContext) (string, error) {
	html, err := s.renderer.Render(items, trip)
	if err != nil {
		s.metrics.errorCount.Inc()
		return "", apperrors.Wrap(err, apperrors.ServerError, "Failed to render packing list")
	}

	subject := "Your packing list"
	if dest := strings.TrimSpace(trip.Destination); dest != "" {
		subject = fmt.Sprintf("Your packing list for %s", dest)
	}

	return s.send(ctx, &resend.SendEmailRequest{
		From:    s.from(),
		To:      []string{to},
		Subject: subject,
		Html:    html,
	})
}

func (s *EmailService) SendContactMessage(ctx context.Context, msg types.ContactMessage) error {
	replyTo, err := validateContactMessage(&msg)
	if err != nil {
		return err
	}

	subject := "Contact form: " + msg.Name
	if msg.Subject != "" {
		subject = fmt.Sprintf("Contact form: %s", msg.Subject)
	}

	html, err := executeTemplate(contactEmailTemplate, msg)
	if err != nil {
		s.metrics.errorCount.Inc()
		return apperrors.Wrap(err, apperrors.ServerError, "Failed to render contact message")
	}

	_, err = s.send(ctx, &resend.SendEmailRequest{
		From:    s.from(),
		To:      []string{s.config.ContactAddress},
		ReplyTo: replyTo,
		Subject: subject,
		Html:    html,
	})
	return err
}

func (s *EmailService) SendWelcome(ctx context.Context, to string) error {
	html, err := executeTemplate(welcomeEmailTemplate, nil)
	if err != nil {
		s.metrics.errorCount.Inc()
		return apperrors.Wrap(err, apperrors.ServerError, "Failed to render welcome email")
	}

	_, err = s.send(ctx, &resend.SendEmailRequest{
		From:    s.from(),
		To:      []string{to},
		Subject: "Welcome to Packwise",
		Html:    html,
	})
	return err
}

func (s *EmailService) send(ctx context.Context, params *resend.SendEmailRequest) (string, error) {
	log := logger.GetLogger()
	if s.sender == nil {
		return "", apperrors.ServiceUnavailable("Email delivery is not configured")
	}

	startTime := time.Now()
	defer func() {
		s.metrics.sendLatency.Observe(time.Since(startTime).Seconds())
	}()

	resp, err := s.sender.SendWithContext(ctx, params)
	if err != nil {
		s.metrics.errorCount.Inc()
		log.Errorw("Failed to send email",
			"error", err,
			"to", maskRecipients(params.To),
			"subject", params.Subject)
		return "", apperrors.Upstream(emailProvider, err)
	}

	s.metrics.sentCount.Inc()
	log.Infow("Email sent successfully",
		"to", maskRecipients(params.To),
		"subject", params.Subject,
		"id", resp.Id)

	return resp.Id, nil
}

func (s *EmailService) from() string {
	if s.config.FromName == "" {
		return s.config.FromAddress
	}
	return fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromAddress)
}

func maskRecipients(to []string) []string {
	masked := make([]string, len(to))
	for i, addr := range to {
		masked[i] = logger.MaskEmail(addr)
	}
	return masked
}

// ValidateEmailAddress accepts a bare address and returns it with the domain
// lower-cased.
func ValidateEmailAddress(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw || !strings.Contains(raw[strings.LastIndex(raw, "@"):], ".") {
		return "", apperrors.ValidationFailed("Invalid email address", "provide a valid email address")
	}
	at := strings.LastIndex(raw, "@")
	return raw[:at] + strings.ToLower(raw[at:]), nil
}

func validateContactMessage(msg *types.ContactMessage) (string, error) {
	msg.Name = strings.TrimSpace(msg.Name)
	msg.Subject = strings.TrimSpace(msg.Subject)
	msg.Message = strings.TrimSpace(msg.Message)

	if msg.Name == "" || utf8.RuneCountInString(msg.Name) > maxContactNameLength {
		return "", apperrors.ValidationFailed("Invalid name",
			fmt.Sprintf("name is required and may be at most %d characters", maxContactNameLength))
	}
	if utf8.RuneCountInString(msg.Subject) > maxContactSubjectLength {
		return "", apperrors.ValidationFailed("Invalid subject",
			fmt.Sprintf("subject may be at most %d characters", maxContactSubjectLength))
	}
	if n := utf8.RuneCountInString(msg.Message); n < minContactMessageLength || n > maxContactMessageLength {
		return "", apperrors.ValidationFailed("Invalid message",
			fmt.Sprintf("message must be between %d and %d characters", minContactMessageLength, maxContactMessageLength))
	}
	return ValidateEmailAddress(msg.Email)
}

func executeTemplate(text string, data interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

const contactEmailTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: sans-serif; color: #333333;">
    <h2>New contact form message</h2>
    <p><strong>Name:</strong> {{.Name}}</p>
    <p><strong>Email:</strong> {{.Email}}</p>
    {{- with .Subject}}
    <p><strong>Subject:</strong> {{.}}</p>
    {{- end}}
    <p style="white-space: pre-wrap;">{{.Message}}</p>
</body>
</html>`

const welcomeEmailTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: sans-serif; background-color: #f7f7f7; color: #333333; padding: 20px; text-align: center;">
    <div style="max-width: 600px; margin: 20px auto; background-color: #ffffff; padding: 30px; border-radius: 12px;">
        <h1 style="color: #0F766E;">You're on the list!</h1>
        <p>Thanks for subscribing to Packwise. We'll send you packing tips and product updates now and then.</p>
        <p style="font-size: 12px; color: #777777;">You can unsubscribe at any time by replying to this email.</p>
    </div>
</body>
</html>`
