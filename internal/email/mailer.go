package email

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vineet-ld/masterdrive-api/internal/metrics"
)

// Mailer shapes the transactional emails the user flows send. Sends are
// best-effort: failures are logged and counted but never fail the request
// that triggered them.
type Mailer struct {
	sender  Sender
	baseURL string
	logger  *slog.Logger
}

func NewMailer(sender Sender, baseURL string, logger *slog.Logger) *Mailer {
	return &Mailer{
		sender:  sender,
		baseURL: baseURL,
		logger:  logger.With("component", "mailer"),
	}
}

func (m *Mailer) SendWelcome(ctx context.Context, name, to, verifyToken string) {
	link := m.baseURL + "/user/verify?token=" + verifyToken
	body := fmt.Sprintf(
		`<p>Hi %s,</p><p>Welcome to MasterDrive. Confirm your email address by clicking the link below:</p><p><a href="%s">%s</a></p>`,
		name, link, link,
	)
	m.send(ctx, "welcome", to, "Welcome to MasterDrive", body)
}

func (m *Mailer) SendPasswordReset(ctx context.Context, name, to, code string) {
	link := m.baseURL + "/user/password/reset?code=" + code
	body := fmt.Sprintf(
		`<p>Hi %s,</p><p>We received a request to reset your password. Use the link below to continue:</p><p><a href="%s">%s</a></p><p>If you did not request this, you can ignore this email.</p>`,
		name, link, link,
	)
	m.send(ctx, "password_reset", to, "Password Reset", body)
}

func (m *Mailer) SendDetailsUpdated(ctx context.Context, name, to string) {
	body := fmt.Sprintf(
		`<p>Hi %s,</p><p>Your account information was updated. If this wasn't you, reset your password immediately.</p>`,
		name,
	)
	m.send(ctx, "details_updated", to, "Information Update Confirmation", body)
}

func (m *Mailer) SendAccountAdded(ctx context.Context, name, to, provider string) {
	body := fmt.Sprintf(
		`<p>Hi %s,</p><p>A new %s account was linked to your MasterDrive profile.</p>`,
		name, providerDisplayName(provider),
	)
	m.send(ctx, "account_added", to, "New Drive Account Added", body)
}

func (m *Mailer) send(ctx context.Context, kind, to, subject, body string) {
	if err := m.sender.Send(ctx, to, subject, body); err != nil {
		m.logger.ErrorContext(ctx, "email not sent", "kind", kind, "error", err)
		metrics.EmailsSentTotal.WithLabelValues(kind, "error").Inc()
		return
	}
	metrics.EmailsSentTotal.WithLabelValues(kind, "ok").Inc()
}

// providerDisplayName turns GOOGLE_DRIVE into "Google Drive".
func providerDisplayName(provider string) string {
	words := strings.Split(strings.ToLower(provider), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
