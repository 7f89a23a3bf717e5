package email

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

type recordingSender struct {
	to      []string
	subject []string
	body    []string
	err     error
}

func (s *recordingSender) Send(_ context.Context, to, subject, body string) error {
	s.to = append(s.to, to)
	s.subject = append(s.subject, subject)
	s.body = append(s.body, body)
	return s.err
}

func newTestMailer(sender Sender) *Mailer {
	return NewMailer(sender, "https://app.masterdrive.test", slog.New(slog.DiscardHandler))
}

func TestSendWelcome_LinksVerifyToken(t *testing.T) {
	sender := &recordingSender{}
	newTestMailer(sender).SendWelcome(context.Background(), "Vineet", "v@x.com", "verify-123")

	if len(sender.to) != 1 || sender.to[0] != "v@x.com" {
		t.Fatalf("recipients = %v", sender.to)
	}
	if !strings.Contains(sender.body[0], "https://app.masterdrive.test/user/verify?token=verify-123") {
		t.Errorf("body %q is missing the verification link", sender.body[0])
	}
}

func TestSendPasswordReset_LinksCode(t *testing.T) {
	sender := &recordingSender{}
	newTestMailer(sender).SendPasswordReset(context.Background(), "Vineet", "v@x.com", "code-456")

	if !strings.Contains(sender.body[0], "reset?code=code-456") {
		t.Errorf("body %q is missing the reset link", sender.body[0])
	}
}

func TestSendAccountAdded_HumanizesProvider(t *testing.T) {
	sender := &recordingSender{}
	newTestMailer(sender).SendAccountAdded(context.Background(), "Vineet", "v@x.com", "GOOGLE_DRIVE")

	if !strings.Contains(sender.body[0], "Google Drive") {
		t.Errorf("body %q, want the display name Google Drive", sender.body[0])
	}
}

// A failing sender must not panic or surface the error; the triggering
// request already succeeded.
func TestSend_FailureIsSwallowed(t *testing.T) {
	sender := &recordingSender{err: errors.New("resend unavailable")}
	newTestMailer(sender).SendDetailsUpdated(context.Background(), "Vineet", "v@x.com")
}

func TestProviderDisplayName(t *testing.T) {
	cases := map[string]string{
		"GOOGLE_DRIVE": "Google Drive",
		"DROPBOX":      "Dropbox",
		"ONE_DRIVE":    "One Drive",
	}
	for in, want := range cases {
		if got := providerDisplayName(in); got != want {
			t.Errorf("providerDisplayName(%q) = %q, want %q", in, got, want)
		}
	}
}
