package reminder

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

// Notifier delivers one email.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

type mailDialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPNotifier sends HTML email through an SMTP relay.
type SMTPNotifier struct {
	dialer mailDialer
	from   string
}

func NewSMTPNotifier(host string, port int, user, password, from string) *SMTPNotifier {
	if from == "" {
		from = user
	}
	return &SMTPNotifier{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   from,
	}
}

func (n *SMTPNotifier) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send email to %s: %w", to, err)
	}
	return nil
}

// LogNotifier writes reminders to the log instead of sending them. It is
// used when no SMTP relay is configured.
type LogNotifier struct {
	logger zerolog.Logger
}

func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Send(_ context.Context, to, subject, _ string) error {
	n.logger.Info().
		Str("to", to).
		Str("subject", subject).
		Msg("reminder email (smtp not configured)")
	return nil
}
