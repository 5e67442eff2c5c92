// Package mail sends admin notification emails over SMTP.
package mail

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	gomail "github.com/wneessen/go-mail"

	"github.com/prn-tf/projecthub/internal/config"
)

// dialTimeout bounds connecting to and talking with the relay.
const dialTimeout = 15 * time.Second

// Message is a single outgoing email with HTML and plain-text bodies.
type Message struct {
	To      []string
	ReplyTo string
	Subject string
	HTML    string
	Text    string
}

// Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}

// sender is the part of *gomail.Client used by SMTPMailer.
type sender interface {
	DialAndSendWithContext(ctx context.Context, msgs ...*gomail.Msg) error
}

// SMTPMailer delivers mail through an SMTP relay with PLAIN auth and
// opportunistic STARTTLS.
type SMTPMailer struct {
	host   string
	from   string
	client sender
	now    func() time.Time
	logger zerolog.Logger
}

// NewSMTPMailer creates an SMTP mailer from cfg.
func NewSMTPMailer(cfg config.MailConfig, logger zerolog.Logger) (*SMTPMailer, error) {
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}

	client, err := gomail.NewClient(cfg.Host,
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithPort(cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.Username),
		gomail.WithPassword(cfg.Password),
		gomail.WithTimeout(dialTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("mail: failed to create smtp client: %w", err)
	}

	return &SMTPMailer{
		host:   cfg.Host,
		from:   from,
		client: client,
		now:    time.Now,
		logger: logger.With().Str("component", "smtp").Logger(),
	}, nil
}

// Send builds a multipart/alternative message and hands it to the relay.
func (m *SMTPMailer) Send(ctx context.Context, msg *Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(msg.To) == 0 {
		return fmt.Errorf("mail: no recipients")
	}

	out, err := m.build(msg)
	if err != nil {
		return fmt.Errorf("mail: failed to build message: %w", err)
	}

	if err := m.client.DialAndSendWithContext(ctx, out); err != nil {
		return fmt.Errorf("mail: send failed: %w", err)
	}

	m.logger.Debug().
		Strs("to", msg.To).
		Str("subject", msg.Subject).
		Msg("mail sent")
	return nil
}

// build converts msg into a go-mail message. Bodies are quoted-printable
// encoded, which keeps every line within the SMTP limit.
func (m *SMTPMailer) build(msg *Message) (*gomail.Msg, error) {
	out := gomail.NewMsg()
	if err := out.From(m.from); err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	if err := out.To(msg.To...); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	if msg.ReplyTo != "" {
		if err := out.ReplyTo(msg.ReplyTo); err != nil {
			return nil, fmt.Errorf("invalid reply-to address: %w", err)
		}
	}
	out.Subject(msg.Subject)
	out.SetDateWithValue(m.now())
	out.SetMessageIDWithValue(uuid.NewString() + "@" + m.host)

	switch {
	case msg.Text != "" && msg.HTML != "":
		out.SetBodyString(gomail.TypeTextPlain, msg.Text)
		out.AddAlternativeString(gomail.TypeTextHTML, msg.HTML)
	case msg.HTML != "":
		out.SetBodyString(gomail.TypeTextHTML, msg.HTML)
	default:
		out.SetBodyString(gomail.TypeTextPlain, msg.Text)
	}
	return out, nil
}

// NoopMailer logs and drops messages. It is used when SMTP is not configured.
type NoopMailer struct {
	logger zerolog.Logger
}

// NewNoopMailer creates a mailer that never sends.
func NewNoopMailer(logger zerolog.Logger) *NoopMailer {
	return &NoopMailer{logger: logger.With().Str("component", "mail").Logger()}
}

// Send logs the skipped message.
func (m *NoopMailer) Send(ctx context.Context, msg *Message) error {
	m.logger.Info().Str("subject", msg.Subject).Msg("email not configured, skipping send")
	return nil
}

// New returns an SMTP mailer when cfg is complete and usable, otherwise a
// NoopMailer.
func New(cfg config.MailConfig, logger zerolog.Logger) Mailer {
	if !cfg.Enabled() {
		return NewNoopMailer(logger)
	}
	m, err := NewSMTPMailer(cfg, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("smtp disabled")
		return NewNoopMailer(logger)
	}
	return m
}

var (
	_ Mailer = (*SMTPMailer)(nil)
	_ Mailer = (*NoopMailer)(nil)
	_ sender = (*gomail.Client)(nil)
)
