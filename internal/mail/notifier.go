package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"

	"github.com/rs/zerolog"

	"github.com/prn-tf/projecthub/internal/domain"
	"github.com/prn-tf/projecthub/internal/metrics"
)

//go:embed templates/*
var templatesFS embed.FS

var (
	htmlTemplates = htmltemplate.Must(htmltemplate.ParseFS(templatesFS, "templates/*.html"))
	textTemplates = texttemplate.Must(texttemplate.ParseFS(templatesFS, "templates/*.txt"))
)

// Mail kinds, used as the metrics label.
const (
	KindContact       = "contact"
	KindCustomProject = "custom_project"
)

// Notifier renders and sends admin notifications.
type Notifier struct {
	mailer     Mailer
	adminEmail string
	siteName   string
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// NewNotifier creates a notifier that mails adminEmail.
func NewNotifier(mailer Mailer, adminEmail string, m *metrics.Metrics, logger zerolog.Logger) *Notifier {
	return &Notifier{
		mailer:     mailer,
		adminEmail: adminEmail,
		siteName:   "ProjectHub",
		metrics:    m,
		logger:     logger.With().Str("component", "notifier").Logger(),
	}
}

type contactData struct {
	*domain.ContactMessage
	SiteName string
}

// ContactReceived mails the admin about a new contact message.
func (n *Notifier) ContactReceived(ctx context.Context, msg *domain.ContactMessage) error {
	data := contactData{ContactMessage: msg, SiteName: n.siteName}
	return n.send(ctx, KindContact, "contact", data, &Message{
		ReplyTo: msg.Email,
		Subject: "[Contact Form] " + msg.Subject,
	})
}

// CustomProjectRequested mails the admin a custom project brief.
func (n *Notifier) CustomProjectRequested(ctx context.Context, req *domain.CustomProjectRequest) error {
	return n.send(ctx, KindCustomProject, "custom_project", req, &Message{
		ReplyTo: req.Email,
		Subject: fmt.Sprintf("[Custom Project] %s - %s", req.ProjectType, req.Name),
	})
}

func (n *Notifier) send(ctx context.Context, kind, tmpl string, data any, msg *Message) error {
	var html, text bytes.Buffer
	if err := htmlTemplates.ExecuteTemplate(&html, tmpl+".html", data); err != nil {
		return fmt.Errorf("render %s html: %w", tmpl, err)
	}
	if err := textTemplates.ExecuteTemplate(&text, tmpl+".txt", data); err != nil {
		return fmt.Errorf("render %s text: %w", tmpl, err)
	}

	msg.To = []string{n.adminEmail}
	msg.HTML = html.String()
	msg.Text = text.String()

	err := n.mailer.Send(ctx, msg)
	n.metrics.RecordMail(kind, err)
	if err != nil {
		n.logger.Error().Err(err).Str("kind", kind).Msg("failed to send notification")
		return err
	}
	return nil
}
