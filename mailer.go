package folioapi

import (
	"fmt"

	"github.com/wneessen/go-mail"
)

// Mailer delivers the new-message notification over SMTP. It is
// best-effort: callers fire it on a detached goroutine and only log
// failures; the persisted message is never rolled back.
type Mailer struct {
	cfg    MailConfig
	client *mail.Client
}

// NewMailer builds a Mailer, or returns nil when no recipient is
// configured (notifications disabled).
func NewMailer(cfg MailConfig) (*Mailer, error) {
	if cfg.To == "" {
		return nil, nil
	}
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("mailer: %w", err)
	}
	return &Mailer{cfg: cfg, client: client}, nil
}

// Notify emails the configured recipient about a persisted message.
func (m *Mailer) Notify(msg Message) error {
	mm := mail.NewMsg()
	from := m.cfg.From
	if from == "" {
		from = m.cfg.Username
	}
	if err := mm.FromFormat("Contact Form", from); err != nil {
		return err
	}
	if err := mm.To(m.cfg.To); err != nil {
		return err
	}
	mm.Subject("New message: " + msg.Subject)
	mm.SetBodyString(mail.TypeTextPlain, notificationBody(msg))
	return m.client.DialAndSend(mm)
}

func notificationBody(msg Message) string {
	return fmt.Sprintf("Name: %s\nEmail: %s\n\n%s\n", msg.Name, msg.Email, msg.Body)
}
