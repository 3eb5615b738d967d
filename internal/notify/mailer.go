// Package notify emails the site owner when a new inquiry arrives.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/jhillyerd/enmime"
	"github.com/welldanyogia/elite-estate/internal/models"
)

// sendFunc matches smtp.SendMail
type sendFunc func(addr string, a sasl.Client, from string, to []string, r io.Reader) error

// MailerConfig holds the outgoing SMTP settings
type MailerConfig struct {
	Addr     string
	Username string
	Password string
	From     string
	To       []string
	Brand    string
}

// Mailer composes and sends owner notifications
type Mailer struct {
	cfg  MailerConfig
	send sendFunc
	now  func() time.Time
}

// NewMailer creates a Mailer. It returns nil when no SMTP address is set.
func NewMailer(cfg MailerConfig) *Mailer {
	if cfg.Addr == "" {
		return nil
	}
	if cfg.Brand == "" {
		cfg.Brand = "Elite Real Estate"
	}
	return &Mailer{cfg: cfg, send: smtp.SendMail, now: time.Now}
}

// Compose builds the notification message for an inquiry
func (m *Mailer) Compose(inquiry *models.Inquiry) ([]byte, error) {
	builder := enmime.Builder().
		From(m.cfg.Brand, m.cfg.From).
		ReplyTo(inquiry.Name, inquiry.Email).
		Subject(fmt.Sprintf("New inquiry from %s", inquiry.Name)).
		Date(m.now()).
		Header("X-Inquiry-Id", inquiry.ID).
		Text([]byte(notificationText(inquiry)))

	for _, to := range m.cfg.To {
		builder = builder.To("", to)
	}

	part, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build notification: %w", err)
	}

	var buf bytes.Buffer
	if err := part.Encode(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode notification: %w", err)
	}
	return buf.Bytes(), nil
}

// Send mails the notification for an inquiry
func (m *Mailer) Send(ctx context.Context, inquiry *models.Inquiry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := m.Compose(inquiry)
	if err != nil {
		return err
	}

	var auth sasl.Client
	if m.cfg.Username != "" {
		auth = sasl.NewPlainClient("", m.cfg.Username, m.cfg.Password)
	}

	done := make(chan error, 1)
	go func() {
		done <- m.send(m.cfg.Addr, auth, m.cfg.From, m.cfg.To, bytes.NewReader(msg))
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send notification: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func notificationText(inquiry *models.Inquiry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A new inquiry arrived on %s.\n\n", inquiry.CreatedAt.UTC().Format("January 2, 2006 15:04 MST"))
	fmt.Fprintf(&b, "Name:    %s\n", inquiry.Name)
	fmt.Fprintf(&b, "Email:   %s\n", inquiry.Email)
	fmt.Fprintf(&b, "Source:  %s\n\n", inquiry.Source)
	b.WriteString(inquiry.Message)
	b.WriteString("\n")
	return b.String()
}
