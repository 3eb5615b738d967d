package smtp

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/emersion/go-smtp"
	apperrors "github.com/welldanyogia/elite-estate/internal/errors"
	"github.com/welldanyogia/elite-estate/internal/models"
)

// Session implements the go-smtp Session interface
type Session struct {
	backend    *Backend
	remoteAddr string
	from       string
	recipients []string
}

// NewSession creates a new SMTP session
func NewSession(backend *Backend, remoteAddr string) *Session {
	return &Session{
		backend:    backend,
		remoteAddr: remoteAddr,
		recipients: make([]string, 0),
	}
}

// Mail handles the MAIL FROM command
func (s *Session) Mail(from string, opts *smtp.MailOptions) error {
	s.from = from
	if s.backend.logger != nil {
		s.backend.logger.Debug("MAIL FROM", slog.String("from", from))
	}
	return nil
}

// Rcpt handles the RCPT TO command. Only intake addresses are accepted.
func (s *Session) Rcpt(to string, opts *smtp.RcptOptions) error {
	localPart, domain, err := parseEmailAddress(to)
	if err != nil {
		return &smtp.SMTPError{
			Code:         550,
			EnhancedCode: smtp.EnhancedCode{5, 1, 1},
			Message:      "Invalid recipient address",
		}
	}

	address := localPart + "@" + domain
	if !s.backend.Accepts(address) {
		s.backend.secLog.RejectedMail(s.remoteAddr, s.from, "unknown recipient")
		return &smtp.SMTPError{
			Code:         550,
			EnhancedCode: smtp.EnhancedCode{5, 1, 1},
			Message:      "Mailbox not found",
		}
	}

	s.recipients = append(s.recipients, address)
	if s.backend.logger != nil {
		s.backend.logger.Debug("RCPT TO", slog.String("to", address))
	}
	return nil
}

// Data handles the DATA command. One message becomes one inquiry no matter
// how many intake addresses it was sent to.
func (s *Session) Data(r io.Reader) error {
	if len(s.recipients) == 0 {
		return &smtp.SMTPError{
			Code:         503,
			EnhancedCode: smtp.EnhancedCode{5, 5, 1},
			Message:      "No recipients specified",
		}
	}

	parsedEmail, err := ParseEmail(r)
	if err != nil {
		if s.backend.logger != nil {
			s.backend.logger.Error("failed to parse email", slog.Any("error", err))
		}
		return &smtp.SMTPError{
			Code:         550,
			EnhancedCode: smtp.EnhancedCode{5, 6, 0},
			Message:      "Failed to parse email",
		}
	}

	// Fall back to the envelope sender
	if parsedEmail.SenderEmail == "" {
		parsedEmail.SenderEmail = strings.Trim(s.from, "<>")
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.backend.timeout)
	defer cancel()

	stored, err := s.backend.submitter.Submit(ctx, parsedEmail.SubmitInput(), models.SourceEmail)
	if err != nil {
		return s.submitError(err)
	}

	if s.backend.logger != nil {
		s.backend.logger.Info("inquiry received by email",
			slog.String("inquiry_id", stored.ID),
			slog.Int("recipients", len(s.recipients)),
		)
	}
	return nil
}

func (s *Session) submitError(err error) error {
	if vErr := apperrors.GetValidationError(err); vErr != nil {
		s.backend.secLog.RejectedMail(s.remoteAddr, s.from, vErr.Error())
		return &smtp.SMTPError{
			Code:         550,
			EnhancedCode: smtp.EnhancedCode{5, 6, 0},
			Message:      fmt.Sprintf("Inquiry rejected: %s", vErr.Error()),
		}
	}

	if s.backend.logger != nil {
		s.backend.logger.Error("failed to store emailed inquiry", slog.Any("error", err))
	}
	return &smtp.SMTPError{
		Code:         451,
		EnhancedCode: smtp.EnhancedCode{4, 3, 0},
		Message:      "Temporary error, try again later",
	}
}

// Reset resets the session state
func (s *Session) Reset() {
	s.from = ""
	s.recipients = make([]string, 0)
}

// Logout handles the end of the session
func (s *Session) Logout() error {
	return nil
}

// parseEmailAddress parses an email address into local part and domain
func parseEmailAddress(address string) (localPart, domain string, err error) {
	// Remove angle brackets if present
	address = strings.TrimPrefix(address, "<")
	address = strings.TrimSuffix(address, ">")
	address = strings.TrimSpace(address)

	parts := strings.Split(address, "@")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid email address: %s", address)
	}

	localPart = strings.ToLower(parts[0])
	domain = strings.ToLower(parts[1])

	if localPart == "" || domain == "" {
		return "", "", fmt.Errorf("invalid email address: %s", address)
	}

	return localPart, domain, nil
}
