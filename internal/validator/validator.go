// Package validator provides input validation and sanitization for
// contact-form submissions.
package validator

import (
	"errors"
	"net/mail"
	"strings"
	"unicode/utf8"

	apperrors "github.com/welldanyogia/elite-estate/internal/errors"
)

// Validation errors
var (
	ErrInvalidEmail = errors.New("invalid email format")
	ErrInputTooLong = errors.New("input exceeds maximum length")
	ErrEmptyInput   = errors.New("input cannot be empty")
)

// Contact form limits
const (
	MinNameLength    = 2
	MaxNameLength    = 255
	MaxEmailLength   = 254
	MinMessageLength = 5
	MaxMessageLength = 5000
)

// Field messages shown next to the offending input
const (
	MsgNameTooShort    = "Name must be at least 2 characters"
	MsgNameTooLong     = "Name must be at most 255 characters"
	MsgInvalidEmail    = "Please enter a valid email address"
	MsgMessageTooShort = "Message must be at least 5 characters"
	MsgMessageTooLong  = "Message must be at most 5000 characters"
)

// ValidateEmail validates email address format according to RFC 5322 and
// requires a dotted domain. Returns nil if valid, or an appropriate error.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	if email == "" {
		return ErrEmptyInput
	}

	// RFC 5321 specifies max email length of 254 characters
	if utf8.RuneCountInString(email) > MaxEmailLength {
		return ErrInputTooLong
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrInvalidEmail
	}

	at := strings.LastIndex(email, "@")
	domain := email[at+1:]
	if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return ErrInvalidEmail
	}

	return nil
}

// ValidateInquiry checks the three contact-form fields and returns the
// per-field messages. An empty result means the submission may proceed.
func ValidateInquiry(name, email, message string) apperrors.FieldErrors {
	fields := apperrors.FieldErrors{}

	nameLen := utf8.RuneCountInString(strings.TrimSpace(name))
	switch {
	case nameLen < MinNameLength:
		fields.Add("name", MsgNameTooShort)
	case nameLen > MaxNameLength:
		fields.Add("name", MsgNameTooLong)
	}

	if err := ValidateEmail(email); err != nil {
		fields.Add("email", MsgInvalidEmail)
	}

	messageLen := utf8.RuneCountInString(strings.TrimSpace(message))
	switch {
	case messageLen < MinMessageLength:
		fields.Add("message", MsgMessageTooShort)
	case messageLen > MaxMessageLength:
		fields.Add("message", MsgMessageTooLong)
	}

	return fields
}

// NormalizeEmail lowercases and trims an address that already passed ValidateEmail
func NormalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

// SanitizeString removes potentially dangerous characters and enforces length limits.
// Removes control characters and trims whitespace.
func SanitizeString(input string, maxLength int) string {
	input = strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, input)

	input = strings.TrimSpace(input)

	if maxLength > 0 && utf8.RuneCountInString(input) > maxLength {
		runes := []rune(input)
		input = string(runes[:maxLength])
	}

	return input
}

// SanitizeMessage is SanitizeString for multi-line text: newlines and tabs survive.
func SanitizeMessage(input string, maxLength int) string {
	input = strings.ReplaceAll(input, "\r\n", "\n")
	input = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, input)

	input = strings.TrimSpace(input)

	if maxLength > 0 && utf8.RuneCountInString(input) > maxLength {
		runes := []rune(input)
		input = string(runes[:maxLength])
	}

	return input
}
