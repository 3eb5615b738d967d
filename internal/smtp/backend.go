// Package smtp receives inquiries sent by email. Mail addressed to one of
// the configured intake addresses becomes an inquiry just like a contact
// form submission.
package smtp

import (
	"context"
	"crypto/tls"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/welldanyogia/elite-estate/internal/inquiry"
	"github.com/welldanyogia/elite-estate/internal/logger"
	"github.com/welldanyogia/elite-estate/internal/models"
)

// Security limits
const (
	DefaultMaxMessageSize = 1024 * 1024 // 1 MB, inquiries are short text
	DefaultMaxRecipients  = 10
	DefaultReadTimeout    = 60 * time.Second
	DefaultWriteTimeout   = 60 * time.Second
	DefaultMaxLineLength  = 2000
	DefaultSubmitTimeout  = 15 * time.Second
)

// Submitter stores an inquiry. *inquiry.Service implements it.
type Submitter interface {
	Submit(ctx context.Context, in inquiry.SubmitInput, source models.InquirySource) (*models.Inquiry, error)
}

// Backend implements the go-smtp Backend interface
type Backend struct {
	submitter Submitter
	addresses map[string]bool
	secLog    *logger.SecurityLogger
	logger    *slog.Logger
	timeout   time.Duration
}

// BackendConfig holds configuration for the SMTP backend
type BackendConfig struct {
	Submitter      Submitter
	Addresses      []string
	Logger         *slog.Logger
	SecurityLogger *logger.SecurityLogger
}

// NewBackend creates a new SMTP backend
func NewBackend(cfg *BackendConfig) *Backend {
	addresses := make(map[string]bool, len(cfg.Addresses))
	for _, addr := range cfg.Addresses {
		if addr = strings.ToLower(strings.TrimSpace(addr)); addr != "" {
			addresses[addr] = true
		}
	}
	return &Backend{
		submitter: cfg.Submitter,
		addresses: addresses,
		secLog:    cfg.SecurityLogger,
		logger:    cfg.Logger,
		timeout:   DefaultSubmitTimeout,
	}
}

// Accepts reports whether mail for address is taken in as an inquiry
func (b *Backend) Accepts(address string) bool {
	return b.addresses[strings.ToLower(address)]
}

// NewSession creates a new SMTP session
func (b *Backend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	remote := ""
	if c != nil && c.Conn() != nil {
		remote = c.Conn().RemoteAddr().String()
	}
	if b.logger != nil {
		b.logger.Info("new SMTP connection", slog.String("remote_addr", remote))
	}
	return NewSession(b, remote), nil
}

// ServerConfig holds security configuration for the SMTP server
type ServerConfig struct {
	Addr           string
	Domain         string
	MaxMessageSize int64
	MaxRecipients  int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowInsecure  bool
	TLSConfig      *tls.Config
}

// NewSecureServer creates a new SMTP server with security settings
func NewSecureServer(backend *Backend, cfg *ServerConfig) *smtp.Server {
	s := smtp.NewServer(backend)

	s.Addr = cfg.Addr
	s.Domain = cfg.Domain

	// Set message size limit
	if cfg.MaxMessageSize > 0 {
		s.MaxMessageBytes = cfg.MaxMessageSize
	} else {
		s.MaxMessageBytes = DefaultMaxMessageSize
	}

	// Set recipient limit
	if cfg.MaxRecipients > 0 {
		s.MaxRecipients = cfg.MaxRecipients
	} else {
		s.MaxRecipients = DefaultMaxRecipients
	}

	// Set timeouts
	if cfg.ReadTimeout > 0 {
		s.ReadTimeout = cfg.ReadTimeout
	} else {
		s.ReadTimeout = DefaultReadTimeout
	}

	if cfg.WriteTimeout > 0 {
		s.WriteTimeout = cfg.WriteTimeout
	} else {
		s.WriteTimeout = DefaultWriteTimeout
	}

	// Disable insecure authentication by default
	s.AllowInsecureAuth = cfg.AllowInsecure

	// Configure TLS if provided
	if cfg.TLSConfig != nil {
		s.TLSConfig = cfg.TLSConfig
	}

	// Set max line length to prevent buffer overflow attacks
	s.MaxLineLength = DefaultMaxLineLength

	return s
}

// LoadServerConfigFromEnv builds the server configuration for port, reading
// optional tuning from SMTP_DOMAIN, SMTP_MAX_MESSAGE_SIZE, SMTP_MAX_RECIPIENTS,
// SMTP_READ_TIMEOUT, SMTP_WRITE_TIMEOUT and SMTP_TLS_CERT/SMTP_TLS_KEY.
func LoadServerConfigFromEnv(port int) *ServerConfig {
	cfg := &ServerConfig{
		Addr:   ":" + strconv.Itoa(port),
		Domain: getEnvOrDefault("SMTP_DOMAIN", "localhost"),
	}

	if maxSize := os.Getenv("SMTP_MAX_MESSAGE_SIZE"); maxSize != "" {
		if size, err := strconv.ParseInt(maxSize, 10, 64); err == nil {
			cfg.MaxMessageSize = size
		}
	}

	if maxRecip := os.Getenv("SMTP_MAX_RECIPIENTS"); maxRecip != "" {
		if recip, err := strconv.Atoi(maxRecip); err == nil {
			cfg.MaxRecipients = recip
		}
	}

	if readTimeout := os.Getenv("SMTP_READ_TIMEOUT"); readTimeout != "" {
		if timeout, err := time.ParseDuration(readTimeout); err == nil {
			cfg.ReadTimeout = timeout
		}
	}

	if writeTimeout := os.Getenv("SMTP_WRITE_TIMEOUT"); writeTimeout != "" {
		if timeout, err := time.ParseDuration(writeTimeout); err == nil {
			cfg.WriteTimeout = timeout
		}
	}

	// Load TLS configuration if certificate and key are provided
	certFile := os.Getenv("SMTP_TLS_CERT")
	keyFile := os.Getenv("SMTP_TLS_KEY")
	if certFile != "" && keyFile != "" {
		cert, err := tls.LoadX509KeyPair(certFile, keyFile)
		if err == nil {
			cfg.TLSConfig = &tls.Config{
				Certificates: []tls.Certificate{cert},
				MinVersion:   tls.VersionTLS12,
			}
		}
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
