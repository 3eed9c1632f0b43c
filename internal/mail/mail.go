// Package mail delivers HTML email through SMTP.
package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"pinvent/internal/config"
	"pinvent/internal/logging"
)

// implicitTLSPort is the SMTPS port where TLS starts before the SMTP greeting.
const implicitTLSPort = 465

// ErrNotConfigured is returned when no SMTP host is set.
var ErrNotConfigured = errors.New("email is not configured")

// Message is a single HTML email.
type Message struct {
	Subject string
	HTML    string
	To      string
	From    string
	ReplyTo string
}

// Dispatcher sends email messages.
type Dispatcher interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPDispatcher sends mail through an SMTP relay using STARTTLS when offered.
type SMTPDispatcher struct {
	cfg config.EmailConfig
}

// NewSMTPDispatcher creates a dispatcher for cfg.
func NewSMTPDispatcher(cfg config.EmailConfig) *SMTPDispatcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &SMTPDispatcher{cfg: cfg}
}

func (s *SMTPDispatcher) Send(ctx context.Context, msg Message) error {
	if !s.cfg.Enabled() {
		return ErrNotConfigured
	}
	if msg.From == "" {
		msg.From = s.cfg.Username
	}

	deadline := time.Now().Add(s.cfg.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprint(s.cfg.Port))
	tlsCfg := &tls.Config{ServerName: s.cfg.Host, InsecureSkipVerify: s.cfg.InsecureTLS} //nolint:gosec
	dialer := &net.Dialer{Deadline: deadline}

	var conn net.Conn
	var err error
	if s.cfg.Port == implicitTLSPort {
		conn, err = (&tls.Dialer{NetDialer: dialer, Config: tlsCfg}).DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}
	defer conn.Close()
	if err := conn.SetDeadline(deadline); err != nil {
		return err
	}

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok && s.cfg.Port != implicitTLSPort {
		if err := client.StartTLS(tlsCfg); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}

	if s.cfg.Username != "" {
		if ok, _ := client.Extension("AUTH"); ok {
			auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
			if err := client.Auth(auth); err != nil {
				return fmt.Errorf("smtp auth: %w", err)
			}
		}
	}

	if err := client.Mail(msg.From); err != nil {
		return err
	}
	if err := client.Rcpt(msg.To); err != nil {
		return err
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(Build(msg)); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

// Build renders msg as an RFC 5322 message with an HTML body.
func Build(msg Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", msg.From)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	if msg.ReplyTo != "" {
		fmt.Fprintf(&b, "Reply-To: %s\r\n", msg.ReplyTo)
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", headerSafe(msg.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(msg.HTML)
	return []byte(b.String())
}

func headerSafe(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}

// LogDispatcher writes messages to the log instead of sending them.
// It is used when SMTP is not configured.
type LogDispatcher struct {
	Log logging.Logger
}

func (d LogDispatcher) Send(ctx context.Context, msg Message) error {
	d.Log.Warn(ctx, "smtp not configured, email not sent", "to", msg.To, "subject", msg.Subject)
	return ErrNotConfigured
}
