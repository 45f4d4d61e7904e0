// Package mail provides outbound email dispatch for shopcore.
// The mutation layer treats a failed send as fatal to the calling
// operation; retries and queueing are the dispatcher's own concern if a
// richer backend is ever plugged in.
package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	gomail "net/mail"
	gosmtp "net/smtp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prn-tf/shopcore/internal/config"
)

// Dispatcher sends a single email. Implementations must be safe for
// concurrent use.
type Dispatcher interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// SMTPDispatcher implements Dispatcher over plain SMTP, STARTTLS, or
// implicit TLS depending on configuration.
type SMTPDispatcher struct {
	cfg    config.MailConfig
	logger zerolog.Logger
}

// NewSMTPDispatcher creates a dispatcher from mail configuration.
func NewSMTPDispatcher(cfg config.MailConfig, logger zerolog.Logger) *SMTPDispatcher {
	return &SMTPDispatcher{
		cfg:    cfg,
		logger: logger.With().Str("component", "mailer").Logger(),
	}
}

// Send delivers one message. The context bounds the dial; SMTP I/O after
// the connection is established runs to completion or error.
func (d *SMTPDispatcher) Send(ctx context.Context, to, subject, htmlBody string) error {
	from := gomail.Address{Name: d.cfg.FromName, Address: d.cfg.FromAddress}

	// Build RFC 2822 message.
	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s\r\n", from.String()))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString(fmt.Sprintf("Date: %s\r\n", time.Now().UTC().Format(time.RFC1123Z)))
	msg.WriteString(fmt.Sprintf("Message-ID: <%s@%s>\r\n", uuid.NewString(), d.cfg.Host))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	addr := fmt.Sprintf("%s:%d", d.cfg.Host, d.cfg.Port)

	var err error
	switch d.cfg.Encryption {
	case "ssl":
		err = d.sendSSL(ctx, addr, from.Address, to, msg.String())
	case "none":
		err = d.sendPlain(addr, from.Address, to, msg.String())
	default: // "starttls"
		err = d.sendStartTLS(ctx, addr, from.Address, to, msg.String())
	}

	if err != nil {
		d.logger.Error().Err(err).Str("to", to).Msg("failed to send mail")
		return err
	}

	d.logger.Info().Str("to", to).Str("subject", subject).Msg("mail sent")
	return nil
}

// sendStartTLS sends email using STARTTLS (port 587 typical).
func (d *SMTPDispatcher) sendStartTLS(ctx context.Context, addr, from, to, msg string) error {
	dialer := &net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", addr, err)
	}
	defer conn.Close()

	client, err := gosmtp.NewClient(conn, d.cfg.Host)
	if err != nil {
		return fmt.Errorf("creating smtp client: %w", err)
	}
	defer client.Close()

	tlsConfig := &tls.Config{ServerName: d.cfg.Host, MinVersion: tls.VersionTLS12}
	if err := client.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("starting TLS: %w", err)
	}

	if err := d.authenticate(client); err != nil {
		return err
	}

	return d.sendMessage(client, from, to, msg)
}

// sendSSL sends email using implicit SSL/TLS (port 465 typical).
func (d *SMTPDispatcher) sendSSL(ctx context.Context, addr, from, to, msg string) error {
	tlsConfig := &tls.Config{ServerName: d.cfg.Host, MinVersion: tls.VersionTLS12}
	dialer := &tls.Dialer{NetDialer: &net.Dialer{Timeout: 10 * time.Second}, Config: tlsConfig}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connecting to %s (SSL): %w", addr, err)
	}
	defer conn.Close()

	client, err := gosmtp.NewClient(conn, d.cfg.Host)
	if err != nil {
		return fmt.Errorf("creating smtp client: %w", err)
	}
	defer client.Close()

	if err := d.authenticate(client); err != nil {
		return err
	}

	return d.sendMessage(client, from, to, msg)
}

// sendPlain sends email without encryption.
func (d *SMTPDispatcher) sendPlain(addr, from, to, msg string) error {
	var auth gosmtp.Auth
	if d.cfg.Username != "" {
		auth = gosmtp.PlainAuth("", d.cfg.Username, d.cfg.Password, d.cfg.Host)
	}
	if err := gosmtp.SendMail(addr, auth, from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("sending mail: %w", err)
	}
	return nil
}

// authenticate performs PLAIN auth when credentials are configured.
func (d *SMTPDispatcher) authenticate(client *gosmtp.Client) error {
	if d.cfg.Username == "" {
		return nil
	}
	auth := gosmtp.PlainAuth("", d.cfg.Username, d.cfg.Password, d.cfg.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("authenticating: %w", err)
	}
	return nil
}

// sendMessage handles MAIL FROM, RCPT TO, DATA for an existing SMTP client.
func (d *SMTPDispatcher) sendMessage(client *gosmtp.Client, from, to, msg string) error {
	if err := client.Mail(from); err != nil {
		return fmt.Errorf("MAIL FROM: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("RCPT TO %s: %w", to, err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("DATA: %w", err)
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		return fmt.Errorf("writing message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing data: %w", err)
	}
	return client.Quit()
}

// Ensure SMTPDispatcher implements Dispatcher.
var _ Dispatcher = (*SMTPDispatcher)(nil)

// SendRecorder receives the outcome of each send attempt.
type SendRecorder interface {
	RecordMail(outcome string)
}

// Instrument wraps a Dispatcher so every send attempt is counted.
func Instrument(next Dispatcher, rec SendRecorder) Dispatcher {
	return &instrumentedDispatcher{next: next, rec: rec}
}

type instrumentedDispatcher struct {
	next Dispatcher
	rec  SendRecorder
}

func (d *instrumentedDispatcher) Send(ctx context.Context, to, subject, htmlBody string) error {
	err := d.next.Send(ctx, to, subject, htmlBody)
	if err != nil {
		d.rec.RecordMail("error")
		return err
	}
	d.rec.RecordMail("ok")
	return nil
}
