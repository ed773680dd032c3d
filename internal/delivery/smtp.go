// Package delivery sends generated outreach messages. The SMTP sender speaks
// plain-auth STARTTLS the way Gmail app passwords expect; the dry-run sender
// prints the message and succeeds without touching the network.
package delivery

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/jonathan/outreach-agent/internal/config"
	"github.com/jonathan/outreach-agent/internal/types"
)

const defaultSMTPPort = 587

// SMTPSender delivers messages over SMTP. Quota is the caller's problem: the
// pipeline reserves a slot before Deliver is called.
type SMTPSender struct {
	cfg           config.SMTPConfig
	sender        config.SenderIdentity
	testRecipient string
	verbose       bool
}

// Options configures an SMTPSender.
type Options struct {
	SMTP   config.SMTPConfig
	Sender config.SenderIdentity
	// TestRecipient reroutes every message to this address when set.
	TestRecipient string
	// Verbose enables progress logging.
	Verbose bool
}

// NewSMTPSender creates a sender from transport settings.
func NewSMTPSender(opts Options) *SMTPSender {
	return &SMTPSender{
		cfg:           opts.SMTP,
		sender:        opts.Sender,
		testRecipient: opts.TestRecipient,
		verbose:       opts.Verbose,
	}
}

// Deliver sends the message to the prospect, or to the test recipient when
// one is configured.
func (s *SMTPSender) Deliver(ctx context.Context, prospect types.Prospect, msg *types.OutreachMessage) error {
	if msg == nil {
		return errors.New("no message to deliver")
	}

	recipient := strings.TrimSpace(prospect.Email)
	if s.testRecipient != "" {
		if s.verbose {
			fmt.Printf("[delivery] rerouting mail for %s to test recipient %s\n", prospect.Email, s.testRecipient)
		}
		recipient = s.testRecipient
	}
	if recipient == "" {
		return errors.New("prospect has no email address")
	}

	if s.cfg.Host == "" {
		return errors.New("smtp host not configured")
	}
	from := s.fromAddress()
	if from == "" {
		return errors.New("no sender address configured")
	}
	if s.cfg.Username != "" && s.cfg.Password == "" {
		return errors.New("smtp password not set, export SMTP_PASSWORD")
	}

	raw := buildRawMessage(s.fromHeader(from), recipient, msg.Subject, msg.Body)
	if err := s.send(ctx, from, recipient, raw); err != nil {
		return err
	}

	if s.verbose {
		fmt.Printf("[delivery] sent %q to %s\n", msg.Subject, recipient)
	}
	return nil
}

// fromAddress is the envelope sender: the authenticated account when there
// is one, otherwise the configured identity address.
func (s *SMTPSender) fromAddress() string {
	if s.cfg.Username != "" {
		return s.cfg.Username
	}
	return s.sender.Email
}

// fromHeader renders the From header as "Name <address>".
func (s *SMTPSender) fromHeader(addr string) string {
	if s.sender.Name != "" {
		return fmt.Sprintf("%s <%s>", s.sender.Name, addr)
	}
	return addr
}

// send runs one SMTP session: dial, STARTTLS when offered, authenticate,
// hand over the message.
func (s *SMTPSender) send(ctx context.Context, from, to, raw string) error {
	port := s.cfg.Port
	if port == 0 {
		port = defaultSMTPPort
	}
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(port))

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake with %s failed: %w", addr, err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: s.cfg.Host}); err != nil {
			return fmt.Errorf("starttls failed: %w", err)
		}
	}

	if s.cfg.Username != "" {
		auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp authentication failed: %w", err)
		}
	}

	if err := client.Mail(from); err != nil {
		return fmt.Errorf("smtp MAIL FROM failed: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp RCPT TO failed: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA failed: %w", err)
	}
	if _, err := w.Write([]byte(raw)); err != nil {
		w.Close()
		return fmt.Errorf("failed to write message body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish message: %w", err)
	}
	return client.Quit()
}

// buildRawMessage renders the wire form of the email: CRLF headers, a blank
// line, then the body with line endings normalized to CRLF.
func buildRawMessage(fromHeader, to, subject, body string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", fromHeader)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")

	normalized := strings.ReplaceAll(body, "\r\n", "\n")
	b.WriteString(strings.ReplaceAll(normalized, "\n", "\r\n"))
	return b.String()
}
