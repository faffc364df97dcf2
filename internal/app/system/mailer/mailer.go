// internal/app/system/mailer/mailer.go
package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNotConfigured is returned by Send when no SMTP host is set.
var ErrNotConfigured = errors.New("mailer: SMTP is not configured")

// Config holds SMTP settings for one sending account.
type Config struct {
	Host     string
	Port     int
	User     string
	Pass     string
	From     string // address; defaults to User
	FromName string
}

// Email is one outgoing message. To may be empty when Bcc is set.
type Email struct {
	To       []string
	Bcc      []string
	ReplyTo  string
	Subject  string
	TextBody string
	HTMLBody string
}

// Mailer sends mail through one SMTP account.
type Mailer struct {
	cfg    Config
	logger *zap.Logger
	now    func() time.Time
}

// New creates a Mailer. Port defaults to 587.
func New(cfg Config, logger *zap.Logger) *Mailer {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.From == "" {
		cfg.From = cfg.User
	}
	return &Mailer{cfg: cfg, logger: logger, now: time.Now}
}

// Configured reports whether the mailer can send.
func (m *Mailer) Configured() bool {
	return m != nil && m.cfg.Host != "" && m.cfg.From != ""
}

// Address is the sending account's address.
func (m *Mailer) Address() string { return m.cfg.From }

// Send delivers e. Bcc recipients get the message but are not listed in headers.
func (m *Mailer) Send(ctx context.Context, e Email) error {
	if !m.Configured() {
		return ErrNotConfigured
	}
	rcpts := append(append([]string{}, e.To...), e.Bcc...)
	if len(rcpts) == 0 {
		return errors.New("mailer: no recipients")
	}

	msg, err := m.build(e)
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("mailer: dial %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("mailer: smtp handshake: %w", err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: m.cfg.Host}); err != nil {
			return fmt.Errorf("mailer: starttls: %w", err)
		}
	}
	if m.cfg.User != "" {
		if err := c.Auth(smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)); err != nil {
			return fmt.Errorf("mailer: auth: %w", err)
		}
	}
	if err := c.Mail(m.cfg.From); err != nil {
		return fmt.Errorf("mailer: MAIL FROM: %w", err)
	}
	for _, r := range rcpts {
		if err := c.Rcpt(r); err != nil {
			return fmt.Errorf("mailer: RCPT TO %s: %w", r, err)
		}
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("mailer: DATA: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("mailer: write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("mailer: end DATA: %w", err)
	}

	m.logger.Info("email sent",
		zap.Int("to", len(e.To)),
		zap.Int("bcc", len(e.Bcc)),
		zap.String("subject", e.Subject))
	return c.Quit()
}

// build renders e as an RFC 5322 message with a multipart/alternative body.
func (m *Mailer) build(e Email) ([]byte, error) {
	var buf bytes.Buffer
	from := mail.Address{Name: m.cfg.FromName, Address: m.cfg.From}

	hdr := func(k, v string) { fmt.Fprintf(&buf, "%s: %s\r\n", k, v) }
	hdr("From", from.String())
	if len(e.To) > 0 {
		hdr("To", strings.Join(e.To, ", "))
	}
	if e.ReplyTo != "" {
		hdr("Reply-To", e.ReplyTo)
	}
	hdr("Subject", mime.QEncoding.Encode("utf-8", e.Subject))
	hdr("Date", m.now().Format(time.RFC1123Z))
	hdr("Message-ID", fmt.Sprintf("<%s@%s>", uuid.NewString(), m.cfg.Host))
	hdr("MIME-Version", "1.0")

	mw := multipart.NewWriter(&buf)
	hdr("Content-Type", "multipart/alternative; boundary="+mw.Boundary())
	buf.WriteString("\r\n")

	parts := []struct{ ctype, body string }{
		{"text/plain; charset=utf-8", e.TextBody},
		{"text/html; charset=utf-8", e.HTMLBody},
	}
	for _, p := range parts {
		if p.body == "" {
			continue
		}
		pw, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {p.ctype},
			"Content-Transfer-Encoding": {"quoted-printable"},
		})
		if err != nil {
			return nil, err
		}
		qp := quotedprintable.NewWriter(pw)
		if _, err := qp.Write([]byte(p.body)); err != nil {
			return nil, err
		}
		if err := qp.Close(); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
