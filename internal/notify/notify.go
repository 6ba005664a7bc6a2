// Package notify tells site owners about new RSVPs and wishes.
package notify

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"

	"eventsite/internal/domains"
)

type RsvpNotice struct {
	OwnerEmail string
	SiteTitle  string
	Guest      domains.Guest
	Updated    bool
}

type WishNotice struct {
	OwnerEmail string
	SiteTitle  string
	Wish       domains.Wish
}

type Notifier interface {
	NotifyRsvp(ctx context.Context, n RsvpNotice) error
	NotifyWish(ctx context.Context, n WishNotice) error
}

// Nop drops every notice.
type Nop struct{}

func (Nop) NotifyRsvp(context.Context, RsvpNotice) error { return nil }
func (Nop) NotifyWish(context.Context, WishNotice) error { return nil }

// TLS modes for SMTPConfig.TLS.
const (
	TLSAuto     = "auto"
	TLSStartTLS = "starttls"
	TLSImplicit = "tls"
	TLSNone     = "none"
)

type SMTPConfig struct {
	Addr     string
	From     string
	Username string
	Password string
	// TLS is one of the TLS* modes. Empty means TLSAuto: STARTTLS when the
	// relay advertises it, plain text otherwise.
	TLS string
}

// SMTPNotifier sends plain-text mails through a relay with go-smtp.
type SMTPNotifier struct {
	cfg      SMTPConfig
	sendMail func(addr string, a sasl.Client, from string, to []string, r io.Reader) error
	now      func() time.Time
}

func NewSMTP(cfg SMTPConfig) *SMTPNotifier {
	n := &SMTPNotifier{
		cfg: cfg,
		now: time.Now,
	}
	n.sendMail = n.deliver
	return n
}

func (s *SMTPNotifier) dial(addr string) (*smtp.Client, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("smtp addr %q: %w", addr, err)
	}
	tlsConfig := &tls.Config{ServerName: host}

	switch s.cfg.TLS {
	case TLSImplicit:
		return smtp.DialTLS(addr, tlsConfig)
	case TLSStartTLS:
		return smtp.DialStartTLS(addr, tlsConfig)
	case TLSNone:
		return smtp.Dial(addr)
	case "", TLSAuto:
		c, err := smtp.Dial(addr)
		if err != nil {
			return nil, err
		}
		if ok, _ := c.Extension("STARTTLS"); !ok {
			return c, nil
		}
		// go-smtp only upgrades during dial, so reconnect with STARTTLS.
		c.Close()
		return smtp.DialStartTLS(addr, tlsConfig)
	default:
		return nil, fmt.Errorf("unknown smtp tls mode %q", s.cfg.TLS)
	}
}

func (s *SMTPNotifier) deliver(addr string, a sasl.Client, from string, to []string, r io.Reader) error {
	c, err := s.dial(addr)
	if err != nil {
		return err
	}
	defer c.Close()

	if a != nil {
		if ok, _ := c.Extension("AUTH"); !ok {
			return errors.New("smtp: server doesn't support AUTH")
		}
		if err := c.Auth(a); err != nil {
			return err
		}
	}
	if err := c.SendMail(from, to, r); err != nil {
		return err
	}
	return c.Quit()
}

// New returns an SMTP notifier, or Nop when no relay is configured.
func New(cfg SMTPConfig) Notifier {
	if cfg.Addr == "" {
		return Nop{}
	}
	return NewSMTP(cfg)
}

func (s *SMTPNotifier) NotifyRsvp(ctx context.Context, n RsvpNotice) error {
	verb := "responded"
	if n.Updated {
		verb = "updated their response"
	}
	g := n.Guest
	var body strings.Builder
	fmt.Fprintf(&body, "%s <%s> %s to %s.\r\n\r\n", g.Name, g.Email, verb, n.SiteTitle)
	fmt.Fprintf(&body, "Status: %s\r\n", g.Status)
	fmt.Fprintf(&body, "Number of guests: %d\r\n", g.NumberOfGuests)
	if len(g.GuestNames) > 0 {
		fmt.Fprintf(&body, "Guest names: %s\r\n", strings.Join(g.GuestNames, ", "))
	}
	if g.Message != "" {
		fmt.Fprintf(&body, "\r\n%s\r\n", g.Message)
	}
	return s.send(ctx, n.OwnerEmail, "New RSVP for "+n.SiteTitle, body.String())
}

func (s *SMTPNotifier) NotifyWish(ctx context.Context, n WishNotice) error {
	w := n.Wish
	var body strings.Builder
	fmt.Fprintf(&body, "%s left a wish on %s:\r\n\r\n%s\r\n", w.Name, n.SiteTitle, w.Message)
	if w.Status == domains.WishStatusPending {
		body.WriteString("\r\nIt is waiting for your approval.\r\n")
	}
	return s.send(ctx, n.OwnerEmail, "New wish for "+n.SiteTitle, body.String())
}

func (s *SMTPNotifier) send(ctx context.Context, to, subject, body string) error {
	if to == "" {
		return nil
	}
	msg := s.message(to, subject, body)

	var auth sasl.Client
	if s.cfg.Username != "" {
		auth = sasl.NewPlainClient("", s.cfg.Username, s.cfg.Password)
	}

	done := make(chan error, 1)
	go func() {
		done <- s.sendMail(s.cfg.Addr, auth, s.cfg.From, []string{to}, strings.NewReader(msg))
	}()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send mail to %s: %w", to, err)
		}
		slog.Debug("notification sent", "to", to, "subject", subject)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *SMTPNotifier) message(to, subject, body string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", strings.NewReplacer("\r", "", "\n", "").Replace(subject))
	fmt.Fprintf(&b, "Date: %s\r\n", s.now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(body)
	return b.String()
}
