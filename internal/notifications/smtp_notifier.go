package notifications

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"gopkg.in/gomail.v2"
)

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	// Inbox receives public contact form submissions.
	Inbox string
}

// SMTPNotifier relays messages through an SMTP server.
type SMTPNotifier struct {
	cfg  SMTPConfig
	log  *slog.Logger
	send func(m *gomail.Message) error
}

func NewSMTPNotifier(cfg SMTPConfig, log *slog.Logger) (*SMTPNotifier, error) {
	if cfg.Host == "" || cfg.Port == 0 || cfg.From == "" {
		return nil, errors.New("smtp host, port and sender must be configured")
	}
	if log == nil {
		log = slog.Default()
	}

	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	d.TLSConfig = &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}
	if cfg.Port == 465 {
		d.SSL = true
	}

	return &SMTPNotifier{cfg: cfg, log: log, send: func(m *gomail.Message) error { return d.DialAndSend(m) }}, nil
}

func (n *SMTPNotifier) SendContactMessage(ctx context.Context, in ContactMessage) error {
	if n.cfg.Inbox == "" {
		return errors.New("contact inbox is not configured")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.From)
	m.SetHeader("To", n.cfg.Inbox)
	m.SetAddressHeader("Reply-To", in.Email, in.Name)
	m.SetHeader("Subject", "Kontaktanfrage von "+in.Name)
	m.SetBody("text/plain", fmt.Sprintf("Name: %s\nE-Mail: %s\n\n%s\n", in.Name, in.Email, in.Message))

	return n.deliver(ctx, m, n.cfg.Inbox)
}

func (n *SMTPNotifier) SendInquiry(ctx context.Context, in InquiryNotice) error {
	if in.ToEmail == "" {
		return errors.New("inquiry recipient has no email")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hallo %s,\n\n%s <%s> hat Ihnen eine Nachricht geschickt", in.ToName, in.FromName, in.FromEmail)
	if in.ListingID != nil {
		b.WriteString(" zu Inserat #" + strconv.FormatInt(*in.ListingID, 10))
	}
	b.WriteString(":\n\n" + in.Message + "\n")

	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.From)
	m.SetAddressHeader("To", in.ToEmail, in.ToName)
	m.SetAddressHeader("Reply-To", in.FromEmail, in.FromName)
	m.SetHeader("Subject", "Neue Nachricht zu Ihrem Inserat")
	m.SetBody("text/plain", b.String())

	return n.deliver(ctx, m, in.ToEmail)
}

// deliver runs the blocking SMTP exchange and gives up when ctx ends.
func (n *SMTPNotifier) deliver(ctx context.Context, m *gomail.Message, to string) error {
	done := make(chan error, 1)
	go func() {
		done <- n.send(m)
	}()

	select {
	case <-ctx.Done():
		n.log.WarnContext(ctx, "email send cancelled", "to", to, "err", ctx.Err())
		return fmt.Errorf("email send cancelled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			n.log.ErrorContext(ctx, "email send failed", "to", to, "err", err)
			return fmt.Errorf("send email: %w", err)
		}
	}

	n.log.InfoContext(ctx, "email sent", "to", to)
	return nil
}
