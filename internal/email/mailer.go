package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/mail"
	"net/url"

	"github.com/dajohi/goemail"

	portssvc "github.com/ostwerk/billable_app/internal/core/ports/services"
	"github.com/ostwerk/billable_app/pkg/config"
)

// SMTPMailer sends invoices and reminder mail over SMTP. When no SMTP host is
// configured it becomes a no-op so the rest of the application keeps working.
type SMTPMailer struct {
	client      *goemail.SMTP
	mailName    string
	mailAddress string
	disabled    bool
}

// NewSMTPMailer creates a mailer from the SMTP settings in the config.
func NewSMTPMailer(cfg *config.Config) (*SMTPMailer, error) {
	if cfg.SMTPHost == "" || cfg.SMTPUser == "" || cfg.SMTPPassword == "" {
		return &SMTPMailer{disabled: true}, nil
	}

	h := fmt.Sprintf("smtps://%v:%v@%v", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost)
	u, err := url.Parse(h)
	if err != nil {
		return nil, fmt.Errorf("failed to parse smtp host: %w", err)
	}

	a, err := mail.ParseAddress(cfg.SMTPFromAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to parse smtp from address: %w", err)
	}

	tlsConfig := &tls.Config{}
	if cfg.SMTPSkipVerify {
		tlsConfig.InsecureSkipVerify = true
	}

	client, err := goemail.NewSMTP(u.String(), tlsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize smtp client: %w", err)
	}

	return &SMTPMailer{
		client:      client,
		mailName:    a.Name,
		mailAddress: a.Address,
	}, nil
}

var _ portssvc.Mailer = (*SMTPMailer)(nil)

// Send delivers a plain text email to the recipient with an optional
// attachment.
func (m *SMTPMailer) Send(ctx context.Context, recipient, subject, body string, attachmentName string, attachment []byte) error {
	if m.disabled {
		return nil
	}

	msg := goemail.NewMessage(m.mailAddress, subject, body)
	msg.SetName(m.mailName)
	if !goemail.IsValidAddress(recipient) {
		return fmt.Errorf("invalid recipient address %q", recipient)
	}
	msg.AddTo(recipient)
	if attachmentName != "" && len(attachment) > 0 {
		msg.AddAttachment(attachmentName, attachment)
	}

	if err := m.client.Send(msg); err != nil {
		return fmt.Errorf("failed to send mail to %q: %w", recipient, err)
	}
	return nil
}
