package email

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"
)

// SMTPConfig holds SMTP connection parameters. Username and password are
// optional for servers allowing unauthenticated relay.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender implements Sender over go-mail.
type SMTPSender struct {
	config SMTPConfig
	logger zerolog.Logger
}

func NewSMTPSender(config SMTPConfig, logger zerolog.Logger) *SMTPSender {
	return &SMTPSender{
		config: config,
		logger: logger.With().Str("component", "smtp_sender").Logger(),
	}
}

func (s *SMTPSender) Send(ctx context.Context, message *Message) error {
	msg := mail.NewMsg()

	from := message.From
	if from == "" {
		from = s.config.From
	}
	if err := msg.From(from); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(message.To...); err != nil {
		return fmt.Errorf("invalid to address: %w", err)
	}
	msg.Subject(message.Subject)

	if message.HTMLBody != "" && message.TextBody != "" {
		msg.SetBodyString(mail.TypeTextPlain, message.TextBody)
		msg.AddAlternativeString(mail.TypeTextHTML, message.HTMLBody)
	} else if message.HTMLBody != "" {
		msg.SetBodyString(mail.TypeTextHTML, message.HTMLBody)
	} else {
		msg.SetBodyString(mail.TypeTextPlain, message.TextBody)
	}

	for _, att := range message.Attachments {
		err := msg.AttachReader(att.Filename, bytes.NewReader(att.Content),
			mail.WithFileContentType(mail.ContentType(att.ContentType)))
		if err != nil {
			return fmt.Errorf("failed to attach %s: %w", att.Filename, err)
		}
	}

	client, err := mail.NewClient(s.config.Host, s.clientOptions()...)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		s.logger.Error().Err(err).Strs("to", message.To).Msg("failed to send email")
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info().Strs("to", message.To).Str("subject", message.Subject).Msg("email sent")
	return nil
}

func (s *SMTPSender) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(s.config.Port),
		mail.WithTimeout(30 * time.Second),
	}

	// TLS mode follows the port convention: 465 implicit, 587 mandatory
	// STARTTLS, everything else opportunistic (dev relays included).
	switch s.config.Port {
	case 465:
		opts = append(opts, mail.WithSSL())
	case 587:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	default:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}

	if s.config.Username != "" && s.config.Password != "" {
		opts = append(opts,
			mail.WithUsername(s.config.Username),
			mail.WithPassword(s.config.Password),
			mail.WithSMTPAuth(mail.SMTPAuthAutoDiscover),
		)
	}

	return opts
}
