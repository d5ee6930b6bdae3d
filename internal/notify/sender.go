// Package notify delivers member emails: the welcome message after
// registration and reminders before a membership expires.
package notify

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog/log"
)

// Message is one outgoing email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender delivers a single email.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// ResendSender sends through the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
}

func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	sent, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
	})
	if err != nil {
		log.Error().Err(err).Str("to", msg.To).Str("subject", msg.Subject).Msg("resend send failed")
		return fmt.Errorf("resend send failed: %w", err)
	}
	log.Info().Str("message_id", sent.Id).Str("to", msg.To).Msg("email sent")
	return nil
}

// LogSender only logs the message. Used when no API key is configured.
type LogSender struct{}

func (LogSender) Send(_ context.Context, msg Message) error {
	log.Info().Str("to", msg.To).Str("subject", msg.Subject).Msg("email delivery disabled, message dropped")
	return nil
}
