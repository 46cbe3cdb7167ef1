package email

import (
	"context"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// Sender delivers transactional email through the Resend API
type Sender struct {
	client *resend.Client
	from   string
	logger *zap.Logger
}

// NewSender creates a new email sender
func NewSender(apiKey, from string, logger *zap.Logger) *Sender {
	return &Sender{
		client: resend.NewClient(apiKey),
		from:   from,
		logger: logger,
	}
}

// Send makes exactly one delivery attempt and returns the provider error,
// if any. Retries are the caller's decision; nothing here queues.
func (s *Sender) Send(ctx context.Context, to, subject, html string) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		s.logger.Error("Failed to send email",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Error(err))
		return err
	}

	s.logger.Info("Email sent",
		zap.String("to", to),
		zap.String("email_id", sent.Id))

	return nil
}
