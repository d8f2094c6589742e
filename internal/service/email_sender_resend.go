package service

import (
	"context"
	"errors"
	"strings"

	"github.com/resend/resend-go/v2"
)

var ErrEmailNotConfigured = errors.New("email sender not configured")

type resendEmails interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type ResendEmailSender struct {
	emails resendEmails
	from   string
}

// NewResendEmailSender returns a sender that fails every call with
// ErrEmailNotConfigured when the API key or sender address is missing.
func NewResendEmailSender(apiKey string, from string) *ResendEmailSender {
	if strings.TrimSpace(apiKey) == "" || strings.TrimSpace(from) == "" {
		return &ResendEmailSender{}
	}
	client := resend.NewClient(apiKey)
	return &ResendEmailSender{emails: client.Emails, from: from}
}

func (s *ResendEmailSender) Send(ctx context.Context, to string, subject string, body string) error {
	if s.emails == nil {
		return ErrEmailNotConfigured
	}
	_, err := s.emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Text:    body,
	})
	return err
}
