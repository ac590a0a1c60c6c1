// Package mail sends transactional mail through the Resend API.
//
// Services depend on the Sender interface only. NopSender backs tests
// and deployments without a mail provider configured.
package mail

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v3"
)

type Sender interface {
	// SendPasswordReset mails a reset link carrying the raw token
	SendPasswordReset(ctx context.Context, toEmail string, token string) error
}

// NopSender discards all mail
type NopSender struct{}

func (NopSender) SendPasswordReset(ctx context.Context, toEmail string, token string) error {
	return nil
}

type ResendSender struct {
	client    *resend.Client
	fromEmail string
	appURL    string
}

// NewResendSender builds a Sender over the Resend API.
// fromEmail must belong to a domain verified in Resend; appURL is the
// public base URL reset links point at.
func NewResendSender(apiKey string, fromEmail string, appURL string) *ResendSender {
	return &ResendSender{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
		appURL:    appURL,
	}
}

func (s *ResendSender) SendPasswordReset(ctx context.Context, toEmail string, token string) error {
	resetLink := fmt.Sprintf("%s/reset-password?token=%s", s.appURL, token)

	html := fmt.Sprintf(`<p>We received a request to reset your password.</p>
<p><a href="%s">Reset your password</a></p>
<p>The link expires in one hour. If you didn't request a reset you can ignore this email.</p>`, resetLink)

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("Gulf Coast Property Group <%s>", s.fromEmail),
		To:      []string{toEmail},
		Subject: "Reset your password",
		Html:    html,
	}

	_, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}

	return nil
}
