package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"

	"github.com/templui/vows/internal/model"
)

type EmailService struct {
	client      *resend.Client
	fromEmail   string
	notifyEmail string
	isDev       bool
	appURL      string
	appName     string
}

func NewEmailService(apiKey, fromEmail, notifyEmail, appURL, appName string, isDev bool) *EmailService {
	var client *resend.Client
	if apiKey != "" && !isDev {
		client = resend.NewClient(apiKey)
	}

	return &EmailService{
		client:      client,
		fromEmail:   fromEmail,
		notifyEmail: notifyEmail,
		isDev:       isDev,
		appURL:      appURL,
		appName:     appName,
	}
}

// NotifyNewWish tells the couple a wish is waiting for moderation.
// Without NOTIFY_EMAIL this is a no-op.
func (s *EmailService) NotifyNewWish(ctx context.Context, wish *model.Wish) error {
	if s.notifyEmail == "" {
		return nil
	}

	moderateURL := fmt.Sprintf("%s/admin/wishes?filter=pending", s.appURL)
	subject, body := newWishEmailTemplate(wish.Name, wish.Message, wish.HasVideo(), moderateURL, s.appName)

	return s.send(ctx, "new_wish", s.notifyEmail, subject, body, "wish_id", wish.ID)
}

func (s *EmailService) SendAdminWelcome(ctx context.Context, email string) error {
	loginURL := fmt.Sprintf("%s/admin/login", s.appURL)
	subject, body := adminWelcomeEmailTemplate(loginURL, s.appName)

	return s.send(ctx, "admin_welcome", email, subject, body)
}

func (s *EmailService) send(ctx context.Context, kind, to, subject, body string, attrs ...any) error {
	if s.isDev {
		slog.Info("email sent (dev mode)", append([]any{"type", kind, "to", to, "subject", subject}, attrs...)...)
		return nil
	}

	if s.client == nil {
		return fmt.Errorf("email service not configured (missing RESEND_API_KEY)")
	}

	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{to},
		Subject: subject,
		Text:    body,
	}

	_, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to send %s email: %w", kind, err)
	}

	slog.Info("email sent", append([]any{"type", kind, "to", to}, attrs...)...)
	return nil
}
