package service

import (
	"context"
	"fmt"
	"html"
	"net/smtp"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/healthyrecipes/backend/internal/logger"
)

// EmailConfig holds the SMTP settings. An empty Host logs messages instead of sending them.
type EmailConfig struct {
	Host        string
	Port        string
	Username    string
	Password    string
	From        string
	FromName    string
	FrontendURL string
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type EmailService struct {
	cfg      EmailConfig
	log      *zap.Logger
	sendMail sendMailFunc
}

var _ Mailer = (*EmailService)(nil)

func NewEmailService(cfg EmailConfig, log *zap.Logger) *EmailService {
	cfg.FrontendURL = strings.TrimRight(cfg.FrontendURL, "/")
	return &EmailService{
		cfg:      cfg,
		log:      logger.Component(log, "email"),
		sendMail: smtp.SendMail,
	}
}

// SendEmail delivers an HTML message to a single recipient
func (s *EmailService) SendEmail(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.ContainsAny(to+subject, "\r\n") {
		return fmt.Errorf("refusing to send email with header line breaks")
	}

	if s.cfg.Host == "" {
		s.log.Info("SMTP not configured, logging email",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.String("body", body),
		)
		return nil
	}

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	from := s.cfg.From
	if s.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.cfg.FromName, s.cfg.From)
	}
	msg := []byte(fmt.Sprintf("To: %s\r\n"+
		"From: %s\r\n"+
		"Subject: %s\r\n"+
		"MIME-Version: 1.0\r\n"+
		"Content-Type: text/html; charset=UTF-8\r\n"+
		"\r\n"+
		"%s\r\n", to, from, subject, body))

	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)
	if err := s.sendMail(addr, auth, s.cfg.From, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	s.log.Debug("email sent", zap.String("subject", subject))
	return nil
}

// SendPasswordResetEmail mails a link to the frontend's reset page carrying token
func (s *EmailService) SendPasswordResetEmail(ctx context.Context, to, name, token string, validFor time.Duration) error {
	link := s.ResetLink(token)
	return s.SendEmail(ctx, to, "Reset your password - Healthy Recipes", passwordResetBody(name, link, validFor))
}

// ResetLink is the frontend URL a reset token is delivered in
func (s *EmailService) ResetLink(token string) string {
	return fmt.Sprintf("%s/reset-password?token=%s", s.cfg.FrontendURL, url.QueryEscape(token))
}

func passwordResetBody(name, link string, validFor time.Duration) string {
	if name == "" {
		name = "there"
	}
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<title>Reset your password</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<h2 style="color: #4CAF50;">Hi %s,</h2>
	<p>We received a request to reset the password for your Healthy Recipes account.</p>
	<div style="text-align: center; margin: 30px 0;">
		<a href="%s" style="background-color: #4CAF50; color: white; padding: 15px 30px; text-decoration: none; border-radius: 5px; font-weight: bold;">
			Choose a new password
		</a>
	</div>
	<p style="color: #666; font-size: 14px;">If the button does not work, copy this link into your browser:</p>
	<p style="background-color: #eee; padding: 10px; border-radius: 5px; word-break: break-all; font-size: 12px;">%s</p>
	<p style="color: #666; font-size: 12px;">The link expires in %d minutes and works once. If you did not ask for it, ignore this email.</p>
</body>
</html>
`, html.EscapeString(name), html.EscapeString(link), html.EscapeString(link), int(validFor.Minutes()))
}
