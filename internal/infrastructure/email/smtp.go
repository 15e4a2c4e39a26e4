package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromAddress string
	FromName    string
}

type SMTPEmailService struct {
	config SMTPConfig
	dialer *gomail.Dialer
}

func NewSMTPEmailService(config SMTPConfig) *SMTPEmailService {
	dialer := gomail.NewDialer(config.Host, config.Port, config.Username, config.Password)

	return &SMTPEmailService{
		config: config,
		dialer: dialer,
	}
}

// SendLinkingEmail delivers the Discord linking URL to a new subscriber.
func (s *SMTPEmailService) SendLinkingEmail(ctx context.Context, to, linkURL string) error {
	subject := "Link Your Discord Account"
	htmlBody := fmt.Sprintf(`
		<html>
		<body>
			<h2>Thanks for subscribing!</h2>
			<p>Link your Discord account to receive your member roles:</p>
			<p><a href="%s">Link Discord Account</a></p>
			<p>Or copy and paste this URL into your browser:</p>
			<p>%s</p>
			<p>This link will expire in 7 days.</p>
			<p>If you didn't subscribe, please ignore this email.</p>
		</body>
		</html>
	`, linkURL, linkURL)

	plainBody := fmt.Sprintf(`
Thanks for subscribing!

Link your Discord account to receive your member roles by visiting:
%s

This link will expire in 7 days.

If you didn't subscribe, please ignore this email.
	`, linkURL)

	return s.sendEmail(to, subject, htmlBody, plainBody)
}

// SendCouponEmail delivers a platform subscription coupon code.
func (s *SMTPEmailService) SendCouponEmail(ctx context.Context, to, couponCode, planID string) error {
	subject := "Your Platform Subscription Coupon"
	htmlBody := fmt.Sprintf(`
		<html>
		<body>
			<h2>Your subscription is ready</h2>
			<p>Redeem the coupon code below to activate your %s plan:</p>
			<p><strong>%s</strong></p>
			<p>If you didn't purchase a subscription, please contact support.</p>
		</body>
		</html>
	`, planID, couponCode)

	plainBody := fmt.Sprintf(`
Your subscription is ready.

Redeem the following coupon code to activate your %s plan:

%s

If you didn't purchase a subscription, please contact support.
	`, planID, couponCode)

	return s.sendEmail(to, subject, htmlBody, plainBody)
}

func (s *SMTPEmailService) sendEmail(to, subject, htmlBody, plainBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.config.FromAddress)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", plainBody)
	m.AddAlternative("text/html", htmlBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
