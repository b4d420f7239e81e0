package services

import (
	"fmt"
	"log"
	"time"

	"gopkg.in/gomail.v2"
)

type EmailService interface {
	SendWelcomeEmail(email, firstName string) error
	SendPasswordResetEmail(email, code, firstName string) error
}

type emailService struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) EmailService {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return &emailService{
		dialer: dialer,
		from:   fromEmail,
	}
}

const (
	sendAttempts     = 3
	sendBackoffFirst = 500 * time.Millisecond
)

// dialAndSend retries transient SMTP failures with exponential backoff before
// giving up.
func (s *emailService) dialAndSend(m *gomail.Message) error {
	backoff := sendBackoffFirst
	var err error
	for attempt := 1; attempt <= sendAttempts; attempt++ {
		if err = s.dialer.DialAndSend(m); err == nil {
			return nil
		}
		log.Printf("[email][send] attempt %d/%d failed: %v", attempt, sendAttempts, err)
		if attempt < sendAttempts {
			time.Sleep(backoff)
			backoff *= 2
		}
	}
	return err
}

func (s *emailService) SendWelcomeEmail(email, firstName string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Welcome to Ascend!")

	body := fmt.Sprintf(`
		<h2>Welcome to Ascend, %s!</h2>
		<p>Your account has been created. Log your first climb and start tracking your progress.</p>
		<p>Climb on,<br>The Ascend Team</p>
	`, firstName)

	m.SetBody("text/html", body)

	if err := s.dialAndSend(m); err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}
	return nil
}

func (s *emailService) SendPasswordResetEmail(email, code, firstName string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Password Reset Request - Ascend")

	body := fmt.Sprintf(`
		<h3>Hello %s,</h3>
		<p>We received a request to reset the password for your Ascend account.</p>
		<p>Your reset code is: <strong>%s</strong></p>
		<p>This code expires in 15 minutes.</p>
		<p>If you did not request this change, you can ignore this email.</p>
	`, firstName, code)

	m.SetBody("text/html", body)

	if err := s.dialAndSend(m); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	return nil
}
