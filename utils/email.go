package utils

import (
	"fmt"
	"net/smtp"

	"quizforge/config"
)

// SendVerificationEmail sends an email with a verification code over SMTP
func SendVerificationEmail(cfg *config.Config, email, code string) error {
	auth := smtp.PlainAuth("", cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.Host)
	to := []string{email}
	msg := []byte(fmt.Sprintf(
		"To: %s\r\n"+
			"From: %s <%s>\r\n"+
			"Subject: Your QuizForge Verification Code\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=\"UTF-8\"\r\n"+
			"\r\n"+
			"<p>Your verification code is: <strong>%s</strong></p>\r\n"+
			"<p>The code expires in 10 minutes.</p>\r\n",
		email, cfg.SMTP.SenderName, cfg.SMTP.SenderEmail, code))

	addr := fmt.Sprintf("%s:%d", cfg.SMTP.Host, cfg.SMTP.Port)
	if err := smtp.SendMail(addr, auth, cfg.SMTP.SenderEmail, to, msg); err != nil {
		return fmt.Errorf("failed to send verification email: %v", err)
	}
	return nil
}
