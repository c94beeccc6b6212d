package services

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/Barkat-Ullah/seed-lift-backend/internal/config"
)

// MailerService envoie les emails transactionnels via SMTP
type MailerService struct {
	host string
	port string
	user string
	from string
	auth smtp.Auth
}

func NewMailerService(cfg *config.Config) *MailerService {
	var auth smtp.Auth
	if cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost)
	}
	return &MailerService{
		host: cfg.SMTPHost,
		port: cfg.SMTPPort,
		user: cfg.SMTPUser,
		from: cfg.SMTPFrom,
		auth: auth,
	}
}

// SendOTP envoie le code de vérification à l'utilisateur
func (m *MailerService) SendOTP(to, otp string) error {
	subject := "Your SeedLift verification code"
	body := fmt.Sprintf(
		"Your verification code is %s.\r\nIt expires in 5 minutes. If you did not request this code, ignore this email.",
		otp,
	)
	return m.send(to, subject, body)
}

// SendPasswordChanged prévient l'utilisateur que son mot de passe a changé
func (m *MailerService) SendPasswordChanged(to string) error {
	subject := "Your SeedLift password was changed"
	body := "Your password was just changed. If this was not you, contact support immediately."
	return m.send(to, subject, body)
}

func (m *MailerService) send(to, subject, body string) error {
	msg := strings.Join([]string{
		"From: " + m.from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		body,
	}, "\r\n")

	addr := m.host + ":" + m.port
	if err := smtp.SendMail(addr, m.auth, m.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}
