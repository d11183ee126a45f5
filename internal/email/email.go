// Package email delivers confirmation-code messages over SMTP. It is used
// only by the queue consumer; request handlers never talk SMTP directly.
package email

import (
	"fmt"
	"mime"
	"net/smtp"

	"github.com/spaps/rental-backend/internal/config"
	"github.com/spaps/rental-backend/internal/queue"
)

var subjects = map[queue.EmailVariant]string{
	queue.VariantRegistration:   "SPAPS registration",
	queue.VariantPasswordChange: "SPAPS password change",
	queue.VariantEmailChange:    "SPAPS email change",
}

var bodies = map[queue.EmailVariant]string{
	queue.VariantRegistration:   "Your code to confirm the email address:",
	queue.VariantPasswordChange: "Your code to confirm the password change:",
	queue.VariantEmailChange:    "Your code to confirm the email address change:",
}

// Sender holds SMTP configuration and auth, built once at startup.
type Sender struct {
	cfg  config.SMTP
	auth smtp.Auth
}

func NewSender(cfg config.SMTP) *Sender {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &Sender{cfg: cfg, auth: auth}
}

// SendCode emails the confirmation code using the subject/body pair of the
// event's variant. Unknown variants fall back to the registration wording.
func (s *Sender) SendCode(ev queue.SendCodeEvent) error {
	subject, ok := subjects[ev.Variant]
	if !ok {
		subject = subjects[queue.VariantRegistration]
	}
	text, ok := bodies[ev.Variant]
	if !ok {
		text = bodies[queue.VariantRegistration]
	}

	body := fmt.Sprintf("Hello %s %s,\r\n\r\n%s\r\n\r\n%s\r\n\r\nIf you did not request this, please ignore this email.\r\n",
		ev.FirstName, ev.LastName, text, ev.Code)
	msg := s.buildMessage(ev.Email, subject, body)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	return smtp.SendMail(addr, s.auth, s.cfg.FromEmail, []string{ev.Email}, msg)
}

func (s *Sender) buildMessage(recipient, subject, body string) []byte {
	headers := fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n",
		mime.QEncoding.Encode("utf-8", s.cfg.FromName), s.cfg.FromEmail,
		recipient, mime.QEncoding.Encode("utf-8", subject))
	return []byte(headers + body)
}
