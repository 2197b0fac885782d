package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// EmailSender delivers messages through the configured SMTP collaborator.
// The send blocks the calling request until the server accepts or rejects
// the message.
type EmailSender struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string

	// sendMail is swappable for tests; defaults to smtp.SendMail.
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewEmailSender creates an EmailSender for the given SMTP settings.
func NewEmailSender(host string, port int, username, password, from string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
		From:     from,
		sendMail: smtp.SendMail,
	}
}

// Send implements Sender.
func (e *EmailSender) Send(ctx context.Context, msg Message) (string, error) {
	if e.Host == "" {
		return "", fmt.Errorf("email: SMTP host not configured")
	}
	if msg.To == "" || !strings.Contains(msg.To, "@") {
		return "", fmt.Errorf("email: invalid recipient %q", msg.To)
	}

	var auth smtp.Auth
	if e.Username != "" {
		auth = smtp.PlainAuth("", e.Username, e.Password, e.Host)
	}

	body := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s\r\n",
		e.From, msg.To, msg.Subject, msg.Body)

	addr := fmt.Sprintf("%s:%d", e.Host, e.Port)
	send := e.sendMail
	if send == nil {
		send = smtp.SendMail
	}
	if err := send(addr, auth, e.From, []string{msg.To}, []byte(body)); err != nil {
		return "", fmt.Errorf("email: send to %s: %w", msg.To, err)
	}
	return fmt.Sprintf("accepted by %s", addr), nil
}
