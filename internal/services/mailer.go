package services

import (
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/staffdocs/backend/internal/config"
	"github.com/staffdocs/backend/internal/models"
	"github.com/staffdocs/backend/pkg/utils"
)

// Mailer sends mail on behalf of individual users. Each sender supplies
// their own SMTP identity; there is no shared platform mailbox, so a user
// without stored credentials cannot send.
type Mailer struct {
	Host string
	Port int
}

func NewMailer(cfg config.SMTPConfig) *Mailer {
	return &Mailer{Host: cfg.Host, Port: cfg.Port}
}

var ErrNoSMTPCredentials = errors.New("no smtp credentials configured")

type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Message struct {
	To          []string
	Subject     string
	Body        string
	Attachments []Attachment
}

// Send delivers the message over implicit TLS using the sender's stored
// credentials. The stored password is decrypted just for the handshake
// and never logged.
func (m *Mailer) Send(sender *models.User, msg Message) error {
	if sender.SMTPEmail == "" || sender.SMTPPassword == "" {
		return ErrNoSMTPCredentials
	}
	password := utils.DecryptOrPlaintext(sender.SMTPPassword)

	addr := fmt.Sprintf("%s:%d", m.Host, m.Port)
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: m.Host})
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}

	client, err := smtp.NewClient(conn, m.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	auth := smtp.PlainAuth("", sender.SMTPEmail, password, m.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}

	if err := client.Mail(sender.SMTPEmail); err != nil {
		return err
	}
	for _, rcpt := range msg.To {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}

	writer, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := writer.Write(buildMIME(sender.SMTPEmail, msg)); err != nil {
		writer.Close()
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}

	return client.Quit()
}

func buildMIME(from string, msg Message) []byte {
	var b strings.Builder
	boundary := "staffdocs-mime-boundary"

	b.WriteString(fmt.Sprintf("From: %s\r\n", from))
	b.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(msg.To, ", ")))
	b.WriteString(fmt.Sprintf("Subject: %s\r\n", msg.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")

	if len(msg.Attachments) == 0 {
		b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
		b.WriteString(msg.Body)
		return []byte(b.String())
	}

	b.WriteString(fmt.Sprintf("Content-Type: multipart/mixed; boundary=%s\r\n\r\n", boundary))

	b.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(msg.Body)
	b.WriteString("\r\n")

	for _, att := range msg.Attachments {
		b.WriteString(fmt.Sprintf("--%s\r\n", boundary))
		b.WriteString(fmt.Sprintf("Content-Type: %s\r\n", att.ContentType))
		b.WriteString("Content-Transfer-Encoding: base64\r\n")
		b.WriteString(fmt.Sprintf("Content-Disposition: attachment; filename=%q\r\n\r\n", att.Filename))
		b.WriteString(base64.StdEncoding.EncodeToString(att.Data))
		b.WriteString("\r\n")
	}
	b.WriteString(fmt.Sprintf("--%s--\r\n", boundary))

	return []byte(b.String())
}
