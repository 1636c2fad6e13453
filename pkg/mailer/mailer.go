package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"

	"crm-backend/pkg/logger"
	"crm-backend/pkg/template"

	"go.uber.org/zap"
)

// Mailer sends notification emails over SMTP with implicit TLS (port 465).
type Mailer struct {
	smtpHost string
	smtpPort string
	username string
	password string
	from     string
	tmpl     *template.TemplateService
}

func NewMailer(host, port, user, pass, from string, tmpl *template.TemplateService) *Mailer {
	return &Mailer{
		smtpHost: host,
		smtpPort: port,
		username: user,
		password: pass,
		from:     from,
		tmpl:     tmpl,
	}
}

// SendNotificationEmail renders the notification layout and sends it.
// Returns false on any failure; the error never escapes past the log.
func (m *Mailer) SendNotificationEmail(ctx context.Context, to, title, message string) bool {
	if to == "" {
		logger.L().Warn("no recipient email provided for notification")
		return false
	}

	subject := "Get Connected: " + title
	body, err := m.tmpl.RenderNotificationEmail(title, message)
	if err != nil {
		logger.L().Warn("email template render failed", zap.Error(err))
		body = "<p>" + message + "</p>"
	}

	if err := m.send(ctx, to, subject, body); err != nil {
		logger.L().Warn("email send failed", zap.String("to", to), zap.Error(err))
		return false
	}
	logger.L().Info("email sent", zap.String("to", to), zap.String("subject", subject))
	return true
}

func (m *Mailer) send(ctx context.Context, to, subject, body string) error {
	msg := []byte(
		fmt.Sprintf("From: %s\r\n", m.from) +
			fmt.Sprintf("To: %s\r\n", to) +
			fmt.Sprintf("Subject: %s\r\n", subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=\"utf-8\"\r\n" +
			"\r\n" +
			body,
	)

	serverAddr := m.smtpHost + ":" + m.smtpPort

	dialer := &net.Dialer{}
	if deadline, ok := ctx.Deadline(); ok {
		dialer.Deadline = deadline
	}
	conn, err := tls.DialWithDialer(dialer, "tcp", serverAddr, &tls.Config{
		ServerName: m.smtpHost,
	})
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, m.smtpHost)
	if err != nil {
		return err
	}
	defer client.Quit()

	auth := smtp.PlainAuth("", m.username, m.password, m.smtpHost)
	if err := client.Auth(auth); err != nil {
		return err
	}

	if err := client.Mail(m.from); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	return w.Close()
}
