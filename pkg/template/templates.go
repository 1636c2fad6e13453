package template

import (
	"bytes"
	"fmt"
	"html/template"
)

// Notification emails share one layout; the body is plain text supplied by
// the dispatcher. Kept embedded so the binary has no template directory to
// ship alongside it.
const notificationEmailTmpl = `
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; border: 1px solid #e0e0e0; border-radius: 5px;">
  <h1 style="color: #4a6ee0;">{{.Title}}</h1>
  <p style="font-size: 16px; line-height: 1.5;">{{.Message}}</p>
  <div style="margin-top: 30px; padding-top: 20px; border-top: 1px solid #e0e0e0; font-size: 12px; color: #666;">
    <p>This is an automated notification from {{.AppName}}. Please do not reply to this email.</p>
    <p>To manage your notification preferences, log in to your account and visit the notification settings page.</p>
  </div>
</div>
`

type TemplateService struct {
	appName string
	email   *template.Template
}

func NewTemplateService(appName string) (*TemplateService, error) {
	t, err := template.New("notification_email").Parse(notificationEmailTmpl)
	if err != nil {
		return nil, fmt.Errorf("parse email template: %w", err)
	}
	return &TemplateService{appName: appName, email: t}, nil
}

// RenderNotificationEmail returns the HTML body for a notification email.
func (t *TemplateService) RenderNotificationEmail(title, message string) (string, error) {
	var buf bytes.Buffer
	err := t.email.Execute(&buf, map[string]any{
		"Title":   title,
		"Message": message,
		"AppName": t.appName,
	})
	if err != nil {
		return "", fmt.Errorf("execute email template: %w", err)
	}
	return buf.String(), nil
}
