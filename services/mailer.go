package services

import (
	"fmt"
	"html/template"
	"log"
	"strings"

	"gorm.io/gorm"

	"syllabus-approval-api/config"
	"syllabus-approval-api/models"
)

// SMTPMailer mirrors every derived notification to the recipient's email.
// Sends happen on a goroutine so a slow SMTP server never blocks a
// workflow transition; failures are logged and dropped.
type SMTPMailer struct {
	db *gorm.DB
}

func NewSMTPMailer(db *gorm.DB) *SMTPMailer {
	return &SMTPMailer{db: db}
}

func (m *SMTPMailer) Send(userID int, title, message string) {
	var user models.User
	if err := m.db.Select("user_id, user_fname, user_lname, email").
		Where("user_id = ? AND delete_at IS NULL", userID).
		First(&user).Error; err != nil {
		return
	}
	if user.Email == "" {
		return
	}

	html := buildNotificationEmailHTML(title, user.FullName(), message)
	go func() {
		if err := config.SendMail([]string{user.Email}, title, html); err != nil {
			log.Printf("notification email send failed (subject=%q to=%s): %v", title, user.Email, err)
		}
	}()
}

func buildNotificationEmailHTML(subject, recipientName, message string) string {
	name := strings.TrimSpace(recipientName)
	if name == "" {
		name = "Colleague"
	}

	escapedSubject := template.HTMLEscapeString(subject)
	escapedGreeting := template.HTMLEscapeString(fmt.Sprintf("Dear %s,", name))
	escapedMessage := template.HTMLEscapeString(strings.TrimSpace(message))
	escapedMessage = strings.ReplaceAll(strings.ReplaceAll(escapedMessage, "\r\n", "\n"), "\r", "\n")
	escapedMessage = strings.ReplaceAll(escapedMessage, "\n", "<br />")

	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
</head>
<body style="margin:0;padding:0;background-color:#f9fafb;font-family:'Segoe UI',Tahoma,Arial,sans-serif;">
<div style="max-width:640px;margin:0 auto;padding:24px 20px;">
  <div style="background-color:#ffffff;border:1px solid #e5e7eb;border-radius:12px;padding:24px 24px 28px 24px;">
    <p style="margin:0 0 16px 0;font-size:16px;line-height:1.7;color:#111827;">%s</p>
    <p style="margin:0 0 0 0;font-size:16px;line-height:1.7;color:#111827;word-break:break-word;">%s</p>
  </div>
</div>
</body>
</html>`, escapedSubject, escapedGreeting, escapedMessage)
}
