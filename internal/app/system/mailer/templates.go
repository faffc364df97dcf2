// internal/app/system/mailer/templates.go
package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// layoutHTML wraps every message body in the same card.
const layoutHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 520px; background-color: #ffffff; border-radius: 8px;">
          <tr>
            <td style="padding: 28px 32px 20px; text-align: center; border-bottom: 1px solid #e5e7eb;">
              <h1 style="margin: 0; font-size: 22px; font-weight: 600; color: #4f46e5;">{{.SiteName}}</h1>
            </td>
          </tr>
          <tr>
            <td style="padding: 32px; font-size: 15px; color: #374151; line-height: 1.6;">
              {{block "content" .}}{{end}}
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`

const buttonHTML = `{{define "button"}}<table role="presentation" width="100%" cellspacing="0" cellpadding="0"><tr><td align="center" style="padding: 16px 0;">
<a href="{{.}}" style="display: inline-block; padding: 12px 28px; background-color: #4f46e5; color: #ffffff; text-decoration: none; border-radius: 6px;">Open</a>
</td></tr></table>{{end}}`

func render(content string, data any) string {
	t := template.Must(template.New("layout").Parse(layoutHTML))
	template.Must(t.Parse(buttonHTML))
	template.Must(t.Parse(`{{define "content"}}` + content + `{{end}}`))
	var buf bytes.Buffer
	_ = t.Execute(&buf, data)
	return buf.String()
}

// PasswordResetData holds data for the password-reset email.
type PasswordResetData struct {
	SiteName  string
	ResetLink string
	ExpiresIn string // e.g. "1 hour"
}

// BuildPasswordResetEmail creates the reset-link email.
func BuildPasswordResetEmail(data PasswordResetData) Email {
	var text bytes.Buffer
	fmt.Fprintf(&text, "Someone asked to reset the password for your %s account.\n\n", data.SiteName)
	text.WriteString("Use this link to choose a new password:\n")
	text.WriteString(data.ResetLink + "\n\n")
	fmt.Fprintf(&text, "The link expires in %s. If you did not ask for this, ignore this email.\n", data.ExpiresIn)

	return Email{
		Subject:  fmt.Sprintf("Reset your %s password", data.SiteName),
		TextBody: text.String(),
		HTMLBody: render(`<p>Someone asked to reset the password for your account.</p>
{{template "button" .ResetLink}}
<p style="font-size: 13px; color: #6b7280;">The link expires in {{.ExpiresIn}}. If you did not ask for this, ignore this email.</p>`, data),
	}
}

// InvitationData holds data for the event-admin invitation email.
type InvitationData struct {
	SiteName    string
	EventName   string
	InviterName string
	AcceptLink  string
	ExpiresIn   string
}

// BuildInvitationEmail creates the invitation to co-manage an event.
func BuildInvitationEmail(data InvitationData) Email {
	var text bytes.Buffer
	fmt.Fprintf(&text, "%s invited you to help manage %q on %s.\n\n", data.InviterName, data.EventName, data.SiteName)
	text.WriteString("Accept the invitation here:\n")
	text.WriteString(data.AcceptLink + "\n\n")
	fmt.Fprintf(&text, "This invitation expires in %s.\n", data.ExpiresIn)

	return Email{
		Subject:  fmt.Sprintf("You're invited to manage %s", data.EventName),
		TextBody: text.String(),
		HTMLBody: render(`<p>{{.InviterName}} invited you to help manage <strong>{{.EventName}}</strong>.</p>
{{template "button" .AcceptLink}}
<p style="font-size: 13px; color: #6b7280;">This invitation expires in {{.ExpiresIn}}.</p>`, data),
	}
}

// ContactData holds a contact-form submission for the notification email.
type ContactData struct {
	SiteName  string
	FirstName string
	LastName  string
	Email     string
	Subject   string
	Message   string
}

// BuildContactNotification creates the staff notification for a contact submission.
func BuildContactNotification(data ContactData) Email {
	var text bytes.Buffer
	fmt.Fprintf(&text, "New contact form submission\n\n")
	fmt.Fprintf(&text, "From: %s %s <%s>\n", data.FirstName, data.LastName, data.Email)
	fmt.Fprintf(&text, "Subject: %s\n\n", data.Subject)
	text.WriteString(data.Message + "\n")

	return Email{
		ReplyTo:  data.Email,
		Subject:  fmt.Sprintf("[%s contact] %s", data.SiteName, data.Subject),
		TextBody: text.String(),
		HTMLBody: render(`<p><strong>{{.FirstName}} {{.LastName}}</strong> &lt;{{.Email}}&gt;</p>
<p><strong>Subject:</strong> {{.Subject}}</p>
<p style="white-space: pre-wrap;">{{.Message}}</p>`, data),
	}
}
