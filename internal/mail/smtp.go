package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"campushire/pkg/config"

	"gopkg.in/gomail.v2"
)

// SMTPMailer renders the template for a message kind and delivers it over
// SMTP.
type SMTPMailer struct {
	dialer      *gomail.Dialer
	from        string
	frontendURL string
}

func NewSMTP(cfg *config.SMTPConfig, frontendURL string) *SMTPMailer {
	return &SMTPMailer{
		dialer:      gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:        cfg.From,
		frontendURL: frontendURL,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	tmpl, ok := templates[msg.Kind]
	if !ok {
		return fmt.Errorf("unknown mail template %q", msg.Kind)
	}

	data := make(map[string]string, len(msg.Data)+1)
	for k, v := range msg.Data {
		data[k] = v
	}
	data["FrontendURL"] = m.frontendURL

	var body bytes.Buffer
	if err := tmpl.body.Execute(&body, data); err != nil {
		return fmt.Errorf("render mail template %q: %w", msg.Kind, err)
	}

	message := gomail.NewMessage()
	message.SetHeader("From", m.from)
	message.SetHeader("To", msg.To)
	message.SetHeader("Subject", tmpl.subject)
	message.SetBody("text/html", body.String())

	if err := ctx.Err(); err != nil {
		return err
	}
	return m.dialer.DialAndSend(message)
}

type mailTemplate struct {
	subject string
	body    *template.Template
}

var templates = map[Kind]mailTemplate{
	KindVerification: {
		subject: "Verify your CampusHire account",
		body: template.Must(template.New("verification").Parse(`
<p>Hi {{.Name}},</p>
<p>Welcome to CampusHire. Please verify your email to activate your account.</p>
<p><a href="{{.FrontendURL}}/verify-email?token={{.Token}}">Verify Email</a> (valid for 10 minutes)</p>
<p>If you did not create an account, please ignore this email.</p>`)),
	},
	KindPasswordReset: {
		subject: "Reset your CampusHire password",
		body: template.Must(template.New("password_reset").Parse(`
<p>Hi {{.Name}},</p>
<p>You requested to reset your CampusHire password.</p>
<p><a href="{{.FrontendURL}}/reset-password?token={{.Token}}">Reset Password</a> (valid for 15 minutes)</p>
<p>If you didn't request a password reset, you can safely ignore this email.</p>`)),
	},
	KindAdminInvitation: {
		subject: "You have been invited to administer a college on CampusHire",
		body: template.Must(template.New("admin_invitation").Parse(`
<p>Hi {{.Name}},</p>
<p>You have been invited to administer {{.CollegeName}} on CampusHire.</p>
<p>Your temporary password is: <strong>{{.TempPassword}}</strong></p>
<p><a href="{{.FrontendURL}}/verify-email?token={{.Token}}">Verify your email</a>, then log in and change your password.</p>`)),
	},
	KindApplicationNotification: {
		subject: "New college admin application on CampusHire",
		body: template.Must(template.New("application_notification").Parse(`
<p>Hi {{.Name}},</p>
<p>{{.ApplicantName}} ({{.ApplicantEmail}}) has applied to register {{.CollegeName}} as a college.</p>
<p><a href="{{.FrontendURL}}/admin/applications/{{.ApplicationID}}">Review the application</a>.</p>`)),
	},
	KindAdminApproval: {
		subject: "Your CampusHire admin application was approved",
		body: template.Must(template.New("admin_approval").Parse(`
<p>Congratulations!</p>
<p>Your application to administer {{.CollegeName}} on CampusHire has been approved.</p>
<p><a href="{{.FrontendURL}}/login">Log in</a> to start posting jobs.</p>`)),
	},
	KindAdminRejection: {
		subject: "Your CampusHire admin application was not approved",
		body: template.Must(template.New("admin_rejection").Parse(`
<p>We are sorry, but your application to register a college on CampusHire was not approved.</p>
{{if .Comments}}<p>Reviewer comments: {{.Comments}}</p>{{end}}
<p>You may contact support if you believe this is a mistake.</p>`)),
	},
}
