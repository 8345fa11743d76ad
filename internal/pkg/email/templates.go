package email

import (
	"bytes"
	"fmt"
	"html/template"
)

// Kind names an email template
type Kind string

const (
	KindWelcome             Kind = "welcome"
	KindPasswordReset       Kind = "password_reset"
	KindPaymentConfirmation Kind = "payment_confirmation"
)

// Message is a rendered email ready for delivery
type Message struct {
	Kind    Kind
	To      string
	Subject string
	HTML    string
}

// WelcomeData fills the welcome template
type WelcomeData struct {
	AppName  string
	Name     string
	LoginURL string
}

// PasswordResetData fills the password reset template
type PasswordResetData struct {
	AppName   string
	Name      string
	ResetURL  string
	ExpiresIn string
}

// PaymentConfirmationData fills the payment confirmation template
type PaymentConfirmationData struct {
	AppName      string
	Name         string
	CourseTitle  string
	Amount       string
	Reference    string
	PaidAt       string
	DashboardURL string
}

const layoutHead = `<html><body><div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">`
const layoutFoot = `<p>Best regards,<br>The {{.AppName}} Team</p></div></body></html>`

var templates = map[Kind]struct {
	subject string
	body    *template.Template
}{
	KindWelcome: {
		subject: "Welcome to %s",
		body: template.Must(template.New("welcome").Parse(layoutHead + `
<h2 style="color: #333;">Welcome to {{.AppName}}!</h2>
<p>Hello {{.Name}},</p>
<p>Your enrollment is confirmed and your learning dashboard is ready.</p>
<div style="text-align: center; margin: 30px 0;">
  <a href="{{.LoginURL}}" style="background-color: #4a86e8; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; font-weight: bold;">Go to dashboard</a>
</div>
` + layoutFoot)),
	},
	KindPasswordReset: {
		subject: "Reset your %s password",
		body: template.Must(template.New("password_reset").Parse(layoutHead + `
<h2 style="color: #333;">Password reset</h2>
<p>Hello {{.Name}},</p>
<p>We received a request to reset your password. The link below expires in {{.ExpiresIn}}.</p>
<div style="text-align: center; margin: 30px 0;">
  <a href="{{.ResetURL}}" style="background-color: #4a86e8; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; font-weight: bold;">Reset password</a>
</div>
<p>If you did not ask for this, you can ignore this email.</p>
` + layoutFoot)),
	},
	KindPaymentConfirmation: {
		subject: "%s payment confirmation",
		body: template.Must(template.New("payment_confirmation").Parse(layoutHead + `
<h2 style="color: #333;">Payment received</h2>
<p>Hello {{.Name}},</p>
<p>We received your payment of <strong>{{.Amount}}</strong> for <strong>{{.CourseTitle}}</strong>.</p>
<p>Reference: {{.Reference}}<br>Date: {{.PaidAt}}</p>
<p><a href="{{.DashboardURL}}">Open your dashboard</a></p>
` + layoutFoot)),
	},
}

// Render builds the message of the given kind for one recipient. data must be
// the matching *Data struct and must carry AppName.
func Render(kind Kind, to, appName string, data interface{}) (Message, error) {
	tpl, ok := templates[kind]
	if !ok {
		return Message{}, fmt.Errorf("unknown email template %q", kind)
	}
	var buf bytes.Buffer
	if err := tpl.body.Execute(&buf, data); err != nil {
		return Message{}, fmt.Errorf("render %s: %w", kind, err)
	}
	return Message{
		Kind:    kind,
		To:      to,
		Subject: fmt.Sprintf(tpl.subject, appName),
		HTML:    buf.String(),
	}, nil
}
