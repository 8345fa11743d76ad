package email

import (
	"context"
	"net/url"
	"strings"
)

// Enqueuer accepts rendered messages for background delivery
type Enqueuer interface {
	Enqueue(msg Message) error
}

// NotifierConfig holds the values shared by every template
type NotifierConfig struct {
	AppName     string
	FrontendURL string
}

// Notifier renders the transactional emails and hands them to the dispatcher.
// Its methods never block on delivery.
type Notifier struct {
	queue  Enqueuer
	config NotifierConfig
}

// NewNotifier creates a Notifier
func NewNotifier(queue Enqueuer, config NotifierConfig) *Notifier {
	config.FrontendURL = strings.TrimRight(config.FrontendURL, "/")
	if config.AppName == "" {
		config.AppName = "Skillspad"
	}
	return &Notifier{queue: queue, config: config}
}

// SendWelcome queues the welcome email
func (n *Notifier) SendWelcome(_ context.Context, to, name string) error {
	return n.enqueue(KindWelcome, to, WelcomeData{
		AppName:  n.config.AppName,
		Name:     name,
		LoginURL: n.config.FrontendURL + "/dashboard",
	})
}

// SendPasswordReset queues the reset link for token
func (n *Notifier) SendPasswordReset(_ context.Context, to, name, token string) error {
	q := url.Values{}
	q.Set("token", token)
	q.Set("email", to)
	return n.enqueue(KindPasswordReset, to, PasswordResetData{
		AppName:   n.config.AppName,
		Name:      name,
		ResetURL:  n.config.FrontendURL + "/reset-password?" + q.Encode(),
		ExpiresIn: "1 hour",
	})
}

// PaymentConfirmation describes a settled payment for the confirmation email
type PaymentConfirmation struct {
	Name        string
	CourseTitle string
	Amount      string
	Reference   string
	PaidAt      string
}

// SendPaymentConfirmation queues the payment receipt
func (n *Notifier) SendPaymentConfirmation(_ context.Context, to string, p PaymentConfirmation) error {
	return n.enqueue(KindPaymentConfirmation, to, PaymentConfirmationData{
		AppName:      n.config.AppName,
		Name:         p.Name,
		CourseTitle:  p.CourseTitle,
		Amount:       p.Amount,
		Reference:    p.Reference,
		PaidAt:       p.PaidAt,
		DashboardURL: n.config.FrontendURL + "/dashboard",
	})
}

func (n *Notifier) enqueue(kind Kind, to string, data interface{}) error {
	msg, err := Render(kind, to, n.config.AppName, data)
	if err != nil {
		return err
	}
	return n.queue.Enqueue(msg)
}
