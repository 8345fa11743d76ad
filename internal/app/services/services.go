package services

import (
	"context"
	"time"

	"github.com/skillspad/api/internal/pkg/auth"
	"github.com/skillspad/api/internal/pkg/email"
	"github.com/skillspad/api/internal/pkg/paystack"
)

// Services defined in this package:
// - AuthService: registration, login, password reset and payment status for tokens
// - CourseService: courses with their embedded modules and lessons
// - AssignmentService: assignments and their uploaded attachments
// - PaymentService: Paystack checkout and verification, enrollment grants
// - DashboardService: the student's own courses, assignments and payments
// - StudentService: administration of student accounts
// - UploadService: attachment uploads to the storage provider

// TxRunner runs fn in a store transaction when the store supports one
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// TokenIssuer signs session tokens
type TokenIssuer interface {
	GenerateToken(session auth.Session) (string, time.Time, error)
}

// PaymentGateway is the remote payment provider
type PaymentGateway interface {
	InitializeTransaction(ctx context.Context, req paystack.InitializeRequest) (*paystack.InitializeResult, error)
	VerifyTransaction(ctx context.Context, reference string) (*paystack.VerifyResult, error)
}

// Notifier queues transactional emails. Delivery happens in the background,
// so an error here only means the message could not be queued.
type Notifier interface {
	SendWelcome(ctx context.Context, to, name string) error
	SendPasswordReset(ctx context.Context, to, name, token string) error
	SendPaymentConfirmation(ctx context.Context, to string, p email.PaymentConfirmation) error
}

// directRunner runs fn without a transaction
type directRunner struct{}

func (directRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
