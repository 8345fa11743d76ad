package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	appauth "github.com/skillspad/api/internal/app/auth"
	"github.com/skillspad/api/internal/app/models"
	"github.com/skillspad/api/internal/app/models/dto"
	"github.com/skillspad/api/internal/app/repositories"
	"github.com/skillspad/api/internal/pkg/apperrors"
	"github.com/skillspad/api/internal/pkg/email"
	"github.com/skillspad/api/internal/pkg/helpers"
	"github.com/skillspad/api/internal/pkg/paystack"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// abandonedGrace is how long an abandoned checkout stays pending when
// checkout reuse is disabled
const abandonedGrace = 30 * time.Minute

// Status values reported to clients by initialize and verify
const (
	PaymentStatusPendingPayment = "pending_payment"
	VerifyStatusSuccess         = "success"
	VerifyStatusFailed          = "failed"
	VerifyStatusPending         = "pending"
)

// PaymentConfig holds the checkout settings
type PaymentConfig struct {
	Currency    string
	CallbackURL string
	// PendingReuseWindow is how long an unpaid checkout link is handed out
	// again instead of opening a new one. Zero disables reuse.
	PendingReuseWindow time.Duration
}

// PaymentService runs course checkout through the payment gateway and grants
// enrollment once a payment is confirmed
type PaymentService struct {
	userRepo        repositories.IUserRepository
	courseRepo      repositories.ICourseRepository
	transactionRepo repositories.ITransactionRepository
	gateway         PaymentGateway
	txRunner        TxRunner
	tokens          TokenIssuer
	notifier        Notifier
	config          PaymentConfig
	logger          zerolog.Logger
	now             func() time.Time
}

// NewPaymentService creates a new PaymentService. A nil txRunner runs the
// verification writes without a store transaction.
func NewPaymentService(
	userRepo repositories.IUserRepository,
	courseRepo repositories.ICourseRepository,
	transactionRepo repositories.ITransactionRepository,
	gateway PaymentGateway,
	txRunner TxRunner,
	tokens TokenIssuer,
	notifier Notifier,
	config PaymentConfig,
	logger zerolog.Logger,
) *PaymentService {
	if txRunner == nil {
		txRunner = directRunner{}
	}
	if config.Currency == "" {
		config.Currency = "GHS"
	}
	return &PaymentService{
		userRepo:        userRepo,
		courseRepo:      courseRepo,
		transactionRepo: transactionRepo,
		gateway:         gateway,
		txRunner:        txRunner,
		tokens:          tokens,
		notifier:        notifier,
		config:          config,
		logger:          logger,
		now:             time.Now,
	}
}

// InitializePayment opens a gateway checkout for a course. A caller who
// already paid for the course is rejected before the gateway is contacted.
// An unpaid checkout younger than the reuse window is returned again.
func (s *PaymentService) InitializePayment(ctx context.Context, principal *appauth.Principal, req *dto.InitializePaymentRequest) (*dto.InitializePaymentResponse, error) {
	courseID, err := primitive.ObjectIDFromHex(req.CourseID)
	if err != nil {
		return nil, apperrors.NewValidationError("Invalid course id")
	}
	amount, err := helpers.ToMinorUnits(req.Amount)
	if err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("Amount must be between 0.01 and %s", helpers.MajorUnits(helpers.MaxChargeMinorUnits).StringFixed(2)))
	}

	if _, err := s.courseRepo.GetByID(ctx, courseID); err != nil {
		return nil, err
	}

	paid, err := s.transactionRepo.Exists(ctx, principal.UserID, courseID, models.TransactionSuccess)
	if err != nil {
		return nil, err
	}
	if paid {
		return nil, apperrors.ErrAlreadyEnrolled
	}

	if reused := s.reusablePending(ctx, principal.UserID, courseID); reused != nil {
		s.logger.Info().Str("reference", reused.Reference).Msg("Reusing pending checkout")
		return &dto.InitializePaymentResponse{
			Status:           PaymentStatusPendingPayment,
			AuthorizationURL: reused.AuthorizationURL,
			Reference:        reused.Reference,
			Reused:           true,
		}, nil
	}

	payerEmail := strings.ToLower(strings.TrimSpace(req.Email))
	if payerEmail == "" {
		payerEmail = principal.Email
	}
	method := req.PaymentMethod
	if method == "" {
		method = models.DefaultPaymentMethod
	}

	now := s.now().UTC()
	reference := newPaymentReference(now)

	result, err := s.gateway.InitializeTransaction(ctx, paystack.InitializeRequest{
		Email:       payerEmail,
		Amount:      amount,
		Currency:    s.config.Currency,
		Reference:   reference,
		CallbackURL: s.config.CallbackURL,
		Channels:    []string{method},
		Metadata: map[string]interface{}{
			"userId":        principal.UserID.Hex(),
			"courseId":      courseID.Hex(),
			"paymentMethod": method,
		},
	})
	if err != nil {
		s.logger.Error().Err(err).Str("reference", reference).Msg("Payment initialization failed")
		return nil, apperrors.NewGatewayError("Payment initialization failed", err)
	}
	if result.Reference != "" {
		reference = result.Reference
	}

	tx := &models.Transaction{
		UserID:           principal.UserID,
		Email:            payerEmail,
		CourseID:         courseID,
		Amount:           amount,
		Currency:         s.config.Currency,
		PaymentMethod:    method,
		Status:           models.TransactionPending,
		Reference:        reference,
		AuthorizationURL: result.AuthorizationURL,
		AccessCode:       result.AccessCode,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.transactionRepo.Create(ctx, tx); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("reference", reference).
		Str("userId", principal.UserID.Hex()).
		Str("courseId", courseID.Hex()).
		Int64("amount", amount).
		Msg("Payment initialized")

	return &dto.InitializePaymentResponse{
		Status:           PaymentStatusPendingPayment,
		AuthorizationURL: result.AuthorizationURL,
		Reference:        reference,
	}, nil
}

// reusablePending returns the newest pending checkout that may be handed out again
func (s *PaymentService) reusablePending(ctx context.Context, userID, courseID primitive.ObjectID) *models.Transaction {
	if s.config.PendingReuseWindow <= 0 {
		return nil
	}
	tx, err := s.transactionRepo.FindLatest(ctx, userID, courseID, models.TransactionPending)
	if err != nil {
		if !errors.Is(err, apperrors.ErrTransactionNotFound) {
			s.logger.Warn().Err(err).Msg("Could not look up pending checkout")
		}
		return nil
	}
	if tx.AuthorizationURL == "" || s.now().Sub(tx.CreatedAt) >= s.config.PendingReuseWindow {
		return nil
	}
	return tx
}

// VerifyPayment reconciles a reference with the gateway. A pending
// transaction moves to success or failed exactly once. A terminal one is
// answered from the stored gateway payload without contacting the gateway,
// so repeated calls return the same outcome. The payment emails are queued
// once per transaction, by the first call that gets past the enrollment.
func (s *PaymentService) VerifyPayment(ctx context.Context, principal *appauth.Principal, reference string) (*dto.VerifyPaymentResponse, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, apperrors.NewValidationError("Payment reference is required")
	}

	tx, err := s.transactionRepo.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if !appauth.CanAccessTransaction(principal, tx) {
		return nil, apperrors.NewForbiddenError("You cannot verify this payment")
	}

	switch tx.Status {
	case models.TransactionSuccess:
		return s.completeSuccess(ctx, principal, tx, false)
	case models.TransactionFailed:
		return failedResponse(tx), nil
	}

	result, err := s.gateway.VerifyTransaction(ctx, reference)
	if err != nil {
		// The outcome is unknown, so the transaction stays pending
		s.logger.Error().Err(err).Str("reference", reference).Msg("Payment verification failed")
		return nil, apperrors.NewGatewayError("Payment verification failed", err)
	}

	if result.InFlight() || s.stillPayable(tx, result) {
		return &dto.VerifyPaymentResponse{
			OK:        false,
			Status:    VerifyStatusPending,
			Message:   "Payment is still being processed",
			Reference: reference,
			CourseID:  tx.CourseID.Hex(),
			Data:      result.Raw,
		}, nil
	}

	now := s.now().UTC()
	charged := result.Successful()
	if charged && !chargeMatches(tx, result) {
		s.logger.Error().
			Str("reference", reference).
			Int64("expectedAmount", tx.Amount).
			Int64("chargedAmount", result.Amount).
			Str("expectedCurrency", tx.Currency).
			Str("chargedCurrency", result.Currency).
			Msg("Gateway charge does not match transaction")
		charged = false
	}
	if !charged {
		moved, err := s.transactionRepo.Transition(ctx, reference, models.TransactionPending, models.TransactionFailed, result.Raw, now)
		if err != nil {
			return nil, err
		}
		if !moved {
			return s.replay(ctx, principal, reference)
		}
		tx.Status = models.TransactionFailed
		tx.GatewayResponse = result.Raw
		s.logger.Info().Str("reference", reference).Str("gatewayStatus", result.Status).Msg("Payment failed")
		return failedResponse(tx), nil
	}

	var moved bool
	err = s.txRunner.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		moved, err = s.transactionRepo.Transition(ctx, reference, models.TransactionPending, models.TransactionSuccess, result.Raw, now)
		if err != nil || !moved {
			return err
		}
		if err := s.userRepo.AddEnrolledCourse(ctx, tx.UserID, tx.CourseID); err != nil {
			return err
		}
		paidAt := now
		if result.PaidAt != nil {
			paidAt = result.PaidAt.UTC()
		}
		return s.userRepo.SetPaymentSummary(ctx, tx.UserID, paymentSummary(tx, paidAt))
	})
	if err != nil {
		return nil, fmt.Errorf("error recording payment %s: %w", reference, err)
	}
	if !moved {
		// A concurrent verify settled it first
		return s.replay(ctx, principal, reference)
	}

	tx.Status = models.TransactionSuccess
	tx.GatewayResponse = result.Raw
	tx.VerifiedAt = &now
	s.logger.Info().Str("reference", reference).Str("userId", tx.UserID.Hex()).Msg("Payment verified, enrollment granted")
	return s.completeSuccess(ctx, principal, tx, true)
}

// stillPayable reports whether an abandoned checkout may still be completed
// by the customer. Its link is handed out again for the same window.
func (s *PaymentService) stillPayable(tx *models.Transaction, result *paystack.VerifyResult) bool {
	if !result.Abandoned() {
		return false
	}
	window := s.config.PendingReuseWindow
	if window <= 0 {
		window = abandonedGrace
	}
	return s.now().Sub(tx.CreatedAt) < window
}

// chargeMatches reports whether the gateway charged what the transaction asked for
func chargeMatches(tx *models.Transaction, result *paystack.VerifyResult) bool {
	return result.Amount == tx.Amount && strings.EqualFold(result.Currency, tx.Currency)
}

// replay answers from the stored state of a transaction settled elsewhere
func (s *PaymentService) replay(ctx context.Context, principal *appauth.Principal, reference string) (*dto.VerifyPaymentResponse, error) {
	tx, err := s.transactionRepo.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if tx.Status == models.TransactionSuccess {
		return s.completeSuccess(ctx, principal, tx, false)
	}
	return failedResponse(tx), nil
}

// completeSuccess makes sure the enrollment exists, reissues the payer's
// token and queues the emails for whichever call claims them first.
func (s *PaymentService) completeSuccess(ctx context.Context, principal *appauth.Principal, tx *models.Transaction, settled bool) (*dto.VerifyPaymentResponse, error) {
	if !settled {
		// Heals a failure between the status write and the enrollment write
		if err := s.userRepo.AddEnrolledCourse(ctx, tx.UserID, tx.CourseID); err != nil {
			return nil, fmt.Errorf("error enrolling user: %w", err)
		}
	}

	user, err := s.userRepo.GetByID(ctx, tx.UserID)
	if err != nil {
		return nil, err
	}
	if !settled && (user.Payment == nil || user.Payment.Status != models.PaymentStatusSuccess) {
		paidAt := s.now().UTC()
		if tx.VerifiedAt != nil {
			paidAt = *tx.VerifiedAt
		}
		summary := paymentSummary(tx, paidAt)
		if err := s.userRepo.SetPaymentSummary(ctx, tx.UserID, summary); err != nil {
			return nil, fmt.Errorf("error recording payment summary: %w", err)
		}
		user.Payment = &summary
	}

	resp := &dto.VerifyPaymentResponse{
		OK:        true,
		Status:    VerifyStatusSuccess,
		Message:   "Payment verified successfully",
		Reference: tx.Reference,
		CourseID:  tx.CourseID.Hex(),
		Data:      tx.GatewayResponse,
	}

	// Only the payer gets a fresh session; an administrator verifying on
	// their behalf keeps their own
	if principal.UserID == tx.UserID {
		token, _, err := s.tokens.GenerateToken(sessionFor(user, models.PaymentStatusSuccess))
		if err != nil {
			return nil, fmt.Errorf("error generating token: %w", err)
		}
		resp.Token = token
	}

	claimed, err := s.transactionRepo.MarkNotified(ctx, tx.Reference, s.now().UTC())
	if err != nil {
		s.logger.Warn().Err(err).Str("reference", tx.Reference).Msg("Could not claim payment emails")
	} else if claimed {
		s.sendPaymentEmails(ctx, user, tx)
	}
	return resp, nil
}

// sendPaymentEmails queues the receipt, and the welcome email on the user's
// first successful payment. Failures are logged only.
func (s *PaymentService) sendPaymentEmails(ctx context.Context, user *models.User, tx *models.Transaction) {
	courseTitle := ""
	if course, err := s.courseRepo.GetByID(ctx, tx.CourseID); err == nil {
		courseTitle = course.Title
	} else {
		s.logger.Warn().Err(err).Str("courseId", tx.CourseID.Hex()).Msg("Could not load course for receipt")
	}

	paidAt := s.now()
	if tx.VerifiedAt != nil {
		paidAt = *tx.VerifiedAt
	}
	if err := s.notifier.SendPaymentConfirmation(ctx, user.Email, email.PaymentConfirmation{
		Name:        user.FirstName,
		CourseTitle: courseTitle,
		Amount:      helpers.FormatAmount(tx.Amount, tx.Currency),
		Reference:   tx.Reference,
		PaidAt:      helpers.FormatDate(paidAt),
	}); err != nil {
		s.logger.Warn().Err(err).Str("reference", tx.Reference).Msg("Failed to queue payment confirmation email")
	}

	successes, err := s.transactionRepo.CountByUser(ctx, repositories.TransactionFilter{
		UserID: user.ID,
		Status: models.TransactionSuccess,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("userId", user.ID.Hex()).Msg("Could not count payments for welcome email")
		return
	}
	if successes == 1 {
		if err := s.notifier.SendWelcome(ctx, user.Email, user.FirstName); err != nil {
			s.logger.Warn().Err(err).Str("userId", user.ID.Hex()).Msg("Failed to queue welcome email")
		}
	}
}

func paymentSummary(tx *models.Transaction, paidAt time.Time) models.PaymentSummary {
	return models.PaymentSummary{
		Status:    models.PaymentStatusSuccess,
		CourseID:  tx.CourseID,
		Reference: tx.Reference,
		Amount:    tx.Amount,
		Currency:  tx.Currency,
		PaidAt:    &paidAt,
	}
}

func failedResponse(tx *models.Transaction) *dto.VerifyPaymentResponse {
	return &dto.VerifyPaymentResponse{
		OK:        false,
		Status:    VerifyStatusFailed,
		Message:   "Payment verification failed",
		Reference: tx.Reference,
		CourseID:  tx.CourseID.Hex(),
		Data:      tx.GatewayResponse,
	}
}

// newPaymentReference builds PAY-<unix-ms>-<8 hex chars>
func newPaymentReference(now time.Time) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("PAY-%d-%s", now.UnixMilli(), id[:8])
}
