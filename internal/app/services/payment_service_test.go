package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	appauth "github.com/skillspad/api/internal/app/auth"
	"github.com/skillspad/api/internal/app/models"
	"github.com/skillspad/api/internal/app/models/dto"
	"github.com/skillspad/api/internal/pkg/apperrors"
	"github.com/skillspad/api/internal/pkg/paystack"
)

type paymentFixture struct {
	users    *memUserRepo
	courses  *memCourseRepo
	txs      *memTransactionRepo
	gateway  *MockGateway
	notifier *MockNotifier
	tokens   TokenIssuer
	svc      *PaymentService
	advance  func(time.Duration)
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	f := &paymentFixture{
		users:    newMemUserRepo(),
		courses:  newMemCourseRepo(),
		txs:      newMemTransactionRepo(),
		gateway:  &MockGateway{},
		notifier: newMockNotifier(),
		tokens:   newTestTokens(),
	}
	f.svc = NewPaymentService(f.users, f.courses, f.txs, f.gateway, nil, f.tokens, f.notifier, PaymentConfig{
		Currency:           "GHS",
		CallbackURL:        "https://app.example.com/payment/verify",
		PendingReuseWindow: 30 * time.Minute,
	}, testLogger)
	now, advance := fixedClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	f.svc.now = now
	f.advance = advance
	return f
}

func (f *paymentFixture) initialize(t *testing.T, p *appauth.Principal, course *models.Course) *dto.InitializePaymentResponse {
	t.Helper()
	resp, err := f.svc.InitializePayment(context.Background(), p, &dto.InitializePaymentRequest{
		CourseID: course.ID.Hex(),
		Amount:   50,
	})
	if err != nil {
		t.Fatalf("InitializePayment() error = %v", err)
	}
	return resp
}

func TestInitializePayment_CreatesPendingTransaction(t *testing.T) {
	f := newPaymentFixture(t)
	user := seedStudent(f.users, "alice@example.com")
	course := seedCourse(f.courses, "Intro to Go", 50)

	resp := f.initialize(t, principalOf(user), course)

	if resp.Status != PaymentStatusPendingPayment {
		t.Errorf("Status = %q, want %q", resp.Status, PaymentStatusPendingPayment)
	}
	if !strings.HasPrefix(resp.Reference, "PAY-") {
		t.Errorf("Reference = %q, want PAY- prefix", resp.Reference)
	}
	if resp.AuthorizationURL == "" {
		t.Error("AuthorizationURL is empty")
	}

	req := f.gateway.LastInit
	if req.Amount != 5000 {
		t.Errorf("gateway amount = %d, want 5000", req.Amount)
	}
	if req.Currency != "GHS" {
		t.Errorf("gateway currency = %q, want GHS", req.Currency)
	}
	if req.Email != user.Email {
		t.Errorf("gateway email = %q, want %q", req.Email, user.Email)
	}
	if len(req.Channels) != 1 || req.Channels[0] != models.DefaultPaymentMethod {
		t.Errorf("gateway channels = %v, want [%s]", req.Channels, models.DefaultPaymentMethod)
	}
	if req.Metadata["courseId"] != course.ID.Hex() || req.Metadata["userId"] != user.ID.Hex() {
		t.Errorf("gateway metadata = %v", req.Metadata)
	}

	tx, err := f.txs.GetByReference(context.Background(), resp.Reference)
	if err != nil {
		t.Fatalf("transaction not stored: %v", err)
	}
	if tx.Status != models.TransactionPending || tx.Amount != 5000 || tx.UserID != user.ID {
		t.Errorf("stored transaction = %+v", tx)
	}
}

func TestInitializePayment_AmountRoundedToMinorUnits(t *testing.T) {
	f := newPaymentFixture(t)
	user := seedStudent(f.users, "alice@example.com")
	course := seedCourse(f.courses, "Intro to Go", 19.99)

	_, err := f.svc.InitializePayment(context.Background(), principalOf(user), &dto.InitializePaymentRequest{
		CourseID: course.ID.Hex(),
		Amount:   19.99,
	})
	if err != nil {
		t.Fatalf("InitializePayment() error = %v", err)
	}
	if f.gateway.LastInit.Amount != 1999 {
		t.Errorf("gateway amount = %d, want 1999", f.gateway.LastInit.Amount)
	}
}

func TestInitializePayment_AlreadyPaidSkipsGateway(t *testing.T) {
	f := newPaymentFixture(t)
	user := seedStudent(f.users, "alice@example.com")
	course := seedCourse(f.courses, "Intro to Go", 50)
	_ = f.txs.Create(context.Background(), &models.Transaction{
		UserID:    user.ID,
		CourseID:  course.ID,
		Status:    models.TransactionSuccess,
		Reference: "PAY-1-done",
	})

	_, err := f.svc.InitializePayment(context.Background(), principalOf(user), &dto.InitializePaymentRequest{
		CourseID: course.ID.Hex(),
		Amount:   50,
	})
	if !errors.Is(err, apperrors.ErrAlreadyEnrolled) {
		t.Fatalf("error = %v, want ErrAlreadyEnrolled", err)
	}
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Error("ErrAlreadyEnrolled should unwrap to ErrConflict")
	}
	if f.gateway.InitCalls != 0 {
		t.Errorf("gateway called %d times, want 0", f.gateway.InitCalls)
	}
}

func TestInitializePayment_UnknownCourse(t *testing.T) {
	f := newPaymentFixture(t)
	user := seedStudent(f.users, "alice@example.com")

	_, err := f.svc.InitializePayment(context.Background(), principalOf(user), &dto.InitializePaymentRequest{
		CourseID: "665f1c2e9d1a4b0012345678",
		Amount:   50,
	})
	if !errors.Is(err, apperrors.ErrResourceNotFound) {
		t.Fatalf("error = %v, want not found", err)
	}
	if f.gateway.InitCalls != 0 {
		t.Error("gateway should not be called for an unknown course")
	}
}

func TestInitializePayment_ReusesRecentPendingCheckout(t *testing.T) {
	f := newPaymentFixture(t)
	user := seedStudent(f.users, "alice@example.com")
	course := seedCourse(f.courses, "Intro to Go", 50)

	first := f.initialize(t, principalOf(user), course)
	f.advance(10 * time.Minute)
	second := f.initialize(t, principalOf(user), course)

	if second.Reference != first.Reference || !second.Reused {
		t.Errorf("second checkout = %+v, want reuse of %s", second, first.Reference)
	}
	if f.gateway.InitCalls != 1 {
		t.Errorf("gateway called %d times, want 1", f.gateway.InitCalls)
	}

	f.advance(time.Hour)
	third := f.initialize(t, principalOf(user), course)
	if third.Reference == first.Reference || third.Reused {
		t.Error("checkout older than the reuse window should not be reused")
	}
}

func TestInitializePayment_GatewayErrorStoresNothing(t *testing.T) {
	f := newPaymentFixture(t)
	f.gateway.InitializeFunc = func(ctx context.Context, req paystack.InitializeRequest) (*paystack.InitializeResult, error) {
		return nil, &paystack.APIError{StatusCode: 401, Message: "Invalid key"}
	}
	user := seedStudent(f.users, "alice@example.com")
	course := seedCourse(f.courses, "Intro to Go", 50)

	_, err := f.svc.InitializePayment(context.Background(), principalOf(user), &dto.InitializePaymentRequest{
		CourseID: course.ID.Hex(),
		Amount:   50,
	})
	if !errors.Is(err, apperrors.ErrGateway) {
		t.Fatalf("error = %v, want ErrGateway", err)
	}
	if n, _ := f.txs.CountByUser(context.Background(), txFilter(user)); n != 0 {
		t.Errorf("stored %d transactions, want 0", n)
	}
}

func TestVerifyPayment_SuccessEnrollsOnce(t *testing.T) {
	f := newPaymentFixture(t)
	user := seedStudent(f.users, "alice@example.com")
	course := seedCourse(f.courses, "Intro to Go", 50)
	ref := f.initialize(t, principalOf(user), course).Reference

	first, err := f.svc.VerifyPayment(context.Background(), principalOf(user), ref)
	if err != nil {
		t.Fatalf("VerifyPayment() error = %v", err)
	}
	if !first.OK || first.Status != VerifyStatusSuccess || first.Token == "" {
		t.Errorf("first verify = %+v", first)
	}

	second, err := f.svc.VerifyPayment(context.Background(), principalOf(user), ref)
	if err != nil {
		t.Fatalf("second VerifyPayment() error = %v", err)
	}
	if second.Status != first.Status || second.Reference != first.Reference || second.CourseID != first.CourseID {
		t.Errorf("second verify = %+v, want same outcome as %+v", second, first)
	}

	if f.gateway.VerifyCalls != 1 {
		t.Errorf("gateway verify called %d times, want 1", f.gateway.VerifyCalls)
	}
	stored, _ := f.users.GetByID(context.Background(), user.ID)
	if len(stored.EnrolledCourses) != 1 || stored.EnrolledCourses[0] != course.ID {
		t.Errorf("EnrolledCourses = %v, want [%s]", stored.EnrolledCourses, course.ID.Hex())
	}
	if stored.Payment == nil || stored.Payment.Status != models.PaymentStatusSuccess || stored.Payment.Reference != ref {
		t.Errorf("payment summary = %+v", stored.Payment)
	}
	if len(f.notifier.Receipts) != 1 {
		t.Errorf("sent %d receipts, want 1", len(f.notifier.Receipts))
	}
	if len(f.notifier.Welcome) != 1 {
		t.Errorf("sent %d welcome emails, want 1", len(f.notifier.Welcome))
	}
	if f.txs.status(ref) != models.TransactionSuccess {
		t.Errorf("transaction status = %q, want success", f.txs.status(ref))
	}
}

func TestVerifyPayment_TokenCarriesSuccessStatus(t *testing.T) {
	f := newPaymentFixture(t)
	user := seedStudent(f.users, "alice@example.com")
	course := seedCourse(f.courses, "Intro to Go", 50)
	ref := f.initialize(t, principalOf(user), course).Reference

	resp, err := f.svc.VerifyPayment(context.Background(), principalOf(user), ref)
	if err != nil {
		t.Fatalf("VerifyPayment() error = %v", err)
	}
	claims, err := newTestTokens().ValidateToken(resp.Token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.PaymentStatus != models.PaymentStatusSuccess || claims.UserID != user.ID.Hex() {
		t.Errorf("claims = %+v", claims)
	}
}

func TestVerifyPayment_SecondCourseSendsNoWelcome(t *testing.T) {
	f := newPaymentFixture(t)
	user := seedStudent(f.users, "alice@example.com")
	first := seedCourse(f.courses, "Intro to Go", 50)
	second := seedCourse(f.courses, "Advanced Go", 80)

	for _, c := range []*models.Course{first, second} {
		ref := f.initialize(t, principalOf(user), c).Reference
		if _, err := f.svc.VerifyPayment(context.Background(), principalOf(user), ref); err != nil {
			t.Fatalf("VerifyPayment() error = %v", err)
		}
	}

	if len(f.notifier.Receipts) != 2 {
		t.Errorf("sent %d receipts, want 2", len(f.notifier.Receipts))
	}
	if len(f.notifier.Welcome) != 1 {
		t.Errorf("sent %d welcome emails, want 1", len(f.notifier.Welcome))
	}
}

func TestVerifyPayment_GatewayFailureMarksFailed(t *testing.T) {
	f := newPaymentFixture(t)
	f.gateway.VerifyFunc = func(ctx context.Context, reference string) (*paystack.VerifyResult, error) {
		return gatewayResult(reference, "failed"), nil
	}
	user := seedStudent(f.users, "alice@example.com")
	course := seedCourse(f.courses, "Intro to Go", 50)
	ref := f.initialize(t, principalOf(user), course).Reference

	resp, err := f.svc.VerifyPayment(context.Background(), principalOf(user), ref)
	if err != nil {
		t.Fatalf("VerifyPayment() error = %v", err)
	}
	if resp.OK || resp.Status != VerifyStatusFailed || resp.Token != "" {
		t.Errorf("verify = %+v, want failed without token", resp)
	}
	if f.txs.status(ref) != models.TransactionFailed {
		t.Errorf("transaction status = %q, want failed", f.txs.status(ref))
	}
	stored, _ := f.users.GetByID(context.Background(), user.ID)
	if len(stored.EnrolledCourses) != 0 {
		t.Errorf("EnrolledCourses = %v, want none", stored.EnrolledCourses)
	}
	if len(f.notifier.Receipts) != 0 {
		t.Error("no receipt should be sent for a failed payment")
	}

	// A failed transaction is terminal even if the gateway later reports success
	f.gateway.VerifyFunc = nil
	again, err := f.svc.VerifyPayment(context.Background(), principalOf(user), ref)
	if err != nil {
		t.Fatalf("second VerifyPayment() error = %v", err)
	}
	if again.Status != VerifyStatusFailed || f.gateway.VerifyCalls != 1 {
		t.Errorf("second verify = %+v after %d gateway calls", again, f.gateway.VerifyCalls)
	}
}

func TestVerifyPayment_GatewayErrorLeavesPending(t *testing.T) {
	f := newPaymentFixture(t)
	f.gateway.VerifyFunc = func(ctx context.Context, reference string) (*paystack.VerifyResult, error) {
		return nil, ErrMockGateway
	}
	user := seedStudent(f.users, "alice@example.com")
	course := seedCourse(f.courses, "Intro to Go", 50)
	ref := f.initialize(t, principalOf(user), course).Reference

	_, err := f.svc.VerifyPayment(context.Background(), principalOf(user), ref)
	if !errors.Is(err, apperrors.ErrGateway) || !errors.Is(err, ErrMockGateway) {
		t.Fatalf("error = %v, want gateway error wrapping the cause", err)
	}
	if f.txs.status(ref) != models.TransactionPending {
		t.Errorf("transaction status = %q, want pending", f.txs.status(ref))
	}

	// Retrying once the gateway recovers settles the payment
	f.gateway.VerifyFunc = nil
	resp, err := f.svc.VerifyPayment(context.Background(), principalOf(user), ref)
	if err != nil || resp.Status != VerifyStatusSuccess {
		t.Fatalf("retry = %+v, %v", resp, err)
	}
}

func TestVerifyPayment_InFlightStaysPending(t *testing.T) {
	f := newPaymentFixture(t)
	f.gateway.VerifyFunc = func(ctx context.Context, reference string) (*paystack.VerifyResult, error) {
		return gatewayResult(reference, "ongoing"), nil
	}
	user := seedStudent(f.users, "alice@example.com")
	course := seedCourse(f.courses, "Intro to Go", 50)
	ref := f.initialize(t, principalOf(user), course).Reference

	resp, err := f.svc.VerifyPayment(context.Background(), principalOf(user), ref)
	if err != nil {
		t.Fatalf("VerifyPayment() error = %v", err)
	}
	if resp.OK || resp.Status != VerifyStatusPending {
		t.Errorf("verify = %+v, want pending", resp)
	}
	if f.txs.status(ref) != models.TransactionPending {
		t.Errorf("transaction status = %q, want pending", f.txs.status(ref))
	}
}

func TestVerifyPayment_UnknownReference(t *testing.T) {
	f := newPaymentFixture(t)
	user := seedStudent(f.users, "alice@example.com")

	_, err := f.svc.VerifyPayment(context.Background(), principalOf(user), "PAY-0-missing")
	if !errors.Is(err, apperrors.ErrTransactionNotFound) {
		t.Fatalf("error = %v, want ErrTransactionNotFound", err)
	}
	if f.gateway.VerifyCalls != 0 {
		t.Error("gateway should not be called for an unknown reference")
	}
}

func TestVerifyPayment_OtherStudentForbidden(t *testing.T) {
	f := newPaymentFixture(t)
	owner := seedStudent(f.users, "alice@example.com")
	other := seedStudent(f.users, "bob@example.com")
	course := seedCourse(f.courses, "Intro to Go", 50)
	ref := f.initialize(t, principalOf(owner), course).Reference

	_, err := f.svc.VerifyPayment(context.Background(), principalOf(other), ref)
	if !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Fatalf("error = %v, want ErrPermissionDenied", err)
	}
	if f.txs.status(ref) != models.TransactionPending {
		t.Error("transaction should be untouched")
	}
}

func TestVerifyPayment_AdminGetsNoToken(t *testing.T) {
	f := newPaymentFixture(t)
	owner := seedStudent(f.users, "alice@example.com")
	course := seedCourse(f.courses, "Intro to Go", 50)
	ref := f.initialize(t, principalOf(owner), course).Reference

	admin := &appauth.Principal{UserID: seedStudent(f.users, "admin@example.com").ID, Role: models.RoleAdmin}
	resp, err := f.svc.VerifyPayment(context.Background(), admin, ref)
	if err != nil {
		t.Fatalf("VerifyPayment() error = %v", err)
	}
	if resp.Status != VerifyStatusSuccess || resp.Token != "" {
		t.Errorf("verify = %+v, want success without token", resp)
	}
	stored, _ := f.users.GetByID(context.Background(), owner.ID)
	if !stored.IsEnrolled(course.ID) {
		t.Error("the payer should be enrolled")
	}
}

func TestVerifyPayment_ReplayRepairsMissingEnrollment(t *testing.T) {
	f := newPaymentFixture(t)
	user := seedStudent(f.users, "alice@example.com")
	course := seedCourse(f.courses, "Intro to Go", 50)
	queued := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	_ = f.txs.Create(context.Background(), &models.Transaction{
		UserID:     user.ID,
		CourseID:   course.ID,
		Status:     models.TransactionSuccess,
		Reference:  "PAY-1-settled",
		Amount:     5000,
		Currency:   "GHS",
		NotifiedAt: &queued,
	})

	resp, err := f.svc.VerifyPayment(context.Background(), principalOf(user), "PAY-1-settled")
	if err != nil {
		t.Fatalf("VerifyPayment() error = %v", err)
	}
	if resp.Status != VerifyStatusSuccess {
		t.Errorf("Status = %q, want success", resp.Status)
	}
	if f.gateway.VerifyCalls != 0 {
		t.Error("a settled transaction should not reach the gateway")
	}
	stored, _ := f.users.GetByID(context.Background(), user.ID)
	if !stored.IsEnrolled(course.ID) {
		t.Error("replay should restore the enrollment")
	}
	if stored.Payment == nil || stored.Payment.Reference != "PAY-1-settled" {
		t.Errorf("replay should restore the payment summary, got %+v", stored.Payment)
	}
	if len(f.notifier.Receipts) != 0 || len(f.notifier.Welcome) != 0 {
		t.Error("replay should send no email")
	}
}

func TestVerifyPayment_EnrollmentErrorIsReported(t *testing.T) {
	f := newPaymentFixture(t)
	user := seedStudent(f.users, "alice@example.com")
	course := seedCourse(f.courses, "Intro to Go", 50)
	ref := f.initialize(t, principalOf(user), course).Reference
	f.users.AddEnrolledErr = ErrMockStore

	_, err := f.svc.VerifyPayment(context.Background(), principalOf(user), ref)
	if !errors.Is(err, ErrMockStore) {
		t.Fatalf("error = %v, want ErrMockStore", err)
	}
	if len(f.notifier.Receipts) != 0 {
		t.Error("no receipt should be sent when enrollment failed")
	}
}

func TestNewPaymentReference(t *testing.T) {
	now := time.UnixMilli(1718000000000)
	ref := newPaymentReference(now)
	if !strings.HasPrefix(ref, "PAY-1718000000000-") {
		t.Errorf("reference = %q", ref)
	}
	if suffix := strings.TrimPrefix(ref, "PAY-1718000000000-"); len(suffix) != 8 {
		t.Errorf("suffix %q has length %d, want 8", suffix, len(suffix))
	}
	if newPaymentReference(now) == ref {
		t.Error("references should be unique")
	}
}

func TestVerifyPayment_RetryAfterEnrollmentErrorSendsEmailsOnce(t *testing.T) {
	f := newPaymentFixture(t)
	user := seedStudent(f.users, "alice@example.com")
	course := seedCourse(f.courses, "Intro to Go", 50)
	ref := f.initialize(t, principalOf(user), course).Reference

	// Without a store transaction the status write survives the failed enrollment
	f.users.AddEnrolledErr = ErrMockStore
	if _, err := f.svc.VerifyPayment(context.Background(), principalOf(user), ref); !errors.Is(err, ErrMockStore) {
		t.Fatalf("error = %v, want ErrMockStore", err)
	}
	if f.txs.status(ref) != models.TransactionSuccess {
		t.Fatalf("transaction status = %q, want success", f.txs.status(ref))
	}

	f.users.AddEnrolledErr = nil
	for i := 0; i < 2; i++ {
		resp, err := f.svc.VerifyPayment(context.Background(), principalOf(user), ref)
		if err != nil {
			t.Fatalf("retry %d: VerifyPayment() error = %v", i, err)
		}
		if resp.Status != VerifyStatusSuccess {
			t.Errorf("retry %d: Status = %q, want success", i, resp.Status)
		}
	}

	if len(f.notifier.Receipts) != 1 {
		t.Errorf("sent %d receipts, want 1", len(f.notifier.Receipts))
	}
	if len(f.notifier.Welcome) != 1 {
		t.Errorf("sent %d welcome emails, want 1", len(f.notifier.Welcome))
	}
	stored, _ := f.users.GetByID(context.Background(), user.ID)
	if !stored.IsEnrolled(course.ID) {
		t.Error("retry should enroll the payer")
	}
	if stored.Payment == nil || stored.Payment.Status != models.PaymentStatusSuccess || stored.Payment.Reference != ref {
		t.Errorf("payment summary = %+v", stored.Payment)
	}
}

func TestInitializePayment_AmountOutOfRange(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
	}{
		{"rounds to zero", 0.004},
		{"negative", -5},
		{"above cap", 1_000_000.01},
		{"huge", 1e300},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPaymentFixture(t)
			user := seedStudent(f.users, "alice@example.com")
			course := seedCourse(f.courses, "Intro to Go", 50)

			_, err := f.svc.InitializePayment(context.Background(), principalOf(user), &dto.InitializePaymentRequest{
				CourseID: course.ID.Hex(),
				Amount:   tt.amount,
			})
			if !errors.Is(err, apperrors.ErrValidationFailed) {
				t.Fatalf("error = %v, want validation error", err)
			}
			if f.gateway.InitCalls != 0 {
				t.Errorf("gateway called %d times, want 0", f.gateway.InitCalls)
			}
			if len(f.txs.txs) != 0 {
				t.Errorf("stored %d transactions, want 0", len(f.txs.txs))
			}
		})
	}
}

func TestInitializePayment_SmallestChargeRoundsUp(t *testing.T) {
	f := newPaymentFixture(t)
	user := seedStudent(f.users, "alice@example.com")
	course := seedCourse(f.courses, "Intro to Go", 50)

	_, err := f.svc.InitializePayment(context.Background(), principalOf(user), &dto.InitializePaymentRequest{
		CourseID: course.ID.Hex(),
		Amount:   0.005,
	})
	if err != nil {
		t.Fatalf("InitializePayment() error = %v", err)
	}
	if f.gateway.LastInit.Amount != 1 {
		t.Errorf("gateway amount = %d, want 1", f.gateway.LastInit.Amount)
	}
}

func TestVerifyPayment_AbandonedCheckout(t *testing.T) {
	f := newPaymentFixture(t)
	f.gateway.VerifyFunc = func(ctx context.Context, reference string) (*paystack.VerifyResult, error) {
		return gatewayResult(reference, "abandoned"), nil
	}
	user := seedStudent(f.users, "alice@example.com")
	course := seedCourse(f.courses, "Intro to Go", 50)
	ref := f.initialize(t, principalOf(user), course).Reference

	resp, err := f.svc.VerifyPayment(context.Background(), principalOf(user), ref)
	if err != nil {
		t.Fatalf("VerifyPayment() error = %v", err)
	}
	if resp.Status != VerifyStatusPending || f.txs.status(ref) != models.TransactionPending {
		t.Errorf("fresh abandoned checkout: verify = %+v, stored %q, want pending", resp, f.txs.status(ref))
	}

	// The customer can still pay on the same link
	f.gateway.VerifyFunc = nil
	resp, err = f.svc.VerifyPayment(context.Background(), principalOf(user), ref)
	if err != nil {
		t.Fatalf("VerifyPayment() error = %v", err)
	}
	if resp.Status != VerifyStatusSuccess {
		t.Errorf("Status = %q, want success", resp.Status)
	}
}

func TestVerifyPayment_AbandonedPastWindowFails(t *testing.T) {
	f := newPaymentFixture(t)
	f.gateway.VerifyFunc = func(ctx context.Context, reference string) (*paystack.VerifyResult, error) {
		return gatewayResult(reference, "abandoned"), nil
	}
	user := seedStudent(f.users, "alice@example.com")
	course := seedCourse(f.courses, "Intro to Go", 50)
	ref := f.initialize(t, principalOf(user), course).Reference
	f.advance(31 * time.Minute)

	resp, err := f.svc.VerifyPayment(context.Background(), principalOf(user), ref)
	if err != nil {
		t.Fatalf("VerifyPayment() error = %v", err)
	}
	if resp.Status != VerifyStatusFailed || f.txs.status(ref) != models.TransactionFailed {
		t.Errorf("verify = %+v, stored %q, want failed", resp, f.txs.status(ref))
	}
}

func TestVerifyPayment_ChargeMismatchIsNotEnrolled(t *testing.T) {
	tests := []struct {
		name     string
		amount   int64
		currency string
	}{
		{"short amount", 100, "GHS"},
		{"other currency", 5000, "NGN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPaymentFixture(t)
			f.gateway.VerifyFunc = func(ctx context.Context, reference string) (*paystack.VerifyResult, error) {
				r := gatewayResult(reference, "success")
				r.Amount = tt.amount
				r.Currency = tt.currency
				return r, nil
			}
			user := seedStudent(f.users, "alice@example.com")
			course := seedCourse(f.courses, "Intro to Go", 50)
			ref := f.initialize(t, principalOf(user), course).Reference

			resp, err := f.svc.VerifyPayment(context.Background(), principalOf(user), ref)
			if err != nil {
				t.Fatalf("VerifyPayment() error = %v", err)
			}
			if resp.OK || resp.Status != VerifyStatusFailed || resp.Token != "" {
				t.Errorf("verify = %+v, want failed without token", resp)
			}
			stored, _ := f.users.GetByID(context.Background(), user.ID)
			if stored.IsEnrolled(course.ID) {
				t.Error("a mismatched charge must not enroll")
			}
			if len(f.notifier.Receipts) != 0 {
				t.Error("no receipt for a mismatched charge")
			}
		})
	}
}
