package services

import (
	"context"
	"testing"

	appauth "github.com/skillspad/api/internal/app/auth"
	"github.com/skillspad/api/internal/app/models"
	"github.com/skillspad/api/internal/app/models/dto"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Registration through a paid enrollment, as the web client drives it
func TestEnrollmentFlow(t *testing.T) {
	ctx := context.Background()
	users := newMemUserRepo()
	courses := newMemCourseRepo()
	txs := newMemTransactionRepo()
	notifier := newMockNotifier()
	gateway := &MockGateway{}
	tokens := newTestTokens()

	authSvc := NewAuthService(users, txs, &memPartialRepo{}, tokens, notifier, testLogger)
	paymentSvc := NewPaymentService(users, courses, txs, gateway, nil, tokens, notifier, PaymentConfig{Currency: "GHS"}, testLogger)
	dashboardSvc := NewDashboardService(users, courses, newMemAssignmentRepo(), txs, appauth.NewAuthorizationService(users), testLogger)

	course := seedCourse(courses, "Intro to Go", 50)

	if _, err := authSvc.Register(ctx, registerRequest("alice@example.com")); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	login, err := authSvc.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "s3cretpass"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if login.User.PaymentStatus != models.PaymentStatusPending {
		t.Fatalf("PaymentStatus after login = %q, want pending", login.User.PaymentStatus)
	}

	userID, _ := primitive.ObjectIDFromHex(login.User.ID)
	principal := &appauth.Principal{UserID: userID, Role: models.RoleStudent, Email: login.User.Email}

	checkout, err := paymentSvc.InitializePayment(ctx, principal, &dto.InitializePaymentRequest{CourseID: course.ID.Hex(), Amount: 50})
	if err != nil {
		t.Fatalf("InitializePayment() error = %v", err)
	}
	if gateway.LastInit.Amount != 5000 || gateway.LastInit.Currency != "GHS" {
		t.Errorf("gateway request = %+v, want 5000 GHS", gateway.LastInit)
	}

	welcomeBefore := len(notifier.Welcome)
	verified, err := paymentSvc.VerifyPayment(ctx, principal, checkout.Reference)
	if err != nil {
		t.Fatalf("VerifyPayment() error = %v", err)
	}
	if verified.Status != VerifyStatusSuccess || verified.Token == "" {
		t.Fatalf("VerifyPayment() = %+v", verified)
	}
	if _, err := paymentSvc.VerifyPayment(ctx, principal, checkout.Reference); err != nil {
		t.Fatalf("repeated VerifyPayment() error = %v", err)
	}

	enrolled, err := dashboardSvc.GetEnrolledCourses(ctx, principal)
	if err != nil {
		t.Fatalf("GetEnrolledCourses() error = %v", err)
	}
	if len(enrolled) != 1 || enrolled[0].ID != course.ID {
		t.Errorf("enrolled courses = %v, want [%s]", enrolled, course.Title)
	}

	if len(notifier.Receipts) != 1 {
		t.Errorf("sent %d receipts, want 1", len(notifier.Receipts))
	}
	receipt := notifier.Receipts[0]
	if receipt.Amount != "GHS 50.00" || receipt.CourseTitle != "Intro to Go" || receipt.Reference != checkout.Reference {
		t.Errorf("receipt = %+v", receipt)
	}
	if got := len(notifier.Welcome) - welcomeBefore; got != 1 {
		t.Errorf("sent %d welcome emails on payment, want 1", got)
	}

	relogin, err := authSvc.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "s3cretpass"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if relogin.User.PaymentStatus != models.PaymentStatusSuccess {
		t.Errorf("PaymentStatus after payment = %q, want success", relogin.User.PaymentStatus)
	}
}
