package controllers

import (
	"context"
	"mime/multipart"

	appauth "github.com/skillspad/api/internal/app/auth"
	"github.com/skillspad/api/internal/app/models"
	"github.com/skillspad/api/internal/app/models/dto"
	"github.com/skillspad/api/internal/app/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The stubs below implement the controller interfaces with overridable
// funcs. A nil func panics so an unexpected call fails the test.

type stubAuthService struct {
	RegisterFunc       func(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	LoginFunc          func(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	CurrentUserFunc    func(ctx context.Context, userID primitive.ObjectID) (*dto.UserResponse, error)
	ForgotPasswordFunc func(ctx context.Context, req *dto.ForgotPasswordRequest) (string, error)
	ResetPasswordFunc  func(ctx context.Context, req *dto.ResetPasswordRequest) error
}

func (s *stubAuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	return s.RegisterFunc(ctx, req)
}

func (s *stubAuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	return s.LoginFunc(ctx, req)
}

func (s *stubAuthService) CurrentUser(ctx context.Context, userID primitive.ObjectID) (*dto.UserResponse, error) {
	return s.CurrentUserFunc(ctx, userID)
}

func (s *stubAuthService) ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) (string, error) {
	return s.ForgotPasswordFunc(ctx, req)
}

func (s *stubAuthService) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	return s.ResetPasswordFunc(ctx, req)
}

// stubCourseService embeds the interface; tests override only what they call
type stubCourseService struct {
	CourseService
	GetCourseFunc    func(ctx context.Context, id primitive.ObjectID) (*models.Course, error)
	CreateCourseFunc func(ctx context.Context, req *dto.CreateCourseRequest, createdBy primitive.ObjectID) (*models.Course, error)
	AddLessonFunc    func(ctx context.Context, courseID, moduleID primitive.ObjectID, req *dto.LessonRequest) (*models.Lesson, error)
}

func (s *stubCourseService) GetCourse(ctx context.Context, id primitive.ObjectID) (*models.Course, error) {
	return s.GetCourseFunc(ctx, id)
}

func (s *stubCourseService) CreateCourse(ctx context.Context, req *dto.CreateCourseRequest, createdBy primitive.ObjectID) (*models.Course, error) {
	return s.CreateCourseFunc(ctx, req, createdBy)
}

func (s *stubCourseService) AddLesson(ctx context.Context, courseID, moduleID primitive.ObjectID, req *dto.LessonRequest) (*models.Lesson, error) {
	return s.AddLessonFunc(ctx, courseID, moduleID, req)
}

type stubAssignmentService struct {
	AssignmentService
	ListAssignmentsFunc  func(ctx context.Context, query services.AssignmentQuery) ([]*dto.AssignmentResponse, error)
	DeleteAssignmentFunc func(ctx context.Context, id primitive.ObjectID) error
	DeleteAttachmentFunc func(ctx context.Context, publicID string) error
}

func (s *stubAssignmentService) ListAssignments(ctx context.Context, query services.AssignmentQuery) ([]*dto.AssignmentResponse, error) {
	return s.ListAssignmentsFunc(ctx, query)
}

func (s *stubAssignmentService) DeleteAssignment(ctx context.Context, id primitive.ObjectID) error {
	return s.DeleteAssignmentFunc(ctx, id)
}

func (s *stubAssignmentService) DeleteAttachment(ctx context.Context, publicID string) error {
	return s.DeleteAttachmentFunc(ctx, publicID)
}

type stubPaymentService struct {
	InitializePaymentFunc func(ctx context.Context, principal *appauth.Principal, req *dto.InitializePaymentRequest) (*dto.InitializePaymentResponse, error)
	VerifyPaymentFunc     func(ctx context.Context, principal *appauth.Principal, reference string) (*dto.VerifyPaymentResponse, error)
}

func (s *stubPaymentService) InitializePayment(ctx context.Context, principal *appauth.Principal, req *dto.InitializePaymentRequest) (*dto.InitializePaymentResponse, error) {
	return s.InitializePaymentFunc(ctx, principal, req)
}

func (s *stubPaymentService) VerifyPayment(ctx context.Context, principal *appauth.Principal, reference string) (*dto.VerifyPaymentResponse, error) {
	return s.VerifyPaymentFunc(ctx, principal, reference)
}

type stubDashboardService struct {
	DashboardService
	ListTransactionsFunc  func(ctx context.Context, principal *appauth.Principal, status string, page, limit int) (*dto.TransactionPage, error)
	GetEnrolledCourseFunc func(ctx context.Context, principal *appauth.Principal, courseID primitive.ObjectID) (*models.Course, error)
}

func (s *stubDashboardService) ListTransactions(ctx context.Context, principal *appauth.Principal, status string, page, limit int) (*dto.TransactionPage, error) {
	return s.ListTransactionsFunc(ctx, principal, status, page, limit)
}

func (s *stubDashboardService) GetEnrolledCourse(ctx context.Context, principal *appauth.Principal, courseID primitive.ObjectID) (*models.Course, error) {
	return s.GetEnrolledCourseFunc(ctx, principal, courseID)
}

type stubStudentService struct {
	StudentService
	ListStudentsFunc      func(ctx context.Context, query *dto.StudentListQuery) (*dto.StudentPage, error)
	DeactivateStudentFunc func(ctx context.Context, id primitive.ObjectID) error
}

func (s *stubStudentService) ListStudents(ctx context.Context, query *dto.StudentListQuery) (*dto.StudentPage, error) {
	return s.ListStudentsFunc(ctx, query)
}

func (s *stubStudentService) DeactivateStudent(ctx context.Context, id primitive.ObjectID) error {
	return s.DeactivateStudentFunc(ctx, id)
}

type stubUploadService struct {
	UploadFunc func(ctx context.Context, header *multipart.FileHeader) (*dto.UploadResponse, error)
}

func (s *stubUploadService) Upload(ctx context.Context, header *multipart.FileHeader) (*dto.UploadResponse, error) {
	return s.UploadFunc(ctx, header)
}
