// Package controllers handles HTTP request handling
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

// The interfaces below are the parts of each service a controller calls.
// The concrete services in the services package satisfy them.

// AuthService covers registration, login and password reset
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	CurrentUser(ctx context.Context, userID primitive.ObjectID) (*dto.UserResponse, error)
	ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) (string, error)
	ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error
}

// CourseService covers courses and their modules and lessons
type CourseService interface {
	ListCourses(ctx context.Context) ([]*models.CourseSummary, error)
	GetCourse(ctx context.Context, id primitive.ObjectID) (*models.Course, error)
	CreateCourse(ctx context.Context, req *dto.CreateCourseRequest, createdBy primitive.ObjectID) (*models.Course, error)
	UpdateCourse(ctx context.Context, id primitive.ObjectID, req *dto.UpdateCourseRequest) (*models.Course, error)
	DeleteCourse(ctx context.Context, id primitive.ObjectID) error
	GetModule(ctx context.Context, courseID, moduleID primitive.ObjectID) (*models.Module, error)
	AddModule(ctx context.Context, courseID primitive.ObjectID, req *dto.ModuleRequest) (*models.Module, error)
	UpdateModule(ctx context.Context, courseID, moduleID primitive.ObjectID, req *dto.ModuleRequest) (*models.Module, error)
	DeleteModule(ctx context.Context, courseID, moduleID primitive.ObjectID) error
	AddLesson(ctx context.Context, courseID, moduleID primitive.ObjectID, req *dto.LessonRequest) (*models.Lesson, error)
	UpdateLesson(ctx context.Context, courseID, moduleID, lessonID primitive.ObjectID, req *dto.LessonRequest) (*models.Lesson, error)
	DeleteLesson(ctx context.Context, courseID, moduleID, lessonID primitive.ObjectID) error
}

// AssignmentService covers assignments and their attachments
type AssignmentService interface {
	ListAssignments(ctx context.Context, query services.AssignmentQuery) ([]*dto.AssignmentResponse, error)
	GetAssignment(ctx context.Context, id primitive.ObjectID) (*dto.AssignmentResponse, error)
	CreateAssignment(ctx context.Context, req *dto.CreateAssignmentRequest, createdBy primitive.ObjectID) (*models.Assignment, error)
	UpdateAssignment(ctx context.Context, id primitive.ObjectID, req *dto.UpdateAssignmentRequest) (*models.Assignment, error)
	DeleteAssignment(ctx context.Context, id primitive.ObjectID) error
	DeleteAttachment(ctx context.Context, publicID string) error
}

// PaymentService covers checkout and verification
type PaymentService interface {
	InitializePayment(ctx context.Context, principal *appauth.Principal, req *dto.InitializePaymentRequest) (*dto.InitializePaymentResponse, error)
	VerifyPayment(ctx context.Context, principal *appauth.Principal, reference string) (*dto.VerifyPaymentResponse, error)
}

// DashboardService covers the student's own views
type DashboardService interface {
	GetDashboard(ctx context.Context, principal *appauth.Principal) (*dto.DashboardResponse, error)
	GetEnrolledCourses(ctx context.Context, principal *appauth.Principal) ([]*models.Course, error)
	GetEnrolledCourse(ctx context.Context, principal *appauth.Principal, courseID primitive.ObjectID) (*models.Course, error)
	ListAssignments(ctx context.Context, principal *appauth.Principal, status string) ([]*dto.StudentAssignment, error)
	ListTransactions(ctx context.Context, principal *appauth.Principal, status string, page, limit int) (*dto.TransactionPage, error)
}

// StudentService covers administration of student accounts
type StudentService interface {
	ListStudents(ctx context.Context, query *dto.StudentListQuery) (*dto.StudentPage, error)
	GetStudent(ctx context.Context, id primitive.ObjectID) (*dto.UserResponse, error)
	UpdateStudent(ctx context.Context, id primitive.ObjectID, req *dto.UpdateStudentRequest) (*dto.UserResponse, error)
	DeactivateStudent(ctx context.Context, id primitive.ObjectID) error
}

// UploadService stores uploaded attachment files
type UploadService interface {
	Upload(ctx context.Context, header *multipart.FileHeader) (*dto.UploadResponse, error)
}

var (
	_ AuthService       = (*services.AuthService)(nil)
	_ CourseService     = (*services.CourseService)(nil)
	_ AssignmentService = (*services.AssignmentService)(nil)
	_ PaymentService    = (*services.PaymentService)(nil)
	_ DashboardService  = (*services.DashboardService)(nil)
	_ StudentService    = (*services.StudentService)(nil)
	_ UploadService     = (*services.UploadService)(nil)
)
