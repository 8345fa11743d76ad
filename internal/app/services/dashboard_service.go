package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	appauth "github.com/skillspad/api/internal/app/auth"
	"github.com/skillspad/api/internal/app/models"
	"github.com/skillspad/api/internal/app/models/dto"
	"github.com/skillspad/api/internal/app/repositories"
	"github.com/skillspad/api/internal/pkg/apperrors"
	"github.com/skillspad/api/internal/pkg/helpers"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

const (
	dashboardUpcomingLimit = 5
	dashboardRecentLimit   = 5
)

// DashboardService composes the read views of a student's own data
type DashboardService struct {
	userRepo        repositories.IUserRepository
	courseRepo      repositories.ICourseRepository
	assignmentRepo  repositories.IAssignmentRepository
	transactionRepo repositories.ITransactionRepository
	authz           *appauth.AuthorizationService
	logger          zerolog.Logger
	now             func() time.Time
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(
	userRepo repositories.IUserRepository,
	courseRepo repositories.ICourseRepository,
	assignmentRepo repositories.IAssignmentRepository,
	transactionRepo repositories.ITransactionRepository,
	authz *appauth.AuthorizationService,
	logger zerolog.Logger,
) *DashboardService {
	return &DashboardService{
		userRepo:        userRepo,
		courseRepo:      courseRepo,
		assignmentRepo:  assignmentRepo,
		transactionRepo: transactionRepo,
		authz:           authz,
		logger:          logger,
		now:             time.Now,
	}
}

// GetDashboard returns the caller's profile, enrolled courses, the soonest
// upcoming assignments and the latest transactions
func (s *DashboardService) GetDashboard(ctx context.Context, principal *appauth.Principal) (*dto.DashboardResponse, error) {
	user, err := s.userRepo.GetByID(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}

	courses, err := s.courseRepo.GetByIDs(ctx, user.EnrolledCourses)
	if err != nil {
		return nil, err
	}
	upcoming, err := s.assignmentRepo.ListUpcoming(ctx, user.EnrolledCourses, s.now().UTC(), dashboardUpcomingLimit)
	if err != nil {
		return nil, err
	}
	recent, err := s.transactionRepo.ListByUser(ctx, repositories.TransactionFilter{
		UserID: user.ID,
		Limit:  dashboardRecentLimit,
	})
	if err != nil {
		return nil, err
	}

	return &dto.DashboardResponse{
		User:                user,
		EnrolledCourses:     courses,
		UpcomingAssignments: upcoming,
		RecentTransactions:  recent,
	}, nil
}

// GetEnrolledCourses returns the courses the caller is enrolled in
func (s *DashboardService) GetEnrolledCourses(ctx context.Context, principal *appauth.Principal) ([]*models.Course, error) {
	user, err := s.userRepo.GetByID(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}
	courses, err := s.courseRepo.GetByIDs(ctx, user.EnrolledCourses)
	if err != nil {
		return nil, err
	}
	for _, c := range courses {
		sortCourse(c)
	}
	return courses, nil
}

// GetEnrolledCourse returns one course with its content if the caller is enrolled
func (s *DashboardService) GetEnrolledCourse(ctx context.Context, principal *appauth.Principal, courseID primitive.ObjectID) (*models.Course, error) {
	if err := s.authz.ValidateEnrollment(ctx, principal, courseID); err != nil {
		return nil, err
	}
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	sortCourse(course)
	return course, nil
}

// ListAssignments returns the published assignments of the caller's courses
// with the caller's submission status. status, when set, keeps only
// assignments in that submission status.
func (s *DashboardService) ListAssignments(ctx context.Context, principal *appauth.Principal, status string) ([]*dto.StudentAssignment, error) {
	switch status {
	case "", models.SubmissionStatusPending, models.SubmissionStatusSubmitted, models.SubmissionStatusGraded:
	default:
		return nil, apperrors.NewValidationError("Status must be one of: pending, submitted, graded")
	}

	user, err := s.userRepo.GetByID(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.StudentAssignment, 0)
	if len(user.EnrolledCourses) == 0 {
		return out, nil
	}

	assignments, err := s.assignmentRepo.List(ctx, repositories.AssignmentFilter{
		CourseIDs:  user.EnrolledCourses,
		HideDrafts: true,
	})
	if err != nil {
		return nil, err
	}
	courses, err := s.courseRepo.GetByIDs(ctx, user.EnrolledCourses)
	if err != nil {
		return nil, err
	}
	titles := make(map[primitive.ObjectID]string, len(courses))
	for _, c := range courses {
		titles[c.ID] = c.Title
	}

	for _, a := range assignments {
		submission := a.SubmissionStatusFor(user.ID)
		if status != "" && submission != status {
			continue
		}
		out = append(out, &dto.StudentAssignment{
			Assignment:       a,
			CourseTitle:      titles[a.CourseID],
			SubmissionStatus: submission,
		})
	}
	return out, nil
}

// ListTransactions returns one page of the caller's transactions. The page
// and the total are fetched concurrently.
func (s *DashboardService) ListTransactions(ctx context.Context, principal *appauth.Principal, status string, page, limit int) (*dto.TransactionPage, error) {
	switch models.TransactionStatus(status) {
	case "", models.TransactionPending, models.TransactionSuccess, models.TransactionFailed:
	default:
		return nil, apperrors.NewValidationError("Status must be one of: pending, success, failed")
	}

	page, limit = helpers.NormalizePage(page, limit)
	skip, size := helpers.CalculateSkipLimit(page, limit)
	filter := repositories.TransactionFilter{
		UserID: principal.UserID,
		Status: models.TransactionStatus(status),
		Skip:   skip,
		Limit:  size,
	}

	var (
		transactions []*models.Transaction
		total        int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		transactions, err = s.transactionRepo.ListByUser(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.transactionRepo.CountByUser(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("error listing transactions: %w", err)
	}

	return &dto.TransactionPage{
		Transactions: transactions,
		Pagination:   helpers.NewPaginationInfo(total, page, limit),
	}, nil
}
