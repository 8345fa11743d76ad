package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/skillspad/api/internal/app/models"
	"github.com/skillspad/api/internal/app/models/dto"
	"github.com/skillspad/api/internal/app/repositories"
	"github.com/skillspad/api/internal/pkg/apperrors"
	"github.com/skillspad/api/internal/pkg/auth"
	"github.com/skillspad/api/internal/pkg/helpers"
	"github.com/skillspad/api/internal/pkg/validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrStudentNotFound is returned for ids that do not belong to a student
var ErrStudentNotFound = apperrors.NewResourceNotFoundError("Student not found")

// sortable student listing fields
var studentSortFields = map[string]bool{
	"createdAt": true,
	"firstName": true,
	"lastName":  true,
	"email":     true,
}

// StudentService is the administrator's view of student accounts
type StudentService struct {
	userRepo repositories.IUserRepository
	logger   zerolog.Logger
}

// NewStudentService creates a new StudentService
func NewStudentService(userRepo repositories.IUserRepository, logger zerolog.Logger) *StudentService {
	return &StudentService{userRepo: userRepo, logger: logger}
}

// ListStudents returns one page of students, optionally searched by name or email
func (s *StudentService) ListStudents(ctx context.Context, query *dto.StudentListQuery) (*dto.StudentPage, error) {
	sortField := query.SortField
	if sortField == "" {
		sortField = "createdAt"
	}
	if !studentSortFields[sortField] {
		return nil, apperrors.NewValidationError("sortField must be one of: createdAt, firstName, lastName, email")
	}
	var sortDesc bool
	switch strings.ToLower(query.SortOrder) {
	case "", "desc":
		sortDesc = true
	case "asc":
	default:
		return nil, apperrors.NewValidationError("sortOrder must be asc or desc")
	}

	page, limit := helpers.NormalizePage(query.Page, query.Limit)
	skip, size := helpers.CalculateSkipLimit(page, limit)
	users, total, err := s.userRepo.List(ctx, repositories.UserListFilter{
		Role:      models.RoleStudent,
		Query:     strings.TrimSpace(query.Query),
		SortField: sortField,
		SortDesc:  sortDesc,
		Skip:      skip,
		Limit:     size,
	})
	if err != nil {
		return nil, err
	}

	students := make([]*dto.UserResponse, 0, len(users))
	for _, u := range users {
		students = append(students, dto.NewUserResponse(u, paymentSummaryStatus(u)))
	}
	return &dto.StudentPage{
		Students:   students,
		Pagination: helpers.NewPaginationInfo(total, page, limit),
	}, nil
}

// GetStudent returns one student
func (s *StudentService) GetStudent(ctx context.Context, id primitive.ObjectID) (*dto.UserResponse, error) {
	user, err := s.getStudent(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewUserResponse(user, paymentSummaryStatus(user)), nil
}

// UpdateStudent edits a student's name, email, password or status
func (s *StudentService) UpdateStudent(ctx context.Context, id primitive.ObjectID, req *dto.UpdateStudentRequest) (*dto.UserResponse, error) {
	user, err := s.getStudent(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		email := validation.NormalizeEmail(*req.Email)
		if email != user.Email {
			exists, err := s.userRepo.EmailExists(ctx, email)
			if err != nil {
				return nil, fmt.Errorf("error checking if email exists: %w", err)
			}
			if exists {
				return nil, apperrors.ErrEmailAlreadyExists
			}
			user.Email = email
		}
	}
	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Password != nil {
		if !validation.IsValidPassword(*req.Password) {
			return nil, apperrors.NewValidationError(fmt.Sprintf("Password must be at least %d characters long", validation.PasswordMinLength))
		}
		hashed, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("error hashing password: %w", err)
		}
		user.Password = hashed
	}
	if req.Status != nil {
		user.Status = models.UserStatus(*req.Status)
	}

	if err := s.userRepo.UpdateAccount(ctx, user); err != nil {
		return nil, err
	}
	return dto.NewUserResponse(user, paymentSummaryStatus(user)), nil
}

// DeactivateStudent marks the account inactive. Accounts are never deleted.
func (s *StudentService) DeactivateStudent(ctx context.Context, id primitive.ObjectID) error {
	user, err := s.getStudent(ctx, id)
	if err != nil {
		return err
	}
	if user.Status == models.UserStatusInactive {
		return nil
	}
	user.Status = models.UserStatusInactive
	if err := s.userRepo.UpdateAccount(ctx, user); err != nil {
		return err
	}
	s.logger.Info().Str("userId", id.Hex()).Msg("Student deactivated")
	return nil
}

func (s *StudentService) getStudent(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	if user.Role != models.RoleStudent {
		return nil, ErrStudentNotFound
	}
	return user, nil
}

func paymentSummaryStatus(u *models.User) string {
	if u.Payment != nil && u.Payment.Status != "" {
		return u.Payment.Status
	}
	return models.PaymentStatusPending
}
