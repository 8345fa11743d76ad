package auth

import (
	"context"
	"fmt"

	"github.com/skillspad/api/internal/app/models"
	"github.com/skillspad/api/internal/app/repositories"
	"github.com/skillspad/api/internal/pkg/apperrors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Principal is the authenticated caller, resolved from the session token and
// the current user record
type Principal struct {
	UserID        primitive.ObjectID
	Role          models.RoleType
	Email         string
	Country       string
	PaymentStatus string
}

// IsAdmin reports whether the caller is an administrator
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == models.RoleAdmin
}

// HasRole reports whether the caller's role is in roles
func (p *Principal) HasRole(roles ...models.RoleType) bool {
	if p == nil {
		return false
	}
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

// AuthorizationService answers enrollment and ownership questions
type AuthorizationService struct {
	userRepo repositories.IUserRepository
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(userRepo repositories.IUserRepository) *AuthorizationService {
	return &AuthorizationService{userRepo: userRepo}
}

// IsEnrolled checks the user's enrolled set for courseID
func (s *AuthorizationService) IsEnrolled(ctx context.Context, userID, courseID primitive.ObjectID) (bool, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return user.IsEnrolled(courseID), nil
}

// ValidateEnrollment returns apperrors.ErrNotEnrolled unless the caller may
// read the course content. Staff can read every course.
func (s *AuthorizationService) ValidateEnrollment(ctx context.Context, principal *Principal, courseID primitive.ObjectID) error {
	if principal.HasRole(models.RoleAdmin, models.RoleInstructor) {
		return nil
	}
	enrolled, err := s.IsEnrolled(ctx, principal.UserID, courseID)
	if err != nil {
		return fmt.Errorf("error checking enrollment: %w", err)
	}
	if !enrolled {
		return apperrors.ErrNotEnrolled
	}
	return nil
}

// CanAccessTransaction reports whether the caller owns tx or is an administrator
func CanAccessTransaction(principal *Principal, tx *models.Transaction) bool {
	if principal == nil || tx == nil {
		return false
	}
	return principal.IsAdmin() || principal.UserID == tx.UserID
}
