package seed

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	appModels "github.com/skillspad/api/internal/app/models"
	appRepos "github.com/skillspad/api/internal/app/repositories"
	"github.com/skillspad/api/internal/pkg/apperrors"
	"github.com/skillspad/api/internal/pkg/auth"
	"github.com/skillspad/api/internal/pkg/validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminAccount is the administrator created on first start
type AdminAccount struct {
	Email    string
	Password string
}

// CreateDefaultData creates the default administrator if it doesn't exist.
// An empty account disables seeding.
func CreateDefaultData(ctx context.Context, userRepo appRepos.IUserRepository, admin AdminAccount, lgr zerolog.Logger) error {
	email := validation.NormalizeEmail(admin.Email)
	if email == "" || admin.Password == "" {
		lgr.Info().Msg("No default admin configured, skipping seed")
		return nil
	}
	if !validation.IsValidPassword(admin.Password) {
		return apperrors.NewValidationError("Default admin password is too short")
	}

	lgr.Info().Str("email", email).Msg("Checking/Creating default admin...")
	exists, err := userRepo.EmailExists(ctx, email)
	if err != nil {
		lgr.Error().Err(err).Msg("Error checking for default admin")
		return err
	}
	if exists {
		lgr.Debug().Str("email", email).Msg("Default admin already exists")
		return nil
	}

	hashedPassword, err := auth.HashPassword(admin.Password)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	user := &appModels.User{
		Email:           email,
		Password:        hashedPassword,
		FirstName:       "Admin",
		Country:         appModels.DefaultCountry,
		Role:            appModels.RoleAdmin,
		Status:          appModels.UserStatusActive,
		EnrolledCourses: []primitive.ObjectID{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	// Another instance may have seeded between the check and the insert
	if err := userRepo.Create(ctx, user); err != nil && !errors.Is(err, apperrors.ErrEmailAlreadyExists) {
		lgr.Error().Err(err).Msg("Error creating default admin")
		return err
	}

	lgr.Info().Str("email", email).Msg("Default admin created")
	return nil
}
