package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/skillspad/api/internal/app/models"
	"github.com/skillspad/api/internal/app/models/dto"
	"github.com/skillspad/api/internal/app/repositories"
	"github.com/skillspad/api/internal/pkg/apperrors"
	"github.com/skillspad/api/internal/pkg/auth"
	"github.com/skillspad/api/internal/pkg/validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ResetTokenTTL is how long a password reset link stays valid
const ResetTokenTTL = time.Hour

// ForgotPasswordMessage is returned whether or not the email is registered
const ForgotPasswordMessage = "If your email is registered, you will receive a password reset link."

// AuthService handles authentication operations
type AuthService struct {
	userRepo        repositories.IUserRepository
	transactionRepo repositories.ITransactionRepository
	partialRepo     repositories.IPartialPaymentRepository
	tokens          TokenIssuer
	notifier        Notifier
	logger          zerolog.Logger
	now             func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repositories.IUserRepository,
	transactionRepo repositories.ITransactionRepository,
	partialRepo repositories.IPartialPaymentRepository,
	tokens TokenIssuer,
	notifier Notifier,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		userRepo:        userRepo,
		transactionRepo: transactionRepo,
		partialRepo:     partialRepo,
		tokens:          tokens,
		notifier:        notifier,
		logger:          logger,
		now:             time.Now,
	}
}

// Register creates a student account from the application form and signs it in
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	email := validation.NormalizeEmail(req.Email)
	if !validation.IsValidEmail(email) {
		return nil, apperrors.NewValidationError("Please provide a valid email address")
	}
	if !validation.IsValidPassword(req.Password) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("Password must be at least %d characters long", validation.PasswordMinLength))
	}

	exists, err := s.userRepo.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("error checking if email exists: %w", err)
	}
	if exists {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	country := strings.ToUpper(strings.TrimSpace(req.Country))
	if country == "" {
		country = models.DefaultCountry
	}

	now := s.now().UTC()
	user := &models.User{
		Email:           email,
		Password:        hashedPassword,
		FirstName:       strings.TrimSpace(req.FirstName),
		LastName:        strings.TrimSpace(req.LastName),
		Phone:           req.Phone,
		Education:       req.Education,
		Experience:      req.Experience,
		Motivation:      req.Motivation,
		HowHeard:        req.HowHeard,
		StartDate:       req.StartDate,
		GithubProfile:   req.GithubProfile,
		Country:         country,
		Role:            models.RoleStudent,
		Status:          models.UserStatusActive,
		EnrolledCourses: []primitive.ObjectID{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	// The unique index still catches a racing registration of the same email
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("user creation error: %w", err)
	}

	if err := s.notifier.SendWelcome(ctx, user.Email, user.FirstName); err != nil {
		s.logger.Warn().Err(err).Str("email", user.Email).Msg("Failed to queue welcome email")
	}

	s.logger.Info().Str("userId", user.ID.Hex()).Msg("User registered")
	return s.generateAuthResponse(user, models.PaymentStatusPending)
}

// Login authenticates a user. Unknown emails and wrong passwords produce the
// same error.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	email := validation.NormalizeEmail(req.Email)

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			auth.BurnPasswordCheck(req.Password)
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error finding user: %w", err)
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive() {
		return nil, apperrors.ErrAccountDisabled
	}

	paymentStatus, err := s.PaymentStatus(ctx, user)
	if err != nil {
		return nil, err
	}
	return s.generateAuthResponse(user, paymentStatus)
}

// CurrentUser returns the stored profile of the caller with a fresh payment status
func (s *AuthService) CurrentUser(ctx context.Context, userID primitive.ObjectID) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	paymentStatus, err := s.PaymentStatus(ctx, user)
	if err != nil {
		return nil, err
	}
	return dto.NewUserResponse(user, paymentStatus), nil
}

// PaymentStatus derives the status embedded in session tokens: the stored
// payment summary, else any successful transaction, else a partial payment
// record, else pending.
func (s *AuthService) PaymentStatus(ctx context.Context, user *models.User) (string, error) {
	if user.Payment != nil && user.Payment.Status != "" {
		return user.Payment.Status, nil
	}

	paid, err := s.transactionRepo.Exists(ctx, user.ID, primitive.NilObjectID, models.TransactionSuccess)
	if err != nil {
		return "", fmt.Errorf("error checking payments: %w", err)
	}
	if paid {
		return models.PaymentStatusSuccess, nil
	}

	partial, err := s.partialRepo.HasPartialPayment(ctx, user.ID)
	if err != nil {
		return "", fmt.Errorf("error checking partial payments: %w", err)
	}
	if partial {
		return models.PaymentStatusPartiallyPaid, nil
	}
	return models.PaymentStatusPending, nil
}

// ForgotPassword issues a reset token when the email is registered. The
// caller always gets ForgotPasswordMessage.
func (s *AuthService) ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) (string, error) {
	email := validation.NormalizeEmail(req.Email)

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			s.logger.Debug().Msg("Password reset requested for unknown email")
			return ForgotPasswordMessage, nil
		}
		return "", fmt.Errorf("error finding user: %w", err)
	}

	token := uuid.New().String()
	if err := s.userRepo.SetResetToken(ctx, user.ID, token, s.now().UTC().Add(ResetTokenTTL)); err != nil {
		return "", err
	}

	if err := s.notifier.SendPasswordReset(ctx, user.Email, user.FirstName, token); err != nil {
		s.logger.Warn().Err(err).Str("userId", user.ID.Hex()).Msg("Failed to queue password reset email")
	}
	return ForgotPasswordMessage, nil
}

// ResetPassword replaces the password if the token matches and has not
// expired. The token is consumed by the same write.
func (s *AuthService) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	if strings.TrimSpace(req.Token) == "" {
		return apperrors.ErrInvalidPasswordResetToken
	}
	if !validation.IsValidPassword(req.Password) {
		return apperrors.NewValidationError(fmt.Sprintf("Password must be at least %d characters long", validation.PasswordMinLength))
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}

	ok, err := s.userRepo.ConsumeResetToken(ctx, validation.NormalizeEmail(req.Email), req.Token, hashedPassword, s.now().UTC())
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.ErrInvalidPasswordResetToken
	}
	return nil
}

// IssueToken signs a session token for user with the given payment status
func (s *AuthService) IssueToken(user *models.User, paymentStatus string) (string, error) {
	token, _, err := s.tokens.GenerateToken(sessionFor(user, paymentStatus))
	if err != nil {
		return "", fmt.Errorf("error generating token: %w", err)
	}
	return token, nil
}

func (s *AuthService) generateAuthResponse(user *models.User, paymentStatus string) (*dto.AuthResponse, error) {
	token, err := s.IssueToken(user, paymentStatus)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{
		Token: token,
		User:  dto.NewUserResponse(user, paymentStatus),
	}, nil
}

// sessionFor builds the token claims of user
func sessionFor(user *models.User, paymentStatus string) auth.Session {
	return auth.Session{
		UserID:        user.ID.Hex(),
		Role:          string(user.Role),
		Email:         user.Email,
		Country:       user.Country,
		PaymentStatus: paymentStatus,
	}
}
