package dto

import "github.com/skillspad/api/internal/app/models"

// RegisterRequest is the application form submitted to /auth/register
type RegisterRequest struct {
	Email         string `json:"email" binding:"required,email" example:"alice@example.com"`
	Password      string `json:"password" binding:"required,min=8" example:"s3cretpass"`
	FirstName     string `json:"firstName" binding:"required,max=100" example:"Alice"`
	LastName      string `json:"lastName" binding:"required,max=100" example:"Mensah"`
	Phone         string `json:"phone" binding:"omitempty,max=30" example:"+233201234567"`
	Education     string `json:"education" binding:"omitempty,max=200"`
	Experience    string `json:"experience" binding:"omitempty,max=200"`
	Motivation    string `json:"motivation" binding:"omitempty,max=2000"`
	HowHeard      string `json:"howHeard" binding:"omitempty,max=200"`
	StartDate     string `json:"startDate" binding:"omitempty,max=50"`
	GithubProfile string `json:"githubProfile" binding:"omitempty,max=200"`
	Country       string `json:"country" binding:"omitempty,len=2" example:"GH"`
}

// LoginRequest carries login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"alice@example.com"`
	Password string `json:"password" binding:"required" example:"s3cretpass"`
}

// ForgotPasswordRequest starts a password reset
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email" example:"alice@example.com"`
}

// ResetPasswordRequest completes a password reset
type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required" example:"0b6f3d8e-5f7a-4c1e-9a55-3c2b8f1e0d42"`
	Email    string `json:"email" binding:"required,email" example:"alice@example.com"`
	Password string `json:"password" binding:"required,min=8" example:"n3wpassword"`
}

// UserResponse is the public view of a user
type UserResponse struct {
	ID              string   `json:"id" example:"665f1c2e9d1a4b0012345678"`
	Email           string   `json:"email" example:"alice@example.com"`
	FirstName       string   `json:"firstName" example:"Alice"`
	LastName        string   `json:"lastName" example:"Mensah"`
	Role            string   `json:"role" example:"student"`
	Country         string   `json:"country" example:"GH"`
	Status          string   `json:"status" example:"active"`
	EnrolledCourses []string `json:"enrolledCourses"`
	PaymentStatus   string   `json:"paymentStatus,omitempty" example:"pending"`
}

// AuthResponse is returned by register and login; the token is also set as a cookie
type AuthResponse struct {
	Token string        `json:"token"`
	User  *UserResponse `json:"user"`
}

// NewUserResponse converts a stored user to its public view
func NewUserResponse(u *models.User, paymentStatus string) *UserResponse {
	if u == nil {
		return nil
	}
	enrolled := make([]string, 0, len(u.EnrolledCourses))
	for _, id := range u.EnrolledCourses {
		enrolled = append(enrolled, id.Hex())
	}
	return &UserResponse{
		ID:              u.ID.Hex(),
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Role:            string(u.Role),
		Country:         u.Country,
		Status:          string(u.Status),
		EnrolledCourses: enrolled,
		PaymentStatus:   paymentStatus,
	}
}
