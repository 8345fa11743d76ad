package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	appauth "github.com/skillspad/api/internal/app/auth"
	"github.com/skillspad/api/internal/app/models"
	"github.com/skillspad/api/internal/app/models/dto"
	"github.com/skillspad/api/internal/app/repositories"
	"github.com/skillspad/api/internal/pkg/apperrors"
	"github.com/skillspad/api/internal/pkg/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Context keys set by JWTAuth
const (
	PrincipalKey = "principal"
	UserIDKey    = "userID"
)

// TokenValidator parses session tokens
type TokenValidator interface {
	ValidateToken(tokenString string) (*auth.Claims, error)
}

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	tokens     TokenValidator
	userRepo   repositories.IUserRepository
	cookieName string
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(tokens TokenValidator, userRepo repositories.IUserRepository, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{
		tokens:     tokens,
		userRepo:   userRepo,
		cookieName: cookieName,
	}
}

// JWTAuth authenticates the request from the Authorization header or, when
// absent, the session cookie. The user is reloaded on every request so a
// deactivated account loses access at once.
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := auth.ExtractBearerToken(c.GetHeader("Authorization"))
		if tokenString == "" && m.cookieName != "" {
			if cookie, err := c.Cookie(m.cookieName); err == nil {
				tokenString = cookie
			}
		}
		if tokenString == "" {
			abortUnauthorized(c, dto.ErrorCodeTokenNotFound, "Authentication required")
			return
		}

		claims, err := m.tokens.ValidateToken(tokenString)
		if err != nil {
			if errors.Is(err, apperrors.ErrTokenExpired) {
				abortUnauthorized(c, dto.ErrorCodeExpiredToken, "Token has expired")
				return
			}
			abortUnauthorized(c, dto.ErrorCodeInvalidToken, "Invalid token")
			return
		}

		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			abortUnauthorized(c, dto.ErrorCodeInvalidToken, "Invalid token")
			return
		}

		user, err := m.userRepo.GetByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, apperrors.ErrResourceNotFound) {
				abortUnauthorized(c, dto.ErrorCodeInvalidToken, "User no longer exists")
				return
			}
			HandleAPIError(c, err)
			c.Abort()
			return
		}
		if !user.IsActive() {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeAccountDisabled, "Account is disabled")
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(errorDetail))
			return
		}

		principal := &appauth.Principal{
			UserID:        user.ID,
			Role:          user.Role,
			Email:         user.Email,
			Country:       user.Country,
			PaymentStatus: claims.PaymentStatus,
		}
		c.Set(PrincipalKey, principal)
		c.Set(UserIDKey, user.ID.Hex())

		c.Next()
	}
}

// RoleRequired rejects callers whose role is not in roles. JWTAuth must run first.
func (m *AuthMiddleware) RoleRequired(roles ...models.RoleType) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "Authentication required")
			return
		}
		if !principal.HasRole(roles...) {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeForbidden, "Access denied")
			errorDetail = errorDetail.WithDetails("You don't have sufficient permissions for this operation")
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(errorDetail))
			return
		}
		c.Next()
	}
}

// GetPrincipal returns the authenticated caller set by JWTAuth
func GetPrincipal(c *gin.Context) (*appauth.Principal, bool) {
	value, exists := c.Get(PrincipalKey)
	if !exists {
		return nil, false
	}
	principal, ok := value.(*appauth.Principal)
	return principal, ok && principal != nil
}

func abortUnauthorized(c *gin.Context, code dto.ErrorCode, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(dto.NewErrorDetail(code, message)))
}
