package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/skillspad/api/internal/pkg/apperrors"
)

// JWTConfig defines JWT configuration settings
type JWTConfig struct {
	SecretKey   string
	Expiration  time.Duration
	TokenIssuer string
}

// JWTService issues and validates session tokens
type JWTService struct {
	config JWTConfig
	now    func() time.Time
}

// NewJWTService creates a new JWT service
func NewJWTService(config JWTConfig) *JWTService {
	return &JWTService{
		config: config,
		now:    time.Now,
	}
}

// Session is the identity asserted by a token
type Session struct {
	UserID        string
	Role          string
	Email         string
	Country       string
	PaymentStatus string
}

// Claims defines JWT token content
type Claims struct {
	UserID        string `json:"userId"`
	Role          string `json:"role"`
	Email         string `json:"email"`
	Country       string `json:"country"`
	PaymentStatus string `json:"paymentStatus"`
	jwt.RegisteredClaims
}

// Session returns the identity part of the claims
func (c *Claims) Session() Session {
	return Session{
		UserID:        c.UserID,
		Role:          c.Role,
		Email:         c.Email,
		Country:       c.Country,
		PaymentStatus: c.PaymentStatus,
	}
}

// GenerateToken signs a session token and returns it with its expiry
func (s *JWTService) GenerateToken(session Session) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.config.Expiration)

	claims := &Claims{
		UserID:        session.UserID,
		Role:          session.Role,
		Email:         session.Email,
		Country:       session.Country,
		PaymentStatus: session.PaymentStatus,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.config.TokenIssuer,
			Subject:   session.UserID,
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.SecretKey))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Expiration is the lifetime of issued tokens
func (s *JWTService) Expiration() time.Duration {
	return s.config.Expiration
}

// ValidateToken parses a token and returns its claims
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, apperrors.ErrTokenNotFound
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.SecretKey), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, apperrors.ErrTokenInvalid
	}
	return claims, nil
}

// ExtractBearerToken extracts the token from an Authorization header value
func ExtractBearerToken(authHeader string) string {
	authHeader = strings.TrimSpace(authHeader)
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
