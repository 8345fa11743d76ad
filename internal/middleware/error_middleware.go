package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skillspad/api/internal/app/models/dto"
	"github.com/skillspad/api/internal/pkg/apperrors"
	"github.com/skillspad/api/internal/pkg/logger"
)

// errorMapping is the response chosen for one error class
type errorMapping struct {
	target  error
	status  int
	code    dto.ErrorCode
	message string
}

// Checked in order; the first class err matches wins. Specific entity errors
// come before the generic classes they unwrap to.
var errorMappings = []errorMapping{
	{apperrors.ErrFileTooLarge, http.StatusBadRequest, dto.ErrorCodeFileTooLarge, "File size exceeds the 20MB limit"},
	{apperrors.ErrUnsupportedFileType, http.StatusBadRequest, dto.ErrorCodeFileType, "Invalid file type. Only PDF, DOC, DOCX, TXT, ZIP, and RAR files are allowed"},
	{apperrors.ErrInvalidPasswordResetToken, http.StatusBadRequest, dto.ErrorCodeInvalidResetToken, "Invalid or expired reset token"},
	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"},
	{apperrors.ErrBadRequest, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Bad request"},
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid email or password"},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token has expired"},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"},
	{apperrors.ErrTokenNotFound, http.StatusUnauthorized, dto.ErrorCodeTokenNotFound, "Authentication required"},
	{apperrors.ErrAccountDisabled, http.StatusForbidden, dto.ErrorCodeAccountDisabled, "Account is disabled"},
	{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"},
	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"},
	{apperrors.ErrAlreadyEnrolled, http.StatusConflict, dto.ErrorCodeAlreadyEnrolled, "You are already enrolled in this course"},
	{apperrors.ErrConflict, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Resource already exists"},
	{apperrors.ErrStaleWrite, http.StatusConflict, dto.ErrorCodeResourceInvalid, "The resource was modified concurrently, please retry"},
	{apperrors.ErrGateway, http.StatusBadGateway, dto.ErrorCodeExternalServiceError, "Payment provider error"},
}

// HandleAPIError handles common API errors and returns appropriate responses.
// Outside release mode the raw error is attached as debug info.
func HandleAPIError(c *gin.Context, err error) {
	status, errorDetail := describeError(err)

	if status >= http.StatusInternalServerError {
		errorDetail = errorDetail.WithSeverity(dto.ErrorSeverityError)
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Int("status", status).Msg("Request failed")
	}
	if gin.Mode() != gin.ReleaseMode {
		errorDetail = errorDetail.WithDebugInfo("%v", err)
	}

	c.JSON(status, dto.NewErrorResponse(errorDetail))
}

func describeError(err error) (int, *dto.ErrorDetail) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, dto.NewErrorDetail(m.code, apperrors.UserMessage(err, m.message))
		}
	}
	return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
}
