package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound = errors.New("resource not found")
	ErrConflict         = errors.New("conflict")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenNotFound      = errors.New("authentication required")
	ErrAccountDisabled    = errors.New("account is disabled")

	// Authorization errors
	ErrPermissionDenied = errors.New("you do not have permission to access this resource")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// External services
	ErrGateway = errors.New("payment gateway error")
)

// Password reset errors
var (
	ErrInvalidPasswordResetToken = errors.New("invalid or expired reset token")
)

// Upload errors
var (
	ErrFileTooLarge        = errors.New("file size exceeds the 20MB limit")
	ErrUnsupportedFileType = errors.New("invalid file type. Only PDF, DOC, DOCX, TXT, ZIP, and RAR files are allowed")
)

// Entity specific errors. They unwrap to the generic classes above so the
// HTTP layer only needs to know about the classes.
var (
	ErrUserNotFound        = NewResourceNotFoundError("User not found")
	ErrCourseNotFound      = NewResourceNotFoundError("Course not found")
	ErrModuleNotFound      = NewResourceNotFoundError("Module not found")
	ErrLessonNotFound      = NewResourceNotFoundError("Lesson not found")
	ErrAssignmentNotFound  = NewResourceNotFoundError("Assignment not found")
	ErrTransactionNotFound = NewResourceNotFoundError("Transaction not found")
	ErrAttachmentNotFound  = NewResourceNotFoundError("Attachment not found")

	ErrEmailAlreadyExists     = NewConflictError("User with this email already exists")
	ErrCourseTitleExists      = NewConflictError("A course with this title already exists")
	ErrAssignmentTitleExists  = NewConflictError("An assignment with this title already exists in this module")
	ErrAssignmentHasSubmitted = NewConflictError("Cannot delete assignment with existing submissions")
	ErrAssignmentLinkLocked   = NewConflictError("Cannot change course or module of an assignment with submissions")
	ErrAlreadyEnrolled        = NewConflictError("You are already enrolled in this course")

	ErrNotEnrolled = NewForbiddenError("You are not enrolled in this course")

	// ErrStaleWrite reports a lost optimistic concurrency race; callers retry
	ErrStaleWrite = errors.New("document was modified concurrently")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// NewValidationError creates a validation failure with a user facing message
func NewValidationError(message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
}

// NewGatewayError wraps a payment gateway failure with a user facing message
func NewGatewayError(message string, cause error) error {
	return &CustomError{
		Err:     ErrGateway,
		Message: message,
		Cause:   cause,
	}
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	// Cause is the lower level failure, kept for logs and debug output
	Cause error
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap exposes both the class and the cause to errors.Is / errors.As
func (e *CustomError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

// UserMessage returns the most specific user facing message carried by err,
// or fallback when err holds no CustomError.
func UserMessage(err error, fallback string) string {
	var custom *CustomError
	if errors.As(err, &custom) && custom.Message != "" {
		return custom.Message
	}
	return fallback
}
