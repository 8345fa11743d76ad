package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/skillspad/api/internal/app/models/dto"
	"github.com/skillspad/api/internal/pkg/validation"
)

var registerOnce sync.Once

// RegisterBindingValidators adds the custom tags to gin's binding validator.
// Safe to call more than once.
func RegisterBindingValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = errors.New("unexpected binding validator engine")
			return
		}
		// Report json names rather than Go field names
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
			}
			return name
		})
		err = validation.RegisterCustomValidators(v)
	})
	return err
}

// BindJSON binds the request body into obj and writes a 400 response on
// failure. It reports whether the handler should continue.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		HandleBindingError(c, err)
		return false
	}
	return true
}

// BindQuery binds query parameters into obj, like BindJSON
func BindQuery(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		HandleBindingError(c, err)
		return false
	}
	return true
}

// HandleBindingError writes a 400 listing every failed field
func HandleBindingError(c *gin.Context, err error) {
	errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format")

	var validationErrors validator.ValidationErrors
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &validationErrors):
		fields := make([]dto.FieldError, 0, len(validationErrors))
		for _, fe := range validationErrors {
			fields = append(fields, dto.FieldError{Field: fe.Field(), Message: formatValidationError(fe)})
		}
		errorDetail = dto.NewErrorDetail(dto.ErrorCodeValidationFailed, fields[0].Message).WithDetails(fields)
		if len(fields) == 1 {
			errorDetail = errorDetail.WithField(fields[0].Field)
		}
	case errors.As(err, &typeErr):
		errorDetail = errorDetail.WithField(typeErr.Field).WithDetails(typeErr.Field + " has the wrong type")
	case errors.As(err, &syntaxErr):
		errorDetail = errorDetail.WithDetails("Malformed JSON body")
	default:
		errorDetail = errorDetail.WithDetails(err.Error())
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		if e.Kind() == reflect.String {
			return e.Field() + " must be at least " + e.Param() + " characters"
		}
		return e.Field() + " must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return e.Field() + " must be at most " + e.Param() + " characters"
		}
		return e.Field() + " must be at most " + e.Param()
	case "len":
		return e.Field() + " must be exactly " + e.Param() + " characters"
	case "gt":
		return e.Field() + " must be greater than " + e.Param()
	case "gte":
		return e.Field() + " must be " + e.Param() + " or more"
	case "email":
		return e.Field() + " must be a valid email address"
	case "url":
		return e.Field() + " must be a valid URL"
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	case "objectid":
		return e.Field() + " must be a valid id"
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}
