package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	appauth "github.com/skillspad/api/internal/app/auth"
	"github.com/skillspad/api/internal/app/models/dto"
	"github.com/skillspad/api/internal/middleware"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// objectIDParam parses the path parameter name as an ObjectID. On failure it
// writes a 400 response and returns false.
func objectIDParam(ctx *gin.Context, name, label string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(ctx.Param(name))
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, fmt.Sprintf("Invalid %s ID", label))
		errorDetail = errorDetail.WithField(name).WithDetails(fmt.Sprintf("%s ID must be a 24 character hex string", label))
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return primitive.NilObjectID, false
	}
	return id, true
}

// objectIDQuery parses an optional ObjectID query parameter
func objectIDQuery(ctx *gin.Context, name string) (primitive.ObjectID, bool) {
	raw := ctx.Query(name)
	if raw == "" {
		return primitive.NilObjectID, true
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, fmt.Sprintf("Invalid %s", name)).WithField(name)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return primitive.NilObjectID, false
	}
	return id, true
}

// currentPrincipal returns the caller set by the auth middleware or writes 401
func currentPrincipal(ctx *gin.Context) (*appauth.Principal, bool) {
	principal, ok := middleware.GetPrincipal(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return nil, false
	}
	return principal, true
}
