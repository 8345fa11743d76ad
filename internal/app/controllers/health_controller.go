package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skillspad/api/internal/app/models/dto"
)

// Health reports that the API is serving
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.HealthResponse{Success: true, Status: "ok"})
}

// NotFound answers unmatched routes with the standard error envelope
func NotFound(ctx *gin.Context) {
	ctx.JSON(http.StatusNotFound, dto.NewErrorResponse(
		dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Route not found").WithField(ctx.Request.URL.Path),
	))
}
