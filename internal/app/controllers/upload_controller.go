package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/skillspad/api/internal/app/models/dto"
	"github.com/skillspad/api/internal/middleware"
)

// UploadController accepts assignment attachment files
type UploadController struct {
	uploadService UploadService
	logger        zerolog.Logger
}

// NewUploadController creates a new UploadController
func NewUploadController(uploadService UploadService, logger zerolog.Logger) *UploadController {
	return &UploadController{
		uploadService: uploadService,
		logger:        logger,
	}
}

// Upload stores one attachment
// @Summary Upload an attachment
// @Description Accepts PDF, DOC, DOCX, TXT, ZIP and RAR files up to 20MB
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "File to upload"
// @Success 201 {object} dto.APIResponse{data=dto.UploadResponse} "File uploaded successfully"
// @Failure 400 {object} dto.ErrorResponse "Missing, oversized or unsupported file"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /uploads [post]
func (c *UploadController) Upload(ctx *gin.Context) {
	header, err := ctx.FormFile("file")
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "No file uploaded").WithField("file")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	resp, err := c.uploadService.Upload(ctx.Request.Context(), header)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Str("publicId", resp.PublicID).Int64("size", resp.Size).Msg("File uploaded")
	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(resp, "File uploaded successfully"))
}
