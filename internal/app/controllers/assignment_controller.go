package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/skillspad/api/internal/app/models/dto"
	"github.com/skillspad/api/internal/app/services"
	"github.com/skillspad/api/internal/middleware"
)

// AssignmentController handles assignment management for staff
type AssignmentController struct {
	assignmentService AssignmentService
	logger            zerolog.Logger
}

// NewAssignmentController creates a new AssignmentController
func NewAssignmentController(assignmentService AssignmentService, logger zerolog.Logger) *AssignmentController {
	return &AssignmentController{
		assignmentService: assignmentService,
		logger:            logger,
	}
}

// ListAssignments lists assignments
// @Summary List assignments
// @Description Lists assignments, optionally for one course or module, with course and module titles
// @Tags assignments
// @Produce json
// @Security BearerAuth
// @Param courseId query string false "Course ID"
// @Param moduleId query string false "Module ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.AssignmentResponse} "Assignments retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid filter"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /assignments [get]
func (c *AssignmentController) ListAssignments(ctx *gin.Context) {
	courseID, ok := objectIDQuery(ctx, "courseId")
	if !ok {
		return
	}
	moduleID, ok := objectIDQuery(ctx, "moduleId")
	if !ok {
		return
	}

	assignments, err := c.assignmentService.ListAssignments(ctx.Request.Context(), services.AssignmentQuery{
		CourseID: courseID,
		ModuleID: moduleID,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(assignments, ""))
}

// GetAssignment returns one assignment
// @Summary Get assignment details
// @Tags assignments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assignment ID"
// @Success 200 {object} dto.APIResponse{data=dto.AssignmentResponse} "Assignment retrieved successfully"
// @Failure 404 {object} dto.ErrorResponse "Assignment not found"
// @Router /assignments/{id} [get]
func (c *AssignmentController) GetAssignment(ctx *gin.Context) {
	id, ok := objectIDParam(ctx, "id", "assignment")
	if !ok {
		return
	}

	assignment, err := c.assignmentService.GetAssignment(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(assignment, ""))
}

// CreateAssignment handles assignment creation
// @Summary Create an assignment
// @Description Creates an assignment in a course module. Attachments must be uploaded first through /uploads.
// @Tags assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateAssignmentRequest true "Assignment information"
// @Success 201 {object} dto.APIResponse{data=models.Assignment} "Assignment created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Course or module not found"
// @Failure 409 {object} dto.ErrorResponse "Title already used in this module"
// @Router /assignments [post]
func (c *AssignmentController) CreateAssignment(ctx *gin.Context) {
	principal, ok := currentPrincipal(ctx)
	if !ok {
		return
	}
	var req dto.CreateAssignmentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	assignment, err := c.assignmentService.CreateAssignment(ctx.Request.Context(), &req, principal.UserID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Str("assignmentId", assignment.ID.Hex()).Str("courseId", req.CourseID).Msg("Assignment created")
	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(assignment, "Assignment created successfully"))
}

// UpdateAssignment partially updates an assignment
// @Summary Update an assignment
// @Description Updates an assignment. Course and module cannot change once students have submitted.
// @Tags assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assignment ID"
// @Param request body dto.UpdateAssignmentRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.Assignment} "Assignment updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Assignment not found"
// @Failure 409 {object} dto.ErrorResponse "Conflicting change"
// @Router /assignments/{id} [put]
func (c *AssignmentController) UpdateAssignment(ctx *gin.Context) {
	id, ok := objectIDParam(ctx, "id", "assignment")
	if !ok {
		return
	}
	var req dto.UpdateAssignmentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	assignment, err := c.assignmentService.UpdateAssignment(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(assignment, "Assignment updated successfully"))
}

// DeleteAssignment removes an assignment without submissions
// @Summary Delete an assignment
// @Tags assignments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assignment ID"
// @Success 200 {object} dto.APIResponse "Assignment deleted successfully"
// @Failure 404 {object} dto.ErrorResponse "Assignment not found"
// @Failure 409 {object} dto.ErrorResponse "Assignment has submissions"
// @Router /assignments/{id} [delete]
func (c *AssignmentController) DeleteAssignment(ctx *gin.Context) {
	id, ok := objectIDParam(ctx, "id", "assignment")
	if !ok {
		return
	}

	if err := c.assignmentService.DeleteAssignment(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Str("assignmentId", id.Hex()).Msg("Assignment deleted")
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(nil, "Assignment deleted successfully"))
}

// DeleteAttachment removes an uploaded attachment
// @Summary Delete an attachment
// @Description Deletes a file from the upload provider and from every assignment referencing it. Public ids may contain slashes.
// @Tags assignments
// @Produce json
// @Security BearerAuth
// @Param publicId path string true "Provider public id"
// @Success 200 {object} dto.APIResponse "Attachment deleted successfully"
// @Failure 404 {object} dto.ErrorResponse "Attachment not found"
// @Router /assignments/attachments/{publicId} [delete]
func (c *AssignmentController) DeleteAttachment(ctx *gin.Context) {
	publicID := strings.TrimPrefix(ctx.Param("publicId"), "/")

	if err := c.assignmentService.DeleteAttachment(ctx.Request.Context(), publicID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(nil, "Attachment deleted successfully"))
}
