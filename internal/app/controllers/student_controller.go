package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/skillspad/api/internal/app/models/dto"
	"github.com/skillspad/api/internal/middleware"
)

// StudentController handles admin management of student accounts
type StudentController struct {
	studentService StudentService
	logger         zerolog.Logger
}

// NewStudentController creates a new StudentController
func NewStudentController(studentService StudentService, logger zerolog.Logger) *StudentController {
	return &StudentController{
		studentService: studentService,
		logger:         logger,
	}
}

// ListStudents pages through student accounts
// @Summary List students
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Param q query string false "Matches name or email"
// @Param sortField query string false "createdAt, email, firstName or lastName"
// @Param sortOrder query string false "asc or desc"
// @Success 200 {object} dto.APIResponse{data=dto.StudentPage} "Students retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid query"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Router /students [get]
func (c *StudentController) ListStudents(ctx *gin.Context) {
	var query dto.StudentListQuery
	if !middleware.BindQuery(ctx, &query) {
		return
	}

	page, err := c.studentService.ListStudents(ctx.Request.Context(), &query)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(page, ""))
}

// GetStudent returns one student
// @Summary Get a student
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse} "Student retrieved successfully"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id} [get]
func (c *StudentController) GetStudent(ctx *gin.Context) {
	id, ok := objectIDParam(ctx, "id", "student")
	if !ok {
		return
	}

	student, err := c.studentService.GetStudent(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(student, ""))
}

// UpdateStudent edits a student account
// @Summary Update a student
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Param request body dto.UpdateStudentRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse} "Student updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 409 {object} dto.ErrorResponse "Email already exists"
// @Router /students/{id} [put]
func (c *StudentController) UpdateStudent(ctx *gin.Context) {
	id, ok := objectIDParam(ctx, "id", "student")
	if !ok {
		return
	}
	var req dto.UpdateStudentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	student, err := c.studentService.UpdateStudent(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Str("studentId", id.Hex()).Msg("Student updated")
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(student, "Student updated successfully"))
}

// DeactivateStudent disables a student account
// @Summary Deactivate a student
// @Description Marks the account inactive. Accounts are never hard deleted.
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Success 200 {object} dto.APIResponse "Student deactivated successfully"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id} [delete]
func (c *StudentController) DeactivateStudent(ctx *gin.Context) {
	id, ok := objectIDParam(ctx, "id", "student")
	if !ok {
		return
	}

	if err := c.studentService.DeactivateStudent(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Str("studentId", id.Hex()).Msg("Student deactivated")
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(nil, "Student deactivated successfully"))
}
