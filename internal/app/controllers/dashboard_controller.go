package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/skillspad/api/internal/app/models/dto"
	"github.com/skillspad/api/internal/middleware"
	"github.com/skillspad/api/internal/pkg/helpers"
)

// DashboardController serves the signed-in student's own data
type DashboardController struct {
	dashboardService DashboardService
	logger           zerolog.Logger
}

// NewDashboardController creates a new DashboardController
func NewDashboardController(dashboardService DashboardService, logger zerolog.Logger) *DashboardController {
	return &DashboardController{
		dashboardService: dashboardService,
		logger:           logger,
	}
}

// GetDashboard returns the student home page data
// @Summary Student dashboard
// @Description Profile, enrolled courses, the next five assignments due and the five latest transactions
// @Tags student
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.DashboardResponse} "Dashboard retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Router /student/dashboard [get]
func (c *DashboardController) GetDashboard(ctx *gin.Context) {
	principal, ok := currentPrincipal(ctx)
	if !ok {
		return
	}

	dashboard, err := c.dashboardService.GetDashboard(ctx.Request.Context(), principal)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dashboard, ""))
}

// GetCourses lists the courses the student is enrolled in
// @Summary Enrolled courses
// @Tags student
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Course} "Courses retrieved successfully"
// @Router /student/courses [get]
func (c *DashboardController) GetCourses(ctx *gin.Context) {
	principal, ok := currentPrincipal(ctx)
	if !ok {
		return
	}

	courses, err := c.dashboardService.GetEnrolledCourses(ctx.Request.Context(), principal)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(courses, ""))
}

// GetCourse returns one enrolled course
// @Summary Enrolled course details
// @Tags student
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} dto.APIResponse{data=models.Course} "Course retrieved successfully"
// @Failure 403 {object} dto.ErrorResponse "Not enrolled"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /student/courses/{id} [get]
func (c *DashboardController) GetCourse(ctx *gin.Context) {
	principal, ok := currentPrincipal(ctx)
	if !ok {
		return
	}
	courseID, ok := objectIDParam(ctx, "id", "course")
	if !ok {
		return
	}

	course, err := c.dashboardService.GetEnrolledCourse(ctx.Request.Context(), principal, courseID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(course, ""))
}

// GetAssignments lists assignments of the student's courses
// @Summary Student assignments
// @Description Published assignments of enrolled courses with the student's submission status
// @Tags student
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, submitted or graded"
// @Success 200 {object} dto.APIResponse{data=[]dto.StudentAssignment} "Assignments retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid status"
// @Router /student/assignments [get]
func (c *DashboardController) GetAssignments(ctx *gin.Context) {
	principal, ok := currentPrincipal(ctx)
	if !ok {
		return
	}

	assignments, err := c.dashboardService.ListAssignments(ctx.Request.Context(), principal, ctx.Query("status"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(assignments, ""))
}

// GetTransactions pages through the student's payments
// @Summary Student transactions
// @Tags student
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, success or failed"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.TransactionPage} "Transactions retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid filter"
// @Router /student/transactions [get]
func (c *DashboardController) GetTransactions(ctx *gin.Context) {
	principal, ok := currentPrincipal(ctx)
	if !ok {
		return
	}

	pageNum, limit := helpers.ParsePaginationParams(ctx)
	page, err := c.dashboardService.ListTransactions(ctx.Request.Context(), principal, ctx.Query("status"), pageNum, limit)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(page, ""))
}
