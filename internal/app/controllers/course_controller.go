package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/skillspad/api/internal/app/models/dto"
	"github.com/skillspad/api/internal/middleware"
)

// CourseController handles courses and their modules and lessons
type CourseController struct {
	courseService CourseService
	logger        zerolog.Logger
}

// NewCourseController creates a new CourseController
func NewCourseController(courseService CourseService, logger zerolog.Logger) *CourseController {
	return &CourseController{
		courseService: courseService,
		logger:        logger,
	}
}

// ListCourses lists the catalog
// @Summary List courses
// @Description Lists all courses with module and lesson counts
// @Tags courses
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]models.CourseSummary} "Courses retrieved successfully"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	courses, err := c.courseService.ListCourses(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(courses, ""))
}

// GetCourse returns one course with its modules and lessons in order
// @Summary Get course details
// @Tags courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} dto.APIResponse{data=models.Course} "Course retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid course ID format"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /courses/{id} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	id, ok := objectIDParam(ctx, "id", "course")
	if !ok {
		return
	}

	course, err := c.courseService.GetCourse(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(course, ""))
}

// CreateCourse handles course creation
// @Summary Create a course
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCourseRequest true "Course information"
// @Success 201 {object} dto.APIResponse{data=models.Course} "Course created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 409 {object} dto.ErrorResponse "Course title already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	principal, ok := currentPrincipal(ctx)
	if !ok {
		return
	}
	var req dto.CreateCourseRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	course, err := c.courseService.CreateCourse(ctx.Request.Context(), &req, principal.UserID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Str("courseId", course.ID.Hex()).Str("by", principal.UserID.Hex()).Msg("Course created")
	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(course, "Course created successfully"))
}

// UpdateCourse partially updates a course
// @Summary Update a course
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param request body dto.UpdateCourseRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.Course} "Course updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Failure 409 {object} dto.ErrorResponse "Course title already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /courses/{id} [put]
func (c *CourseController) UpdateCourse(ctx *gin.Context) {
	id, ok := objectIDParam(ctx, "id", "course")
	if !ok {
		return
	}
	var req dto.UpdateCourseRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	course, err := c.courseService.UpdateCourse(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(course, "Course updated successfully"))
}

// DeleteCourse removes a course
// @Summary Delete a course
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} dto.APIResponse "Course deleted successfully"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /courses/{id} [delete]
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	id, ok := objectIDParam(ctx, "id", "course")
	if !ok {
		return
	}

	if err := c.courseService.DeleteCourse(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Str("courseId", id.Hex()).Msg("Course deleted")
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(nil, "Course deleted successfully"))
}

// GetModule returns one module of a course
// @Summary Get a module
// @Tags modules
// @Produce json
// @Param id path string true "Course ID"
// @Param moduleId path string true "Module ID"
// @Success 200 {object} dto.APIResponse{data=models.Module} "Module retrieved successfully"
// @Failure 404 {object} dto.ErrorResponse "Course or module not found"
// @Router /courses/{id}/modules/{moduleId} [get]
func (c *CourseController) GetModule(ctx *gin.Context) {
	courseID, ok := objectIDParam(ctx, "id", "course")
	if !ok {
		return
	}
	moduleID, ok := objectIDParam(ctx, "moduleId", "module")
	if !ok {
		return
	}

	module, err := c.courseService.GetModule(ctx.Request.Context(), courseID, moduleID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(module, ""))
}

// AddModule appends a module to a course
// @Summary Add a module
// @Description Adds a module to a course. Without an explicit order the module goes last.
// @Tags modules
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param request body dto.ModuleRequest true "Module information"
// @Success 201 {object} dto.APIResponse{data=models.Module} "Module added successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Failure 409 {object} dto.ErrorResponse "Concurrent modification"
// @Router /courses/{id}/modules [post]
func (c *CourseController) AddModule(ctx *gin.Context) {
	courseID, ok := objectIDParam(ctx, "id", "course")
	if !ok {
		return
	}
	var req dto.ModuleRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	module, err := c.courseService.AddModule(ctx.Request.Context(), courseID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(module, "Module added successfully"))
}

// UpdateModule partially updates a module
// @Summary Update a module
// @Tags modules
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param moduleId path string true "Module ID"
// @Param request body dto.ModuleRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.Module} "Module updated successfully"
// @Failure 404 {object} dto.ErrorResponse "Course or module not found"
// @Router /courses/{id}/modules/{moduleId} [put]
func (c *CourseController) UpdateModule(ctx *gin.Context) {
	courseID, ok := objectIDParam(ctx, "id", "course")
	if !ok {
		return
	}
	moduleID, ok := objectIDParam(ctx, "moduleId", "module")
	if !ok {
		return
	}
	var req dto.ModuleRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	module, err := c.courseService.UpdateModule(ctx.Request.Context(), courseID, moduleID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(module, "Module updated successfully"))
}

// DeleteModule removes a module and its lessons
// @Summary Delete a module
// @Tags modules
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param moduleId path string true "Module ID"
// @Success 200 {object} dto.APIResponse "Module deleted successfully"
// @Failure 404 {object} dto.ErrorResponse "Course or module not found"
// @Router /courses/{id}/modules/{moduleId} [delete]
func (c *CourseController) DeleteModule(ctx *gin.Context) {
	courseID, ok := objectIDParam(ctx, "id", "course")
	if !ok {
		return
	}
	moduleID, ok := objectIDParam(ctx, "moduleId", "module")
	if !ok {
		return
	}

	if err := c.courseService.DeleteModule(ctx.Request.Context(), courseID, moduleID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(nil, "Module deleted successfully"))
}

// AddLesson appends a lesson to a module
// @Summary Add a lesson
// @Tags lessons
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param moduleId path string true "Module ID"
// @Param request body dto.LessonRequest true "Lesson information"
// @Success 201 {object} dto.APIResponse{data=models.Lesson} "Lesson added successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Course or module not found"
// @Router /courses/{id}/modules/{moduleId}/lessons [post]
func (c *CourseController) AddLesson(ctx *gin.Context) {
	courseID, ok := objectIDParam(ctx, "id", "course")
	if !ok {
		return
	}
	moduleID, ok := objectIDParam(ctx, "moduleId", "module")
	if !ok {
		return
	}
	var req dto.LessonRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	lesson, err := c.courseService.AddLesson(ctx.Request.Context(), courseID, moduleID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(lesson, "Lesson added successfully"))
}

// UpdateLesson partially updates a lesson
// @Summary Update a lesson
// @Tags lessons
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param moduleId path string true "Module ID"
// @Param lessonId path string true "Lesson ID"
// @Param request body dto.LessonRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.Lesson} "Lesson updated successfully"
// @Failure 404 {object} dto.ErrorResponse "Course, module or lesson not found"
// @Router /courses/{id}/modules/{moduleId}/lessons/{lessonId} [put]
func (c *CourseController) UpdateLesson(ctx *gin.Context) {
	courseID, ok := objectIDParam(ctx, "id", "course")
	if !ok {
		return
	}
	moduleID, ok := objectIDParam(ctx, "moduleId", "module")
	if !ok {
		return
	}
	lessonID, ok := objectIDParam(ctx, "lessonId", "lesson")
	if !ok {
		return
	}
	var req dto.LessonRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	lesson, err := c.courseService.UpdateLesson(ctx.Request.Context(), courseID, moduleID, lessonID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(lesson, "Lesson updated successfully"))
}

// DeleteLesson removes a lesson
// @Summary Delete a lesson
// @Tags lessons
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param moduleId path string true "Module ID"
// @Param lessonId path string true "Lesson ID"
// @Success 200 {object} dto.APIResponse "Lesson deleted successfully"
// @Failure 404 {object} dto.ErrorResponse "Course, module or lesson not found"
// @Router /courses/{id}/modules/{moduleId}/lessons/{lessonId} [delete]
func (c *CourseController) DeleteLesson(ctx *gin.Context) {
	courseID, ok := objectIDParam(ctx, "id", "course")
	if !ok {
		return
	}
	moduleID, ok := objectIDParam(ctx, "moduleId", "module")
	if !ok {
		return
	}
	lessonID, ok := objectIDParam(ctx, "lessonId", "lesson")
	if !ok {
		return
	}

	if err := c.courseService.DeleteLesson(ctx.Request.Context(), courseID, moduleID, lessonID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(nil, "Lesson deleted successfully"))
}
