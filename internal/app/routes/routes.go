package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/skillspad/api/internal/app/controllers"
	"github.com/skillspad/api/internal/app/models"
	"github.com/skillspad/api/internal/middleware"
)

// Controllers groups the handlers mounted by SetupRouter
type Controllers struct {
	Auth       *controllers.AuthController
	Course     *controllers.CourseController
	Assignment *controllers.AssignmentController
	Payment    *controllers.PaymentController
	Dashboard  *controllers.DashboardController
	Student    *controllers.StudentController
	Upload     *controllers.UploadController
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c Controllers, authMiddleware *middleware.AuthMiddleware) {
	router.NoRoute(controllers.NotFound)
	router.GET("/health", controllers.Health)

	api := router.Group("/api")
	api.GET("/health", controllers.Health)

	// --- Public routes ---
	auth := api.Group("/auth")
	{
		auth.POST("/register", c.Auth.Register)
		auth.POST("/login", c.Auth.Login)
		auth.POST("/logout", c.Auth.Logout)
		auth.POST("/forgot-password", c.Auth.ForgotPassword)
		auth.POST("/reset-password", c.Auth.ResetPassword)
	}

	courses := api.Group("/courses")
	{
		courses.GET("", c.Course.ListCourses)
		courses.GET("/:id", c.Course.GetCourse)
		courses.GET("/:id/modules/:moduleId", c.Course.GetModule)
	}

	// --- Authenticated routes ---
	authenticated := api.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	authenticated.GET("/auth/me", c.Auth.Me)

	payments := authenticated.Group("/payments")
	{
		payments.POST("/initialize", c.Payment.InitializePayment)
		payments.GET("/verify", c.Payment.VerifyPayment)
	}

	student := authenticated.Group("/student")
	{
		student.GET("/dashboard", c.Dashboard.GetDashboard)
		student.GET("/courses", c.Dashboard.GetCourses)
		student.GET("/courses/:id", c.Dashboard.GetCourse)
		student.GET("/assignments", c.Dashboard.GetAssignments)
		student.GET("/transactions", c.Dashboard.GetTransactions)
	}

	// Course content is managed by staff
	staff := authenticated.Group("")
	staff.Use(authMiddleware.RoleRequired(models.RoleAdmin, models.RoleInstructor))
	{
		staff.POST("/courses", c.Course.CreateCourse)
		staff.PUT("/courses/:id", c.Course.UpdateCourse)
		staff.DELETE("/courses/:id", c.Course.DeleteCourse)
		staff.POST("/courses/:id/modules", c.Course.AddModule)
		staff.PUT("/courses/:id/modules/:moduleId", c.Course.UpdateModule)
		staff.DELETE("/courses/:id/modules/:moduleId", c.Course.DeleteModule)
		staff.POST("/courses/:id/modules/:moduleId/lessons", c.Course.AddLesson)
		staff.PUT("/courses/:id/modules/:moduleId/lessons/:lessonId", c.Course.UpdateLesson)
		staff.DELETE("/courses/:id/modules/:moduleId/lessons/:lessonId", c.Course.DeleteLesson)

		staff.GET("/assignments", c.Assignment.ListAssignments)
		staff.GET("/assignments/:id", c.Assignment.GetAssignment)
		staff.POST("/assignments", c.Assignment.CreateAssignment)
		staff.PUT("/assignments/:id", c.Assignment.UpdateAssignment)
		staff.DELETE("/assignments/:id", c.Assignment.DeleteAssignment)
		// Provider public ids include their folder, so the rest of the path is the id
		staff.DELETE("/assignments/attachments/*publicId", c.Assignment.DeleteAttachment)

		staff.POST("/uploads", c.Upload.Upload)
	}

	admin := authenticated.Group("/students")
	admin.Use(authMiddleware.RoleRequired(models.RoleAdmin))
	{
		admin.GET("", c.Student.ListStudents)
		admin.GET("/:id", c.Student.GetStudent)
		admin.PUT("/:id", c.Student.UpdateStudent)
		admin.DELETE("/:id", c.Student.DeactivateStudent)
	}
}
