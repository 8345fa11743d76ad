package dto

import (
	"github.com/skillspad/api/internal/app/models"
)

// DashboardResponse aggregates everything the student home page shows
type DashboardResponse struct {
	User                *models.User          `json:"user"`
	EnrolledCourses     []*models.Course      `json:"enrolledCourses"`
	UpcomingAssignments []*models.Assignment  `json:"upcomingAssignments"`
	RecentTransactions  []*models.Transaction `json:"recentTransactions"`
}

// StudentAssignment is an assignment annotated with the caller's submission state
type StudentAssignment struct {
	*models.Assignment
	CourseTitle      string `json:"courseTitle,omitempty"`
	SubmissionStatus string `json:"submissionStatus" example:"pending"`
}

// TransactionPage is one page of a student's payment history
type TransactionPage struct {
	Transactions []*models.Transaction `json:"transactions"`
	Pagination   PaginationInfo        `json:"pagination"`
}
