package dto

// UpdateStudentRequest is an admin edit of a student account
type UpdateStudentRequest struct {
	FirstName *string `json:"firstName" binding:"omitempty,min=1,max=100"`
	LastName  *string `json:"lastName" binding:"omitempty,min=1,max=100"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Password  *string `json:"password" binding:"omitempty,min=8"`
	Status    *string `json:"status" binding:"omitempty,oneof=active inactive"`
}

// StudentListQuery filters and orders the admin student listing
type StudentListQuery struct {
	Page      int    `form:"page"`
	Limit     int    `form:"limit"`
	Query     string `form:"q"`
	SortField string `form:"sortField"`
	SortOrder string `form:"sortOrder"`
}

// StudentPage is one page of students
type StudentPage struct {
	Students   []*UserResponse `json:"students"`
	Pagination PaginationInfo  `json:"pagination"`
}
