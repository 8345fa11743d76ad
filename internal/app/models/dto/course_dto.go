package dto

// CreateCourseRequest creates a course
type CreateCourseRequest struct {
	Title       string   `json:"title" binding:"required,min=3,max=150" example:"Intro to Go"`
	Description string   `json:"description" binding:"required" example:"Learn Go from scratch"`
	Price       *float64 `json:"price" binding:"required,gte=0" example:"50"`
	Status      string   `json:"status" binding:"required,oneof=draft published archived" example:"published"`
	ImageURL    string   `json:"imageUrl" binding:"omitempty,url"`
}

// UpdateCourseRequest partially updates a course; absent fields keep their value
type UpdateCourseRequest struct {
	Title       *string  `json:"title" binding:"omitempty,min=3,max=150"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" binding:"omitempty,gte=0"`
	Status      *string  `json:"status" binding:"omitempty,oneof=draft published archived"`
	ImageURL    *string  `json:"imageUrl" binding:"omitempty"`
}

// ModuleRequest creates a module, or partially updates one when fields are nil
type ModuleRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=150" example:"Getting started"`
	Description *string `json:"description"`
	Order       *int    `json:"order" binding:"omitempty,min=1" example:"1"`
}

// LessonRequest creates a lesson, or partially updates one when fields are nil
type LessonRequest struct {
	Title    *string `json:"title" binding:"omitempty,min=1,max=150" example:"Variables"`
	Content  *string `json:"content"`
	Type     *string `json:"type" binding:"omitempty,oneof=video text quiz" example:"video"`
	VideoURL *string `json:"videoUrl" binding:"omitempty"`
	Duration *int    `json:"duration" binding:"omitempty,min=0" example:"15"`
	Order    *int    `json:"order" binding:"omitempty,min=1" example:"1"`
}
