package dto

import (
	"time"

	"github.com/skillspad/api/internal/app/models"
)

// AttachmentRequest references a file already stored by the upload provider
type AttachmentRequest struct {
	URL      string `json:"url" binding:"required,url"`
	PublicID string `json:"publicId"`
	Name     string `json:"name"`
}

// CreateAssignmentRequest creates an assignment
type CreateAssignmentRequest struct {
	Title          string              `json:"title" binding:"required,min=3,max=100" example:"Build a CLI"`
	Description    string              `json:"description" binding:"max=1000"`
	Instructions   string              `json:"instructions"`
	CourseID       string              `json:"courseId" binding:"required,objectid"`
	ModuleID       string              `json:"moduleId" binding:"required,objectid"`
	DueDate        *time.Time          `json:"dueDate" binding:"required" example:"2025-07-01T00:00:00Z"`
	Points         *int                `json:"points" binding:"omitempty,min=0" example:"100"`
	SubmissionType string              `json:"submissionType" binding:"omitempty,oneof=text file both" example:"text"`
	Status         string              `json:"status" binding:"omitempty,oneof=draft published closed" example:"draft"`
	Attachments    []AttachmentRequest `json:"attachments" binding:"omitempty,dive"`
}

// UpdateAssignmentRequest partially updates an assignment. A non-nil
// Attachments replaces the whole list.
type UpdateAssignmentRequest struct {
	Title          *string              `json:"title" binding:"omitempty,min=3,max=100"`
	Description    *string              `json:"description" binding:"omitempty,max=1000"`
	Instructions   *string              `json:"instructions"`
	CourseID       *string              `json:"courseId" binding:"omitempty,objectid"`
	ModuleID       *string              `json:"moduleId" binding:"omitempty,objectid"`
	DueDate        *time.Time           `json:"dueDate"`
	Points         *int                 `json:"points" binding:"omitempty,min=0"`
	SubmissionType *string              `json:"submissionType" binding:"omitempty,oneof=text file both"`
	Status         *string              `json:"status" binding:"omitempty,oneof=draft published closed"`
	Attachments    *[]AttachmentRequest `json:"attachments"`
}

// AssignmentResponse is an assignment with the titles of its course and module
type AssignmentResponse struct {
	*models.Assignment
	CourseTitle string `json:"courseTitle,omitempty" example:"Intro to Go"`
	ModuleTitle string `json:"moduleTitle,omitempty" example:"Getting started"`
}

// ToAttachments converts request attachments to stored ones
func ToAttachments(in []AttachmentRequest) []models.Attachment {
	out := make([]models.Attachment, 0, len(in))
	for _, a := range in {
		out = append(out, models.Attachment{URL: a.URL, PublicID: a.PublicID, Name: a.Name})
	}
	return out
}
