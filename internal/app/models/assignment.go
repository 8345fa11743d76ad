package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AssignmentStatus is the lifecycle state of an assignment
type AssignmentStatus string

const (
	AssignmentStatusDraft     AssignmentStatus = "draft"
	AssignmentStatusPublished AssignmentStatus = "published"
	AssignmentStatusClosed    AssignmentStatus = "closed"
)

// Submission types accepted by an assignment
const (
	SubmissionTypeText = "text"
	SubmissionTypeFile = "file"
	SubmissionTypeBoth = "both"
)

// Per-student submission state shown on the dashboard
const (
	SubmissionStatusPending   = "pending"
	SubmissionStatusSubmitted = "submitted"
	SubmissionStatusGraded    = "graded"
)

// DefaultAssignmentPoints is used when an assignment is created without points
const DefaultAssignmentPoints = 100

// Attachment is a file held by the upload provider
type Attachment struct {
	URL      string `bson:"url" json:"url" example:"https://res.cloudinary.com/demo/raw/upload/v1/assignments/brief.pdf"`
	PublicID string `bson:"publicId" json:"publicId" example:"assignments/brief"`
	Name     string `bson:"name,omitempty" json:"name,omitempty"`
}

// Key identifies an attachment by provider id, falling back to its URL
func (a Attachment) Key() string {
	if a.PublicID != "" {
		return a.PublicID
	}
	return a.URL
}

// Submission records one student's hand-in
type Submission struct {
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	SubmittedAt time.Time          `bson:"submittedAt" json:"submittedAt"`
	Graded      bool               `bson:"graded" json:"graded"`
	Grade       *float64           `bson:"grade,omitempty" json:"grade,omitempty"`
}

// Assignment is stored in the `assignments` collection
type Assignment struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title          string             `bson:"title" json:"title" example:"Build a CLI"`
	Description    string             `bson:"description" json:"description"`
	Instructions   string             `bson:"instructions" json:"instructions"`
	CourseID       primitive.ObjectID `bson:"courseId" json:"courseId"`
	ModuleID       primitive.ObjectID `bson:"moduleId" json:"moduleId"`
	DueDate        time.Time          `bson:"dueDate" json:"dueDate"`
	Points         int                `bson:"points" json:"points" example:"100"`
	SubmissionType string             `bson:"submissionType" json:"submissionType" example:"text"`
	Attachments    []Attachment       `bson:"attachments" json:"attachments"`
	Submissions    int                `bson:"submissions" json:"submissions" example:"0"`
	SubmissionList []Submission       `bson:"submissionList,omitempty" json:"-"`
	Status         AssignmentStatus   `bson:"status" json:"status" example:"draft"`
	CreatedBy      primitive.ObjectID `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// SubmissionStatusFor computes pending, submitted or graded for one student
func (a *Assignment) SubmissionStatusFor(userID primitive.ObjectID) string {
	for _, s := range a.SubmissionList {
		if s.UserID != userID {
			continue
		}
		if s.Graded {
			return SubmissionStatusGraded
		}
		return SubmissionStatusSubmitted
	}
	return SubmissionStatusPending
}
