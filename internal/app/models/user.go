package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentSummary is the denormalized outcome of the user's latest successful payment
type PaymentSummary struct {
	Status    string             `bson:"status" json:"status" example:"success"`
	CourseID  primitive.ObjectID `bson:"courseId,omitempty" json:"courseId,omitempty"`
	Reference string             `bson:"reference,omitempty" json:"reference,omitempty"`
	Amount    int64              `bson:"amount,omitempty" json:"amount,omitempty"`
	Currency  string             `bson:"currency,omitempty" json:"currency,omitempty"`
	PaidAt    *time.Time         `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
}

// User is stored in the `users` collection
type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id" example:"665f1c2e9d1a4b0012345678"`
	Email    string             `bson:"email" json:"email" example:"alice@example.com"`
	Password string             `bson:"password" json:"-"`

	FirstName     string `bson:"firstName" json:"firstName" example:"Alice"`
	LastName      string `bson:"lastName" json:"lastName" example:"Mensah"`
	Phone         string `bson:"phone,omitempty" json:"phone,omitempty"`
	Education     string `bson:"education,omitempty" json:"education,omitempty"`
	Experience    string `bson:"experience,omitempty" json:"experience,omitempty"`
	Motivation    string `bson:"motivation,omitempty" json:"motivation,omitempty"`
	HowHeard      string `bson:"howHeard,omitempty" json:"howHeard,omitempty"`
	StartDate     string `bson:"startDate,omitempty" json:"startDate,omitempty"`
	GithubProfile string `bson:"githubProfile,omitempty" json:"githubProfile,omitempty"`
	Country       string `bson:"country" json:"country" example:"GH"`

	Role            RoleType             `bson:"role" json:"role" example:"student"`
	Status          UserStatus           `bson:"status" json:"status" example:"active"`
	EnrolledCourses []primitive.ObjectID `bson:"enrolledCourses" json:"enrolledCourses"`
	Payment         *PaymentSummary      `bson:"payment,omitempty" json:"payment,omitempty"`

	ResetPasswordToken   string     `bson:"resetPasswordToken,omitempty" json:"-"`
	ResetPasswordExpires *time.Time `bson:"resetPasswordExpires,omitempty" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// FullName joins first and last name
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// IsActive reports whether the account may authenticate
func (u *User) IsActive() bool {
	return u.Status != UserStatusInactive
}

// IsEnrolled reports whether courseID is in the user's enrolled set
func (u *User) IsEnrolled(courseID primitive.ObjectID) bool {
	for _, id := range u.EnrolledCourses {
		if id == courseID {
			return true
		}
	}
	return false
}

// PartialPayment is read from the `partial_payments` collection, which is
// written by the instalment tooling outside this service.
type PartialPayment struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID   primitive.ObjectID `bson:"userId" json:"userId"`
	CourseID primitive.ObjectID `bson:"courseId,omitempty" json:"courseId,omitempty"`
	Status   string             `bson:"status" json:"status"`
}
