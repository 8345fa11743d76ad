package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CourseStatus is the publication state of a course
type CourseStatus string

const (
	CourseStatusDraft     CourseStatus = "draft"
	CourseStatusPublished CourseStatus = "published"
	CourseStatusArchived  CourseStatus = "archived"
)

// LessonType is the kind of content a lesson carries
type LessonType string

const (
	LessonTypeVideo LessonType = "video"
	LessonTypeText  LessonType = "text"
	LessonTypeQuiz  LessonType = "quiz"
)

// Lesson is embedded in a Module
type Lesson struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Title     string             `bson:"title" json:"title" example:"Variables"`
	Content   string             `bson:"content" json:"content"`
	Type      LessonType         `bson:"type" json:"type" example:"video"`
	VideoURL  string             `bson:"videoUrl,omitempty" json:"videoUrl,omitempty"`
	Duration  int                `bson:"duration" json:"duration" example:"15"`
	Order     int                `bson:"order" json:"order" example:"1"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Module is embedded in a Course
type Module struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Title       string             `bson:"title" json:"title" example:"Getting started"`
	Description string             `bson:"description" json:"description"`
	Order       int                `bson:"order" json:"order" example:"1"`
	Lessons     []Lesson           `bson:"lessons" json:"lessons"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Course is the catalog aggregate root. Modules and lessons live inside the
// document and are addressed by their stable ids, never by array position.
// Version guards module edits against lost updates.
type Course struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title" example:"Intro to Go"`
	Description string             `bson:"description" json:"description"`
	Price       float64            `bson:"price" json:"price" example:"50"`
	Status      CourseStatus       `bson:"status" json:"status" example:"published"`
	ImageURL    string             `bson:"imageUrl" json:"imageUrl"`
	Modules     []Module           `bson:"modules" json:"modules"`
	Version     int64              `bson:"version" json:"-"`
	CreatedBy   primitive.ObjectID `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Module returns the module with the given id, or nil
func (c *Course) Module(id primitive.ObjectID) *Module {
	for i := range c.Modules {
		if c.Modules[i].ID == id {
			return &c.Modules[i]
		}
	}
	return nil
}

// RemoveModule drops the module with the given id and reports whether it existed
func (c *Course) RemoveModule(id primitive.ObjectID) bool {
	for i := range c.Modules {
		if c.Modules[i].ID == id {
			c.Modules = append(c.Modules[:i], c.Modules[i+1:]...)
			return true
		}
	}
	return false
}

// NextModuleOrder is the display order given to a module added without one
func (c *Course) NextModuleOrder() int {
	return len(c.Modules) + 1
}

// LessonCount totals lessons across all modules
func (c *Course) LessonCount() int {
	total := 0
	for _, m := range c.Modules {
		total += len(m.Lessons)
	}
	return total
}

// Lesson returns the lesson with the given id, or nil
func (m *Module) Lesson(id primitive.ObjectID) *Lesson {
	for i := range m.Lessons {
		if m.Lessons[i].ID == id {
			return &m.Lessons[i]
		}
	}
	return nil
}

// RemoveLesson drops the lesson with the given id and reports whether it existed
func (m *Module) RemoveLesson(id primitive.ObjectID) bool {
	for i := range m.Lessons {
		if m.Lessons[i].ID == id {
			m.Lessons = append(m.Lessons[:i], m.Lessons[i+1:]...)
			return true
		}
	}
	return false
}

// NextLessonOrder is the display order given to a lesson added without one
func (m *Module) NextLessonOrder() int {
	return len(m.Lessons) + 1
}

// CourseSummary is a course with counts derived at read time
type CourseSummary struct {
	Course           `bson:",inline"`
	EnrolledStudents int64 `bson:"enrolledStudents" json:"enrolledStudents" example:"12"`
	ModuleCount      int   `bson:"moduleCount" json:"moduleCount" example:"4"`
	LessonCount      int   `bson:"lessonCount" json:"lessonCount" example:"18"`
}
