package repositories

import (
	"go.mongodb.org/mongo-driver/mongo"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository           *UserRepository
	CourseRepository         *CourseRepository
	AssignmentRepository     *AssignmentRepository
	TransactionRepository    *TransactionRepository
	PartialPaymentRepository *PartialPaymentRepository
}

// NewRepositories initializes all repositories
func NewRepositories(database *mongo.Database) *Repositories {
	return &Repositories{
		UserRepository:           NewUserRepository(database),
		CourseRepository:         NewCourseRepository(database),
		AssignmentRepository:     NewAssignmentRepository(database),
		TransactionRepository:    NewTransactionRepository(database),
		PartialPaymentRepository: NewPartialPaymentRepository(database),
	}
}
