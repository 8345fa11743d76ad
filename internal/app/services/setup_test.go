package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	appauth "github.com/skillspad/api/internal/app/auth"
	"github.com/skillspad/api/internal/app/models"
	"github.com/skillspad/api/internal/app/repositories"
	"github.com/skillspad/api/internal/pkg/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var testLogger = zerolog.Nop()

func newTestTokens() *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SecretKey:   "test-secret",
		Expiration:  7 * 24 * time.Hour,
		TokenIssuer: "test",
	})
}

// fixedClock returns a now func that can be moved forward by the test
func fixedClock(start time.Time) (func() time.Time, func(d time.Duration)) {
	current := start
	return func() time.Time { return current }, func(d time.Duration) { current = current.Add(d) }
}

func seedStudent(repo *memUserRepo, email string) *models.User {
	now := time.Now().UTC()
	u := &models.User{
		ID:              primitive.NewObjectID(),
		Email:           email,
		FirstName:       "Alice",
		LastName:        "Mensah",
		Country:         models.DefaultCountry,
		Role:            models.RoleStudent,
		Status:          models.UserStatusActive,
		EnrolledCourses: []primitive.ObjectID{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	_ = repo.Create(context.Background(), u)
	return u
}

func seedCourse(repo *memCourseRepo, title string, price float64) *models.Course {
	c := &models.Course{
		ID:        primitive.NewObjectID(),
		Title:     title,
		Price:     price,
		Status:    models.CourseStatusPublished,
		Modules:   []models.Module{},
		CreatedAt: time.Now().UTC(),
	}
	_ = repo.Create(context.Background(), c)
	return c
}

func principalOf(u *models.User) *appauth.Principal {
	return &appauth.Principal{UserID: u.ID, Role: u.Role, Email: u.Email, Country: u.Country}
}

func txFilter(u *models.User) repositories.TransactionFilter {
	return repositories.TransactionFilter{UserID: u.ID}
}
