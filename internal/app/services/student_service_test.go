package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/skillspad/api/internal/app/models"
	"github.com/skillspad/api/internal/app/models/dto"
	"github.com/skillspad/api/internal/pkg/apperrors"
	"github.com/skillspad/api/internal/pkg/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newStudentFixture() (*memUserRepo, *StudentService) {
	repo := newMemUserRepo()
	return repo, NewStudentService(repo, testLogger)
}

func TestListStudents(t *testing.T) {
	repo, svc := newStudentFixture()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, email := range []string{"carol@example.com", "alice@example.com", "bob@example.com"} {
		u := seedStudent(repo, email)
		u.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		_ = repo.UpdateAccount(context.Background(), u)
	}
	admin := seedStudent(repo, "admin@example.com")
	admin.Role = models.RoleAdmin
	_ = repo.UpdateAccount(context.Background(), admin)

	page, err := svc.ListStudents(context.Background(), &dto.StudentListQuery{})
	if err != nil {
		t.Fatalf("ListStudents() error = %v", err)
	}
	if page.Pagination.TotalItems != 3 {
		t.Fatalf("TotalItems = %d, want 3 students", page.Pagination.TotalItems)
	}
	// Newest first by default
	if page.Students[0].Email != "bob@example.com" {
		t.Errorf("first student = %q, want the newest", page.Students[0].Email)
	}

	asc, err := svc.ListStudents(context.Background(), &dto.StudentListQuery{SortField: "email", SortOrder: "asc", Limit: 2})
	if err != nil {
		t.Fatalf("ListStudents() error = %v", err)
	}
	if len(asc.Students) != 2 || asc.Students[0].Email != "alice@example.com" || asc.Pagination.TotalPages != 2 {
		t.Errorf("ascending page = %+v", asc)
	}
}

func TestListStudents_InvalidSort(t *testing.T) {
	_, svc := newStudentFixture()
	tests := []struct {
		name  string
		query *dto.StudentListQuery
	}{
		{"unknown field", &dto.StudentListQuery{SortField: "password"}},
		{"unknown order", &dto.StudentListQuery{SortOrder: "sideways"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ListStudents(context.Background(), tt.query)
			if !errors.Is(err, apperrors.ErrValidationFailed) {
				t.Fatalf("error = %v, want validation error", err)
			}
		})
	}
}

func TestGetStudent_RejectsStaff(t *testing.T) {
	repo, svc := newStudentFixture()
	admin := seedStudent(repo, "admin@example.com")
	admin.Role = models.RoleAdmin
	_ = repo.UpdateAccount(context.Background(), admin)

	if _, err := svc.GetStudent(context.Background(), admin.ID); !errors.Is(err, ErrStudentNotFound) {
		t.Errorf("error = %v, want ErrStudentNotFound", err)
	}
	if _, err := svc.GetStudent(context.Background(), primitive.NewObjectID()); !errors.Is(err, ErrStudentNotFound) {
		t.Errorf("error = %v, want ErrStudentNotFound", err)
	}
}

func TestUpdateStudent(t *testing.T) {
	repo, svc := newStudentFixture()
	student := seedStudent(repo, "alice@example.com")
	seedStudent(repo, "bob@example.com")

	updated, err := svc.UpdateStudent(context.Background(), student.ID, &dto.UpdateStudentRequest{
		FirstName: strPtr("Alicia"),
		Email:     strPtr("Alicia@Example.com"),
		Password:  strPtr("n3wpassword"),
	})
	if err != nil {
		t.Fatalf("UpdateStudent() error = %v", err)
	}
	if updated.FirstName != "Alicia" || updated.Email != "alicia@example.com" {
		t.Errorf("UpdateStudent() = %+v", updated)
	}
	stored, _ := repo.GetByID(context.Background(), student.ID)
	if !auth.CheckPassword(stored.Password, "n3wpassword") {
		t.Error("password was not re-hashed")
	}

	_, err = svc.UpdateStudent(context.Background(), student.ID, &dto.UpdateStudentRequest{Email: strPtr("bob@example.com")})
	if !errors.Is(err, apperrors.ErrEmailAlreadyExists) {
		t.Errorf("error = %v, want ErrEmailAlreadyExists", err)
	}
}

func TestDeactivateStudent(t *testing.T) {
	repo, svc := newStudentFixture()
	student := seedStudent(repo, "alice@example.com")

	if err := svc.DeactivateStudent(context.Background(), student.ID); err != nil {
		t.Fatalf("DeactivateStudent() error = %v", err)
	}
	stored, err := repo.GetByID(context.Background(), student.ID)
	if err != nil {
		t.Fatalf("student should still exist: %v", err)
	}
	if stored.Status != models.UserStatusInactive {
		t.Errorf("Status = %q, want inactive", stored.Status)
	}
	// Deactivating twice is harmless
	if err := svc.DeactivateStudent(context.Background(), student.ID); err != nil {
		t.Errorf("second DeactivateStudent() error = %v", err)
	}
}
