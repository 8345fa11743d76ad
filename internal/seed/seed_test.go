package seed

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	appModels "github.com/skillspad/api/internal/app/models"
	appRepos "github.com/skillspad/api/internal/app/repositories"
	"github.com/skillspad/api/internal/pkg/apperrors"
	"github.com/skillspad/api/internal/pkg/auth"
)

type fakeUsers struct {
	appRepos.IUserRepository
	created   []*appModels.User
	existing  map[string]bool
	createErr error
}

func (f *fakeUsers) EmailExists(_ context.Context, email string) (bool, error) {
	return f.existing[email], nil
}

func (f *fakeUsers) Create(_ context.Context, user *appModels.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, user)
	return nil
}

func TestCreateDefaultData(t *testing.T) {
	users := &fakeUsers{existing: map[string]bool{}}

	err := CreateDefaultData(context.Background(), users, AdminAccount{Email: " Admin@Example.com", Password: "adminpass1"}, zerolog.Nop())
	if err != nil {
		t.Fatalf("CreateDefaultData() error = %v", err)
	}
	if len(users.created) != 1 {
		t.Fatalf("created %d users, want 1", len(users.created))
	}
	admin := users.created[0]
	if admin.Email != "admin@example.com" || admin.Role != appModels.RoleAdmin || admin.Status != appModels.UserStatusActive {
		t.Errorf("admin = %+v", admin)
	}
	if !auth.CheckPassword(admin.Password, "adminpass1") {
		t.Error("password not hashed from the configured value")
	}
}

func TestCreateDefaultData_Skips(t *testing.T) {
	tests := []struct {
		name  string
		users *fakeUsers
		admin AdminAccount
	}{
		{"not configured", &fakeUsers{}, AdminAccount{}},
		{"already present", &fakeUsers{existing: map[string]bool{"admin@example.com": true}}, AdminAccount{Email: "admin@example.com", Password: "adminpass1"}},
		{"lost a race", &fakeUsers{existing: map[string]bool{}, createErr: apperrors.ErrEmailAlreadyExists}, AdminAccount{Email: "admin@example.com", Password: "adminpass1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := CreateDefaultData(context.Background(), tt.users, tt.admin, zerolog.Nop()); err != nil {
				t.Fatalf("CreateDefaultData() error = %v", err)
			}
			if len(tt.users.created) != 0 {
				t.Errorf("created %d users, want 0", len(tt.users.created))
			}
		})
	}
}

func TestCreateDefaultData_ShortPassword(t *testing.T) {
	err := CreateDefaultData(context.Background(), &fakeUsers{}, AdminAccount{Email: "admin@example.com", Password: "short"}, zerolog.Nop())
	if !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Fatalf("error = %v, want validation error", err)
	}
}
