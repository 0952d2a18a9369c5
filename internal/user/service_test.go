package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/auravtc/backend/internal/model"
)

// --- モック定義 ---

type mockUserRepository struct {
	findByIDFn      func(ctx context.Context, id string) (*model.User, error)
	findByEmailFn   func(ctx context.Context, email string) (*model.User, error)
	createFn        func(ctx context.Context, user *model.User) error
	updateProfileFn func(ctx context.Context, user *model.User) error
	touchFn         func(ctx context.Context, id string, at time.Time) error
	listActiveFn    func(ctx context.Context) ([]*model.User, error)
}

func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return nil, nil
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) UpdateProfile(ctx context.Context, user *model.User) error {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) TouchLastActive(ctx context.Context, id string, at time.Time) error {
	if m.touchFn != nil {
		return m.touchFn(ctx, id, at)
	}
	return nil
}

func (m *mockUserRepository) ListActive(ctx context.Context) ([]*model.User, error) {
	if m.listActiveFn != nil {
		return m.listActiveFn(ctx)
	}
	return nil, nil
}

type passthroughSanitizer struct{}

func (passthroughSanitizer) Sanitize(text string) string { return text }

func strPtr(s string) *string { return &s }

// --- テスト ---

func TestList_Manager_ReturnsActiveUsers(t *testing.T) {
	repo := &mockUserRepository{
		listActiveFn: func(ctx context.Context) ([]*model.User, error) {
			return []*model.User{
				{ID: "u1", Role: model.RoleDriver},
				{ID: "u2", Role: model.RoleManager},
			}, nil
		},
	}
	svc := NewService(repo, passthroughSanitizer{})

	users, err := svc.List(context.Background(), &model.User{ID: "m1", Role: model.RoleManager})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("len(users) = %d, want 2", len(users))
	}
}

func TestList_Driver_ReturnsForbidden(t *testing.T) {
	svc := NewService(&mockUserRepository{}, passthroughSanitizer{})

	_, err := svc.List(context.Background(), &model.User{ID: "d1", Role: model.RoleDriver})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeForbidden {
		t.Errorf("err = %v, want forbidden APIError", err)
	}
}

func TestGet_NotFound_ReturnsUserNotFound(t *testing.T) {
	svc := NewService(&mockUserRepository{}, passthroughSanitizer{})

	_, err := svc.Get(context.Background(), "missing")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUserNotFound {
		t.Errorf("err = %v, want user not found APIError", err)
	}
}

func TestUpdate_SelfNonRoleFields_Succeeds(t *testing.T) {
	var saved *model.User
	repo := &mockUserRepository{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: "d1", Name: "old", Role: model.RoleDriver}, nil
		},
		updateProfileFn: func(ctx context.Context, user *model.User) error {
			saved = user
			return nil
		},
	}
	svc := NewService(repo, passthroughSanitizer{})
	caller := &model.User{ID: "d1", Role: model.RoleDriver}

	updated, err := svc.Update(context.Background(), caller, "d1", UpdateInput{
		Name:         strPtr("New Name"),
		TruckersMPID: strPtr("12345"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Name != "New Name" {
		t.Errorf("Name = %q, want %q", updated.Name, "New Name")
	}
	if saved == nil || saved.TruckersMPID != "12345" {
		t.Errorf("saved = %+v, want TruckersMPID %q", saved, "12345")
	}
}

func TestUpdate_OtherUserByDriver_ReturnsForbidden(t *testing.T) {
	svc := NewService(&mockUserRepository{}, passthroughSanitizer{})
	caller := &model.User{ID: "d1", Role: model.RoleDriver}

	_, err := svc.Update(context.Background(), caller, "d2", UpdateInput{Name: strPtr("x")})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeForbidden {
		t.Errorf("err = %v, want forbidden APIError", err)
	}
}

func TestUpdate_RoleChangeByManager_ReturnsRoleChangeForbidden(t *testing.T) {
	repo := &mockUserRepository{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: "d1", Role: model.RoleDriver}, nil
		},
		updateProfileFn: func(ctx context.Context, user *model.User) error {
			t.Fatal("UpdateProfile should not be called")
			return nil
		},
	}
	svc := NewService(repo, passthroughSanitizer{})
	caller := &model.User{ID: "m1", Role: model.RoleManager}

	_, err := svc.Update(context.Background(), caller, "d1", UpdateInput{
		Role: strPtr("manager"),
	})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeRoleChangeForbidden {
		t.Errorf("err = %v, want role change forbidden APIError", err)
	}
}

func TestUpdate_RoleChangeByAdmin_Succeeds(t *testing.T) {
	var saved *model.User
	repo := &mockUserRepository{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: "d1", Role: model.RoleDriver}, nil
		},
		updateProfileFn: func(ctx context.Context, user *model.User) error {
			saved = user
			return nil
		},
	}
	svc := NewService(repo, passthroughSanitizer{})
	caller := &model.User{ID: "a1", Role: model.RoleAdmin}

	updated, err := svc.Update(context.Background(), caller, "d1", UpdateInput{
		Role: strPtr("manager"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Role != model.RoleManager {
		t.Errorf("Role = %q, want %q", updated.Role, model.RoleManager)
	}
	if saved == nil || saved.Role != model.RoleManager {
		t.Errorf("saved role = %+v, want manager", saved)
	}
}

func TestUpdate_InvalidRoleValue_ReturnsValidationError(t *testing.T) {
	repo := &mockUserRepository{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: "d1", Role: model.RoleDriver}, nil
		},
	}
	svc := NewService(repo, passthroughSanitizer{})
	caller := &model.User{ID: "a1", Role: model.RoleAdmin}

	_, err := svc.Update(context.Background(), caller, "d1", UpdateInput{
		Role: strPtr("superuser"),
	})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeValidationFailed {
		t.Errorf("err = %v, want validation APIError", err)
	}
}

func TestUpdate_TargetNotFound_ReturnsUserNotFound(t *testing.T) {
	svc := NewService(&mockUserRepository{}, passthroughSanitizer{})
	caller := &model.User{ID: "a1", Role: model.RoleAdmin}

	_, err := svc.Update(context.Background(), caller, "missing", UpdateInput{Name: strPtr("x")})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUserNotFound {
		t.Errorf("err = %v, want user not found APIError", err)
	}
}
