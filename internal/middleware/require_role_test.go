package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/auravtc/backend/internal/model"
)

func TestRequireRoleMiddleware_AllowedRole_CallsNext(t *testing.T) {
	mw := NewRequireRoleMiddleware(model.RoleManager, model.RoleAdmin)

	called := false
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/jobs", nil)
	ctx := ContextWithUser(req.Context(), &model.User{ID: "u1", Role: model.RoleManager})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req.WithContext(ctx))

	if !called {
		t.Error("handler should be called for allowed role")
	}
	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
}

func TestRequireRoleMiddleware_DisallowedRole_Returns403(t *testing.T) {
	mw := NewRequireRoleMiddleware(model.RoleManager, model.RoleAdmin)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/jobs", nil)
	ctx := ContextWithUser(req.Context(), &model.User{ID: "u2", Role: model.RoleDriver})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req.WithContext(ctx))

	if w.Result().StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusForbidden)
	}
}

// adminはdriverの上位ではなく別集合。driver限定の操作からは除外される。
func TestRequireRoleMiddleware_RolesAreSetsNotHierarchy(t *testing.T) {
	mw := NewRequireRoleMiddleware(model.RoleDriver)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/test", nil)
	ctx := ContextWithUser(req.Context(), &model.User{ID: "u3", Role: model.RoleAdmin})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req.WithContext(ctx))

	if w.Result().StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusForbidden)
	}
}

func TestRequireRoleMiddleware_NoUserInContext_Returns401(t *testing.T) {
	mw := NewRequireRoleMiddleware(model.RoleAdmin)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/test", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}
