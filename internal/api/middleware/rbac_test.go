package middleware

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/autodealer/showroom/internal/core/domain"
)

func TestRBAC_Allows(t *testing.T) {
	c, rec := newContext("")
	c.Set(principalKey, domain.Principal{ID: "a1", Role: domain.RoleAdmin})

	called := false
	handler := RBAC(domain.RoleAdmin, domain.RoleSuperadmin)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRBAC_NoHierarchy(t *testing.T) {
	c, _ := newContext("")
	c.Set(principalKey, domain.Principal{ID: "s1", Role: domain.RoleSuperadmin})

	err := RBAC(domain.RoleAdmin)(func(c echo.Context) error {
		t.Fatalf("superadmin must not pass an admin-only check")
		return nil
	})(c)
	if statusOf(err) != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}
}

func TestRBAC_WithoutPrincipal(t *testing.T) {
	c, _ := newContext("")
	err := RBAC(domain.RoleUser)(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})(c)
	if statusOf(err) != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}
