package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func requestWithRoles(roles ...string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := context.WithValue(req.Context(), UserRolesKey, roles)
	req = req.WithContext(ctx)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name      string
		userRoles []string
		required  []string
		allowed   bool
	}{
		{"exact match", []string{"secretaria"}, []string{"secretaria"}, true},
		{"admin passes everything", []string{"admin"}, []string{"jefe_some"}, true},
		{"one of several", []string{"tens"}, []string{"secretaria", "tens"}, true},
		{"no match", []string{"tens"}, []string{"secretaria"}, false},
		{"no roles", nil, []string{"secretaria"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := requestWithRoles(tt.userRoles...)
			called := false
			err := RequireRole(tt.required...)(func(c echo.Context) error {
				called = true
				return nil
			})(c)

			if tt.allowed {
				if err != nil || !called {
					t.Fatalf("expected handler to run, err=%v called=%v", err, called)
				}
				return
			}
			httpErr, ok := err.(*echo.HTTPError)
			if !ok || httpErr.Code != http.StatusForbidden {
				t.Fatalf("expected 403, got %v", err)
			}
		})
	}
}
