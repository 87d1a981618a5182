package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestHasRole(t *testing.T) {
	tests := []struct {
		have []string
		need []string
		want bool
	}{
		{[]string{"staff"}, []string{"staff"}, true},
		{[]string{"patient"}, []string{"staff"}, false},
		{[]string{"patient", "staff"}, []string{"staff"}, true},
		{[]string{"admin"}, []string{"staff"}, true},
		{nil, []string{"staff"}, false},
	}

	for _, tt := range tests {
		if got := HasRole(tt.have, tt.need...); got != tt.want {
			t.Errorf("HasRole(%v, %v) = %v, want %v", tt.have, tt.need, got, tt.want)
		}
	}
}

func TestRequireRole_Allowed(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithSubject(req.Context(), 1, []string{"staff"}))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := RequireRole("staff")(okHandler)(c)
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestRequireRole_Denied(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithSubject(req.Context(), 1, []string{"patient"}))
	c := e.NewContext(req, httptest.NewRecorder())

	expectStatus(t, RequireRole("staff")(okHandler)(c), http.StatusForbidden)
}

func TestRequireRole_NoRoles(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	expectStatus(t, RequireRole("staff")(okHandler)(c), http.StatusForbidden)
}

func TestRequireRole_AdminBypass(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithSubject(req.Context(), 1, []string{"admin"}))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := RequireRole("staff")(okHandler)(c); err != nil {
		t.Errorf("admin should bypass role check, got %v", err)
	}
}

func TestSubjectFromContext(t *testing.T) {
	if _, ok := SubjectFromContext(context.Background()); ok {
		t.Error("expected no subject on empty context")
	}
	ctx := WithSubject(context.Background(), 12, nil)
	id, ok := SubjectFromContext(ctx)
	if !ok || id != 12 {
		t.Errorf("expected (12, true), got (%d, %v)", id, ok)
	}
}
