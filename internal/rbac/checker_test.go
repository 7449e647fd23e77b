package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCheckerDefaultPolicy(t *testing.T) {
	c := NewChecker(nil)

	cases := []struct {
		role, perm string
		want       bool
	}{
		{"EMPLOYEE", "progress:view", true},
		{"EMPLOYEE", "quiz:attempt", true},
		{"EMPLOYEE", "users:manage", false},
		{"EMPLOYEE", "attempts:reset", false},
		{"ADMIN", "users:manage", true},
		{"ADMIN", "quiz:attempt", true},
		{"", "progress:view", false},
		{"GUEST", "progress:view", false},
	}
	for _, tc := range cases {
		if got := c.Has(tc.role, tc.perm); got != tc.want {
			t.Errorf("Has(%q, %q) = %v, want %v", tc.role, tc.perm, got, tc.want)
		}
	}
}

func TestCheckerWildcardPrefix(t *testing.T) {
	c := NewChecker(map[string][]string{"AUDITOR": {"reports:*"}})
	if !c.Has("AUDITOR", "reports:view") {
		t.Fatalf("prefix wildcard should match")
	}
	if c.Has("AUDITOR", "users:manage") {
		t.Fatalf("prefix wildcard matched a foreign permission")
	}
	if !c.Any("AUDITOR", "users:manage", "reports:view") {
		t.Fatalf("Any should match one of the listed permissions")
	}
}

func TestRequireMiddleware(t *testing.T) {
	handler := Require("users:manage")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	// No role in context at all.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("anonymous request: code = %d", rec.Code)
	}

	// Employee lacks the admin permission.
	rec = httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	handler.ServeHTTP(rec, req.WithContext(WithRole(req.Context(), "EMPLOYEE")))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("employee request: code = %d", rec.Code)
	}

	// Admin passes.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/", nil)
	handler.ServeHTTP(rec, req.WithContext(WithRole(req.Context(), "ADMIN")))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("admin request: code = %d", rec.Code)
	}
}
