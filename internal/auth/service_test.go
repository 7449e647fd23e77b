package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/traingate/traingate/internal/rbac"
)

func TestIssueAndParseRoundTrip(t *testing.T) {
	a := NewAuthService("test-secret", time.Hour)
	tok, err := a.IssueJWT("user-1", "EMPLOYEE")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	c, err := a.Parse(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Sub != "user-1" || c.Role != "EMPLOYEE" {
		t.Fatalf("claims = %+v", c)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	tok, err := NewAuthService("secret-a", time.Hour).IssueJWT("user-1", "ADMIN")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := NewAuthService("secret-b", time.Hour).Parse(tok); err == nil {
		t.Fatalf("token verified under a different secret")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	a := &AuthService{hmac: []byte("test-secret"), ttl: -time.Hour}
	tok, err := a.IssueJWT("user-1", "EMPLOYEE")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := a.Parse(tok); err == nil {
		t.Fatalf("expired token accepted")
	}
}

func TestJWTMiddleware(t *testing.T) {
	a := NewAuthService("test-secret", time.Hour)
	var gotSub, gotRole string
	handler := JWTMiddleware(a)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSub = SubjectFromContext(r.Context())
		gotRole = rbac.RoleFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no header: code = %d", rec.Code)
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: code = %d", rec.Code)
	}

	tok, err := a.IssueJWT("user-1", "ADMIN")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("valid token: code = %d", rec.Code)
	}
	if gotSub != "user-1" || gotRole != "ADMIN" {
		t.Fatalf("context = %q/%q", gotSub, gotRole)
	}
}
