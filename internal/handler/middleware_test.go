package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"ai-doctor-helper/internal/domain"
)

func passthroughHandler(sawUser *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := GetUserFromContext(r)
		*sawUser = ok
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddleware_RejectsMissingOrBadHeader(t *testing.T) {
	m := NewAuthMiddleware(&mockAuthService{user: &domain.SupabaseUser{ID: "user-1"}}, &testLogger{})

	cases := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"wrong scheme", "Basic abc123"},
		{"empty token", "Bearer "},
		{"no token", "Bearer"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var sawUser bool
			req := httptest.NewRequest("GET", "/api/v1/usage/stats", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			m.Middleware(passthroughHandler(&sawUser)).ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
			if sawUser {
				t.Fatalf("expected handler not to run")
			}
		})
	}
}

func TestMiddleware_RejectsInvalidToken(t *testing.T) {
	m := NewAuthMiddleware(&mockAuthService{validateErr: domain.ErrInvalidToken}, &testLogger{})

	req := httptest.NewRequest("GET", "/api/v1/usage/stats", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	rec := httptest.NewRecorder()
	var sawUser bool
	m.Middleware(passthroughHandler(&sawUser)).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestMiddleware_AttachesUser(t *testing.T) {
	m := NewAuthMiddleware(&mockAuthService{user: &domain.SupabaseUser{ID: "user-1"}}, &testLogger{})

	req := httptest.NewRequest("GET", "/api/v1/usage/stats", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	var sawUser bool
	m.Middleware(passthroughHandler(&sawUser)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !sawUser {
		t.Fatalf("expected user in handler context")
	}
}

func TestMiddleware_RejectsDisabledAccount(t *testing.T) {
	m := NewAuthMiddleware(&mockAuthService{user: &domain.SupabaseUser{ID: "user-1"}, disabled: true}, &testLogger{})

	req := httptest.NewRequest("GET", "/api/v1/usage/stats", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	var sawUser bool
	m.Middleware(passthroughHandler(&sawUser)).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for disabled account, got %d", rec.Code)
	}
}

func TestMiddleware_StatusCheckFailureIsAdvisory(t *testing.T) {
	m := NewAuthMiddleware(&mockAuthService{
		user:        &domain.SupabaseUser{ID: "user-1"},
		disabledErr: errors.New("profiles table down"),
	}, &testLogger{})

	req := httptest.NewRequest("GET", "/api/v1/usage/stats", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	var sawUser bool
	m.Middleware(passthroughHandler(&sawUser)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected broken status check to let the request through, got %d", rec.Code)
	}
}

func TestOptional_AnonymousPassesThrough(t *testing.T) {
	m := NewAuthMiddleware(&mockAuthService{user: &domain.SupabaseUser{ID: "user-1"}}, &testLogger{})

	rec := httptest.NewRecorder()
	var sawUser bool
	m.Optional(passthroughHandler(&sawUser)).ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/chat", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if sawUser {
		t.Fatalf("expected no user in context for anonymous request")
	}
}

func TestOptional_InvalidTokenIsIgnored(t *testing.T) {
	m := NewAuthMiddleware(&mockAuthService{validateErr: domain.ErrInvalidToken}, &testLogger{})

	req := httptest.NewRequest("POST", "/api/v1/chat", nil)
	req.Header.Set("Authorization", "Bearer expired-token")
	rec := httptest.NewRecorder()
	var sawUser bool
	m.Optional(passthroughHandler(&sawUser)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected request to proceed anonymously, got %d", rec.Code)
	}
	if sawUser {
		t.Fatalf("expected no user attached for invalid token")
	}
}

func TestOptional_ValidTokenAttachesUser(t *testing.T) {
	m := NewAuthMiddleware(&mockAuthService{user: &domain.SupabaseUser{ID: "user-1"}}, &testLogger{})

	req := httptest.NewRequest("POST", "/api/v1/chat", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	var sawUser bool
	m.Optional(passthroughHandler(&sawUser)).ServeHTTP(rec, req)

	if !sawUser {
		t.Fatalf("expected user in context")
	}
}

func TestOptional_RejectsDisabledAccount(t *testing.T) {
	m := NewAuthMiddleware(&mockAuthService{user: &domain.SupabaseUser{ID: "user-1"}, disabled: true}, &testLogger{})

	req := httptest.NewRequest("POST", "/api/v1/chat", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	var sawUser bool
	m.Optional(passthroughHandler(&sawUser)).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for disabled account, got %d", rec.Code)
	}
}
