package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"kotoba-tutor/internal/auth"
)

var testSecret = []byte("middleware-test-secret")

func TestAuth_ValidToken(t *testing.T) {
	token, err := auth.IssueToken("user-123", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken error: %v", err)
	}

	var gotUserID string
	nextCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		gotUserID, _ = GetUserID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	handler := Auth(testSecret)(next)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if !nextCalled {
		t.Error("next handler should be called")
	}
	if gotUserID != "user-123" {
		t.Errorf("expected user-123 in context, got %q", gotUserID)
	}
}

func TestAuth_NoCookie(t *testing.T) {
	nextCalled := false
	handler := Auth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", w.Code)
	}
	if nextCalled {
		t.Error("next handler should not be called")
	}
	if !strings.Contains(w.Body.String(), "Not authenticated") {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

func TestAuth_InvalidToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong_secret", mustIssue(t, "user-1", []byte("other-secret"), time.Hour)},
		{"expired", mustIssue(t, "user-1", testSecret, -time.Minute)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nextCalled := false
			handler := Auth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
			}))

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: tt.token})
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("expected status 401, got %d", w.Code)
			}
			if nextCalled {
				t.Error("next handler should not be called")
			}
		})
	}
}

func TestOptionalAuth_ValidToken(t *testing.T) {
	token := mustIssue(t, "user-123", testSecret, time.Hour)

	var gotUserID string
	handler := OptionalAuth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = GetUserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/lessons", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if gotUserID != "user-123" {
		t.Errorf("expected user-123 in context, got %q", gotUserID)
	}
}

func TestOptionalAuth_AnonymousPassesThrough(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*http.Request)
	}{
		{"no cookie", func(r *http.Request) {}},
		{"garbage token", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: auth.CookieName, Value: "not-a-token"})
		}},
		{"expired token", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: auth.CookieName, Value: mustIssue(t, "user-1", testSecret, -time.Minute)})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nextCalled := false
			handler := OptionalAuth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				if _, ok := GetUserID(r.Context()); ok {
					t.Error("anonymous request must not carry a user ID")
				}
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/lessons", nil)
			tt.setup(req)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Errorf("expected status 200, got %d", w.Code)
			}
			if !nextCalled {
				t.Error("next handler should be called")
			}
		})
	}
}

func TestGetUserID_Absent(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := GetUserID(req.Context()); ok {
		t.Error("expected no user ID in fresh context")
	}
}

func mustIssue(t *testing.T, userID string, secret []byte, ttl time.Duration) string {
	t.Helper()
	tok, err := auth.IssueToken(userID, secret, ttl)
	if err != nil {
		t.Fatalf("IssueToken error: %v", err)
	}
	return tok
}
