package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStaticAuthorizer(t *testing.T) {
	ctx := context.Background()

	open := NewStaticAuthorizer("")
	if _, err := open.Authorize(ctx, "", "GET /api/users"); err != nil {
		t.Fatalf("empty key should disable auth: %v", err)
	}

	locked := NewStaticAuthorizer("sk_lifelog_test")
	if _, err := locked.Authorize(ctx, "sk_lifelog_test", "GET /api/users"); err != nil {
		t.Fatalf("valid key rejected: %v", err)
	}
	if _, err := locked.Authorize(ctx, "wrong", "GET /api/users"); err == nil {
		t.Fatal("expected rejection for wrong key")
	}
}

func TestExtractAPIKey(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	if _, err := ExtractAPIKey(r); err == nil {
		t.Fatal("expected error for missing header")
	}

	r.Header.Set("Authorization", "Bearer sk_abc")
	key, err := ExtractAPIKey(r)
	if err != nil || key != "sk_abc" {
		t.Fatalf("got %q, %v", key, err)
	}
}

func TestMiddleware_HealthIsOpen(t *testing.T) {
	handler := Middleware(NewStaticAuthorizer("secret"))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("health should bypass auth, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tasks", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without key, got %d", rec.Code)
	}
}
