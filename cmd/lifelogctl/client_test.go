package main

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/lifelog/lifelog-server/internal/api"
	"github.com/lifelog/lifelog-server/internal/auth"
	"github.com/lifelog/lifelog-server/internal/store/memory"
)

func startTestServer(t *testing.T, apiKey string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(api.NewRouter(memory.New(), auth.NewStaticAuthorizer(apiKey)))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientRoundTrip(t *testing.T) {
	srv := startTestServer(t, "")
	apiFlag = srv.URL
	keyFlag = ""

	data, err := doPostJSON("/api/users", map[string]string{
		"userId": "maya", "email": "maya@example.com", "timeZone": "UTC",
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	var created map[string]any
	if err := json.Unmarshal(data, &created); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if created["userId"] != "maya" {
		t.Fatalf("unexpected user: %v", created)
	}

	if _, err := doGet("/api/users/maya/summary/daily?date=2024-01-15"); err != nil {
		t.Fatalf("summary: %v", err)
	}

	if _, err := doGet("/api/users/ghost"); err == nil {
		t.Fatal("expected error body for missing user")
	}
}

func TestClientSendsAPIKey(t *testing.T) {
	srv := startTestServer(t, "sk_lifelog")
	apiFlag = srv.URL

	keyFlag = ""
	if _, err := doGet("/api/users/maya"); err == nil {
		t.Fatal("expected 401 without key")
	}

	keyFlag = "sk_lifelog"
	// 404 means the request cleared auth and reached the handler.
	if _, err := doGet("/api/users/maya"); err == nil {
		t.Fatal("expected 404 for unknown user")
	}
}
