package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifelog/lifelog-server/internal/auth"
	"github.com/lifelog/lifelog-server/internal/model"
	"github.com/lifelog/lifelog-server/internal/store"
	"github.com/lifelog/lifelog-server/internal/store/memory"
)

func newTestRouter() *mux.Router {
	return NewRouter(memory.New(), auth.NewStaticAuthorizer(""))
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func createTestUser(t *testing.T, router http.Handler) {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/users", map[string]string{
		"userId": "maya", "email": "maya@example.com", "timeZone": "UTC",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestCreateUserValidation(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/users", map[string]string{
		"userId": "Not Valid", "email": "maya@example.com",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/users", map[string]string{
		"userId": "maya", "email": "not-an-email",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/users", map[string]string{
		"userId": "maya", "email": "maya@example.com", "timeZone": "Mars/Olympus",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUserLifecycle(t *testing.T) {
	router := newTestRouter()
	createTestUser(t, router)

	rec := doJSON(t, router, http.MethodGet, "/api/users/maya", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var u model.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &u))
	assert.Equal(t, "maya", u.UserID)
	assert.Equal(t, "UTC", u.TimeZone)

	// Duplicate registration conflicts.
	rec = doJSON(t, router, http.MethodPost, "/api/users", map[string]string{
		"userId": "maya", "email": "maya@example.com", "timeZone": "UTC",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/users/maya", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/users/maya", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthEntryEndpoints(t *testing.T) {
	router := newTestRouter()
	createTestUser(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/users/maya/health", map[string]any{
		"date": "2024-01-15", "water": 6, "steps": 8420,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created model.HealthEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)

	// One entry per (user, date).
	rec = doJSON(t, router, http.MethodPost, "/api/users/maya/health", map[string]any{
		"date": "2024-01-15", "water": 1,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/users/maya/health?date=2024-01-15", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listing struct {
		Entries []*model.HealthEntry `json:"entries"`
		Count   int                  `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	assert.Equal(t, 1, listing.Count)

	rec = doJSON(t, router, http.MethodGet, "/api/users/maya/health?date=15-01-2024", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPatch, "/api/users/maya/health/"+created.ID, map[string]any{
		"water": 8,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated model.HealthEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, 8, updated.Water)
	assert.Equal(t, 8420, updated.Steps, "unpatched field must survive")

	rec = doJSON(t, router, http.MethodDelete, "/api/users/maya/health/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHealthStatsEndpoint(t *testing.T) {
	router := newTestRouter()
	createTestUser(t, router)

	for _, day := range []string{"2024-01-15", "2024-01-16"} {
		rec := doJSON(t, router, http.MethodPost, "/api/users/maya/health", map[string]any{
			"date": day, "water": 4, "steps": 6000,
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doJSON(t, router, http.MethodGet, "/api/users/maya/health/stats?start=2024-01-15&end=2024-01-16", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var stats model.HealthStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.TotalDays)
	assert.Equal(t, 2, stats.Streak)
	assert.InDelta(t, 4.0, stats.AvgWater, 1e-9)

	rec = doJSON(t, router, http.MethodGet, "/api/users/maya/health/stats?start=2024-01-16", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTaskEndpoints(t *testing.T) {
	router := newTestRouter()
	createTestUser(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/users/maya/tasks", map[string]any{
		"title": "finish assignment", "type": "assignment", "dueTime": "2024-01-14T23:59:00Z",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var task model.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &task))
	assert.Equal(t, model.TaskStatusPending, task.Status, "status defaults to pending")

	rec = doJSON(t, router, http.MethodPost, "/api/users/maya/tasks", map[string]any{"type": "chore"})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "title is required")

	rec = doJSON(t, router, http.MethodPatch, "/api/users/maya/tasks/"+task.ID, map[string]any{
		"status": "completed",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/users/maya/tasks", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listing struct {
		Tasks []*model.Task `json:"tasks"`
		Count int           `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	require.Equal(t, 1, listing.Count)
	assert.Equal(t, model.TaskStatusCompleted, listing.Tasks[0].Status)
}

func TestJournalEndpoints(t *testing.T) {
	router := newTestRouter()
	createTestUser(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/users/maya/journal", map[string]any{
		"title": "evening pages", "content": "a good day", "entryTime": "2024-01-15T20:00:00Z",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet,
		"/api/users/maya/journal?start=2024-01-15T00:00:00Z&end=2024-01-16T00:00:00Z", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listing struct {
		Entries []*model.JournalEntry `json:"entries"`
		Count   int                   `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	assert.Equal(t, 1, listing.Count)

	rec = doJSON(t, router, http.MethodGet, "/api/users/maya/journal?start=not-a-time&end=2024-01-16T00:00:00Z", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExpenseEndpoints(t *testing.T) {
	router := newTestRouter()
	createTestUser(t, router)

	for _, amt := range []float64{250.50, 99.25} {
		rec := doJSON(t, router, http.MethodPost, "/api/users/maya/expenses", map[string]any{
			"amount": amt, "category": "food", "date": "2024-01-15",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := doJSON(t, router, http.MethodPost, "/api/users/maya/expenses", map[string]any{
		"amount": -5, "category": "food", "date": "2024-01-15",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/users/maya/expenses?date=2024-01-15", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listing struct {
		Expenses []*model.Expense `json:"expenses"`
		Count    int              `json:"count"`
		Total    float64          `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	assert.Equal(t, 2, listing.Count)
	assert.InDelta(t, 349.75, listing.Total, 1e-9)
}

func TestDailySummaryEndpoint(t *testing.T) {
	router := newTestRouter()
	createTestUser(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/users/maya/health", map[string]any{
		"date": "2024-01-15", "water": 6, "steps": 8420,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doJSON(t, router, http.MethodPost, "/api/users/maya/tasks", map[string]any{
		"title": "finish assignment", "status": "completed", "dueTime": "2024-01-14T23:59:00Z",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doJSON(t, router, http.MethodPost, "/api/users/maya/expenses", map[string]any{
		"amount": 42.5, "category": "food", "date": "2024-01-15",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/users/maya/summary/daily?date=2024-01-15", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var sum model.DailySummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sum))
	assert.Equal(t, 6, sum.WaterIntake)
	assert.Equal(t, 8420, sum.Steps)
	assert.Equal(t, 1, sum.TasksCompleted)
	assert.InDelta(t, 42.5, sum.TotalExpenses, 1e-9)
	require.NotNil(t, sum.Tasks)
	require.NotNil(t, sum.JournalEntries)

	rec = doJSON(t, router, http.MethodGet, "/api/users/ghost/summary/daily?date=2024-01-15", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/users/maya/summary/daily?date=Jan-15", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// brokenTaskStore fails every task listing so the summary handler has a
// collaborator outage to surface.
type brokenTaskStore struct {
	store.Store
	err error
}

func (s brokenTaskStore) Tasks() store.Tasks { return brokenTasks{err: s.err} }

type brokenTasks struct {
	store.Tasks
	err error
}

func (t brokenTasks) ListByUser(ctx context.Context, userID string) ([]*model.Task, error) {
	return nil, t.err
}

// dupHealthStore reports two health entries for any (user, date) pair,
// violating the one-per-day contract.
type dupHealthStore struct {
	store.Store
}

func (s dupHealthStore) Health() store.HealthEntries {
	return dupHealth{HealthEntries: s.Store.Health()}
}

type dupHealth struct {
	store.HealthEntries
}

func (h dupHealth) FindByUserAndDate(ctx context.Context, userID string, date model.Date) ([]*model.HealthEntry, error) {
	return []*model.HealthEntry{
		{ID: "he-1", UserID: userID, Date: date},
		{ID: "he-2", UserID: userID, Date: date},
	}, nil
}

func TestDailySummaryFailureStatusMapping(t *testing.T) {
	router := NewRouter(
		brokenTaskStore{Store: memory.New(), err: errors.New("disk read failed")},
		auth.NewStaticAuthorizer(""),
	)
	createTestUser(t, router)
	rec := doJSON(t, router, http.MethodGet, "/api/users/maya/summary/daily?date=2024-01-15", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code, rec.Body.String())

	router = NewRouter(dupHealthStore{Store: memory.New()}, auth.NewStaticAuthorizer(""))
	createTestUser(t, router)
	rec = doJSON(t, router, http.MethodGet, "/api/users/maya/summary/daily?date=2024-01-15", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code, rec.Body.String())
}

func TestHealthEndpointReflectsBinding(t *testing.T) {
	router := newTestRouter()

	BindServiceHealth(func() bool { return false })
	rec := doJSON(t, router, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unhealthy", body["status"])

	BindServiceHealth(func() bool { return true })
	rec = doJSON(t, router, http.MethodGet, "/api/health", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestAuthRejectsWithoutKey(t *testing.T) {
	router := NewRouter(memory.New(), auth.NewStaticAuthorizer("sk_lifelog"))

	rec := doJSON(t, router, http.MethodGet, "/api/users/maya", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/users/maya", nil)
	req.Header.Set("Authorization", "Bearer sk_lifelog")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code, "authorized request reaches the handler")
}
