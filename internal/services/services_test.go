package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifelog/lifelog-server/internal/model"
	"github.com/lifelog/lifelog-server/internal/store/memory"
)

func TestUserServiceTimeZoneHandling(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(memory.New())

	u, err := svc.CreateUser(ctx, &model.User{UserID: "maya", Email: "maya@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "UTC", u.TimeZone, "empty zone defaults to UTC")

	_, err = svc.CreateUser(ctx, &model.User{
		UserID: "arun", Email: "arun@example.com", TimeZone: "Mars/Olympus",
	})
	require.ErrorIs(t, err, model.ErrValidation)
}

func TestHealthServiceValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewHealthService(memory.New())

	_, err := svc.CreateEntry(ctx, &model.HealthEntry{UserID: "maya", Water: 3})
	require.ErrorIs(t, err, model.ErrValidation, "date is required")

	day := model.NewDate(2024, time.January, 15)
	_, err = svc.CreateEntry(ctx, &model.HealthEntry{UserID: "maya", Date: day, Water: -1})
	require.ErrorIs(t, err, model.ErrValidation)

	_, err = svc.GetStats(ctx, "maya", day, day.AddDays(-1))
	require.ErrorIs(t, err, model.ErrValidation, "end before start")
}

func TestTaskServiceDefaults(t *testing.T) {
	ctx := context.Background()
	svc := NewTaskService(memory.New())

	_, err := svc.CreateTask(ctx, &model.Task{UserID: "maya"})
	require.ErrorIs(t, err, model.ErrValidation, "title is required")

	task, err := svc.CreateTask(ctx, &model.Task{UserID: "maya", Title: "chore"})
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusPending, task.Status)
}

func TestJournalServiceStampsEntryTime(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2024, time.January, 15, 21, 30, 0, 0, time.UTC)
	svc := NewJournalService(memory.New(), WithJournalClock(fixedClock(at)))

	_, err := svc.CreateEntry(ctx, &model.JournalEntry{UserID: "maya"})
	require.ErrorIs(t, err, model.ErrValidation, "title is required")

	e, err := svc.CreateEntry(ctx, &model.JournalEntry{UserID: "maya", Title: "pages"})
	require.NoError(t, err)
	assert.True(t, e.EntryTime.Equal(at), "omitted entry time comes from the clock")

	explicit := at.Add(-2 * time.Hour)
	e, err = svc.CreateEntry(ctx, &model.JournalEntry{UserID: "maya", Title: "earlier", EntryTime: explicit})
	require.NoError(t, err)
	assert.True(t, e.EntryTime.Equal(explicit))

	_, err = svc.ListEntriesByRange(ctx, "maya", at, at)
	require.ErrorIs(t, err, model.ErrValidation, "empty window is rejected")
}

func TestExpenseServiceValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewExpenseService(memory.New())
	day := model.NewDate(2024, time.January, 15)

	_, err := svc.CreateExpense(ctx, &model.Expense{UserID: "maya", Amount: -5, Category: "food", Date: day})
	require.ErrorIs(t, err, model.ErrValidation)

	_, err = svc.CreateExpense(ctx, &model.Expense{UserID: "maya", Amount: 10, Date: day})
	require.ErrorIs(t, err, model.ErrValidation, "category is required")

	_, err = svc.CreateExpense(ctx, &model.Expense{UserID: "maya", Amount: 10, Category: "food"})
	require.ErrorIs(t, err, model.ErrValidation, "date is required")

	_, err = svc.CreateExpense(ctx, &model.Expense{UserID: "maya", Amount: 0, Category: "food", Date: day})
	require.NoError(t, err, "zero amount is a valid spend")
}
