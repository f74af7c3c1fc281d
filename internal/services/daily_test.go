package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifelog/lifelog-server/internal/model"
	"github.com/lifelog/lifelog-server/internal/store"
	"github.com/lifelog/lifelog-server/internal/store/memory"
)

const testUser = "maya"

func seedUser(t *testing.T, st store.Store, tz string) {
	t.Helper()
	_, err := st.Users().Create(context.Background(), &model.User{
		UserID:   testUser,
		Email:    "maya@example.com",
		TimeZone: tz,
	})
	require.NoError(t, err)
}

func fixedClock(t time.Time) Clock { return ClockFunc(func() time.Time { return t }) }

func strp(s string) *string       { return &s }
func timep(t time.Time) *time.Time { return &t }

// --- failure-injection wrappers around the in-memory store ---

type failingStore struct {
	store.Store
	healthErr  error
	taskErr    error
	journalErr error
	expenseErr error
	// healthOverride, when set, is returned verbatim by FindByUserAndDate.
	healthOverride []*model.HealthEntry
}

func (f *failingStore) Health() store.HealthEntries {
	return &failingHealth{HealthEntries: f.Store.Health(), err: f.healthErr, override: f.healthOverride}
}
func (f *failingStore) Tasks() store.Tasks {
	return &failingTasks{Tasks: f.Store.Tasks(), err: f.taskErr}
}
func (f *failingStore) Journal() store.JournalEntries {
	return &failingJournal{JournalEntries: f.Store.Journal(), err: f.journalErr}
}
func (f *failingStore) Expenses() store.Expenses {
	return &failingExpenses{Expenses: f.Store.Expenses(), err: f.expenseErr}
}

type failingHealth struct {
	store.HealthEntries
	err      error
	override []*model.HealthEntry
}

func (f *failingHealth) FindByUserAndDate(ctx context.Context, userID string, date model.Date) ([]*model.HealthEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.override != nil {
		return f.override, nil
	}
	return f.HealthEntries.FindByUserAndDate(ctx, userID, date)
}

type failingTasks struct {
	store.Tasks
	err error
}

func (f *failingTasks) ListByUser(ctx context.Context, userID string) ([]*model.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.Tasks.ListByUser(ctx, userID)
}

type failingJournal struct {
	store.JournalEntries
	err error
}

func (f *failingJournal) ListByUserAndRange(ctx context.Context, userID string, start, end time.Time) ([]*model.JournalEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.JournalEntries.ListByUserAndRange(ctx, userID, start, end)
}

type failingExpenses struct {
	store.Expenses
	err error
}

func (f *failingExpenses) SumByUserAndDate(ctx context.Context, userID string, date model.Date) (float64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.Expenses.SumByUserAndDate(ctx, userID, date)
}

// --- tests ---

func TestGetSummary_EmptyStores(t *testing.T) {
	st := memory.New()
	seedUser(t, st, "UTC")
	svc := NewDailyService(st)

	day := model.NewDate(2024, time.January, 15)
	sum, err := svc.GetSummary(context.Background(), testUser, &day)
	require.NoError(t, err)

	assert.Nil(t, sum.Health)
	assert.Empty(t, sum.Tasks)
	assert.Empty(t, sum.JournalEntries)
	assert.Equal(t, 0.0, sum.TotalExpenses)
	assert.Equal(t, 0, sum.WaterIntake)
	assert.Equal(t, 0, sum.Steps)
	assert.Equal(t, 0, sum.TasksCompleted)
	assert.Equal(t, 0, sum.TasksPending)
	assert.Equal(t, day, sum.Date)
	assert.Equal(t, testUser, sum.UserID)
}

func TestGetSummary_Scenario(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	seedUser(t, st, "UTC")

	day := model.NewDate(2024, time.January, 15)
	_, err := st.Health().Create(ctx, &model.HealthEntry{
		UserID: testUser, Date: day, Water: 6, Steps: 8420,
	})
	require.NoError(t, err)

	_, err = st.Tasks().Create(ctx, &model.Task{
		UserID: testUser, Title: "finish assignment", Type: "assignment",
		Status:  model.TaskStatusCompleted,
		DueTime: timep(time.Date(2024, time.January, 14, 23, 59, 0, 0, time.UTC)),
	})
	require.NoError(t, err)
	_, err = st.Tasks().Create(ctx, &model.Task{
		UserID: testUser, Title: "start project", Type: "project",
		Status:  model.TaskStatusOngoing,
		DueTime: timep(time.Date(2024, time.January, 20, 23, 59, 0, 0, time.UTC)),
	})
	require.NoError(t, err)

	_, err = st.Journal().Create(ctx, &model.JournalEntry{
		UserID: testUser, Title: "evening pages", Content: "a good day",
		EntryTime: time.Date(2024, time.January, 15, 20, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	sum, err := NewDailyService(st).GetSummary(ctx, testUser, &day)
	require.NoError(t, err)

	require.NotNil(t, sum.Health)
	assert.Equal(t, 6, sum.Health.Water)
	assert.Equal(t, 8420, sum.Health.Steps)
	assert.Equal(t, 6, sum.WaterIntake)
	assert.Equal(t, 8420, sum.Steps)

	require.Len(t, sum.Tasks, 1)
	assert.Equal(t, "finish assignment", sum.Tasks[0].Title)
	assert.Equal(t, 1, sum.TasksCompleted)
	assert.Equal(t, 0, sum.TasksPending)

	require.Len(t, sum.JournalEntries, 1)
	assert.Equal(t, "evening pages", sum.JournalEntries[0].Title)
}

func TestGetSummary_CounterInvariant(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	seedUser(t, st, "UTC")

	day := model.NewDate(2024, time.March, 10)
	statuses := []string{
		model.TaskStatusCompleted, model.TaskStatusOngoing,
		model.TaskStatusPending, model.TaskStatusOverdue, "someday",
	}
	for i, status := range statuses {
		_, err := st.Tasks().Create(ctx, &model.Task{
			UserID: testUser, Title: status, Status: status,
			DueTime: timep(time.Date(2024, time.March, 1+i, 12, 0, 0, 0, time.UTC)),
		})
		require.NoError(t, err)
	}
	// Undated task must not count anywhere.
	_, err := st.Tasks().Create(ctx, &model.Task{UserID: testUser, Title: "someday maybe", Status: "pending"})
	require.NoError(t, err)

	sum, err := NewDailyService(st).GetSummary(ctx, testUser, &day)
	require.NoError(t, err)

	assert.Equal(t, len(sum.Tasks), sum.TasksCompleted+sum.TasksPending)
	assert.Equal(t, 5, len(sum.Tasks))
	assert.Equal(t, 1, sum.TasksCompleted)
	assert.Equal(t, 4, sum.TasksPending)
}

func TestGetSummary_Idempotent(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	seedUser(t, st, "UTC")

	day := model.NewDate(2024, time.May, 2)
	_, err := st.Health().Create(ctx, &model.HealthEntry{UserID: testUser, Date: day, Water: 3, Steps: 1200})
	require.NoError(t, err)
	_, err = st.Expenses().Create(ctx, &model.Expense{UserID: testUser, Amount: 12.5, Category: "food", Date: day})
	require.NoError(t, err)

	svc := NewDailyService(st)
	first, err := svc.GetSummary(ctx, testUser, &day)
	require.NoError(t, err)
	second, err := svc.GetSummary(ctx, testUser, &day)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGetSummary_TaskRelevanceBoundary(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	seedUser(t, st, "UTC")

	day := model.NewDate(2024, time.January, 15)
	// Due exactly at midnight of D: relevant.
	_, err := st.Tasks().Create(ctx, &model.Task{
		UserID: testUser, Title: "at midnight", Status: "pending",
		DueTime: timep(time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)),
	})
	require.NoError(t, err)
	// Due one second into D+1: not relevant.
	_, err = st.Tasks().Create(ctx, &model.Task{
		UserID: testUser, Title: "just past", Status: "pending",
		DueTime: timep(time.Date(2024, time.January, 16, 0, 0, 1, 0, time.UTC)),
	})
	require.NoError(t, err)

	sum, err := NewDailyService(st).GetSummary(ctx, testUser, &day)
	require.NoError(t, err)
	require.Len(t, sum.Tasks, 1)
	assert.Equal(t, "at midnight", sum.Tasks[0].Title)
}

func TestGetSummary_JournalBoundary(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	seedUser(t, st, "UTC")

	day := model.NewDate(2024, time.January, 15)
	// Last nanosecond of D: included.
	_, err := st.Journal().Create(ctx, &model.JournalEntry{
		UserID: testUser, Title: "last moment", Content: "in",
		EntryTime: time.Date(2024, time.January, 15, 23, 59, 59, 999999999, time.UTC),
	})
	require.NoError(t, err)
	// First instant of D+1: excluded.
	_, err = st.Journal().Create(ctx, &model.JournalEntry{
		UserID: testUser, Title: "next day", Content: "out",
		EntryTime: time.Date(2024, time.January, 16, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	sum, err := NewDailyService(st).GetSummary(ctx, testUser, &day)
	require.NoError(t, err)
	require.Len(t, sum.JournalEntries, 1)
	assert.Equal(t, "last moment", sum.JournalEntries[0].Title)
}

func TestGetSummary_OrderingPreserved(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	seedUser(t, st, "UTC")

	day := model.NewDate(2024, time.June, 1)
	// Created out of due order on purpose.
	_, err := st.Tasks().Create(ctx, &model.Task{
		UserID: testUser, Title: "later", Status: "pending",
		DueTime: timep(time.Date(2024, time.May, 30, 12, 0, 0, 0, time.UTC)),
	})
	require.NoError(t, err)
	_, err = st.Tasks().Create(ctx, &model.Task{
		UserID: testUser, Title: "sooner", Status: "pending",
		DueTime: timep(time.Date(2024, time.May, 28, 12, 0, 0, 0, time.UTC)),
	})
	require.NoError(t, err)

	_, err = st.Journal().Create(ctx, &model.JournalEntry{
		UserID: testUser, Title: "morning", Content: "",
		EntryTime: time.Date(2024, time.June, 1, 8, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	_, err = st.Journal().Create(ctx, &model.JournalEntry{
		UserID: testUser, Title: "evening", Content: "",
		EntryTime: time.Date(2024, time.June, 1, 21, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	sum, err := NewDailyService(st).GetSummary(ctx, testUser, &day)
	require.NoError(t, err)

	// Tasks due ascending; journal most recent first.
	require.Len(t, sum.Tasks, 2)
	assert.Equal(t, "sooner", sum.Tasks[0].Title)
	assert.Equal(t, "later", sum.Tasks[1].Title)
	require.Len(t, sum.JournalEntries, 2)
	assert.Equal(t, "evening", sum.JournalEntries[0].Title)
	assert.Equal(t, "morning", sum.JournalEntries[1].Title)
}

func TestGetSummary_ExpensesSummed(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	seedUser(t, st, "UTC")

	day := model.NewDate(2024, time.February, 2)
	for _, amt := range []float64{250.50, 99.25} {
		_, err := st.Expenses().Create(ctx, &model.Expense{
			UserID: testUser, Amount: amt, Category: "food", Date: day,
		})
		require.NoError(t, err)
	}
	_, err := st.Expenses().Create(ctx, &model.Expense{
		UserID: testUser, Amount: 10, Category: "transport",
		Date: model.NewDate(2024, time.February, 3),
	})
	require.NoError(t, err)

	sum, err := NewDailyService(st).GetSummary(ctx, testUser, &day)
	require.NoError(t, err)
	assert.InDelta(t, 349.75, sum.TotalExpenses, 1e-9)
}

func TestGetSummary_MultipleHealthEntriesIsInconsistency(t *testing.T) {
	st := memory.New()
	seedUser(t, st, "UTC")

	day := model.NewDate(2024, time.January, 15)
	broken := &failingStore{
		Store: st,
		healthOverride: []*model.HealthEntry{
			{ID: "a", UserID: testUser, Date: day, Water: 6},
			{ID: "b", UserID: testUser, Date: day, Water: 2},
		},
	}

	_, err := NewDailyService(broken).GetSummary(context.Background(), testUser, &day)
	var incErr *InconsistencyError
	require.ErrorAs(t, err, &incErr)
	assert.Equal(t, "health", incErr.Collaborator)
}

func TestGetSummary_CollaboratorFailurePropagates(t *testing.T) {
	st := memory.New()
	seedUser(t, st, "UTC")
	day := model.NewDate(2024, time.January, 15)

	cases := []struct {
		name   string
		broken *failingStore
	}{
		{"health", &failingStore{Store: st, healthErr: errors.New("connection refused")}},
		{"task", &failingStore{Store: st, taskErr: errors.New("connection refused")}},
		{"journal", &failingStore{Store: st, journalErr: errors.New("connection refused")}},
		{"expense", &failingStore{Store: st, expenseErr: errors.New("connection refused")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sum, err := NewDailyService(tc.broken).GetSummary(context.Background(), testUser, &day)
			assert.Nil(t, sum, "no summary may masquerade as success")
			var depErr *DependencyError
			require.ErrorAs(t, err, &depErr)
			assert.Equal(t, tc.name, depErr.Collaborator)
		})
	}
}

func TestGetSummary_EmptyUserIDFailsFast(t *testing.T) {
	st := &failingStore{
		Store:      memory.New(),
		healthErr:  errors.New("must not be called"),
		taskErr:    errors.New("must not be called"),
		journalErr: errors.New("must not be called"),
		expenseErr: errors.New("must not be called"),
	}
	_, err := NewDailyService(st).GetSummary(context.Background(), "", nil)
	require.ErrorIs(t, err, model.ErrValidation)
}

func TestGetSummary_UnknownUser(t *testing.T) {
	_, err := NewDailyService(memory.New()).GetSummary(context.Background(), "ghost", nil)
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestGetSummary_DefaultsToTodayInUserTimeZone(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	seedUser(t, st, "America/New_York")

	// 03:00 UTC on Jan 16 is still Jan 15 in New York.
	clock := fixedClock(time.Date(2024, time.January, 16, 3, 0, 0, 0, time.UTC))
	nyDay := model.NewDate(2024, time.January, 15)
	_, err := st.Health().Create(ctx, &model.HealthEntry{UserID: testUser, Date: nyDay, Water: 4, Steps: 900})
	require.NoError(t, err)

	sum, err := NewDailyService(st, WithClock(clock)).GetSummary(ctx, testUser, nil)
	require.NoError(t, err)
	assert.Equal(t, nyDay, sum.Date)
	require.NotNil(t, sum.Health)
	assert.Equal(t, 4, sum.WaterIntake)
}

func TestGetSummary_JournalWindowFollowsUserTimeZone(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	seedUser(t, st, "America/New_York")

	day := model.NewDate(2024, time.January, 15)
	// 04:30 UTC on Jan 16 is 23:30 on Jan 15 in New York: inside the day.
	_, err := st.Journal().Create(ctx, &model.JournalEntry{
		UserID: testUser, Title: "late night", Content: "",
		EntryTime: time.Date(2024, time.January, 16, 4, 30, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	// 04:30 UTC on Jan 15 is 23:30 on Jan 14 in New York: outside.
	_, err = st.Journal().Create(ctx, &model.JournalEntry{
		UserID: testUser, Title: "previous night", Content: "",
		EntryTime: time.Date(2024, time.January, 15, 4, 30, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	sum, err := NewDailyService(st).GetSummary(ctx, testUser, &day)
	require.NoError(t, err)
	require.Len(t, sum.JournalEntries, 1)
	assert.Equal(t, "late night", sum.JournalEntries[0].Title)
}

func TestGetSummary_CancelledContext(t *testing.T) {
	st := memory.New()
	seedUser(t, st, "UTC")
	day := model.NewDate(2024, time.January, 15)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sum, err := NewDailyService(st).GetSummary(ctx, testUser, &day)
	assert.Nil(t, sum)
	assert.Error(t, err)
}
