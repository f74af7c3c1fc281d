// Package memory provides a mutex-guarded in-memory store backend. It backs
// the "memory" driver and doubles as the fixture store in tests; it honors
// the same ordering and error contracts as the SQL backends.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lifelog/lifelog-server/internal/model"
	"github.com/lifelog/lifelog-server/internal/store"
)

type memStore struct {
	mu       sync.RWMutex
	users    map[string]*model.User
	health   map[string]*model.HealthEntry
	tasks    map[string]*model.Task
	journal  map[string]*model.JournalEntry
	expenses map[string]*model.Expense
	now      func() time.Time
}

// New constructs an empty in-memory store.
func New() store.Store {
	return &memStore{
		users:    make(map[string]*model.User),
		health:   make(map[string]*model.HealthEntry),
		tasks:    make(map[string]*model.Task),
		journal:  make(map[string]*model.JournalEntry),
		expenses: make(map[string]*model.Expense),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *memStore) Users() store.Users            { return &users{s} }
func (s *memStore) Health() store.HealthEntries   { return &healthEntries{s} }
func (s *memStore) Tasks() store.Tasks            { return &tasks{s} }
func (s *memStore) Journal() store.JournalEntries { return &journalEntries{s} }
func (s *memStore) Expenses() store.Expenses      { return &expenses{s} }

// HealthPing implements health.HealthPinger; the map store is always up.
func (s *memStore) HealthPing(ctx context.Context) error { return ctx.Err() }

func newID() string { return uuid.New().String() }

// --- Users ---

type users struct{ s *memStore }

func (u *users) Create(ctx context.Context, m *model.User) (*model.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	if _, exists := u.s.users[m.UserID]; exists {
		return nil, model.ErrConflict
	}
	out := cloneUser(m)
	out.Status = "ACTIVE"
	if out.CreationTime.IsZero() {
		out.CreationTime = u.s.now()
	}
	u.s.users[out.UserID] = out
	return cloneUser(out), nil
}

func (u *users) Get(ctx context.Context, userID string) (*model.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()
	m, ok := u.s.users[userID]
	if !ok {
		return nil, model.ErrNotFound
	}
	return cloneUser(m), nil
}

func (u *users) Delete(ctx context.Context, userID string) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	if _, ok := u.s.users[userID]; !ok {
		return model.ErrNotFound
	}
	delete(u.s.users, userID)
	for id, e := range u.s.health {
		if e.UserID == userID {
			delete(u.s.health, id)
		}
	}
	for id, t := range u.s.tasks {
		if t.UserID == userID {
			delete(u.s.tasks, id)
		}
	}
	for id, e := range u.s.journal {
		if e.UserID == userID {
			delete(u.s.journal, id)
		}
	}
	for id, e := range u.s.expenses {
		if e.UserID == userID {
			delete(u.s.expenses, id)
		}
	}
	return nil
}

// --- Health entries ---

type healthEntries struct{ s *memStore }

func (h *healthEntries) Create(ctx context.Context, e *model.HealthEntry) (*model.HealthEntry, error) {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	for _, existing := range h.s.health {
		if existing.UserID == e.UserID && existing.Date.Equal(e.Date) {
			return nil, model.ErrConflict
		}
	}
	out := cloneHealth(e)
	if out.ID == "" {
		out.ID = newID()
	}
	now := h.s.now()
	if out.CreationTime.IsZero() {
		out.CreationTime = now
	}
	out.UpdateTime = out.CreationTime
	h.s.health[out.ID] = out
	return cloneHealth(out), nil
}

func (h *healthEntries) GetByID(ctx context.Context, userID, entryID string) (*model.HealthEntry, error) {
	h.s.mu.RLock()
	defer h.s.mu.RUnlock()
	e, ok := h.s.health[entryID]
	if !ok || e.UserID != userID {
		return nil, model.ErrNotFound
	}
	return cloneHealth(e), nil
}

func (h *healthEntries) FindByUserAndDate(ctx context.Context, userID string, date model.Date) ([]*model.HealthEntry, error) {
	h.s.mu.RLock()
	defer h.s.mu.RUnlock()
	var out []*model.HealthEntry
	for _, e := range h.s.health {
		if e.UserID == userID && e.Date.Equal(date) {
			out = append(out, cloneHealth(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreationTime.Before(out[j].CreationTime) })
	return out, nil
}

func (h *healthEntries) ListByUser(ctx context.Context, userID string) ([]*model.HealthEntry, error) {
	h.s.mu.RLock()
	defer h.s.mu.RUnlock()
	var out []*model.HealthEntry
	for _, e := range h.s.health {
		if e.UserID == userID {
			out = append(out, cloneHealth(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (h *healthEntries) Update(ctx context.Context, userID, entryID string, p model.HealthEntryPatch) (*model.HealthEntry, error) {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	e, ok := h.s.health[entryID]
	if !ok || e.UserID != userID {
		return nil, model.ErrNotFound
	}
	if p.Water != nil {
		e.Water = *p.Water
	}
	if p.Steps != nil {
		e.Steps = *p.Steps
	}
	if p.Calories != nil {
		e.Calories = intPtr(*p.Calories)
	}
	if p.Meals != nil {
		e.Meals = append([]string(nil), (*p.Meals)...)
	}
	if p.MealTypes != nil {
		e.MealTypes = append([]string(nil), (*p.MealTypes)...)
	}
	if p.Cycle != nil {
		e.Cycle = strPtr(*p.Cycle)
	}
	if p.PeriodDay != nil {
		e.PeriodDay = intPtr(*p.PeriodDay)
	}
	if p.Bath != nil {
		e.Bath = *p.Bath
	}
	if p.FaceWash != nil {
		e.FaceWash = *p.FaceWash
	}
	if p.Notes != nil {
		e.Notes = strPtr(*p.Notes)
	}
	e.UpdateTime = h.s.now()
	return cloneHealth(e), nil
}

func (h *healthEntries) Delete(ctx context.Context, userID, entryID string) error {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	e, ok := h.s.health[entryID]
	if !ok || e.UserID != userID {
		return model.ErrNotFound
	}
	delete(h.s.health, entryID)
	return nil
}

func (h *healthEntries) Stats(ctx context.Context, userID string, start, end model.Date) (*model.HealthStats, error) {
	h.s.mu.RLock()
	defer h.s.mu.RUnlock()
	var entries []*model.HealthEntry
	for _, e := range h.s.health {
		if e.UserID == userID && !e.Date.Before(start) && !e.Date.After(end) {
			entries = append(entries, e)
		}
	}
	return store.ComputeHealthStats(entries, start, end), nil
}

// --- Tasks ---

type tasks struct{ s *memStore }

func (t *tasks) Create(ctx context.Context, m *model.Task) (*model.Task, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	out := cloneTask(m)
	if out.ID == "" {
		out.ID = newID()
	}
	if out.CreationTime.IsZero() {
		out.CreationTime = t.s.now()
	}
	out.UpdateTime = out.CreationTime
	t.s.tasks[out.ID] = out
	return cloneTask(out), nil
}

func (t *tasks) GetByID(ctx context.Context, userID, taskID string) (*model.Task, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	m, ok := t.s.tasks[taskID]
	if !ok || m.UserID != userID {
		return nil, model.ErrNotFound
	}
	return cloneTask(m), nil
}

func (t *tasks) ListByUser(ctx context.Context, userID string) ([]*model.Task, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	var out []*model.Task
	for _, m := range t.s.tasks {
		if m.UserID == userID {
			out = append(out, cloneTask(m))
		}
	}
	// Canonical order: due ascending, undated last, ties by creation time.
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.DueTime == nil && b.DueTime == nil:
			return a.CreationTime.Before(b.CreationTime)
		case a.DueTime == nil:
			return false
		case b.DueTime == nil:
			return true
		case !a.DueTime.Equal(*b.DueTime):
			return a.DueTime.Before(*b.DueTime)
		default:
			return a.CreationTime.Before(b.CreationTime)
		}
	})
	return out, nil
}

func (t *tasks) Update(ctx context.Context, userID, taskID string, p model.TaskPatch) (*model.Task, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	m, ok := t.s.tasks[taskID]
	if !ok || m.UserID != userID {
		return nil, model.ErrNotFound
	}
	if p.Title != nil {
		m.Title = *p.Title
	}
	if p.Description != nil {
		m.Description = strPtr(*p.Description)
	}
	if p.Type != nil {
		m.Type = *p.Type
	}
	if p.Status != nil {
		m.Status = *p.Status
	}
	if p.DueTime != nil {
		due := *p.DueTime
		m.DueTime = &due
	}
	if p.Priority != nil {
		m.Priority = strPtr(*p.Priority)
	}
	if p.Subject != nil {
		m.Subject = strPtr(*p.Subject)
	}
	if p.Tags != nil {
		m.Tags = append([]string(nil), (*p.Tags)...)
	}
	m.UpdateTime = t.s.now()
	return cloneTask(m), nil
}

func (t *tasks) Delete(ctx context.Context, userID, taskID string) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	m, ok := t.s.tasks[taskID]
	if !ok || m.UserID != userID {
		return model.ErrNotFound
	}
	delete(t.s.tasks, taskID)
	return nil
}

// --- Journal entries ---

type journalEntries struct{ s *memStore }

func (j *journalEntries) Create(ctx context.Context, e *model.JournalEntry) (*model.JournalEntry, error) {
	j.s.mu.Lock()
	defer j.s.mu.Unlock()
	out := cloneJournal(e)
	if out.ID == "" {
		out.ID = newID()
	}
	if out.CreationTime.IsZero() {
		out.CreationTime = j.s.now()
	}
	out.UpdateTime = out.CreationTime
	j.s.journal[out.ID] = out
	return cloneJournal(out), nil
}

func (j *journalEntries) GetByID(ctx context.Context, userID, entryID string) (*model.JournalEntry, error) {
	j.s.mu.RLock()
	defer j.s.mu.RUnlock()
	e, ok := j.s.journal[entryID]
	if !ok || e.UserID != userID {
		return nil, model.ErrNotFound
	}
	return cloneJournal(e), nil
}

func (j *journalEntries) ListByUserAndRange(ctx context.Context, userID string, start, end time.Time) ([]*model.JournalEntry, error) {
	j.s.mu.RLock()
	defer j.s.mu.RUnlock()
	var out []*model.JournalEntry
	for _, e := range j.s.journal {
		if e.UserID != userID {
			continue
		}
		if e.EntryTime.Before(start) || !e.EntryTime.Before(end) {
			continue
		}
		out = append(out, cloneJournal(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntryTime.After(out[j].EntryTime) })
	return out, nil
}

func (j *journalEntries) ListByUser(ctx context.Context, userID string) ([]*model.JournalEntry, error) {
	j.s.mu.RLock()
	defer j.s.mu.RUnlock()
	var out []*model.JournalEntry
	for _, e := range j.s.journal {
		if e.UserID == userID {
			out = append(out, cloneJournal(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntryTime.After(out[j].EntryTime) })
	return out, nil
}

func (j *journalEntries) Update(ctx context.Context, userID, entryID string, p model.JournalEntryPatch) (*model.JournalEntry, error) {
	j.s.mu.Lock()
	defer j.s.mu.Unlock()
	e, ok := j.s.journal[entryID]
	if !ok || e.UserID != userID {
		return nil, model.ErrNotFound
	}
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Content != nil {
		e.Content = *p.Content
	}
	if p.EntryTime != nil {
		e.EntryTime = *p.EntryTime
	}
	if p.Mood != nil {
		e.Mood = strPtr(*p.Mood)
	}
	if p.Tags != nil {
		e.Tags = append([]string(nil), (*p.Tags)...)
	}
	if p.Private != nil {
		e.Private = *p.Private
	}
	e.UpdateTime = j.s.now()
	return cloneJournal(e), nil
}

func (j *journalEntries) Delete(ctx context.Context, userID, entryID string) error {
	j.s.mu.Lock()
	defer j.s.mu.Unlock()
	e, ok := j.s.journal[entryID]
	if !ok || e.UserID != userID {
		return model.ErrNotFound
	}
	delete(j.s.journal, entryID)
	return nil
}

// --- Expenses ---

type expenses struct{ s *memStore }

func (x *expenses) Create(ctx context.Context, e *model.Expense) (*model.Expense, error) {
	x.s.mu.Lock()
	defer x.s.mu.Unlock()
	out := cloneExpense(e)
	if out.ID == "" {
		out.ID = newID()
	}
	if out.CreationTime.IsZero() {
		out.CreationTime = x.s.now()
	}
	out.UpdateTime = out.CreationTime
	x.s.expenses[out.ID] = out
	return cloneExpense(out), nil
}

func (x *expenses) GetByID(ctx context.Context, userID, expenseID string) (*model.Expense, error) {
	x.s.mu.RLock()
	defer x.s.mu.RUnlock()
	e, ok := x.s.expenses[expenseID]
	if !ok || e.UserID != userID {
		return nil, model.ErrNotFound
	}
	return cloneExpense(e), nil
}

func (x *expenses) ListByUserAndDate(ctx context.Context, userID string, date model.Date) ([]*model.Expense, error) {
	x.s.mu.RLock()
	defer x.s.mu.RUnlock()
	var out []*model.Expense
	for _, e := range x.s.expenses {
		if e.UserID == userID && e.Date.Equal(date) {
			out = append(out, cloneExpense(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreationTime.After(out[j].CreationTime) })
	return out, nil
}

func (x *expenses) SumByUserAndDate(ctx context.Context, userID string, date model.Date) (float64, error) {
	x.s.mu.RLock()
	defer x.s.mu.RUnlock()
	var total float64
	for _, e := range x.s.expenses {
		if e.UserID == userID && e.Date.Equal(date) {
			total += e.Amount
		}
	}
	return total, nil
}

func (x *expenses) Update(ctx context.Context, userID, expenseID string, p model.ExpensePatch) (*model.Expense, error) {
	x.s.mu.Lock()
	defer x.s.mu.Unlock()
	e, ok := x.s.expenses[expenseID]
	if !ok || e.UserID != userID {
		return nil, model.ErrNotFound
	}
	if p.Amount != nil {
		e.Amount = *p.Amount
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.PaymentMethod != nil {
		e.PaymentMethod = strPtr(*p.PaymentMethod)
	}
	if p.Tags != nil {
		e.Tags = append([]string(nil), (*p.Tags)...)
	}
	e.UpdateTime = x.s.now()
	return cloneExpense(e), nil
}

func (x *expenses) Delete(ctx context.Context, userID, expenseID string) error {
	x.s.mu.Lock()
	defer x.s.mu.Unlock()
	e, ok := x.s.expenses[expenseID]
	if !ok || e.UserID != userID {
		return model.ErrNotFound
	}
	delete(x.s.expenses, expenseID)
	return nil
}

// --- clone helpers ---

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func cloneUser(u *model.User) *model.User {
	out := *u
	if u.DisplayName != nil {
		out.DisplayName = strPtr(*u.DisplayName)
	}
	return &out
}

func cloneHealth(e *model.HealthEntry) *model.HealthEntry {
	out := *e
	if e.Calories != nil {
		out.Calories = intPtr(*e.Calories)
	}
	out.Meals = append([]string(nil), e.Meals...)
	out.MealTypes = append([]string(nil), e.MealTypes...)
	if e.Cycle != nil {
		out.Cycle = strPtr(*e.Cycle)
	}
	if e.PeriodDay != nil {
		out.PeriodDay = intPtr(*e.PeriodDay)
	}
	if e.Notes != nil {
		out.Notes = strPtr(*e.Notes)
	}
	return &out
}

func cloneTask(t *model.Task) *model.Task {
	out := *t
	if t.Description != nil {
		out.Description = strPtr(*t.Description)
	}
	if t.DueTime != nil {
		due := *t.DueTime
		out.DueTime = &due
	}
	if t.Priority != nil {
		out.Priority = strPtr(*t.Priority)
	}
	if t.Subject != nil {
		out.Subject = strPtr(*t.Subject)
	}
	out.Tags = append([]string(nil), t.Tags...)
	return &out
}

func cloneJournal(e *model.JournalEntry) *model.JournalEntry {
	out := *e
	if e.Mood != nil {
		out.Mood = strPtr(*e.Mood)
	}
	out.Tags = append([]string(nil), e.Tags...)
	return &out
}

func cloneExpense(e *model.Expense) *model.Expense {
	out := *e
	if e.PaymentMethod != nil {
		out.PaymentMethod = strPtr(*e.PaymentMethod)
	}
	out.Tags = append([]string(nil), e.Tags...)
	return &out
}
