// Package sqlite implements store.Store on modernc.org/sqlite. It backs the
// "local" build target, where the whole backend runs out of a single file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lifelog/lifelog-server/internal/model"
	"github.com/lifelog/lifelog-server/internal/store"
)

// tsLayout is fixed-width so lexicographic order on stored text matches
// chronological order; range queries rely on it. All timestamps are UTC.
const tsLayout = "2006-01-02 15:04:05.000000000"

func fmtTime(t time.Time) string { return t.UTC().Format(tsLayout) }

func parseTime(s string) (time.Time, error) {
	return time.ParseInLocation(tsLayout, s, time.UTC)
}

// New wraps an opened connection in a store.Store.
func New(db *sql.DB) store.Store { return &sqliteStore{db: db} }

// NewAtPath opens (or creates) the database file and returns the store.
func NewAtPath(path string) (store.Store, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	return New(db), nil
}

type sqliteStore struct{ db *sql.DB }

func (s *sqliteStore) Users() store.Users            { return &users{db: s.db} }
func (s *sqliteStore) Health() store.HealthEntries   { return &healthEntries{db: s.db} }
func (s *sqliteStore) Tasks() store.Tasks            { return &tasks{db: s.db} }
func (s *sqliteStore) Journal() store.JournalEntries { return &journalEntries{db: s.db} }
func (s *sqliteStore) Expenses() store.Expenses      { return &expenses{db: s.db} }

// HealthPing implements health.HealthPinger.
func (s *sqliteStore) HealthPing(ctx context.Context) error { return s.db.PingContext(ctx) }

// DB exposes the underlying connection (local tooling use only).
func (s *sqliteStore) DB() *sql.DB { return s.db }

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrNotFound
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return model.ErrConflict
	}
	return err
}

func marshalList(v []string) string {
	if v == nil {
		v = []string{}
	}
	b, _ := json.Marshal(v)
	return string(b)
}

func unmarshalList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	_ = json.Unmarshal([]byte(s), &out)
	if len(out) == 0 {
		return nil
	}
	return out
}

// --- Users ---

type users struct{ db *sql.DB }

func (u *users) Create(ctx context.Context, m *model.User) (*model.User, error) {
	now := time.Now().UTC()
	_, err := u.db.ExecContext(ctx, `
        INSERT INTO users (user_id, email, display_name, time_zone, status, creation_time)
        VALUES (?,?,?,?,'ACTIVE',?)
    `, m.UserID, m.Email, m.DisplayName, m.TimeZone, fmtTime(now))
	if err != nil {
		return nil, mapErr(err)
	}
	out := *m
	out.Status = "ACTIVE"
	out.CreationTime = now
	return &out, nil
}

func (u *users) Get(ctx context.Context, userID string) (*model.User, error) {
	row := u.db.QueryRowContext(ctx, `
        SELECT user_id, email, display_name, time_zone, status, creation_time
        FROM users WHERE user_id=?
    `, userID)
	var out model.User
	var created string
	if err := row.Scan(&out.UserID, &out.Email, &out.DisplayName, &out.TimeZone, &out.Status, &created); err != nil {
		return nil, mapErr(err)
	}
	t, err := parseTime(created)
	if err != nil {
		return nil, fmt.Errorf("corrupt creation_time for user %s: %w", userID, err)
	}
	out.CreationTime = t
	return &out, nil
}

func (u *users) Delete(ctx context.Context, userID string) error {
	res, err := u.db.ExecContext(ctx, `DELETE FROM users WHERE user_id=?`, userID)
	if err != nil {
		return mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

// --- Health entries ---

type healthEntries struct{ db *sql.DB }

const healthCols = `entry_id, user_id, entry_date, water, steps, calories, meals, meal_types,
        cycle, period_day, bath, face_wash, notes, creation_time, update_time`

func (h *healthEntries) Create(ctx context.Context, e *model.HealthEntry) (*model.HealthEntry, error) {
	id := e.ID
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now().UTC()
	_, err := h.db.ExecContext(ctx, `
        INSERT INTO health_entries (`+healthCols+`)
        VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
    `, id, e.UserID, e.Date.String(), e.Water, e.Steps, e.Calories,
		marshalList(e.Meals), marshalList(e.MealTypes), e.Cycle, e.PeriodDay,
		e.Bath, e.FaceWash, e.Notes, fmtTime(now), fmtTime(now))
	if err != nil {
		return nil, mapErr(err)
	}
	return h.GetByID(ctx, e.UserID, id)
}

func scanHealth(sc interface{ Scan(...any) error }) (*model.HealthEntry, error) {
	var e model.HealthEntry
	var date, meals, mealTypes, created, updated string
	if err := sc.Scan(&e.ID, &e.UserID, &date, &e.Water, &e.Steps, &e.Calories,
		&meals, &mealTypes, &e.Cycle, &e.PeriodDay, &e.Bath, &e.FaceWash, &e.Notes,
		&created, &updated); err != nil {
		return nil, mapErr(err)
	}
	d, err := model.ParseDate(date)
	if err != nil {
		return nil, err
	}
	e.Date = d
	e.Meals = unmarshalList(meals)
	e.MealTypes = unmarshalList(mealTypes)
	if e.CreationTime, err = parseTime(created); err != nil {
		return nil, err
	}
	if e.UpdateTime, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &e, nil
}

func (h *healthEntries) GetByID(ctx context.Context, userID, entryID string) (*model.HealthEntry, error) {
	row := h.db.QueryRowContext(ctx, `
        SELECT `+healthCols+` FROM health_entries WHERE user_id=? AND entry_id=?
    `, userID, entryID)
	return scanHealth(row)
}

func (h *healthEntries) FindByUserAndDate(ctx context.Context, userID string, date model.Date) ([]*model.HealthEntry, error) {
	rows, err := h.db.QueryContext(ctx, `
        SELECT `+healthCols+` FROM health_entries
        WHERE user_id=? AND entry_date=? ORDER BY creation_time ASC
    `, userID, date.String())
	if err != nil {
		return nil, mapErr(err)
	}
	return collectHealth(rows)
}

func (h *healthEntries) ListByUser(ctx context.Context, userID string) ([]*model.HealthEntry, error) {
	rows, err := h.db.QueryContext(ctx, `
        SELECT `+healthCols+` FROM health_entries
        WHERE user_id=? ORDER BY entry_date DESC
    `, userID)
	if err != nil {
		return nil, mapErr(err)
	}
	return collectHealth(rows)
}

func collectHealth(rows *sql.Rows) ([]*model.HealthEntry, error) {
	defer func() { _ = rows.Close() }()
	var out []*model.HealthEntry
	for rows.Next() {
		e, err := scanHealth(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (h *healthEntries) Update(ctx context.Context, userID, entryID string, p model.HealthEntryPatch) (*model.HealthEntry, error) {
	sets, args := []string{}, []any{}
	add := func(col string, v any) {
		sets = append(sets, col+"=?")
		args = append(args, v)
	}
	if p.Water != nil {
		add("water", *p.Water)
	}
	if p.Steps != nil {
		add("steps", *p.Steps)
	}
	if p.Calories != nil {
		add("calories", *p.Calories)
	}
	if p.Meals != nil {
		add("meals", marshalList(*p.Meals))
	}
	if p.MealTypes != nil {
		add("meal_types", marshalList(*p.MealTypes))
	}
	if p.Cycle != nil {
		add("cycle", *p.Cycle)
	}
	if p.PeriodDay != nil {
		add("period_day", *p.PeriodDay)
	}
	if p.Bath != nil {
		add("bath", *p.Bath)
	}
	if p.FaceWash != nil {
		add("face_wash", *p.FaceWash)
	}
	if p.Notes != nil {
		add("notes", *p.Notes)
	}
	if len(sets) == 0 {
		return h.GetByID(ctx, userID, entryID)
	}
	add("update_time", fmtTime(time.Now().UTC()))
	args = append(args, userID, entryID)
	res, err := h.db.ExecContext(ctx,
		`UPDATE health_entries SET `+strings.Join(sets, ", ")+` WHERE user_id=? AND entry_id=?`, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, model.ErrNotFound
	}
	return h.GetByID(ctx, userID, entryID)
}

func (h *healthEntries) Delete(ctx context.Context, userID, entryID string) error {
	res, err := h.db.ExecContext(ctx, `DELETE FROM health_entries WHERE user_id=? AND entry_id=?`, userID, entryID)
	if err != nil {
		return mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (h *healthEntries) Stats(ctx context.Context, userID string, start, end model.Date) (*model.HealthStats, error) {
	rows, err := h.db.QueryContext(ctx, `
        SELECT `+healthCols+` FROM health_entries
        WHERE user_id=? AND entry_date>=? AND entry_date<=? ORDER BY entry_date ASC
    `, userID, start.String(), end.String())
	if err != nil {
		return nil, mapErr(err)
	}
	entries, err := collectHealth(rows)
	if err != nil {
		return nil, err
	}
	return store.ComputeHealthStats(entries, start, end), nil
}

// --- Tasks ---

type tasks struct{ db *sql.DB }

const taskCols = `task_id, user_id, title, description, task_type, status, due_time,
        priority, subject, tags, creation_time, update_time`

func (t *tasks) Create(ctx context.Context, m *model.Task) (*model.Task, error) {
	id := m.ID
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now().UTC()
	var due *string
	if m.DueTime != nil {
		s := fmtTime(*m.DueTime)
		due = &s
	}
	_, err := t.db.ExecContext(ctx, `
        INSERT INTO tasks (`+taskCols+`)
        VALUES (?,?,?,?,?,?,?,?,?,?,?,?)
    `, id, m.UserID, m.Title, m.Description, m.Type, m.Status, due,
		m.Priority, m.Subject, marshalList(m.Tags), fmtTime(now), fmtTime(now))
	if err != nil {
		return nil, mapErr(err)
	}
	return t.GetByID(ctx, m.UserID, id)
}

func scanTask(sc interface{ Scan(...any) error }) (*model.Task, error) {
	var m model.Task
	var due *string
	var tags, created, updated string
	if err := sc.Scan(&m.ID, &m.UserID, &m.Title, &m.Description, &m.Type, &m.Status,
		&due, &m.Priority, &m.Subject, &tags, &created, &updated); err != nil {
		return nil, mapErr(err)
	}
	var err error
	if due != nil {
		d, perr := parseTime(*due)
		if perr != nil {
			return nil, perr
		}
		m.DueTime = &d
	}
	m.Tags = unmarshalList(tags)
	if m.CreationTime, err = parseTime(created); err != nil {
		return nil, err
	}
	if m.UpdateTime, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &m, nil
}

func (t *tasks) GetByID(ctx context.Context, userID, taskID string) (*model.Task, error) {
	row := t.db.QueryRowContext(ctx, `
        SELECT `+taskCols+` FROM tasks WHERE user_id=? AND task_id=?
    `, userID, taskID)
	return scanTask(row)
}

func (t *tasks) ListByUser(ctx context.Context, userID string) ([]*model.Task, error) {
	rows, err := t.db.QueryContext(ctx, `
        SELECT `+taskCols+` FROM tasks WHERE user_id=?
        ORDER BY due_time IS NULL, due_time ASC, creation_time ASC
    `, userID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer func() { _ = rows.Close() }()
	var out []*model.Task
	for rows.Next() {
		m, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (t *tasks) Update(ctx context.Context, userID, taskID string, p model.TaskPatch) (*model.Task, error) {
	sets, args := []string{}, []any{}
	add := func(col string, v any) {
		sets = append(sets, col+"=?")
		args = append(args, v)
	}
	if p.Title != nil {
		add("title", *p.Title)
	}
	if p.Description != nil {
		add("description", *p.Description)
	}
	if p.Type != nil {
		add("task_type", *p.Type)
	}
	if p.Status != nil {
		add("status", *p.Status)
	}
	if p.DueTime != nil {
		add("due_time", fmtTime(*p.DueTime))
	}
	if p.Priority != nil {
		add("priority", *p.Priority)
	}
	if p.Subject != nil {
		add("subject", *p.Subject)
	}
	if p.Tags != nil {
		add("tags", marshalList(*p.Tags))
	}
	if len(sets) == 0 {
		return t.GetByID(ctx, userID, taskID)
	}
	add("update_time", fmtTime(time.Now().UTC()))
	args = append(args, userID, taskID)
	res, err := t.db.ExecContext(ctx,
		`UPDATE tasks SET `+strings.Join(sets, ", ")+` WHERE user_id=? AND task_id=?`, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, model.ErrNotFound
	}
	return t.GetByID(ctx, userID, taskID)
}

func (t *tasks) Delete(ctx context.Context, userID, taskID string) error {
	res, err := t.db.ExecContext(ctx, `DELETE FROM tasks WHERE user_id=? AND task_id=?`, userID, taskID)
	if err != nil {
		return mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

// --- Journal entries ---

type journalEntries struct{ db *sql.DB }

const journalCols = `entry_id, user_id, title, content, entry_time, mood, tags,
        private, creation_time, update_time`

func (j *journalEntries) Create(ctx context.Context, e *model.JournalEntry) (*model.JournalEntry, error) {
	id := e.ID
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now().UTC()
	_, err := j.db.ExecContext(ctx, `
        INSERT INTO journal_entries (`+journalCols+`)
        VALUES (?,?,?,?,?,?,?,?,?,?)
    `, id, e.UserID, e.Title, e.Content, fmtTime(e.EntryTime), e.Mood,
		marshalList(e.Tags), e.Private, fmtTime(now), fmtTime(now))
	if err != nil {
		return nil, mapErr(err)
	}
	return j.GetByID(ctx, e.UserID, id)
}

func scanJournal(sc interface{ Scan(...any) error }) (*model.JournalEntry, error) {
	var e model.JournalEntry
	var entryTime, tags, created, updated string
	if err := sc.Scan(&e.ID, &e.UserID, &e.Title, &e.Content, &entryTime, &e.Mood,
		&tags, &e.Private, &created, &updated); err != nil {
		return nil, mapErr(err)
	}
	var err error
	if e.EntryTime, err = parseTime(entryTime); err != nil {
		return nil, err
	}
	e.Tags = unmarshalList(tags)
	if e.CreationTime, err = parseTime(created); err != nil {
		return nil, err
	}
	if e.UpdateTime, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &e, nil
}

func (j *journalEntries) GetByID(ctx context.Context, userID, entryID string) (*model.JournalEntry, error) {
	row := j.db.QueryRowContext(ctx, `
        SELECT `+journalCols+` FROM journal_entries WHERE user_id=? AND entry_id=?
    `, userID, entryID)
	return scanJournal(row)
}

func (j *journalEntries) ListByUserAndRange(ctx context.Context, userID string, start, end time.Time) ([]*model.JournalEntry, error) {
	rows, err := j.db.QueryContext(ctx, `
        SELECT `+journalCols+` FROM journal_entries
        WHERE user_id=? AND entry_time>=? AND entry_time<?
        ORDER BY entry_time DESC
    `, userID, fmtTime(start), fmtTime(end))
	if err != nil {
		return nil, mapErr(err)
	}
	return collectJournal(rows)
}

func (j *journalEntries) ListByUser(ctx context.Context, userID string) ([]*model.JournalEntry, error) {
	rows, err := j.db.QueryContext(ctx, `
        SELECT `+journalCols+` FROM journal_entries
        WHERE user_id=? ORDER BY entry_time DESC
    `, userID)
	if err != nil {
		return nil, mapErr(err)
	}
	return collectJournal(rows)
}

func collectJournal(rows *sql.Rows) ([]*model.JournalEntry, error) {
	defer func() { _ = rows.Close() }()
	var out []*model.JournalEntry
	for rows.Next() {
		e, err := scanJournal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (j *journalEntries) Update(ctx context.Context, userID, entryID string, p model.JournalEntryPatch) (*model.JournalEntry, error) {
	sets, args := []string{}, []any{}
	add := func(col string, v any) {
		sets = append(sets, col+"=?")
		args = append(args, v)
	}
	if p.Title != nil {
		add("title", *p.Title)
	}
	if p.Content != nil {
		add("content", *p.Content)
	}
	if p.EntryTime != nil {
		add("entry_time", fmtTime(*p.EntryTime))
	}
	if p.Mood != nil {
		add("mood", *p.Mood)
	}
	if p.Tags != nil {
		add("tags", marshalList(*p.Tags))
	}
	if p.Private != nil {
		add("private", *p.Private)
	}
	if len(sets) == 0 {
		return j.GetByID(ctx, userID, entryID)
	}
	add("update_time", fmtTime(time.Now().UTC()))
	args = append(args, userID, entryID)
	res, err := j.db.ExecContext(ctx,
		`UPDATE journal_entries SET `+strings.Join(sets, ", ")+` WHERE user_id=? AND entry_id=?`, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, model.ErrNotFound
	}
	return j.GetByID(ctx, userID, entryID)
}

func (j *journalEntries) Delete(ctx context.Context, userID, entryID string) error {
	res, err := j.db.ExecContext(ctx, `DELETE FROM journal_entries WHERE user_id=? AND entry_id=?`, userID, entryID)
	if err != nil {
		return mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

// --- Expenses ---

type expenses struct{ db *sql.DB }

const expenseCols = `expense_id, user_id, amount, category, expense_date, description,
        payment_method, tags, creation_time, update_time`

func (x *expenses) Create(ctx context.Context, e *model.Expense) (*model.Expense, error) {
	id := e.ID
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now().UTC()
	_, err := x.db.ExecContext(ctx, `
        INSERT INTO expenses (`+expenseCols+`)
        VALUES (?,?,?,?,?,?,?,?,?,?)
    `, id, e.UserID, e.Amount, e.Category, e.Date.String(), e.Description,
		e.PaymentMethod, marshalList(e.Tags), fmtTime(now), fmtTime(now))
	if err != nil {
		return nil, mapErr(err)
	}
	return x.GetByID(ctx, e.UserID, id)
}

func scanExpense(sc interface{ Scan(...any) error }) (*model.Expense, error) {
	var e model.Expense
	var date, tags, created, updated string
	if err := sc.Scan(&e.ID, &e.UserID, &e.Amount, &e.Category, &date, &e.Description,
		&e.PaymentMethod, &tags, &created, &updated); err != nil {
		return nil, mapErr(err)
	}
	d, err := model.ParseDate(date)
	if err != nil {
		return nil, err
	}
	e.Date = d
	e.Tags = unmarshalList(tags)
	if e.CreationTime, err = parseTime(created); err != nil {
		return nil, err
	}
	if e.UpdateTime, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &e, nil
}

func (x *expenses) GetByID(ctx context.Context, userID, expenseID string) (*model.Expense, error) {
	row := x.db.QueryRowContext(ctx, `
        SELECT `+expenseCols+` FROM expenses WHERE user_id=? AND expense_id=?
    `, userID, expenseID)
	return scanExpense(row)
}

func (x *expenses) ListByUserAndDate(ctx context.Context, userID string, date model.Date) ([]*model.Expense, error) {
	rows, err := x.db.QueryContext(ctx, `
        SELECT `+expenseCols+` FROM expenses
        WHERE user_id=? AND expense_date=? ORDER BY creation_time DESC
    `, userID, date.String())
	if err != nil {
		return nil, mapErr(err)
	}
	defer func() { _ = rows.Close() }()
	var out []*model.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (x *expenses) SumByUserAndDate(ctx context.Context, userID string, date model.Date) (float64, error) {
	row := x.db.QueryRowContext(ctx, `
        SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE user_id=? AND expense_date=?
    `, userID, date.String())
	var total float64
	if err := row.Scan(&total); err != nil {
		return 0, mapErr(err)
	}
	return total, nil
}

func (x *expenses) Update(ctx context.Context, userID, expenseID string, p model.ExpensePatch) (*model.Expense, error) {
	sets, args := []string{}, []any{}
	add := func(col string, v any) {
		sets = append(sets, col+"=?")
		args = append(args, v)
	}
	if p.Amount != nil {
		add("amount", *p.Amount)
	}
	if p.Category != nil {
		add("category", *p.Category)
	}
	if p.Date != nil {
		add("expense_date", p.Date.String())
	}
	if p.Description != nil {
		add("description", *p.Description)
	}
	if p.PaymentMethod != nil {
		add("payment_method", *p.PaymentMethod)
	}
	if p.Tags != nil {
		add("tags", marshalList(*p.Tags))
	}
	if len(sets) == 0 {
		return x.GetByID(ctx, userID, expenseID)
	}
	add("update_time", fmtTime(time.Now().UTC()))
	args = append(args, userID, expenseID)
	res, err := x.db.ExecContext(ctx,
		`UPDATE expenses SET `+strings.Join(sets, ", ")+` WHERE user_id=? AND expense_id=?`, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, model.ErrNotFound
	}
	return x.GetByID(ctx, userID, expenseID)
}

func (x *expenses) Delete(ctx context.Context, userID, expenseID string) error {
	res, err := x.db.ExecContext(ctx, `DELETE FROM expenses WHERE user_id=? AND expense_id=?`, userID, expenseID)
	if err != nil {
		return mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}
