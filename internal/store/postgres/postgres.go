// Package postgres implements store.Store on PostgreSQL via the pgx stdlib
// driver. Schema setup is handled by deployment migrations (schema.sql is
// the reference DDL); Bootstrap only verifies connectivity.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/lifelog/lifelog-server/internal/model"
	"github.com/lifelog/lifelog-server/internal/store"
)

// Open opens a PostgreSQL connection using the pgx stdlib driver and
// verifies connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NewWithDB constructs a Postgres store backed directly by database/sql.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

// Bootstrap performs a connectivity check to ensure Postgres is reachable.
func Bootstrap(ctx context.Context, dsn string) error {
	if dsn == "" {
		return nil
	}
	db, err := Open(dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	return db.PingContext(ctx)
}

type pgStore struct{ db *sql.DB }

func (s *pgStore) Users() store.Users            { return &users{db: s.db} }
func (s *pgStore) Health() store.HealthEntries   { return &healthEntries{db: s.db} }
func (s *pgStore) Tasks() store.Tasks            { return &tasks{db: s.db} }
func (s *pgStore) Journal() store.JournalEntries { return &journalEntries{db: s.db} }
func (s *pgStore) Expenses() store.Expenses      { return &expenses{db: s.db} }

// HealthPing implements health.HealthPinger.
func (s *pgStore) HealthPing(ctx context.Context) error { return s.db.PingContext(ctx) }

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrNotFound
	}
	// 23505 = unique_violation
	if strings.Contains(err.Error(), "23505") || strings.Contains(err.Error(), "duplicate key") {
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

func toDate(t time.Time) model.Date { return model.DateOf(t, time.UTC) }

// --- Users ---

type users struct{ db *sql.DB }

func (u *users) Create(ctx context.Context, m *model.User) (*model.User, error) {
	var created time.Time
	row := u.db.QueryRowContext(ctx, `
        INSERT INTO users (user_id, email, display_name, time_zone, status)
        VALUES ($1,$2,$3,$4,'ACTIVE')
        RETURNING creation_time
    `, m.UserID, m.Email, m.DisplayName, m.TimeZone)
	if err := row.Scan(&created); err != nil {
		return nil, mapErr(err)
	}
	out := *m
	out.Status = "ACTIVE"
	out.CreationTime = created
	return &out, nil
}

func (u *users) Get(ctx context.Context, userID string) (*model.User, error) {
	var out model.User
	row := u.db.QueryRowContext(ctx, `
        SELECT user_id, email, display_name, time_zone, status, creation_time
        FROM users WHERE user_id=$1
    `, userID)
	if err := row.Scan(&out.UserID, &out.Email, &out.DisplayName, &out.TimeZone, &out.Status, &out.CreationTime); err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

func (u *users) Delete(ctx context.Context, userID string) error {
	res, err := u.db.ExecContext(ctx, `DELETE FROM users WHERE user_id=$1`, userID)
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
	row := h.db.QueryRowContext(ctx, `
        INSERT INTO health_entries
            (entry_id, user_id, entry_date, water, steps, calories, meals, meal_types,
             cycle, period_day, bath, face_wash, notes)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
        RETURNING creation_time, update_time
    `, id, e.UserID, e.Date.String(), e.Water, e.Steps, e.Calories,
		marshalList(e.Meals), marshalList(e.MealTypes), e.Cycle, e.PeriodDay,
		e.Bath, e.FaceWash, e.Notes)
	var created, updated time.Time
	if err := row.Scan(&created, &updated); err != nil {
		return nil, mapErr(err)
	}
	return h.GetByID(ctx, e.UserID, id)
}

func scanHealth(sc interface{ Scan(...any) error }) (*model.HealthEntry, error) {
	var e model.HealthEntry
	var date time.Time
	var meals, mealTypes string
	if err := sc.Scan(&e.ID, &e.UserID, &date, &e.Water, &e.Steps, &e.Calories,
		&meals, &mealTypes, &e.Cycle, &e.PeriodDay, &e.Bath, &e.FaceWash, &e.Notes,
		&e.CreationTime, &e.UpdateTime); err != nil {
		return nil, mapErr(err)
	}
	e.Date = toDate(date)
	e.Meals = unmarshalList(meals)
	e.MealTypes = unmarshalList(mealTypes)
	return &e, nil
}

func (h *healthEntries) GetByID(ctx context.Context, userID, entryID string) (*model.HealthEntry, error) {
	row := h.db.QueryRowContext(ctx, `
        SELECT `+healthCols+` FROM health_entries WHERE user_id=$1 AND entry_id=$2
    `, userID, entryID)
	return scanHealth(row)
}

func (h *healthEntries) FindByUserAndDate(ctx context.Context, userID string, date model.Date) ([]*model.HealthEntry, error) {
	rows, err := h.db.QueryContext(ctx, `
        SELECT `+healthCols+` FROM health_entries
        WHERE user_id=$1 AND entry_date=$2 ORDER BY creation_time ASC
    `, userID, date.String())
	if err != nil {
		return nil, mapErr(err)
	}
	return collectHealth(rows)
}

func (h *healthEntries) ListByUser(ctx context.Context, userID string) ([]*model.HealthEntry, error) {
	rows, err := h.db.QueryContext(ctx, `
        SELECT `+healthCols+` FROM health_entries
        WHERE user_id=$1 ORDER BY entry_date DESC
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
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s=$%d", col, len(args)))
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
	sets = append(sets, "update_time=now()")
	args = append(args, userID, entryID)
	q := fmt.Sprintf(`UPDATE health_entries SET %s WHERE user_id=$%d AND entry_id=$%d`,
		strings.Join(sets, ", "), len(args)-1, len(args))
	res, err := h.db.ExecContext(ctx, q, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, model.ErrNotFound
	}
	return h.GetByID(ctx, userID, entryID)
}

func (h *healthEntries) Delete(ctx context.Context, userID, entryID string) error {
	res, err := h.db.ExecContext(ctx, `DELETE FROM health_entries WHERE user_id=$1 AND entry_id=$2`, userID, entryID)
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
        WHERE user_id=$1 AND entry_date>=$2 AND entry_date<=$3 ORDER BY entry_date ASC
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
	_, err := t.db.ExecContext(ctx, `
        INSERT INTO tasks
            (task_id, user_id, title, description, task_type, status, due_time, priority, subject, tags)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
    `, id, m.UserID, m.Title, m.Description, m.Type, m.Status, m.DueTime,
		m.Priority, m.Subject, marshalList(m.Tags))
	if err != nil {
		return nil, mapErr(err)
	}
	return t.GetByID(ctx, m.UserID, id)
}

func scanTask(sc interface{ Scan(...any) error }) (*model.Task, error) {
	var m model.Task
	var tags string
	if err := sc.Scan(&m.ID, &m.UserID, &m.Title, &m.Description, &m.Type, &m.Status,
		&m.DueTime, &m.Priority, &m.Subject, &tags, &m.CreationTime, &m.UpdateTime); err != nil {
		return nil, mapErr(err)
	}
	m.Tags = unmarshalList(tags)
	return &m, nil
}

func (t *tasks) GetByID(ctx context.Context, userID, taskID string) (*model.Task, error) {
	row := t.db.QueryRowContext(ctx, `
        SELECT `+taskCols+` FROM tasks WHERE user_id=$1 AND task_id=$2
    `, userID, taskID)
	return scanTask(row)
}

func (t *tasks) ListByUser(ctx context.Context, userID string) ([]*model.Task, error) {
	rows, err := t.db.QueryContext(ctx, `
        SELECT `+taskCols+` FROM tasks WHERE user_id=$1
        ORDER BY due_time ASC NULLS LAST, creation_time ASC
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
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s=$%d", col, len(args)))
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
		add("due_time", *p.DueTime)
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
	sets = append(sets, "update_time=now()")
	args = append(args, userID, taskID)
	q := fmt.Sprintf(`UPDATE tasks SET %s WHERE user_id=$%d AND task_id=$%d`,
		strings.Join(sets, ", "), len(args)-1, len(args))
	res, err := t.db.ExecContext(ctx, q, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, model.ErrNotFound
	}
	return t.GetByID(ctx, userID, taskID)
}

func (t *tasks) Delete(ctx context.Context, userID, taskID string) error {
	res, err := t.db.ExecContext(ctx, `DELETE FROM tasks WHERE user_id=$1 AND task_id=$2`, userID, taskID)
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
	_, err := j.db.ExecContext(ctx, `
        INSERT INTO journal_entries
            (entry_id, user_id, title, content, entry_time, mood, tags, private)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    `, id, e.UserID, e.Title, e.Content, e.EntryTime, e.Mood, marshalList(e.Tags), e.Private)
	if err != nil {
		return nil, mapErr(err)
	}
	return j.GetByID(ctx, e.UserID, id)
}

func scanJournal(sc interface{ Scan(...any) error }) (*model.JournalEntry, error) {
	var e model.JournalEntry
	var tags string
	if err := sc.Scan(&e.ID, &e.UserID, &e.Title, &e.Content, &e.EntryTime, &e.Mood,
		&tags, &e.Private, &e.CreationTime, &e.UpdateTime); err != nil {
		return nil, mapErr(err)
	}
	e.Tags = unmarshalList(tags)
	return &e, nil
}

func (j *journalEntries) GetByID(ctx context.Context, userID, entryID string) (*model.JournalEntry, error) {
	row := j.db.QueryRowContext(ctx, `
        SELECT `+journalCols+` FROM journal_entries WHERE user_id=$1 AND entry_id=$2
    `, userID, entryID)
	return scanJournal(row)
}

func (j *journalEntries) ListByUserAndRange(ctx context.Context, userID string, start, end time.Time) ([]*model.JournalEntry, error) {
	rows, err := j.db.QueryContext(ctx, `
        SELECT `+journalCols+` FROM journal_entries
        WHERE user_id=$1 AND entry_time>=$2 AND entry_time<$3
        ORDER BY entry_time DESC
    `, userID, start, end)
	if err != nil {
		return nil, mapErr(err)
	}
	return collectJournal(rows)
}

func (j *journalEntries) ListByUser(ctx context.Context, userID string) ([]*model.JournalEntry, error) {
	rows, err := j.db.QueryContext(ctx, `
        SELECT `+journalCols+` FROM journal_entries
        WHERE user_id=$1 ORDER BY entry_time DESC
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
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s=$%d", col, len(args)))
	}
	if p.Title != nil {
		add("title", *p.Title)
	}
	if p.Content != nil {
		add("content", *p.Content)
	}
	if p.EntryTime != nil {
		add("entry_time", *p.EntryTime)
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
	sets = append(sets, "update_time=now()")
	args = append(args, userID, entryID)
	q := fmt.Sprintf(`UPDATE journal_entries SET %s WHERE user_id=$%d AND entry_id=$%d`,
		strings.Join(sets, ", "), len(args)-1, len(args))
	res, err := j.db.ExecContext(ctx, q, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, model.ErrNotFound
	}
	return j.GetByID(ctx, userID, entryID)
}

func (j *journalEntries) Delete(ctx context.Context, userID, entryID string) error {
	res, err := j.db.ExecContext(ctx, `DELETE FROM journal_entries WHERE user_id=$1 AND entry_id=$2`, userID, entryID)
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
	_, err := x.db.ExecContext(ctx, `
        INSERT INTO expenses
            (expense_id, user_id, amount, category, expense_date, description, payment_method, tags)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    `, id, e.UserID, e.Amount, e.Category, e.Date.String(), e.Description,
		e.PaymentMethod, marshalList(e.Tags))
	if err != nil {
		return nil, mapErr(err)
	}
	return x.GetByID(ctx, e.UserID, id)
}

func scanExpense(sc interface{ Scan(...any) error }) (*model.Expense, error) {
	var e model.Expense
	var date time.Time
	var tags string
	if err := sc.Scan(&e.ID, &e.UserID, &e.Amount, &e.Category, &date, &e.Description,
		&e.PaymentMethod, &tags, &e.CreationTime, &e.UpdateTime); err != nil {
		return nil, mapErr(err)
	}
	e.Date = toDate(date)
	e.Tags = unmarshalList(tags)
	return &e, nil
}

func (x *expenses) GetByID(ctx context.Context, userID, expenseID string) (*model.Expense, error) {
	row := x.db.QueryRowContext(ctx, `
        SELECT `+expenseCols+` FROM expenses WHERE user_id=$1 AND expense_id=$2
    `, userID, expenseID)
	return scanExpense(row)
}

func (x *expenses) ListByUserAndDate(ctx context.Context, userID string, date model.Date) ([]*model.Expense, error) {
	rows, err := x.db.QueryContext(ctx, `
        SELECT `+expenseCols+` FROM expenses
        WHERE user_id=$1 AND expense_date=$2 ORDER BY creation_time DESC
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
        SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE user_id=$1 AND expense_date=$2
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
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s=$%d", col, len(args)))
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
	sets = append(sets, "update_time=now()")
	args = append(args, userID, expenseID)
	q := fmt.Sprintf(`UPDATE expenses SET %s WHERE user_id=$%d AND expense_id=$%d`,
		strings.Join(sets, ", "), len(args)-1, len(args))
	res, err := x.db.ExecContext(ctx, q, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, model.ErrNotFound
	}
	return x.GetByID(ctx, userID, expenseID)
}

func (x *expenses) Delete(ctx context.Context, userID, expenseID string) error {
	res, err := x.db.ExecContext(ctx, `DELETE FROM expenses WHERE user_id=$1 AND expense_id=$2`, userID, expenseID)
	if err != nil {
		return mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}
