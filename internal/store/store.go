package store

import (
	"context"
	"time"

	"github.com/lifelog/lifelog-server/internal/model"
)

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/ (memory, sqlite,
// postgres). All queries are read-only unless the method name says
// otherwise; none of them mutates state as a side effect of a read.
type Store interface {
	Users() Users
	Health() HealthEntries
	Tasks() Tasks
	Journal() JournalEntries
	Expenses() Expenses
}

type Users interface {
	Create(ctx context.Context, u *model.User) (*model.User, error)
	Get(ctx context.Context, userID string) (*model.User, error)
	Delete(ctx context.Context, userID string) error
}

type HealthEntries interface {
	Create(ctx context.Context, e *model.HealthEntry) (*model.HealthEntry, error)
	GetByID(ctx context.Context, userID, entryID string) (*model.HealthEntry, error)
	// FindByUserAndDate returns every entry recorded for the (user, date)
	// pair. The schema guarantees at most one, but the result is a slice so
	// callers can observe a violated contract instead of silently taking
	// the first row.
	FindByUserAndDate(ctx context.Context, userID string, date model.Date) ([]*model.HealthEntry, error)
	// ListByUser returns entries ordered by date descending.
	ListByUser(ctx context.Context, userID string) ([]*model.HealthEntry, error)
	Update(ctx context.Context, userID, entryID string, p model.HealthEntryPatch) (*model.HealthEntry, error)
	Delete(ctx context.Context, userID, entryID string) error
	// Stats aggregates entries whose date lies in [start, end].
	Stats(ctx context.Context, userID string, start, end model.Date) (*model.HealthStats, error)
}

type Tasks interface {
	Create(ctx context.Context, t *model.Task) (*model.Task, error)
	GetByID(ctx context.Context, userID, taskID string) (*model.Task, error)
	// ListByUser returns every task for the user, unpaged, in canonical
	// order: due time ascending with undated tasks last, ties broken by
	// creation time ascending. Daily aggregation depends on this query
	// never truncating candidates.
	ListByUser(ctx context.Context, userID string) ([]*model.Task, error)
	Update(ctx context.Context, userID, taskID string, p model.TaskPatch) (*model.Task, error)
	Delete(ctx context.Context, userID, taskID string) error
}

type JournalEntries interface {
	Create(ctx context.Context, e *model.JournalEntry) (*model.JournalEntry, error)
	GetByID(ctx context.Context, userID, entryID string) (*model.JournalEntry, error)
	// ListByUserAndRange returns entries with start <= EntryTime < end,
	// most recent first.
	ListByUserAndRange(ctx context.Context, userID string, start, end time.Time) ([]*model.JournalEntry, error)
	// ListByUser returns all entries, most recent first.
	ListByUser(ctx context.Context, userID string) ([]*model.JournalEntry, error)
	Update(ctx context.Context, userID, entryID string, p model.JournalEntryPatch) (*model.JournalEntry, error)
	Delete(ctx context.Context, userID, entryID string) error
}

type Expenses interface {
	Create(ctx context.Context, e *model.Expense) (*model.Expense, error)
	GetByID(ctx context.Context, userID, expenseID string) (*model.Expense, error)
	// ListByUserAndDate returns expenses dated exactly on date, newest
	// first by creation time.
	ListByUserAndDate(ctx context.Context, userID string, date model.Date) ([]*model.Expense, error)
	// SumByUserAndDate returns the total amount spent on date, 0 if none.
	SumByUserAndDate(ctx context.Context, userID string, date model.Date) (float64, error)
	Update(ctx context.Context, userID, expenseID string, p model.ExpensePatch) (*model.Expense, error)
	Delete(ctx context.Context, userID, expenseID string) error
}
