package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lifelog/lifelog-server/internal/model"
	"github.com/lifelog/lifelog-server/internal/store"
)

// DailyService composes the daily summary: it fans out to the health, task,
// journal and expense stores for one (user, date) pair, applies the
// per-domain relevance rules, and folds the results into a DailySummary.
// It owns no state and never mutates its collaborators; GetSummary is a
// pure read that is idempotent for unchanged store contents.
type DailyService struct {
	store store.Store
	clock Clock
}

func NewDailyService(s store.Store, opts ...DailyOption) *DailyService {
	svc := &DailyService{store: s, clock: SystemClock()}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type DailyOption func(*DailyService)

// WithClock overrides the clock used when the caller omits a date.
func WithClock(c Clock) DailyOption {
	return func(s *DailyService) { s.clock = c }
}

// GetSummary returns the daily summary for userID on date. A nil date means
// "today" in the user's profile timezone. Errors are one of: a wrapped
// model.ErrValidation (unusable user id), model.ErrNotFound (unknown user),
// *DependencyError (a collaborator query failed) or *InconsistencyError
// (a collaborator violated its contract).
func (s *DailyService) GetSummary(ctx context.Context, userID string, date *model.Date) (*model.DailySummary, error) {
	if userID == "" {
		return nil, fmt.Errorf("userID is required: %w", model.ErrValidation)
	}

	user, err := s.store.Users().Get(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
		return nil, &DependencyError{Collaborator: "user", Err: err}
	}
	loc := userLocation(user)

	day := model.DateOf(s.clock.Now(), loc)
	if date != nil {
		day = *date
	}

	// Day window in the user's timezone. Half-open [start, next) so the
	// last instant of the day is in and the first instant of the next day
	// is out, at any timestamp precision.
	dayStart := day.StartOfDayIn(loc)
	nextStart := day.AddDays(1).StartOfDayIn(loc)

	res, err := s.fetch(ctx, userID, day, dayStart, nextStart)
	if err != nil {
		return nil, err
	}

	if len(res.health) > 1 {
		return nil, &InconsistencyError{
			Collaborator: "health",
			Detail:       fmt.Sprintf("%d entries for user %s on %s, want at most 1", len(res.health), userID, day),
		}
	}

	summary := &model.DailySummary{
		Date:           day,
		UserID:         userID,
		Tasks:          relevantTasks(res.tasks, day, loc),
		JournalEntries: res.journal,
		TotalExpenses:  res.expenses,
	}
	if len(res.health) == 1 {
		summary.Health = res.health[0]
		summary.WaterIntake = summary.Health.Water
		summary.Steps = summary.Health.Steps
	}
	if summary.Tasks == nil {
		summary.Tasks = []*model.Task{}
	}
	if summary.JournalEntries == nil {
		summary.JournalEntries = []*model.JournalEntry{}
	}

	// Counters come from the filtered set only; every relevant task lands
	// in exactly one bucket, so completed+pending == len(Tasks) holds by
	// construction.
	for _, t := range summary.Tasks {
		if t.Status == model.TaskStatusCompleted {
			summary.TasksCompleted++
		} else {
			summary.TasksPending++
		}
	}
	return summary, nil
}

type fetchResults struct {
	health   []*model.HealthEntry
	tasks    []*model.Task
	journal  []*model.JournalEntry
	expenses float64
}

// fetch issues the four collaborator queries concurrently. The queries are
// mutually independent, so end-to-end latency is bounded by the slowest
// collaborator rather than their sum. On the first failure the remaining
// branches are cancelled and a DependencyError naming the failed
// collaborator is returned; partial results are discarded.
func (s *DailyService) fetch(parent context.Context, userID string, day model.Date, dayStart, nextStart time.Time) (*fetchResults, error) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	var (
		res  fetchResults
		wg   sync.WaitGroup
		errs = make(chan *DependencyError, 4)
	)
	run := func(collaborator string, query func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := query(ctx); err != nil {
				errs <- &DependencyError{Collaborator: collaborator, Err: err}
				cancel()
			}
		}()
	}

	run("health", func(ctx context.Context) error {
		entries, err := s.store.Health().FindByUserAndDate(ctx, userID, day)
		if err != nil {
			return err
		}
		res.health = entries
		return nil
	})
	run("task", func(ctx context.Context) error {
		tasks, err := s.store.Tasks().ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		res.tasks = tasks
		return nil
	})
	run("journal", func(ctx context.Context) error {
		entries, err := s.store.Journal().ListByUserAndRange(ctx, userID, dayStart, nextStart)
		if err != nil {
			return err
		}
		res.journal = entries
		return nil
	})
	run("expense", func(ctx context.Context) error {
		total, err := s.store.Expenses().SumByUserAndDate(ctx, userID, day)
		if err != nil {
			return err
		}
		res.expenses = total
		return nil
	})

	wg.Wait()
	close(errs)
	if depErr := firstFailure(errs, parent); depErr != nil {
		return nil, depErr
	}
	return &res, nil
}

// firstFailure picks the error to surface. A branch that only observed the
// caller's own cancellation is not a collaborator failure; in that case the
// parent's error wins.
func firstFailure(errs <-chan *DependencyError, parent context.Context) error {
	var first *DependencyError
	for e := range errs {
		if first == nil {
			first = e
		}
	}
	if first == nil {
		return parent.Err()
	}
	if parent.Err() != nil {
		return parent.Err()
	}
	return first
}

// relevantTasks filters the unpaged task list down to tasks relevant to
// day: those with a due timestamp whose date component, observed in the
// user's timezone, is on or before day. Undated tasks are never relevant to
// any daily summary. Collaborator order (due ascending, ties by creation)
// is preserved; filtering never re-sorts.
func relevantTasks(tasks []*model.Task, day model.Date, loc *time.Location) []*model.Task {
	var out []*model.Task
	for _, t := range tasks {
		if t.DueTime == nil {
			continue
		}
		if model.DateOf(*t.DueTime, loc).After(day) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func userLocation(u *model.User) *time.Location {
	if u.TimeZone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(u.TimeZone)
	if err != nil {
		// Unparseable profile zone falls back to UTC rather than failing
		// the whole aggregation.
		return time.UTC
	}
	return loc
}
