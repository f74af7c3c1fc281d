package services

import (
	"context"
	"fmt"
	"time"

	"github.com/lifelog/lifelog-server/internal/model"
	"github.com/lifelog/lifelog-server/internal/store"
)

// JournalService orchestrates journal-entry use cases.
type JournalService struct {
	store store.Store
	clock Clock
}

func NewJournalService(s store.Store, opts ...JournalOption) *JournalService {
	svc := &JournalService{store: s, clock: SystemClock()}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type JournalOption func(*JournalService)

func WithJournalClock(c Clock) JournalOption {
	return func(s *JournalService) { s.clock = c }
}

func (s *JournalService) CreateEntry(ctx context.Context, e *model.JournalEntry) (*model.JournalEntry, error) {
	if e.Title == "" {
		return nil, fmt.Errorf("title is required: %w", model.ErrValidation)
	}
	if e.EntryTime.IsZero() {
		e.EntryTime = s.clock.Now()
	}
	return s.store.Journal().Create(ctx, e)
}

func (s *JournalService) GetEntry(ctx context.Context, userID, entryID string) (*model.JournalEntry, error) {
	return s.store.Journal().GetByID(ctx, userID, entryID)
}

func (s *JournalService) ListEntries(ctx context.Context, userID string) ([]*model.JournalEntry, error) {
	return s.store.Journal().ListByUser(ctx, userID)
}

// ListEntriesByRange returns entries with start <= EntryTime < end, most
// recent first.
func (s *JournalService) ListEntriesByRange(ctx context.Context, userID string, start, end time.Time) ([]*model.JournalEntry, error) {
	if !end.After(start) {
		return nil, fmt.Errorf("end must be after start: %w", model.ErrValidation)
	}
	return s.store.Journal().ListByUserAndRange(ctx, userID, start, end)
}

func (s *JournalService) UpdateEntry(ctx context.Context, userID, entryID string, p model.JournalEntryPatch) (*model.JournalEntry, error) {
	return s.store.Journal().Update(ctx, userID, entryID, p)
}

func (s *JournalService) DeleteEntry(ctx context.Context, userID, entryID string) error {
	return s.store.Journal().Delete(ctx, userID, entryID)
}
