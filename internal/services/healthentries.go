package services

import (
	"context"
	"fmt"

	"github.com/lifelog/lifelog-server/internal/model"
	"github.com/lifelog/lifelog-server/internal/store"
)

// HealthService orchestrates health-entry use cases. At most one entry may
// exist per (user, date); the store enforces it and Create surfaces the
// conflict.
type HealthService struct {
	store store.Store
}

func NewHealthService(s store.Store) *HealthService { return &HealthService{store: s} }

func (s *HealthService) CreateEntry(ctx context.Context, e *model.HealthEntry) (*model.HealthEntry, error) {
	if e.Date.IsZero() {
		return nil, fmt.Errorf("date is required: %w", model.ErrValidation)
	}
	if e.Water < 0 || e.Steps < 0 {
		return nil, fmt.Errorf("water and steps must be non-negative: %w", model.ErrValidation)
	}
	return s.store.Health().Create(ctx, e)
}

func (s *HealthService) GetEntry(ctx context.Context, userID, entryID string) (*model.HealthEntry, error) {
	return s.store.Health().GetByID(ctx, userID, entryID)
}

func (s *HealthService) ListEntries(ctx context.Context, userID string) ([]*model.HealthEntry, error) {
	return s.store.Health().ListByUser(ctx, userID)
}

func (s *HealthService) FindEntryByDate(ctx context.Context, userID string, date model.Date) ([]*model.HealthEntry, error) {
	return s.store.Health().FindByUserAndDate(ctx, userID, date)
}

func (s *HealthService) UpdateEntry(ctx context.Context, userID, entryID string, p model.HealthEntryPatch) (*model.HealthEntry, error) {
	return s.store.Health().Update(ctx, userID, entryID, p)
}

func (s *HealthService) DeleteEntry(ctx context.Context, userID, entryID string) error {
	return s.store.Health().Delete(ctx, userID, entryID)
}

// GetStats aggregates entries over the inclusive [start, end] range.
func (s *HealthService) GetStats(ctx context.Context, userID string, start, end model.Date) (*model.HealthStats, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("end before start: %w", model.ErrValidation)
	}
	return s.store.Health().Stats(ctx, userID, start, end)
}
