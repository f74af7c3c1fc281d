package services

import (
	"context"
	"fmt"

	"github.com/lifelog/lifelog-server/internal/model"
	"github.com/lifelog/lifelog-server/internal/store"
)

// TaskService orchestrates task use cases.
type TaskService struct {
	store store.Store
}

func NewTaskService(s store.Store) *TaskService { return &TaskService{store: s} }

func (s *TaskService) CreateTask(ctx context.Context, t *model.Task) (*model.Task, error) {
	if t.Title == "" {
		return nil, fmt.Errorf("title is required: %w", model.ErrValidation)
	}
	if t.Status == "" {
		t.Status = model.TaskStatusPending
	}
	return s.store.Tasks().Create(ctx, t)
}

func (s *TaskService) GetTask(ctx context.Context, userID, taskID string) (*model.Task, error) {
	return s.store.Tasks().GetByID(ctx, userID, taskID)
}

// ListTasks returns all tasks for the user in canonical order (due
// ascending, undated last, ties by creation time).
func (s *TaskService) ListTasks(ctx context.Context, userID string) ([]*model.Task, error) {
	return s.store.Tasks().ListByUser(ctx, userID)
}

func (s *TaskService) UpdateTask(ctx context.Context, userID, taskID string, p model.TaskPatch) (*model.Task, error) {
	return s.store.Tasks().Update(ctx, userID, taskID, p)
}

func (s *TaskService) DeleteTask(ctx context.Context, userID, taskID string) error {
	return s.store.Tasks().Delete(ctx, userID, taskID)
}
