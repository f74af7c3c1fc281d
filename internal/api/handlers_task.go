package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	respond "github.com/lifelog/lifelog-server/internal/api/respond"
	"github.com/lifelog/lifelog-server/internal/model"
	"github.com/lifelog/lifelog-server/internal/services"
)

// TaskHandler is a thin HTTP transport over TaskService.
type TaskHandler struct {
	svc *services.TaskService
}

func NewTaskHandler(svc *services.TaskService) *TaskHandler { return &TaskHandler{svc: svc} }

// CreateTask POST /api/users/{userId}/tasks
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	var req model.Task
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	req.UserID = userID
	out, err := h.svc.CreateTask(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// ListTasks GET /api/users/{userId}/tasks
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.svc.ListTasks(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if tasks == nil {
		tasks = []*model.Task{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"tasks": tasks, "count": len(tasks)})
}

// GetTask GET /api/users/{userId}/tasks/{taskId}
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	task, err := h.svc.GetTask(r.Context(), vars["userId"], vars["taskId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, task)
}

// UpdateTask PATCH /api/users/{userId}/tasks/{taskId}
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var patch model.TaskPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	out, err := h.svc.UpdateTask(r.Context(), vars["userId"], vars["taskId"], patch)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// DeleteTask DELETE /api/users/{userId}/tasks/{taskId}
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.svc.DeleteTask(r.Context(), vars["userId"], vars["taskId"]); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
