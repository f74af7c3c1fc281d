package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	respond "github.com/lifelog/lifelog-server/internal/api/respond"
	"github.com/lifelog/lifelog-server/internal/model"
	"github.com/lifelog/lifelog-server/internal/services"
)

// ExpenseHandler is a thin HTTP transport over ExpenseService.
type ExpenseHandler struct {
	svc *services.ExpenseService
}

func NewExpenseHandler(svc *services.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{svc: svc}
}

// CreateExpense POST /api/users/{userId}/expenses
func (h *ExpenseHandler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	var req model.Expense
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	req.UserID = userID
	out, err := h.svc.CreateExpense(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// ListExpenses GET /api/users/{userId}/expenses?date=YYYY-MM-DD
func (h *ExpenseHandler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	date, ok := parseDateParam(w, r, "date")
	if !ok {
		return
	}
	if date == nil {
		respond.WriteBadRequest(w, "date is required")
		return
	}
	expenses, err := h.svc.ListExpensesByDate(r.Context(), userID, *date)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if expenses == nil {
		expenses = []*model.Expense{}
	}
	total, err := h.svc.DailyTotal(r.Context(), userID, *date)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"expenses": expenses,
		"count":    len(expenses),
		"total":    total,
	})
}

// GetExpense GET /api/users/{userId}/expenses/{expenseId}
func (h *ExpenseHandler) GetExpense(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	e, err := h.svc.GetExpense(r.Context(), vars["userId"], vars["expenseId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, e)
}

// UpdateExpense PATCH /api/users/{userId}/expenses/{expenseId}
func (h *ExpenseHandler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var patch model.ExpensePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	out, err := h.svc.UpdateExpense(r.Context(), vars["userId"], vars["expenseId"], patch)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// DeleteExpense DELETE /api/users/{userId}/expenses/{expenseId}
func (h *ExpenseHandler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.svc.DeleteExpense(r.Context(), vars["userId"], vars["expenseId"]); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
