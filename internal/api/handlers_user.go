package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	respond "github.com/lifelog/lifelog-server/internal/api/respond"
	"github.com/lifelog/lifelog-server/internal/api/validate"
	"github.com/lifelog/lifelog-server/internal/model"
	"github.com/lifelog/lifelog-server/internal/services"
)

// UserHandler is a thin HTTP transport over UserService.
type UserHandler struct {
	svc *services.UserService
}

func NewUserHandler(svc *services.UserService) *UserHandler { return &UserHandler{svc: svc} }

// CreateUser POST /api/users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID      string  `json:"userId"`
		Email       string  `json:"email"`
		DisplayName *string `json:"displayName"`
		TimeZone    string  `json:"timeZone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := validate.UserID(req.UserID); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if err := validate.Email(req.Email); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if err := validate.TimeZone(req.TimeZone); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	u := &model.User{
		UserID:      req.UserID,
		Email:       req.Email,
		DisplayName: req.DisplayName,
		TimeZone:    req.TimeZone,
	}
	out, err := h.svc.CreateUser(r.Context(), u)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// GetUser GET /api/users/{userId}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.GetUser(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, u)
}

// DeleteUser DELETE /api/users/{userId}
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteUser(r.Context(), mux.Vars(r)["userId"]); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
