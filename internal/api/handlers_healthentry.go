package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	respond "github.com/lifelog/lifelog-server/internal/api/respond"
	"github.com/lifelog/lifelog-server/internal/model"
	"github.com/lifelog/lifelog-server/internal/services"
)

// HealthEntryHandler is a thin HTTP transport over HealthService.
type HealthEntryHandler struct {
	svc *services.HealthService
}

func NewHealthEntryHandler(svc *services.HealthService) *HealthEntryHandler {
	return &HealthEntryHandler{svc: svc}
}

// parseDateParam reads a "YYYY-MM-DD" query parameter. Returns nil when the
// parameter is absent; writes a 400 and returns an error when malformed.
func parseDateParam(w http.ResponseWriter, r *http.Request, name string) (*model.Date, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		respond.WriteBadRequest(w, name+" must be YYYY-MM-DD")
		return nil, false
	}
	return &d, true
}

// CreateEntry POST /api/users/{userId}/health
func (h *HealthEntryHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	var req model.HealthEntry
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	req.UserID = userID
	out, err := h.svc.CreateEntry(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// ListEntries GET /api/users/{userId}/health[?date=YYYY-MM-DD]
func (h *HealthEntryHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	date, ok := parseDateParam(w, r, "date")
	if !ok {
		return
	}

	var (
		entries []*model.HealthEntry
		err     error
	)
	if date != nil {
		entries, err = h.svc.FindEntryByDate(r.Context(), userID, *date)
	} else {
		entries, err = h.svc.ListEntries(r.Context(), userID)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if entries == nil {
		entries = []*model.HealthEntry{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"entries": entries, "count": len(entries)})
}

// GetEntry GET /api/users/{userId}/health/{entryId}
func (h *HealthEntryHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	e, err := h.svc.GetEntry(r.Context(), vars["userId"], vars["entryId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, e)
}

// UpdateEntry PATCH /api/users/{userId}/health/{entryId}
func (h *HealthEntryHandler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var patch model.HealthEntryPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	out, err := h.svc.UpdateEntry(r.Context(), vars["userId"], vars["entryId"], patch)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// DeleteEntry DELETE /api/users/{userId}/health/{entryId}
func (h *HealthEntryHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.svc.DeleteEntry(r.Context(), vars["userId"], vars["entryId"]); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetStats GET /api/users/{userId}/health/stats?start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *HealthEntryHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	start, ok := parseDateParam(w, r, "start")
	if !ok {
		return
	}
	end, ok := parseDateParam(w, r, "end")
	if !ok {
		return
	}
	if start == nil || end == nil {
		respond.WriteBadRequest(w, "start and end are required")
		return
	}
	stats, err := h.svc.GetStats(r.Context(), userID, *start, *end)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, stats)
}
