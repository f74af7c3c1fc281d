package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	respond "github.com/lifelog/lifelog-server/internal/api/respond"
	"github.com/lifelog/lifelog-server/internal/model"
	"github.com/lifelog/lifelog-server/internal/services"
)

// JournalHandler is a thin HTTP transport over JournalService.
type JournalHandler struct {
	svc *services.JournalService
}

func NewJournalHandler(svc *services.JournalService) *JournalHandler {
	return &JournalHandler{svc: svc}
}

// CreateEntry POST /api/users/{userId}/journal
func (h *JournalHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	var req model.JournalEntry
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

// ListEntries GET /api/users/{userId}/journal[?start=RFC3339&end=RFC3339]
// With both bounds present the listing is limited to the half-open window
// [start, end); otherwise the user's full journal is returned, most recent
// first.
func (h *JournalHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	q := r.URL.Query()

	var (
		entries []*model.JournalEntry
		err     error
	)
	if q.Get("start") != "" || q.Get("end") != "" {
		start, perr := time.Parse(time.RFC3339, q.Get("start"))
		if perr != nil {
			respond.WriteBadRequest(w, "start must be RFC3339")
			return
		}
		end, perr := time.Parse(time.RFC3339, q.Get("end"))
		if perr != nil {
			respond.WriteBadRequest(w, "end must be RFC3339")
			return
		}
		entries, err = h.svc.ListEntriesByRange(r.Context(), userID, start, end)
	} else {
		entries, err = h.svc.ListEntries(r.Context(), userID)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if entries == nil {
		entries = []*model.JournalEntry{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"entries": entries, "count": len(entries)})
}

// GetEntry GET /api/users/{userId}/journal/{entryId}
func (h *JournalHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	e, err := h.svc.GetEntry(r.Context(), vars["userId"], vars["entryId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, e)
}

// UpdateEntry PATCH /api/users/{userId}/journal/{entryId}
func (h *JournalHandler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var patch model.JournalEntryPatch
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

// DeleteEntry DELETE /api/users/{userId}/journal/{entryId}
func (h *JournalHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.svc.DeleteEntry(r.Context(), vars["userId"], vars["entryId"]); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
