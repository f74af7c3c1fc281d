package api

import (
	"net/http"

	"github.com/gorilla/mux"

	respond "github.com/lifelog/lifelog-server/internal/api/respond"
	"github.com/lifelog/lifelog-server/internal/services"
)

// SummaryHandler exposes the composed daily view.
type SummaryHandler struct {
	svc *services.DailyService
}

func NewSummaryHandler(svc *services.DailyService) *SummaryHandler {
	return &SummaryHandler{svc: svc}
}

// GetDailySummary GET /api/users/{userId}/summary/daily[?date=YYYY-MM-DD]
// Without a date the summary covers "today" in the user's profile timezone.
func (h *SummaryHandler) GetDailySummary(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	date, ok := parseDateParam(w, r, "date")
	if !ok {
		return
	}
	summary, err := h.svc.GetSummary(r.Context(), userID, date)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, summary)
}
