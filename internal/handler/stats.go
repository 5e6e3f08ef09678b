package handler

import (
	"log/slog"
	"net/http"

	"github.com/sereniteo/crm/internal/stats"
	"github.com/sereniteo/crm/internal/store"
)

type StatsHandler struct {
	contactStore *store.ContactStore
	logger       *slog.Logger
}

func NewStatsHandler(cs *store.ContactStore, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{contactStore: cs, logger: logger}
}

// Get recomputes the dashboard aggregates from the full contact set on every
// call.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.contactStore.List()
	if err != nil {
		h.logger.Error("load contacts for stats", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to fetch stats"})
		return
	}

	writeJSON(w, http.StatusOK, stats.Compute(contacts))
}
