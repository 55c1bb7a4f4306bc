package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"event-dashboard-api/internal/stats"
)

func (h *Handler) handleStatistics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		fail(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		Page string `json:"page"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Page == "" {
		fail(w, http.StatusBadRequest, "page is required")
		return
	}
	if !stats.Pages[req.Page] {
		fail(w, http.StatusBadRequest, "page must be one of: dashboard, clients, users, notifications, trivia")
		return
	}

	statistics, err := h.stats.ForPage(r.Context(), req.Page)
	if err != nil {
		h.log.Error("statistics aggregation failed",
			zap.String("page", req.Page),
			zap.Error(err))
		fail(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"page":       req.Page,
		"statistics": statistics,
	})
}
