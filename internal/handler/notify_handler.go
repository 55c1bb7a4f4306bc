package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"event-dashboard-api/internal/push"
)

func (h *Handler) handleSendNotification(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		fail(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		NotificationID string `json:"notificationId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.NotificationID == "" {
		fail(w, http.StatusBadRequest, "notificationId is required")
		return
	}

	d, err := h.dispatcher(r)
	if err != nil {
		failConfig(w, err.Error())
		return
	}

	recipients, messageID, err := d.SendNotification(r.Context(), req.NotificationID)
	if err != nil {
		if errors.Is(err, push.ErrMissingAPIKey) {
			failConfig(w, err.Error())
			return
		}
		h.log.Error("send notification failed",
			zap.String("notification", req.NotificationID),
			zap.Error(err))
		fail(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := map[string]any{"success": true, "recipients": recipients}
	if messageID != "" {
		resp["messageId"] = messageID
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleCheckEventReminders(w http.ResponseWriter, r *http.Request) {
	d, err := h.dispatcher(r)
	if err != nil {
		failConfig(w, err.Error())
		return
	}

	sent24h, sent1h, err := d.CheckAndSendEventReminders(r.Context())
	if err != nil {
		h.log.Error("reminder sweep failed", zap.Error(err))
		fail(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"reminders24h": sent24h,
		"reminders1h":  sent1h,
	})
}
