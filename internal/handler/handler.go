package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"event-dashboard-api/internal/model"
	"event-dashboard-api/internal/notify"
	"event-dashboard-api/internal/push"
	"event-dashboard-api/internal/stats"
)

// EventStore is the slice of the persistence layer the event endpoints need.
type EventStore interface {
	ListUpcomingEvents(ctx context.Context, from time.Time) ([]model.Event, error)
	GetClient(ctx context.Context, id string) (*model.Client, error)
}

type Handler struct {
	events EventStore
	nstore notify.Store
	push   *push.Client
	stats  *stats.Aggregator
	log    *zap.Logger
}

func New(events EventStore, nstore notify.Store, pushClient *push.Client, agg *stats.Aggregator, log *zap.Logger) *Handler {
	return &Handler{events: events, nstore: nstore, push: pushClient, stats: agg, log: log}
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", h.wrap(h.handlePing))
	mux.HandleFunc("/get-events-by-location", h.wrap(h.handleEventsByLocation))
	mux.HandleFunc("/send-notification", h.wrap(h.handleSendNotification))
	mux.HandleFunc("/check-event-reminders", h.wrap(h.handleCheckEventReminders))
	mux.HandleFunc("/get-statistics", h.wrap(h.handleStatistics))
	mux.HandleFunc("/", h.wrap(h.handleFallback))
	return mux
}

// dispatcher builds a per-request dispatcher, letting an X-Api-Key header
// stand in when no push key is configured in the environment.
func (h *Handler) dispatcher(r *http.Request) (*notify.Dispatcher, error) {
	sender := h.push.WithKey(r.Header.Get("X-Api-Key"))
	if !sender.HasKey() {
		return nil, push.ErrMissingAPIKey
	}
	return notify.NewDispatcher(h.nstore, sender, h.log), nil
}

// wrap converts any panic into a 500 JSON payload so no handler ever takes
// the process down or leaks a bare stack trace.
func (h *Handler) wrap(fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				h.log.Error("handler panic",
					zap.String("path", r.URL.Path),
					zap.Any("panic", rec))
				fail(w, http.StatusInternalServerError, fmt.Sprint(rec))
			}
		}()
		fn(w, r)
	}
}

func (h *Handler) handlePing(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Pong"))
}

func (h *Handler) handleFallback(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"service": "event-dashboard-api",
		"endpoints": []string{
			"GET /ping",
			"POST /get-events-by-location",
			"POST /send-notification",
			"GET /check-event-reminders",
			"POST /get-statistics",
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func fail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

func failConfig(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusInternalServerError, map[string]any{
		"success":     false,
		"error":       msg,
		"configError": true,
	})
}
