package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"sort"
	"time"

	"go.uber.org/zap"

	"event-dashboard-api/internal/geo"
	"event-dashboard-api/internal/model"
)

const (
	defaultPage     = 1
	defaultPageSize = 10
	maxPageSize     = 100
)

type locationQuery struct {
	origin   geo.Point
	page     int
	pageSize int
}

type rankedEvent struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StartTime  time.Time `json:"startTime"`
	Address    string    `json:"address,omitempty"`
	City       string    `json:"city,omitempty"`
	State      string    `json:"state,omitempty"`
	Zip        string    `json:"zip,omitempty"`
	ClientID   string    `json:"clientId,omitempty"`
	ClientName string    `json:"clientName,omitempty"`
	DistanceKm float64   `json:"distanceKm"`
}

type pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

func (h *Handler) handleEventsByLocation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		fail(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	raw, err := io.ReadAll(r.Body)
	if err != nil || len(bytes.TrimSpace(raw)) == 0 {
		fail(w, http.StatusBadRequest, "request body is required")
		return
	}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		fail(w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}

	q, err := parseLocationQuery(body)
	if err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}

	events, err := h.events.ListUpcomingEvents(r.Context(), startOfToday())
	if err != nil {
		h.log.Error("event listing failed", zap.Error(err))
		fail(w, http.StatusInternalServerError, err.Error())
		return
	}

	ranked := h.rankByDistance(r.Context(), events, q.origin)
	items, total, totalPages := paginate(ranked, q.page, q.pageSize)

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"events":  items,
		"pagination": pagination{
			Page:       q.page,
			PageSize:   q.pageSize,
			Total:      total,
			TotalPages: totalPages,
		},
	})
}

// parseLocationQuery validates in a fixed order so the error always names
// the first violated constraint.
func parseLocationQuery(body map[string]any) (locationQuery, error) {
	q := locationQuery{page: defaultPage, pageSize: defaultPageSize}
	if body == nil {
		return q, errors.New("request body is required")
	}
	lat, ok := numberField(body, "latitude")
	if !ok {
		return q, errors.New("latitude must be a number")
	}
	lon, ok := numberField(body, "longitude")
	if !ok {
		return q, errors.New("longitude must be a number")
	}
	if !geo.ValidLatitude(lat) {
		return q, errors.New("latitude must be between -90 and 90")
	}
	if !geo.ValidLongitude(lon) {
		return q, errors.New("longitude must be between -180 and 180")
	}
	if v, present := body["page"]; present {
		p, ok := positiveInt(v)
		if !ok {
			return q, errors.New("page must be a positive integer")
		}
		q.page = p
	}
	if v, present := body["pageSize"]; present {
		p, ok := positiveInt(v)
		if !ok || p > maxPageSize {
			return q, errors.New("pageSize must be an integer between 1 and 100")
		}
		q.pageSize = p
	}
	q.origin = geo.Point{Lat: lat, Lon: lon}
	return q, nil
}

func numberField(body map[string]any, key string) (float64, bool) {
	v, ok := body[key]
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

func positiveInt(v any) (int, bool) {
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) || f < 1 {
		return 0, false
	}
	return int(f), true
}

// rankByDistance resolves each event's client, computes the distance from the
// requester, drops events without a usable location and sorts ascending. The
// sort is stable, so equal distances keep the store's date order.
func (h *Handler) rankByDistance(ctx context.Context, events []model.Event, origin geo.Point) []rankedEvent {
	out := make([]rankedEvent, 0, len(events))
	for _, ev := range events {
		cl := ev.Client.Embedded
		if cl == nil && ev.Client.ID != "" {
			c, err := h.events.GetClient(ctx, ev.Client.ID)
			if err != nil {
				h.log.Warn("client lookup failed",
					zap.String("event", ev.ID),
					zap.String("client", ev.Client.ID),
					zap.Error(err))
			} else {
				cl = c
			}
		}
		if cl == nil {
			continue
		}
		loc, ok := geo.PointFromPair(cl.Location)
		if !ok {
			continue
		}
		out = append(out, rankedEvent{
			ID:         ev.ID,
			Name:       ev.Name,
			StartTime:  ev.StartTime,
			Address:    ev.Address,
			City:       ev.City,
			State:      ev.State,
			Zip:        ev.Zip,
			ClientID:   cl.ID,
			ClientName: cl.Name,
			DistanceKm: geo.Distance(origin, loc),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })
	return out
}

func paginate(items []rankedEvent, page, pageSize int) ([]rankedEvent, int, int) {
	total := len(items)
	totalPages := (total + pageSize - 1) / pageSize
	start := (page - 1) * pageSize
	if start >= total {
		return []rankedEvent{}, total, totalPages
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return items[start:end], total, totalPages
}

func startOfToday() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
