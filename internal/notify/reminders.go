package notify

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"event-dashboard-api/internal/model"
)

// Reminder windows: an event qualifies when its start time is within
// tolerance of now+24h or now+1h.
const reminderTolerance = 15 * time.Minute

type reminderWindow struct {
	lead  time.Duration
	label string
}

var reminderWindows = []reminderWindow{
	{lead: 24 * time.Hour, label: "24h"},
	{lead: time.Hour, label: "1h"},
}

// CheckAndSendEventReminders sweeps saved events and pushes a reminder to
// every user whose saved event enters a window and has not been reminded for
// it yet. Flags only move false -> true and are persisted per user before the
// sweep moves on. Per-user errors are logged and do not abort the sweep.
func (d *Dispatcher) CheckAndSendEventReminders(ctx context.Context) (sent24h, sent1h int, err error) {
	now := d.now()

	users, err := d.store.ListUserProfiles(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("load user profiles: %w", err)
	}

	for _, w := range reminderWindows {
		target := now.Add(w.lead)
		events, err := d.store.ListEventsStartingBetween(ctx,
			target.Add(-reminderTolerance), target.Add(reminderTolerance))
		if err != nil {
			return sent24h, sent1h, fmt.Errorf("list events for %s window: %w", w.label, err)
		}

		for _, ev := range events {
			n := d.remindSavers(ctx, ev, w, users)
			if w.label == "24h" {
				sent24h += n
			} else {
				sent1h += n
			}
		}
	}

	d.log.Info("reminder sweep complete",
		zap.Int("reminders24h", sent24h),
		zap.Int("reminders1h", sent1h))
	return sent24h, sent1h, nil
}

// remindSavers pushes one reminder per saver of ev that still lacks the
// window's flag, returning the number of successful sends.
func (d *Dispatcher) remindSavers(ctx context.Context, ev model.Event, w reminderWindow, users []model.UserProfile) int {
	sent := 0
	for ui := range users {
		u := &users[ui]
		idx := savedIndex(u.SavedEvents, ev.ID)
		if idx < 0 {
			continue
		}
		entry := &u.SavedEvents[idx]
		if reminded(*entry, w.label) {
			continue
		}
		if u.DeviceToken == "" {
			continue
		}

		title := fmt.Sprintf("Reminder: %s", ev.Name)
		msg := fmt.Sprintf("%s starts in %s", ev.Name, w.label)
		if _, err := d.sender.Send(ctx, u.DeviceToken, title, msg); err != nil {
			d.log.Warn("reminder push failed",
				zap.String("event", ev.ID),
				zap.String("user", u.ID),
				zap.String("window", w.label),
				zap.Error(err))
			continue
		}

		sent++
		setReminded(entry, w.label)
		if err := d.store.UpdateSavedEvents(ctx, u.ID, u.SavedEvents); err != nil {
			// The push went out; the unsaved flag means a later sweep may
			// repeat it. Log and keep going.
			d.log.Error("persist reminder flag failed",
				zap.String("event", ev.ID),
				zap.String("user", u.ID),
				zap.Error(err))
		}
	}
	return sent
}

func savedIndex(saved []model.SavedEvent, eventID string) int {
	for i := range saved {
		if saved[i].EventID == eventID {
			return i
		}
	}
	return -1
}

func reminded(e model.SavedEvent, label string) bool {
	if label == "24h" {
		return e.Reminded24h
	}
	return e.Reminded1h
}

func setReminded(e *model.SavedEvent, label string) {
	if label == "24h" {
		e.Reminded24h = true
	} else {
		e.Reminded1h = true
	}
}
