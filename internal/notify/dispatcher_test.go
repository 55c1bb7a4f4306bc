package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"event-dashboard-api/internal/model"
)

type fakeStore struct {
	notifications map[string]*model.Notification
	users         []model.UserProfile
	events        []model.Event
	saved         map[string][]model.SavedEvent
	markCalls     int
	persistErr    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		notifications: map[string]*model.Notification{},
		saved:         map[string][]model.SavedEvent{},
	}
}

func (f *fakeStore) GetNotification(_ context.Context, id string) (*model.Notification, error) {
	n, ok := f.notifications[id]
	if !ok {
		return nil, errors.New("not found")
	}
	cp := *n
	return &cp, nil
}

func (f *fakeStore) MarkNotificationSent(_ context.Context, id string, recipients int, at time.Time) error {
	f.markCalls++
	n := f.notifications[id]
	n.Status = model.StatusSent
	n.Recipients = recipients
	n.SentAt = &at
	return nil
}

func (f *fakeStore) ListUserProfiles(context.Context) ([]model.UserProfile, error) {
	out := make([]model.UserProfile, len(f.users))
	copy(out, f.users)
	for i := range out {
		out[i].SavedEvents = append([]model.SavedEvent(nil), f.saved[out[i].ID]...)
	}
	return out, nil
}

func (f *fakeStore) ListEventsStartingBetween(_ context.Context, from, to time.Time) ([]model.Event, error) {
	var out []model.Event
	for _, ev := range f.events {
		if !ev.StartTime.Before(from) && !ev.StartTime.After(to) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateSavedEvents(_ context.Context, userID string, saved []model.SavedEvent) error {
	if f.persistErr != nil {
		return f.persistErr
	}
	f.saved[userID] = append([]model.SavedEvent(nil), saved...)
	return nil
}

type fakeSender struct {
	sends    []string // device tokens in send order
	failFor  map[string]bool
}

func (f *fakeSender) Send(_ context.Context, token, _, _ string) (string, error) {
	if f.failFor[token] {
		return "", errors.New("provider rejected")
	}
	f.sends = append(f.sends, token)
	return "msg-" + token, nil
}

func newDispatcher(st *fakeStore, snd *fakeSender, at time.Time) *Dispatcher {
	d := NewDispatcher(st, snd, zap.NewNop())
	d.now = func() time.Time { return at }
	return d
}

func TestSendNotificationIdempotent(t *testing.T) {
	st := newFakeStore()
	st.notifications["n1"] = &model.Notification{
		ID: "n1", Title: "Hi", Status: model.StatusSent, Recipients: 7,
	}
	snd := &fakeSender{}
	d := newDispatcher(st, snd, time.Now())

	for i := 0; i < 2; i++ {
		got, _, err := d.SendNotification(context.Background(), "n1")
		if err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
		if got != 7 {
			t.Errorf("send %d: recipients = %d, want 7", i, got)
		}
	}
	if len(snd.sends) != 0 {
		t.Errorf("pushes sent to already-Sent record: %d", len(snd.sends))
	}
	if st.markCalls != 0 {
		t.Errorf("record re-marked %d times", st.markCalls)
	}
}

func TestSendNotificationPartialFailure(t *testing.T) {
	st := newFakeStore()
	st.notifications["n1"] = &model.Notification{ID: "n1", Title: "T", Message: "M", Audience: "All"}
	st.users = []model.UserProfile{
		{ID: "u1", DeviceToken: "tok1"},
		{ID: "u2", DeviceToken: "tok2"},
		{ID: "u3", DeviceToken: "tok3"},
		{ID: "u4"}, // no device token, skipped silently
	}
	snd := &fakeSender{failFor: map[string]bool{"tok2": true}}
	d := newDispatcher(st, snd, time.Now())

	got, msgID, err := d.SendNotification(context.Background(), "n1")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if got != 2 {
		t.Errorf("recipients = %d, want 2", got)
	}
	if msgID == "" {
		t.Error("expected a batch message id")
	}
	n := st.notifications["n1"]
	if n.Status != model.StatusSent || n.Recipients != 2 || n.SentAt == nil {
		t.Errorf("record not marked sent correctly: %+v", n)
	}
}

func TestReminderSweep(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	st := newFakeStore()
	st.events = []model.Event{
		{ID: "e24", Name: "Gala", StartTime: now.Add(24*time.Hour + 5*time.Minute)},
		{ID: "e1", Name: "Run", StartTime: now.Add(time.Hour - 10*time.Minute)},
		{ID: "far", Name: "Later", StartTime: now.Add(48 * time.Hour)},
	}
	st.users = []model.UserProfile{
		{ID: "u1", DeviceToken: "tok1"},
		{ID: "u2", DeviceToken: "tok2"},
	}
	// u1 saved both events; u2 saved e24 but was already reminded.
	st.saved["u1"] = []model.SavedEvent{{EventID: "e24"}, {EventID: "e1"}}
	st.saved["u2"] = []model.SavedEvent{{EventID: "e24", Reminded24h: true}}

	snd := &fakeSender{}
	d := newDispatcher(st, snd, now)

	sent24, sent1, err := d.CheckAndSendEventReminders(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if sent24 != 1 || sent1 != 1 {
		t.Errorf("sent24=%d sent1=%d, want 1/1", sent24, sent1)
	}

	// Flags persisted, monotonic.
	u1 := st.saved["u1"]
	if !u1[0].Reminded24h || !u1[1].Reminded1h {
		t.Errorf("flags not persisted: %+v", u1)
	}
	if !st.saved["u2"][0].Reminded24h {
		t.Errorf("existing flag was reset")
	}

	// Second sweep at the same instant sends nothing new.
	snd.sends = nil
	s24, s1, err := d.CheckAndSendEventReminders(context.Background())
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if s24 != 0 || s1 != 0 || len(snd.sends) != 0 {
		t.Errorf("second sweep re-sent: %d/%d, %d pushes", s24, s1, len(snd.sends))
	}
}

func TestReminderSweepUserErrorDoesNotAbort(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	st := newFakeStore()
	st.events = []model.Event{
		{ID: "e24", Name: "Gala", StartTime: now.Add(24 * time.Hour)},
	}
	st.users = []model.UserProfile{
		{ID: "u1", DeviceToken: "bad"},
		{ID: "u2", DeviceToken: "tok2"},
	}
	st.saved["u1"] = []model.SavedEvent{{EventID: "e24"}}
	st.saved["u2"] = []model.SavedEvent{{EventID: "e24"}}

	snd := &fakeSender{failFor: map[string]bool{"bad": true}}
	d := newDispatcher(st, snd, now)

	sent24, _, err := d.CheckAndSendEventReminders(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if sent24 != 1 {
		t.Errorf("sent24 = %d, want 1", sent24)
	}
	// Failed user keeps an unset flag for the next sweep.
	if st.saved["u1"][0].Reminded24h {
		t.Error("flag set despite failed push")
	}
}
