package store_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"event-dashboard-api/internal/model"
	"event-dashboard-api/internal/store"
)

func setup(t *testing.T) (*store.Store, *pgxpool.Pool) {
	t.Helper()
	_ = godotenv.Load("../../.env")
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}
	pool, err := pgxpool.New(context.Background(), dbURL)
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	t.Cleanup(pool.Close)
	return store.New(pool), pool
}

func insertClient(t *testing.T, pool *pgxpool.Pool, loc []float64) string {
	t.Helper()
	id := uuid.New().String()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO clients (id, name, location) VALUES ($1, $2, $3)`,
		id, "test client", loc)
	if err != nil {
		t.Fatalf("insert client: %v", err)
	}
	t.Cleanup(func() {
		pool.Exec(context.Background(), `DELETE FROM clients WHERE id = $1`, id)
	})
	return id
}

func insertEvent(t *testing.T, pool *pgxpool.Pool, clientID *string, start time.Time, archived, hidden bool) string {
	t.Helper()
	id := uuid.New().String()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO events (id, name, start_time, client_id, archived, hidden)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		id, "test event", start, clientID, archived, hidden)
	if err != nil {
		t.Fatalf("insert event: %v", err)
	}
	t.Cleanup(func() {
		pool.Exec(context.Background(), `DELETE FROM events WHERE id = $1`, id)
	})
	return id
}

func TestListUpcomingEventsJoinsClient(t *testing.T) {
	st, pool := setup(t)

	clientID := insertClient(t, pool, []float64{-74.0060, 40.7128})
	start := time.Now().Add(72 * time.Hour)
	eventID := insertEvent(t, pool, &clientID, start, false, false)
	// archived and hidden rows must not come back
	insertEvent(t, pool, &clientID, start, true, false)
	insertEvent(t, pool, &clientID, start, false, true)

	events, err := st.ListUpcomingEvents(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	var found *model.Event
	for i := range events {
		if events[i].ID == eventID {
			found = &events[i]
		}
		if events[i].Archived || events[i].Hidden {
			t.Errorf("archived/hidden event returned: %s", events[i].ID)
		}
	}
	if found == nil {
		t.Fatal("inserted event not listed")
	}
	if !found.Client.Resolved() {
		t.Fatal("client not eagerly joined")
	}
	if got := found.Client.Embedded.Location; len(got) != 2 || got[0] != -74.0060 {
		t.Errorf("location = %v", got)
	}
}

func TestMarkNotificationSent(t *testing.T) {
	st, pool := setup(t)

	id := uuid.New().String()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO notifications (id, title, message) VALUES ($1, $2, $3)`,
		id, "t", "m")
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	t.Cleanup(func() {
		pool.Exec(context.Background(), `DELETE FROM notifications WHERE id = $1`, id)
	})

	at := time.Now()
	if err := st.MarkNotificationSent(context.Background(), id, 12, at); err != nil {
		t.Fatalf("mark sent: %v", err)
	}

	n, err := st.GetNotification(context.Background(), id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if n.Status != model.StatusSent || n.Recipients != 12 || n.SentAt == nil {
		t.Errorf("record = %+v", n)
	}
}

func TestUpdateSavedEventsRoundTrip(t *testing.T) {
	st, pool := setup(t)

	id := uuid.New().String()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO user_profiles (id, auth_id, device_token) VALUES ($1, $2, $3)`,
		id, "auth-"+id[:8], "tok")
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	t.Cleanup(func() {
		pool.Exec(context.Background(), `DELETE FROM user_profiles WHERE id = $1`, id)
	})

	saved := []model.SavedEvent{
		{EventID: uuid.New().String(), SavedAt: time.Now().UTC().Truncate(time.Second), Reminded24h: true},
	}
	if err := st.UpdateSavedEvents(context.Background(), id, saved); err != nil {
		t.Fatalf("update: %v", err)
	}

	users, err := st.ListUserProfiles(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, u := range users {
		if u.ID != id {
			continue
		}
		if len(u.SavedEvents) != 1 || !u.SavedEvents[0].Reminded24h {
			t.Errorf("saved events = %+v", u.SavedEvents)
		}
		return
	}
	t.Fatal("profile not listed")
}
