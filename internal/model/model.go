package model

import "time"

// Notification statuses as stored. Only Sent is terminal; the dispatcher
// never moves a record backwards.
const (
	StatusDraft     = "Draft"
	StatusScheduled = "Scheduled"
	StatusSent      = "Sent"
)

type Client struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// Location is stored as [longitude, latitude].
	Location  []float64 `json:"location,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ClientRef is an event's link to its client: either already embedded by the
// listing join, or a bare id still to be resolved.
type ClientRef struct {
	Embedded *Client
	ID       string
}

// Resolved reports whether the client row came back with the event.
func (r ClientRef) Resolved() bool { return r.Embedded != nil }

type Event struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	StartTime     time.Time `json:"startTime"`
	Address       string    `json:"address"`
	City          string    `json:"city"`
	State         string    `json:"state"`
	Zip           string    `json:"zip"`
	Archived      bool      `json:"archived"`
	Hidden        bool      `json:"hidden"`
	Client        ClientRef `json:"-"`
	CheckInPoints int       `json:"checkInPoints"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// SavedEvent is one entry of a user's saved-event list, kept as JSON on the
// profile row. Reminder flags are monotonic: once true they stay true.
type SavedEvent struct {
	EventID     string    `json:"eventId"`
	SavedAt     time.Time `json:"savedAt"`
	Reminded24h bool      `json:"reminded24h"`
	Reminded1h  bool      `json:"reminded1h"`
}

type UserProfile struct {
	ID          string       `json:"id"`
	AuthID      string       `json:"authId"`
	DeviceToken string       `json:"deviceToken"`
	SavedEvents []SavedEvent `json:"savedEvents"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

type Notification struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Message    string     `json:"message"`
	Audience   string     `json:"audience"`
	Status     string     `json:"status"`
	Recipients int        `json:"recipients"`
	SentAt     *time.Time `json:"sentAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

type Review struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	PointsEarned int       `json:"pointsEarned"`
	CreatedAt    time.Time `json:"createdAt"`
}

// CheckIn carries either its own point value or, when Points is nil, inherits
// the check-in points of the referenced event.
type CheckIn struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	EventID   string    `json:"eventId"`
	Points    *int      `json:"points,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
