package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"event-dashboard-api/internal/model"
	"event-dashboard-api/internal/push"
)

// Store is the slice of the persistence layer the dispatcher needs.
type Store interface {
	GetNotification(ctx context.Context, id string) (*model.Notification, error)
	MarkNotificationSent(ctx context.Context, id string, recipients int, at time.Time) error
	ListUserProfiles(ctx context.Context) ([]model.UserProfile, error)
	ListEventsStartingBetween(ctx context.Context, from, to time.Time) ([]model.Event, error)
	UpdateSavedEvents(ctx context.Context, userID string, saved []model.SavedEvent) error
}

type Dispatcher struct {
	store  Store
	sender push.Sender
	log    *zap.Logger
	now    func() time.Time
}

func NewDispatcher(st Store, sender push.Sender, log *zap.Logger) *Dispatcher {
	return &Dispatcher{store: st, sender: sender, log: log, now: time.Now}
}

// SendNotification delivers a stored notification to every user profile and
// marks it Sent. Calling it again on a Sent record is a no-op returning the
// recorded recipient count.
//
// Audience filtering is deliberately not applied: delivery goes to all users
// regardless of the declared audience. Known limitation, logged when the
// declared audience is narrower than "All".
func (d *Dispatcher) SendNotification(ctx context.Context, id string) (recipients int, messageID string, err error) {
	n, err := d.store.GetNotification(ctx, id)
	if err != nil {
		return 0, "", fmt.Errorf("load notification: %w", err)
	}
	if n.Status == model.StatusSent {
		d.log.Info("notification already sent",
			zap.String("notification", n.ID),
			zap.Int("recipients", n.Recipients))
		return n.Recipients, "", nil
	}
	if n.Audience != "" && n.Audience != "All" {
		d.log.Warn("audience filtering not implemented, sending to all users",
			zap.String("notification", n.ID),
			zap.String("audience", n.Audience))
	}

	users, err := d.store.ListUserProfiles(ctx)
	if err != nil {
		return 0, "", fmt.Errorf("load user profiles: %w", err)
	}

	// One push per user, sequentially. Individual failures are skipped and
	// only successes count.
	sent := 0
	for _, u := range users {
		if u.DeviceToken == "" {
			continue
		}
		if _, err := d.sender.Send(ctx, u.DeviceToken, n.Title, n.Message); err != nil {
			d.log.Warn("push send failed",
				zap.String("notification", n.ID),
				zap.String("user", u.ID),
				zap.Error(err))
			continue
		}
		sent++
	}

	if err := d.store.MarkNotificationSent(ctx, n.ID, sent, d.now()); err != nil {
		return sent, "", fmt.Errorf("mark sent: %w", err)
	}

	batchID := ""
	if sent > 0 {
		batchID = uuid.New().String()
	}
	d.log.Info("notification dispatched",
		zap.String("notification", n.ID),
		zap.Int("recipients", sent),
		zap.Int("skipped", len(users)-sent))
	return sent, batchID, nil
}
