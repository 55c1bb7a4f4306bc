package store

import (
	"context"
	"time"

	"event-dashboard-api/internal/model"
)

func (s *Store) GetNotification(ctx context.Context, id string) (*model.Notification, error) {
	n := &model.Notification{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, title, message, audience, status, recipients, sent_at, created_at, updated_at
		 FROM notifications WHERE id = $1`, id,
	).Scan(&n.ID, &n.Title, &n.Message, &n.Audience, &n.Status, &n.Recipients,
		&n.SentAt, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (s *Store) MarkNotificationSent(ctx context.Context, id string, recipients int, at time.Time) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE notifications
		 SET status = $1, recipients = $2, sent_at = $3, updated_at = NOW()
		 WHERE id = $4`,
		model.StatusSent, recipients, at, id,
	)
	return err
}
