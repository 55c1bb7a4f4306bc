package store

import (
	"context"
	"time"

	"event-dashboard-api/internal/model"
)

// Aggregation queries for the dashboard statistics pages. Each is a full
// collection count or sum; windowed variants filter on created_at.

func (s *Store) CountUsers(ctx context.Context) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM user_profiles`)
}

func (s *Store) CountUsersCreatedBetween(ctx context.Context, from, to time.Time) (int, error) {
	return s.countBetween(ctx, `SELECT COUNT(*) FROM user_profiles WHERE created_at >= $1 AND created_at < $2`, from, to)
}

func (s *Store) CountClients(ctx context.Context) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM clients`)
}

func (s *Store) CountClientsCreatedBetween(ctx context.Context, from, to time.Time) (int, error) {
	return s.countBetween(ctx, `SELECT COUNT(*) FROM clients WHERE created_at >= $1 AND created_at < $2`, from, to)
}

func (s *Store) CountEvents(ctx context.Context) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM events WHERE NOT archived`)
}

func (s *Store) CountUpcomingEvents(ctx context.Context, from time.Time) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM events WHERE NOT archived AND NOT hidden AND start_time >= $1`, from,
	).Scan(&n)
	return n, err
}

func (s *Store) CountNotificationsByStatus(ctx context.Context, status string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE status = $1`, status).Scan(&n)
	return n, err
}

func (s *Store) CountReviews(ctx context.Context) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM reviews`)
}

func (s *Store) CountCheckIns(ctx context.Context) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM check_ins`)
}

func (s *Store) SumReviewPoints(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COALESCE(SUM(points_earned), 0) FROM reviews`).Scan(&n)
	return n, err
}

func (s *Store) ListCheckIns(ctx context.Context) ([]model.CheckIn, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, event_id, points, created_at FROM check_ins ORDER BY created_at`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.CheckIn
	for rows.Next() {
		var (
			c       model.CheckIn
			eventID *string
		)
		if err := rows.Scan(&c.ID, &c.UserID, &eventID, &c.Points, &c.CreatedAt); err != nil {
			return nil, err
		}
		if eventID != nil {
			c.EventID = *eventID
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) count(ctx context.Context, q string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, q).Scan(&n)
	return n, err
}

func (s *Store) countBetween(ctx context.Context, q string, from, to time.Time) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, q, from, to).Scan(&n)
	return n, err
}
