package store

import (
	"context"
	"time"

	"event-dashboard-api/internal/model"
)

// ListUpcomingEvents returns visible events starting at or after `from`,
// date ascending, with the client row eagerly joined. Events whose client row
// is missing keep the bare id on the ref for the caller to resolve.
func (s *Store) ListUpcomingEvents(ctx context.Context, from time.Time) ([]model.Event, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT e.id, e.name, e.start_time, e.address, e.city, e.state, e.zip,
		        e.archived, e.hidden, e.client_id, e.check_in_points,
		        e.created_at, e.updated_at,
		        c.id, c.name, c.location
		 FROM events e
		 LEFT JOIN clients c ON c.id = e.client_id
		 WHERE NOT e.archived AND NOT e.hidden
		   AND e.start_time >= $1
		 ORDER BY e.start_time`, from,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Event
	for rows.Next() {
		var (
			e        model.Event
			clientID *string
			cID      *string
			cName    *string
			cLoc     []float64
		)
		if err := rows.Scan(
			&e.ID, &e.Name, &e.StartTime, &e.Address, &e.City, &e.State, &e.Zip,
			&e.Archived, &e.Hidden, &clientID, &e.CheckInPoints,
			&e.CreatedAt, &e.UpdatedAt,
			&cID, &cName, &cLoc,
		); err != nil {
			return nil, err
		}
		switch {
		case cID != nil:
			e.Client = model.ClientRef{Embedded: &model.Client{ID: *cID, Name: deref(cName), Location: cLoc}}
		case clientID != nil:
			e.Client = model.ClientRef{ID: *clientID}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ListEventsStartingBetween returns visible events whose start time falls in
// [from, to], used by the reminder sweep windows.
func (s *Store) ListEventsStartingBetween(ctx context.Context, from, to time.Time) ([]model.Event, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, start_time, address, city, state, zip,
		        archived, hidden, client_id, check_in_points, created_at, updated_at
		 FROM events
		 WHERE NOT archived AND NOT hidden
		   AND start_time >= $1 AND start_time <= $2
		 ORDER BY start_time`, from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Event
	for rows.Next() {
		var (
			e        model.Event
			clientID *string
		)
		if err := rows.Scan(
			&e.ID, &e.Name, &e.StartTime, &e.Address, &e.City, &e.State, &e.Zip,
			&e.Archived, &e.Hidden, &clientID, &e.CheckInPoints, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if clientID != nil {
			e.Client = model.ClientRef{ID: *clientID}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	e := &model.Event{}
	var clientID *string
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, start_time, address, city, state, zip,
		        archived, hidden, client_id, check_in_points, created_at, updated_at
		 FROM events WHERE id = $1`, id,
	).Scan(&e.ID, &e.Name, &e.StartTime, &e.Address, &e.City, &e.State, &e.Zip,
		&e.Archived, &e.Hidden, &clientID, &e.CheckInPoints, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if clientID != nil {
		e.Client = model.ClientRef{ID: *clientID}
	}
	return e, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
