package store

import (
	"context"

	"event-dashboard-api/internal/model"
)

func (s *Store) GetClient(ctx context.Context, id string) (*model.Client, error) {
	c := &model.Client{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, location, created_at, updated_at
		 FROM clients WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Location, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}
