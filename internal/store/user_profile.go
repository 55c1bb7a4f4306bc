package store

import (
	"context"
	"encoding/json"

	"event-dashboard-api/internal/model"
)

// ListUserProfiles returns every profile. The dispatcher and reminder sweep
// both work off full scans; there is no audience or cursor filtering here.
func (s *Store) ListUserProfiles(ctx context.Context) ([]model.UserProfile, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, auth_id, device_token, saved_events, created_at, updated_at
		 FROM user_profiles ORDER BY created_at`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.UserProfile
	for rows.Next() {
		var (
			u   model.UserProfile
			raw []byte
		)
		if err := rows.Scan(&u.ID, &u.AuthID, &u.DeviceToken, &raw, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &u.SavedEvents); err != nil {
				return nil, err
			}
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// UpdateSavedEvents persists a user's full saved-event list. Reminder flags
// only ever move false -> true, so a whole-list write cannot lose a send.
func (s *Store) UpdateSavedEvents(ctx context.Context, userID string, saved []model.SavedEvent) error {
	raw, err := json.Marshal(saved)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`UPDATE user_profiles SET saved_events = $1, updated_at = NOW() WHERE id = $2`,
		raw, userID,
	)
	return err
}
