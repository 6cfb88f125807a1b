package db

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog/log"

	"github.com/openkiosk/kioskd/internal/model"
)

func (s *pgStore) CreateDisplayGroup(ctx context.Context, name string, showStatus bool) (*model.DisplayGroup, error) {
	var g model.DisplayGroup
	const q = `
	INSERT INTO display_groups (name, show_status, created_at, updated_at)
	VALUES ($1, $2, now(), now())
	RETURNING id, name, show_status, created_at, updated_at;`
	if err := s.db.GetContext(ctx, &g, q, name, showStatus); err != nil {
		log.Error().Err(err).Msg("[db] CreateDisplayGroup: failed to insert group")
		return nil, err
	}
	return &g, nil
}

func (s *pgStore) GetDisplayGroupByID(ctx context.Context, id int) (*model.DisplayGroup, error) {
	var g model.DisplayGroup
	const q = `
	SELECT id, name, show_status, created_at, updated_at
	FROM display_groups
	WHERE id = $1;`
	if err := s.db.GetContext(ctx, &g, q, id); err != nil {
		return nil, err
	}
	managers, err := s.GetGroupManagerIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	g.ManagerIDs = managers
	return &g, nil
}

func (s *pgStore) ListDisplayGroups(ctx context.Context) ([]model.DisplayGroup, error) {
	var out []model.DisplayGroup
	const q = `SELECT id, name, show_status, created_at, updated_at FROM display_groups ORDER BY name, id;`
	if err := s.db.SelectContext(ctx, &out, q); err != nil {
		log.Error().Err(err).Msg("[db] ListDisplayGroups: failed to select groups")
		return nil, err
	}
	return out, nil
}

// ListDisplayGroupsForManager returns only the groups whose manager set
// contains the given user. List views for managers are filtered to these.
func (s *pgStore) ListDisplayGroupsForManager(ctx context.Context, userID int) ([]model.DisplayGroup, error) {
	var out []model.DisplayGroup
	const q = `
	SELECT g.id, g.name, g.show_status, g.created_at, g.updated_at
	FROM display_groups g
	JOIN group_managers gm ON gm.group_id = g.id
	WHERE gm.user_id = $1
	ORDER BY g.name, g.id;`
	if err := s.db.SelectContext(ctx, &out, q, userID); err != nil {
		log.Error().Err(err).Msg("[db] ListDisplayGroupsForManager: failed to select groups")
		return nil, err
	}
	return out, nil
}

func (s *pgStore) UpdateDisplayGroup(ctx context.Context, id int, name *string, showStatus *bool) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE display_groups
		SET name        = COALESCE($2, name),
		    show_status = COALESCE($3, show_status),
		    updated_at  = now()
		WHERE id = $1;`,
		id, name, showStatus,
	)
	if err != nil {
		log.Error().Err(err).Msg("[db] UpdateDisplayGroup: failed to update group")
	}
	return err
}

// DeleteDisplayGroup removes a group; playlist entries cascade and assigned
// browsers fall back to unassigned via ON DELETE SET NULL.
func (s *pgStore) DeleteDisplayGroup(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM display_groups WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Msg("[db] DeleteDisplayGroup: failed to delete group")
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *pgStore) SetGroupManagers(ctx context.Context, groupID int, userIDs []int) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM group_managers WHERE group_id = $1;`, groupID); err != nil {
		return err
	}
	for _, userID := range userIDs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO group_managers (group_id, user_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING;`, groupID, userID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *pgStore) GetGroupManagerIDs(ctx context.Context, groupID int) ([]int, error) {
	var out []int
	const q = `SELECT user_id FROM group_managers WHERE group_id = $1 ORDER BY user_id;`
	if err := s.db.SelectContext(ctx, &out, q, groupID); err != nil {
		log.Error().Err(err).Msg("[db] GetGroupManagerIDs: failed to select managers")
		return nil, err
	}
	return out, nil
}
