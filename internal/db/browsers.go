package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/openkiosk/kioskd/internal/model"
)

// GetOrCreateBrowser registers the browser on first contact. The insert and
// fetch are a single atomic conditional-insert: concurrent first polls for
// the same identifier cannot create two rows, and the loser of the insert
// race simply reads the winner's row.
func (s *pgStore) GetOrCreateBrowser(ctx context.Context, identifier uuid.UUID) (*model.Browser, bool, error) {
	var b model.Browser
	const insert = `
	INSERT INTO browsers (identifier, last_seen)
	VALUES ($1, now())
	ON CONFLICT (identifier) DO NOTHING
	RETURNING identifier, name, group_id, last_seen;`

	err := s.db.GetContext(ctx, &b, insert, identifier)
	if err == nil {
		return &b, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		log.Error().Err(err).Msg("[db] GetOrCreateBrowser: failed to insert browser")
		return nil, false, err
	}

	// conflict: the row already exists, fetch it
	const get = `
	SELECT identifier, name, group_id, last_seen
	FROM browsers
	WHERE identifier = $1;`
	if err := s.db.GetContext(ctx, &b, get, identifier); err != nil {
		log.Error().Err(err).Msg("[db] GetOrCreateBrowser: failed to fetch browser")
		return nil, false, err
	}
	return &b, false, nil
}

func (s *pgStore) GetBrowser(ctx context.Context, identifier uuid.UUID) (*model.Browser, error) {
	var b model.Browser
	const q = `
	SELECT identifier, name, group_id, last_seen
	FROM browsers
	WHERE identifier = $1;`
	if err := s.db.GetContext(ctx, &b, q, identifier); err != nil {
		return nil, err
	}
	return &b, nil
}

// TouchBrowser updates last_seen. Best-effort and idempotent; lost updates
// under racing polls are acceptable.
func (s *pgStore) TouchBrowser(ctx context.Context, identifier uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE browsers SET last_seen = now() WHERE identifier = $1;`, identifier)
	if err != nil {
		log.Error().Err(err).Msg("[db] TouchBrowser: failed to update last_seen")
	}
	return err
}

func (s *pgStore) ListBrowsers(ctx context.Context) ([]model.Browser, error) {
	var out []model.Browser
	const q = `
	SELECT identifier, name, group_id, last_seen
	FROM browsers
	ORDER BY last_seen DESC;`
	if err := s.db.SelectContext(ctx, &out, q); err != nil {
		log.Error().Err(err).Msg("[db] ListBrowsers: failed to select browsers")
		return nil, err
	}
	return out, nil
}

func (s *pgStore) UpdateBrowserName(ctx context.Context, identifier uuid.UUID, name *string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE browsers SET name = COALESCE($2, name) WHERE identifier = $1;`, identifier, name)
	if err != nil {
		log.Error().Err(err).Msg("[db] UpdateBrowserName: failed to update browser")
	}
	return err
}

// AssignBrowserToGroup sets or clears (nil groupID) the browser's group.
func (s *pgStore) AssignBrowserToGroup(ctx context.Context, identifier uuid.UUID, groupID *int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE browsers SET group_id = $2 WHERE identifier = $1;`, identifier, groupID)
	if err != nil {
		log.Error().Err(err).Msg("[db] AssignBrowserToGroup: failed to update browser")
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *pgStore) DeleteBrowser(ctx context.Context, identifier uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM browsers WHERE identifier = $1;`, identifier)
	if err != nil {
		log.Error().Err(err).Msg("[db] DeleteBrowser: failed to delete browser")
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
