package db

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog/log"

	"github.com/openkiosk/kioskd/internal/model"
)

// playlistRow flattens a playlist entry joined with its content item.
type playlistRow struct {
	ID            int     `db:"id"`
	GroupID       int     `db:"group_id"`
	ContentItemID int     `db:"content_item_id"`
	Position      int     `db:"position"`
	Title         string  `db:"title"`
	ContentType   string  `db:"content_type"`
	VideoFile     *string `db:"video_file"`
	URL           *string `db:"url"`
	Duration      *int    `db:"duration"`
}

// ListPlaylistEntriesForGroup fetches the group's entries ordered by
// position then id (insertion order breaks ties), each joined with its
// content item.
func (s *pgStore) ListPlaylistEntriesForGroup(ctx context.Context, groupID int) ([]model.PlaylistEntry, error) {
	var rows []playlistRow
	const q = `
	SELECT pe.id, pe.group_id, pe.content_item_id, pe.position,
	       ci.title, ci.content_type, ci.video_file, ci.url, ci.duration
	FROM playlist_entries pe
	JOIN content_items ci ON ci.id = pe.content_item_id
	WHERE pe.group_id = $1
	ORDER BY pe.position, pe.id;`
	if err := s.db.SelectContext(ctx, &rows, q, groupID); err != nil {
		log.Error().Err(err).Msg("[db] ListPlaylistEntriesForGroup: failed to select entries")
		return nil, err
	}

	out := make([]model.PlaylistEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.PlaylistEntry{
			ID:            r.ID,
			GroupID:       r.GroupID,
			ContentItemID: r.ContentItemID,
			Position:      r.Position,
			Item: &model.ContentItem{
				ID:          r.ContentItemID,
				Title:       r.Title,
				ContentType: r.ContentType,
				VideoFile:   r.VideoFile,
				URL:         r.URL,
				Duration:    r.Duration,
			},
		})
	}
	return out, nil
}

func (s *pgStore) GetPlaylistEntryByID(ctx context.Context, id int) (*model.PlaylistEntry, error) {
	var e model.PlaylistEntry
	const q = `
	SELECT id, group_id, content_item_id, position
	FROM playlist_entries
	WHERE id = $1;`
	if err := s.db.GetContext(ctx, &e, q, id); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *pgStore) AddPlaylistEntry(ctx context.Context, groupID, contentItemID, position int) (*model.PlaylistEntry, error) {
	var e model.PlaylistEntry
	const q = `
	INSERT INTO playlist_entries (group_id, content_item_id, position)
	VALUES ($1, $2, $3)
	RETURNING id, group_id, content_item_id, position;`
	if err := s.db.GetContext(ctx, &e, q, groupID, contentItemID, position); err != nil {
		log.Error().Err(err).Msg("[db] AddPlaylistEntry: failed to insert entry")
		return nil, err
	}
	return &e, nil
}

func (s *pgStore) UpdatePlaylistEntryPosition(ctx context.Context, id, position int) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE playlist_entries SET position = $2 WHERE id = $1;`, id, position)
	if err != nil {
		log.Error().Err(err).Msg("[db] UpdatePlaylistEntryPosition: failed to update entry")
	}
	return err
}

func (s *pgStore) ClearPlaylistForGroup(ctx context.Context, groupID int) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM playlist_entries WHERE group_id = $1;`, groupID)
	if err != nil {
		log.Error().Err(err).Msg("[db] ClearPlaylistForGroup: failed to delete entries")
	}
	return err
}

func (s *pgStore) RemovePlaylistEntry(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM playlist_entries WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Msg("[db] RemovePlaylistEntry: failed to delete entry")
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
