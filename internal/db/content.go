package db

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog/log"

	"github.com/openkiosk/kioskd/internal/model"
)

func (s *pgStore) CreateContentItem(ctx context.Context, title, contentType string, videoFile, url *string, duration *int) (*model.ContentItem, error) {
	var c model.ContentItem
	const q = `
	INSERT INTO content_items (title, content_type, video_file, url, duration, uploaded_at)
	VALUES ($1, $2, $3, $4, $5, now())
	RETURNING id, title, content_type, video_file, url, duration, uploaded_at;`
	if err := s.db.GetContext(ctx, &c, q, title, contentType, videoFile, url, duration); err != nil {
		log.Error().Err(err).Msg("[db] CreateContentItem: failed to insert content item")
		return nil, err
	}
	return &c, nil
}

func (s *pgStore) GetContentItemByID(ctx context.Context, id int) (*model.ContentItem, error) {
	var c model.ContentItem
	const q = `
	SELECT id, title, content_type, video_file, url, duration, uploaded_at
	FROM content_items
	WHERE id = $1;`
	if err := s.db.GetContext(ctx, &c, q, id); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *pgStore) ListContentItems(ctx context.Context) ([]model.ContentItem, error) {
	var out []model.ContentItem
	const q = `
	SELECT id, title, content_type, video_file, url, duration, uploaded_at
	FROM content_items
	ORDER BY id;`
	if err := s.db.SelectContext(ctx, &out, q); err != nil {
		log.Error().Err(err).Msg("[db] ListContentItems: failed to select content items")
		return nil, err
	}
	return out, nil
}

func (s *pgStore) UpdateContentItem(ctx context.Context, id int, title, videoFile, url *string, duration *int) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE content_items
		SET title      = COALESCE($2, title),
		    video_file = COALESCE($3, video_file),
		    url        = COALESCE($4, url),
		    duration   = COALESCE($5, duration)
		WHERE id = $1;`,
		id, title, videoFile, url, duration,
	)
	if err != nil {
		log.Error().Err(err).Msg("[db] UpdateContentItem: failed to update content item")
	}
	return err
}

// DeleteContentItem removes a content item. Playlist entries referencing it
// cascade away and script associations are dropped; the scripts themselves
// survive.
func (s *pgStore) DeleteContentItem(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM content_items WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Msg("[db] DeleteContentItem: failed to delete content item")
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
