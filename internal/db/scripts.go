package db

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog/log"

	"github.com/openkiosk/kioskd/internal/model"
)

func (s *pgStore) CreateAutomationScript(ctx context.Context, name string, urlPattern *string, content string, enabled bool, position int) (*model.AutomationScript, error) {
	var script model.AutomationScript
	const q = `
	INSERT INTO automation_scripts (name, url_pattern, content, enabled, position)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id, name, url_pattern, content, enabled, position;`
	if err := s.db.GetContext(ctx, &script, q, name, urlPattern, content, enabled, position); err != nil {
		log.Error().Err(err).Msg("[db] CreateAutomationScript: failed to insert script")
		return nil, err
	}
	return &script, nil
}

func (s *pgStore) GetAutomationScriptByID(ctx context.Context, id int) (*model.AutomationScript, error) {
	var script model.AutomationScript
	const q = `
	SELECT id, name, url_pattern, content, enabled, position
	FROM automation_scripts
	WHERE id = $1;`
	if err := s.db.GetContext(ctx, &script, q, id); err != nil {
		return nil, err
	}
	const assoc = `
	SELECT content_item_id
	FROM automation_script_content_items
	WHERE script_id = $1
	ORDER BY content_item_id;`
	if err := s.db.SelectContext(ctx, &script.ContentItemIDs, assoc, id); err != nil {
		return nil, err
	}
	return &script, nil
}

func (s *pgStore) ListAutomationScripts(ctx context.Context) ([]model.AutomationScript, error) {
	var out []model.AutomationScript
	const q = `
	SELECT id, name, url_pattern, content, enabled, position
	FROM automation_scripts
	ORDER BY position, name;`
	if err := s.db.SelectContext(ctx, &out, q); err != nil {
		log.Error().Err(err).Msg("[db] ListAutomationScripts: failed to select scripts")
		return nil, err
	}
	return out, nil
}

func (s *pgStore) UpdateAutomationScript(ctx context.Context, id int, name, urlPattern, content *string, enabled *bool, position *int) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE automation_scripts
		SET name        = COALESCE($2, name),
		    url_pattern = COALESCE($3, url_pattern),
		    content     = COALESCE($4, content),
		    enabled     = COALESCE($5, enabled),
		    position    = COALESCE($6, position)
		WHERE id = $1;`,
		id, name, urlPattern, content, enabled, position,
	)
	if err != nil {
		log.Error().Err(err).Msg("[db] UpdateAutomationScript: failed to update script")
	}
	return err
}

func (s *pgStore) DeleteAutomationScript(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM automation_scripts WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Msg("[db] DeleteAutomationScript: failed to delete script")
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *pgStore) SetScriptContentItems(ctx context.Context, scriptID int, contentItemIDs []int) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM automation_script_content_items WHERE script_id = $1;`, scriptID); err != nil {
		return err
	}
	for _, itemID := range contentItemIDs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO automation_script_content_items (script_id, content_item_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING;`, scriptID, itemID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListEnabledScriptsForContentItem returns the enabled scripts associated
// with the content item, ordered by position then name.
func (s *pgStore) ListEnabledScriptsForContentItem(ctx context.Context, contentItemID int) ([]model.AutomationScript, error) {
	var out []model.AutomationScript
	const q = `
	SELECT a.id, a.name, a.url_pattern, a.content, a.enabled, a.position
	FROM automation_scripts a
	JOIN automation_script_content_items aci ON aci.script_id = a.id
	WHERE aci.content_item_id = $1 AND a.enabled
	ORDER BY a.position, a.name;`
	if err := s.db.SelectContext(ctx, &out, q, contentItemID); err != nil {
		log.Error().Err(err).Msg("[db] ListEnabledScriptsForContentItem: failed to select scripts")
		return nil, err
	}
	return out, nil
}
