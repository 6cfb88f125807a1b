package model

// AutomationScript is a small automation DSL script run against matching
// URLs on a kiosk's embedded browser. The script body is opaque text.
// An empty url_pattern means manual-only trigger. Scripts associate with
// content items many-to-many and only surface while enabled.
type AutomationScript struct {
	ID         int     `db:"id"          json:"id"`
	Name       string  `db:"name"        json:"name"`
	URLPattern *string `db:"url_pattern" json:"url_pattern,omitempty"`
	Content    string  `db:"content"     json:"content"`
	Enabled    bool    `db:"enabled"     json:"enabled"`
	Position   int     `db:"position"    json:"position"`

	ContentItemIDs []int `db:"-" json:"content_item_ids,omitempty"`
}
