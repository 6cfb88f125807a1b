package model

// PlaylistEntry binds one ContentItem into a DisplayGroup's playlist at an
// integer position. Positions need not be contiguous; ties are broken by id
// (insertion order).
type PlaylistEntry struct {
	ID            int `db:"id"              json:"id"`
	GroupID       int `db:"group_id"        json:"group_id"`
	ContentItemID int `db:"content_item_id" json:"content_item_id"`
	Position      int `db:"position"        json:"position"`

	Item *ContentItem `db:"-" json:"item,omitempty"`
}
