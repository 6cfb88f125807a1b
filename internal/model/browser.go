package model

import (
	"time"

	"github.com/google/uuid"
)

// Browser is one kiosk client, keyed by a client-generated UUID. Browsers
// register themselves on first poll and are never deleted automatically.
type Browser struct {
	Identifier uuid.UUID `db:"identifier" json:"identifier"`
	Name       *string   `db:"name"       json:"name,omitempty"`
	GroupID    *int      `db:"group_id"   json:"group_id,omitempty"`
	LastSeen   time.Time `db:"last_seen"  json:"last_seen"`
}
