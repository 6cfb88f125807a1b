package model

import "time"

// DisplayGroup is a named cluster of kiosks sharing one playlist.
type DisplayGroup struct {
	ID         int       `db:"id"          json:"id"`
	Name       string    `db:"name"        json:"name"`
	ShowStatus bool      `db:"show_status" json:"show_status"`
	CreatedAt  time.Time `db:"created_at"  json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"  json:"updated_at"`

	// ManagerIDs lists the users allowed to administer this group.
	ManagerIDs []int `db:"-" json:"manager_ids,omitempty"`
}
