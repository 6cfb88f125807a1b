package model

import "time"

type User struct {
	ID             int       `db:"id"`
	Email          string    `db:"email"`
	HashedPassword string    `db:"hashed_password"`
	FirstName      string    `db:"first_name"`
	LastName       string    `db:"last_name"`
	IsStaff        bool      `db:"is_staff"`
	IsSuperuser    bool      `db:"is_superuser"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`

	// Permissions holds the union of the permission strings granted through
	// the user's roles. Loaded alongside the user, never persisted directly.
	Permissions []string `db:"-"`
}

// HasPermission reports whether the user carries the given permission string.
// Superusers implicitly hold every permission.
func (u *User) HasPermission(perm string) bool {
	if u.IsSuperuser {
		return true
	}
	for _, p := range u.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}

type Role struct {
	ID   int    `db:"id"   json:"id"`
	Name string `db:"name" json:"name"`
}
