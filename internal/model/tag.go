package model

import "time"

// MaxTagNameLen is the maximum length of a tag name.
const MaxTagNameLen = 50

// Tag is a user-scoped label attachable to any todo. The name is unique per
// user; the color is a #rrggbb hex string, derived from the name when the
// user does not pick one.
type Tag struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	Color     string    `json:"color" db:"color"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
