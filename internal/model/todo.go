package model

import "time"

// Length limits enforced on every todo write.
const (
	MaxTitleLen       = 200
	MaxDescriptionLen = 1000
)

// Todo is a single item in a user's nested list. ParentID is nil for root
// todos; Order (the explicit drag position) is only ever non-nil on roots.
// CompletedAt is non-nil exactly when IsCompleted is true.
type Todo struct {
	ID          string     `json:"id" db:"id"`
	UserID      string     `json:"user" db:"user_id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description,omitempty" db:"description"`
	IsCompleted bool       `json:"isCompleted" db:"is_completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty" db:"completed_at"`
	IsPriority  bool       `json:"isPriority" db:"is_priority"`
	ParentID    *string    `json:"parent,omitempty" db:"parent_id"`
	Order       *int       `json:"order,omitempty" db:"position"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`

	// Resolved by the hierarchy assembler and the tag loader; never stored
	// directly.
	Children []*Todo `json:"children" db:"-"`
	Tags     []Tag   `json:"tags" db:"-"`
}

// IsRoot reports whether the todo has no parent.
func (t *Todo) IsRoot() bool {
	return t.ParentID == nil
}

// HasTag reports whether the todo itself carries the given tag.
func (t *Todo) HasTag(tagID string) bool {
	for _, tag := range t.Tags {
		if tag.ID == tagID {
			return true
		}
	}
	return false
}
