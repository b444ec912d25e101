package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"todonest/internal/model"
)

// tagPalette holds the colors assigned to tags created without an explicit
// color. The palette index is derived from the tag name so the same name
// always gets the same color.
var tagPalette = []string{
	"#1976d2", "#d32f2f", "#388e3c", "#f57c00",
	"#7b1fa2", "#00796b", "#c2185b", "#303f9f",
	"#5d4037", "#616161", "#e64a19", "#0097a7",
}

var hexColorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// colorForName picks a deterministic palette color from the tag name.
func colorForName(name string) string {
	var hash int32
	for _, r := range name {
		hash = int32(r) + ((hash << 5) - hash)
	}
	if hash < 0 {
		hash = -hash
	}
	return tagPalette[int(hash)%len(tagPalette)]
}

// ListTags returns all of a user's tags ordered by name.
func (db *DB) ListTags(ctx context.Context, userID string) ([]model.Tag, error) {
	query, args, err := db.sb.
		Select("*").From("tags").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building tag query: %w", err)
	}

	tags := []model.Tag{}
	if err := db.SelectContext(ctx, &tags, query, args...); err != nil {
		return nil, fmt.Errorf("querying tags: %w", err)
	}
	return tags, nil
}

// GetTag retrieves one of the user's tags by id.
func (db *DB) GetTag(ctx context.Context, userID, id string) (*model.Tag, error) {
	var tag model.Tag
	query := db.Rebind("SELECT * FROM tags WHERE id = ? AND user_id = ?")
	if err := db.GetContext(ctx, &tag, query, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting tag %s: %w", id, err)
	}
	return &tag, nil
}

// GetOrCreateTag returns the user's tag with the given name, creating it
// with a derived color if it does not exist yet. Creation is idempotent per
// (user, name).
func (db *DB) GetOrCreateTag(ctx context.Context, userID, name string) (*model.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationf("tag name is required")
	}
	if len(name) > model.MaxTagNameLen {
		return nil, validationf("tag name cannot be more than %d characters", model.MaxTagNameLen)
	}

	var existing model.Tag
	query := db.Rebind("SELECT * FROM tags WHERE user_id = ? AND name = ?")
	err := db.GetContext(ctx, &existing, query, userID, name)
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("looking up tag %q: %w", name, err)
	}

	tag := &model.Tag{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      name,
		Color:     colorForName(name),
		CreatedAt: time.Now().UTC(),
	}

	insert := db.Rebind(`INSERT INTO tags (id, user_id, name, color, created_at)
		VALUES (?, ?, ?, ?, ?)`)
	if _, err := db.ExecContext(ctx, insert,
		tag.ID, tag.UserID, tag.Name, tag.Color, tag.CreatedAt); err != nil {
		// Lost a race with a concurrent create: return the winner.
		if isUniqueViolation(err) {
			if err := db.GetContext(ctx, &existing, query, userID, name); err == nil {
				return &existing, nil
			}
		}
		return nil, fmt.Errorf("creating tag %q: %w", name, err)
	}

	return tag, nil
}

// UpdateTag applies a partial update to a tag's name and color.
func (db *DB) UpdateTag(ctx context.Context, userID, id string, name, color *string) (*model.Tag, error) {
	tag, err := db.GetTag(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, validationf("tag name is required")
		}
		if len(trimmed) > model.MaxTagNameLen {
			return nil, validationf("tag name cannot be more than %d characters", model.MaxTagNameLen)
		}
		tag.Name = trimmed
	}
	if color != nil {
		if !hexColorRe.MatchString(*color) {
			return nil, validationf("tag color must be a valid hex color")
		}
		tag.Color = *color
	}

	query := db.Rebind("UPDATE tags SET name = ?, color = ? WHERE id = ? AND user_id = ?")
	if _, err := db.ExecContext(ctx, query, tag.Name, tag.Color, tag.ID, userID); err != nil {
		if isUniqueViolation(err) {
			return nil, validationf("a tag named %q already exists", tag.Name)
		}
		return nil, fmt.Errorf("updating tag %s: %w", id, err)
	}

	return tag, nil
}

// DeleteTag removes a tag. The ON DELETE CASCADE on todo_tags pulls the
// reference from every todo in the same statement, so readers never observe
// a dangling reference.
func (db *DB) DeleteTag(ctx context.Context, userID, id string) error {
	query := db.Rebind("DELETE FROM tags WHERE id = ? AND user_id = ?")
	result, err := db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("deleting tag %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// tagRef pairs a todo id with one of its tags for batch loading.
type tagRef struct {
	TodoID string `db:"todo_id"`
	model.Tag
}

// loadTagsForTodos fetches the tags for a set of todos in one query and
// returns them keyed by todo id.
func (db *DB) loadTagsForTodos(ctx context.Context, q sqlx.QueryerContext, todoIDs []string) (map[string][]model.Tag, error) {
	byTodo := make(map[string][]model.Tag, len(todoIDs))
	if len(todoIDs) == 0 {
		return byTodo, nil
	}

	query, args, err := db.sb.
		Select("tt.todo_id", "t.id", "t.user_id", "t.name", "t.color", "t.created_at").
		From("tags t").
		Join("todo_tags tt ON t.id = tt.tag_id").
		Where(sq.Eq{"tt.todo_id": todoIDs}).
		OrderBy("t.name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building tag join query: %w", err)
	}

	var refs []tagRef
	if err := sqlx.SelectContext(ctx, q, &refs, query, args...); err != nil {
		return nil, fmt.Errorf("querying todo tags: %w", err)
	}

	for _, ref := range refs {
		byTodo[ref.TodoID] = append(byTodo[ref.TodoID], ref.Tag)
	}
	return byTodo, nil
}

// setTodoTags replaces a todo's tag associations inside an existing
// transaction. Every tag id must belong to the user.
func (db *DB) setTodoTags(ctx context.Context, tx *sqlx.Tx, userID, todoID string, tagIDs []string) error {
	if len(tagIDs) > 0 {
		query, args, err := db.sb.
			Select("COUNT(*)").From("tags").
			Where(sq.Eq{"user_id": userID, "id": tagIDs}).
			ToSql()
		if err != nil {
			return fmt.Errorf("building tag ownership query: %w", err)
		}
		var owned int
		if err := tx.GetContext(ctx, &owned, query, args...); err != nil {
			return fmt.Errorf("checking tag ownership: %w", err)
		}
		if owned != len(uniqueStrings(tagIDs)) {
			return validationf("one or more tags do not exist")
		}
	}

	del := tx.Rebind("DELETE FROM todo_tags WHERE todo_id = ?")
	if _, err := tx.ExecContext(ctx, del, todoID); err != nil {
		return fmt.Errorf("clearing todo tags: %w", err)
	}

	ins := tx.Rebind("INSERT INTO todo_tags (todo_id, tag_id) VALUES (?, ?)")
	for _, tagID := range uniqueStrings(tagIDs) {
		if _, err := tx.ExecContext(ctx, ins, todoID, tagID); err != nil {
			return fmt.Errorf("setting tag %s on todo %s: %w", tagID, todoID, err)
		}
	}
	return nil
}

// uniqueStrings de-duplicates while preserving order.
func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
