package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"todonest/internal/model"
)

// ListTodos returns the complete flat set of a user's todos in creation
// order, each with its tags attached. The hierarchy package turns this into
// the nested tree.
func (db *DB) ListTodos(ctx context.Context, userID string) ([]model.Todo, error) {
	query, args, err := db.sb.
		Select("*").From("todos").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building todo query: %w", err)
	}

	todos := []model.Todo{}
	if err := db.SelectContext(ctx, &todos, query, args...); err != nil {
		return nil, fmt.Errorf("querying todos: %w", err)
	}

	if err := db.attachTags(ctx, db, todos); err != nil {
		return nil, err
	}
	return todos, nil
}

// GetTodo retrieves one of the user's todos by id, with tags.
func (db *DB) GetTodo(ctx context.Context, userID, id string) (*model.Todo, error) {
	var todo model.Todo
	query := db.Rebind("SELECT * FROM todos WHERE id = ? AND user_id = ?")
	if err := db.GetContext(ctx, &todo, query, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting todo %s: %w", id, err)
	}

	tags, err := db.loadTagsForTodos(ctx, db, []string{todo.ID})
	if err != nil {
		return nil, err
	}
	todo.Tags = tags[todo.ID]
	if todo.Tags == nil {
		todo.Tags = []model.Tag{}
	}
	return &todo, nil
}

// CreateTodo inserts a new todo. A root todo takes position 0 and every
// other positioned open root is shifted down one; a child todo carries no
// position and lands at the end of its parent's children.
func (db *DB) CreateTodo(ctx context.Context, userID, title, description string, parentID *string, tagIDs []string) (*model.Todo, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if err := validateTodoFields(title, description); err != nil {
		return nil, err
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	todo := &model.Todo{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       title,
		Description: description,
		ParentID:    parentID,
		CreatedAt:   time.Now().UTC(),
	}
	todo.UpdatedAt = todo.CreatedAt

	if parentID == nil {
		// Push down the explicitly ordered open roots and take the front.
		shift := tx.Rebind(`UPDATE todos SET position = position + 1
			WHERE user_id = ? AND parent_id IS NULL AND is_completed = FALSE AND position IS NOT NULL`)
		if _, err := tx.ExecContext(ctx, shift, userID); err != nil {
			return nil, fmt.Errorf("shifting todo positions: %w", err)
		}
		front := 0
		todo.Order = &front
	} else {
		var parent model.Todo
		get := tx.Rebind("SELECT * FROM todos WHERE id = ? AND user_id = ?")
		if err := tx.GetContext(ctx, &parent, get, *parentID, userID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("getting parent todo: %w", err)
		}
	}

	insert := tx.Rebind(`INSERT INTO todos
		(id, user_id, title, description, is_completed, completed_at, is_priority, parent_id, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, FALSE, NULL, FALSE, ?, ?, ?, ?)`)
	if _, err := tx.ExecContext(ctx, insert,
		todo.ID, todo.UserID, todo.Title, todo.Description,
		todo.ParentID, todo.Order, todo.CreatedAt, todo.UpdatedAt); err != nil {
		return nil, fmt.Errorf("creating todo: %w", err)
	}

	if err := db.setTodoTags(ctx, tx, userID, todo.ID, tagIDs); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing todo create: %w", err)
	}

	return db.GetTodo(ctx, userID, todo.ID)
}

// UpdateTodo applies a partial update: only non-nil fields change.
func (db *DB) UpdateTodo(ctx context.Context, userID, id string, title, description *string, tagIDs *[]string) (*model.Todo, error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var todo model.Todo
	get := tx.Rebind("SELECT * FROM todos WHERE id = ? AND user_id = ?")
	if err := tx.GetContext(ctx, &todo, get, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting todo %s: %w", id, err)
	}

	if title != nil {
		todo.Title = strings.TrimSpace(*title)
	}
	if description != nil {
		todo.Description = strings.TrimSpace(*description)
	}
	if err := validateTodoFields(todo.Title, todo.Description); err != nil {
		return nil, err
	}
	todo.UpdatedAt = time.Now().UTC()

	update := tx.Rebind(`UPDATE todos SET title = ?, description = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`)
	if _, err := tx.ExecContext(ctx, update,
		todo.Title, todo.Description, todo.UpdatedAt, id, userID); err != nil {
		return nil, fmt.Errorf("updating todo %s: %w", id, err)
	}

	if tagIDs != nil {
		if err := db.setTodoTags(ctx, tx, userID, id, *tagIDs); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing todo update: %w", err)
	}

	return db.GetTodo(ctx, userID, id)
}

// ToggleTodo flips completion state. CompletedAt is derived here and only
// here: set on the false→true transition, cleared on true→false. The
// position survives the round trip so reopening restores the old slot.
// Children are not touched.
func (db *DB) ToggleTodo(ctx context.Context, userID, id string) (*model.Todo, error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var todo model.Todo
	get := tx.Rebind("SELECT * FROM todos WHERE id = ? AND user_id = ?")
	if err := tx.GetContext(ctx, &todo, get, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting todo %s: %w", id, err)
	}

	now := time.Now().UTC()
	todo.IsCompleted = !todo.IsCompleted
	if todo.IsCompleted {
		todo.CompletedAt = &now
	} else {
		todo.CompletedAt = nil
	}
	todo.UpdatedAt = now

	update := tx.Rebind(`UPDATE todos SET is_completed = ?, completed_at = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`)
	if _, err := tx.ExecContext(ctx, update,
		todo.IsCompleted, todo.CompletedAt, todo.UpdatedAt, id, userID); err != nil {
		return nil, fmt.Errorf("toggling todo %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing toggle: %w", err)
	}

	return db.GetTodo(ctx, userID, id)
}

// SetPriority sets the priority flag. Flagging a root open todo also moves
// it to the front of the explicitly ordered set, the same shift a create
// performs, so the priority section shows it first.
func (db *DB) SetPriority(ctx context.Context, userID, id string, isPriority bool) (*model.Todo, error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var todo model.Todo
	get := tx.Rebind("SELECT * FROM todos WHERE id = ? AND user_id = ?")
	if err := tx.GetContext(ctx, &todo, get, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting todo %s: %w", id, err)
	}

	now := time.Now().UTC()
	moveToFront := isPriority && !todo.IsPriority && todo.ParentID == nil && !todo.IsCompleted

	if moveToFront {
		shift := tx.Rebind(`UPDATE todos SET position = position + 1
			WHERE user_id = ? AND parent_id IS NULL AND is_completed = FALSE AND position IS NOT NULL`)
		if _, err := tx.ExecContext(ctx, shift, userID); err != nil {
			return nil, fmt.Errorf("shifting todo positions: %w", err)
		}
		front := 0
		todo.Order = &front
	}
	todo.IsPriority = isPriority
	todo.UpdatedAt = now

	update := tx.Rebind(`UPDATE todos SET is_priority = ?, position = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`)
	if _, err := tx.ExecContext(ctx, update,
		todo.IsPriority, todo.Order, todo.UpdatedAt, id, userID); err != nil {
		return nil, fmt.Errorf("setting priority on todo %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing priority change: %w", err)
	}

	return db.GetTodo(ctx, userID, id)
}

// ReorderTodos assigns position = index for each id in the given sequence.
// The whole batch fails with ErrNotFound if any id does not resolve to one
// of the caller's todos; nothing is written in that case.
func (db *DB) ReorderTodos(ctx context.Context, userID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	query, args, err := db.sb.
		Select("COUNT(*)").From("todos").
		Where(sq.Eq{"user_id": userID, "id": ids}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building ownership query: %w", err)
	}
	var owned int
	if err := tx.GetContext(ctx, &owned, query, args...); err != nil {
		return fmt.Errorf("checking todo ownership: %w", err)
	}
	if owned != len(uniqueStrings(ids)) {
		return ErrNotFound
	}

	now := time.Now().UTC()
	update := tx.Rebind(`UPDATE todos SET position = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`)
	for index, id := range ids {
		if _, err := tx.ExecContext(ctx, update, index, now, id, userID); err != nil {
			return fmt.Errorf("reordering todo %s: %w", id, err)
		}
	}

	return tx.Commit()
}

// DeleteTodo removes a todo and, transitively, every descendant regardless
// of completion state. Returns the number of records removed.
func (db *DB) DeleteTodo(ctx context.Context, userID, id string) (int, error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	check := tx.Rebind("SELECT COUNT(*) FROM todos WHERE id = ? AND user_id = ?")
	if err := tx.GetContext(ctx, &exists, check, id, userID); err != nil {
		return 0, fmt.Errorf("checking todo %s: %w", id, err)
	}
	if exists == 0 {
		return 0, ErrNotFound
	}

	count, err := db.cascadeDelete(ctx, tx, userID, []string{id})
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing todo delete: %w", err)
	}
	return count, nil
}

// DeleteCompleted removes every completed todo for the user, cascading to
// descendants whether or not those are themselves completed. Returns the
// number of records removed.
func (db *DB) DeleteCompleted(ctx context.Context, userID string) (int, error) {
	return db.deleteCompletedWhere(ctx, userID, sq.Eq{"is_completed": true})
}

// DeleteCompletedBetween removes completed todos whose completion time falls
// in [start, end), cascading to descendants. Returns the number of records
// removed.
func (db *DB) DeleteCompletedBetween(ctx context.Context, userID string, start, end time.Time) (int, error) {
	// Completion times are stored in UTC; normalize the bounds so text
	// comparisons in sqlite stay consistent.
	return db.deleteCompletedWhere(ctx, userID, sq.And{
		sq.Eq{"is_completed": true},
		sq.GtOrEq{"completed_at": start.UTC()},
		sq.Lt{"completed_at": end.UTC()},
	})
}

func (db *DB) deleteCompletedWhere(ctx context.Context, userID string, cond sq.Sqlizer) (int, error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	query, args, err := db.sb.
		Select("id").From("todos").
		Where(sq.Eq{"user_id": userID}).
		Where(cond).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("building completed query: %w", err)
	}

	var ids []string
	if err := tx.SelectContext(ctx, &ids, query, args...); err != nil {
		return 0, fmt.Errorf("querying completed todos: %w", err)
	}
	if len(ids) == 0 {
		if err := tx.Commit(); err != nil {
			return 0, fmt.Errorf("committing empty delete: %w", err)
		}
		return 0, nil
	}

	count, err := db.cascadeDelete(ctx, tx, userID, ids)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing completed delete: %w", err)
	}
	return count, nil
}

// cascadeDelete removes the given todos plus all their descendants inside
// the transaction and returns the total number of records removed.
// Descendants are resolved from the user's full parent map, so one pass
// covers arbitrary depth.
func (db *DB) cascadeDelete(ctx context.Context, tx *sqlx.Tx, userID string, rootIDs []string) (int, error) {
	type link struct {
		ID       string  `db:"id"`
		ParentID *string `db:"parent_id"`
	}

	var links []link
	query := tx.Rebind("SELECT id, parent_id FROM todos WHERE user_id = ?")
	if err := tx.SelectContext(ctx, &links, query, userID); err != nil {
		return 0, fmt.Errorf("loading todo links: %w", err)
	}

	childrenOf := make(map[string][]string, len(links))
	for _, l := range links {
		if l.ParentID != nil {
			childrenOf[*l.ParentID] = append(childrenOf[*l.ParentID], l.ID)
		}
	}

	// Breadth-first expansion of the delete set.
	doomed := make(map[string]bool, len(rootIDs))
	queue := append([]string(nil), rootIDs...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if doomed[id] {
			continue
		}
		doomed[id] = true
		queue = append(queue, childrenOf[id]...)
	}

	ids := make([]string, 0, len(doomed))
	for id := range doomed {
		ids = append(ids, id)
	}

	del, args, err := db.sb.
		Delete("todos").
		Where(sq.Eq{"user_id": userID, "id": ids}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("building delete query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, del, args...); err != nil {
		return 0, fmt.Errorf("deleting todos: %w", err)
	}

	return len(ids), nil
}

// attachTags loads tags for a slice of todos in one query.
func (db *DB) attachTags(ctx context.Context, q sqlx.QueryerContext, todos []model.Todo) error {
	ids := make([]string, len(todos))
	for i := range todos {
		ids[i] = todos[i].ID
	}

	byTodo, err := db.loadTagsForTodos(ctx, q, ids)
	if err != nil {
		return err
	}
	for i := range todos {
		todos[i].Tags = byTodo[todos[i].ID]
		if todos[i].Tags == nil {
			todos[i].Tags = []model.Tag{}
		}
	}
	return nil
}

// validateTodoFields enforces the title and description limits.
func validateTodoFields(title, description string) error {
	if title == "" {
		return validationf("title is required")
	}
	if len(title) > model.MaxTitleLen {
		return validationf("title cannot be more than %d characters", model.MaxTitleLen)
	}
	if len(description) > model.MaxDescriptionLen {
		return validationf("description cannot be more than %d characters", model.MaxDescriptionLen)
	}
	return nil
}
