package client

import (
	"context"
	"sync"
	"time"

	"todonest/internal/model"
)

// Store is the client-side state container. Reads serve the last fetched
// snapshot; every mutation awaits the server and then refetches the whole
// tree, replacing local state. There is no optimistic patching, so a failed
// write leaves the previous snapshot in place.
type Store struct {
	client *Client

	mu    sync.RWMutex
	todos []*model.Todo
	tags  []model.Tag
}

// NewStore creates a store over the given API client.
func NewStore(c *Client) *Store {
	return &Store{client: c}
}

// Todos returns the last fetched root tree.
func (s *Store) Todos() []*model.Todo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.todos
}

// Tags returns the last fetched tag list.
func (s *Store) Tags() []model.Tag {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tags
}

// Refresh replaces the snapshot with the server's current state.
func (s *Store) Refresh(ctx context.Context) error {
	todos, err := s.client.ListTodos(ctx)
	if err != nil {
		return err
	}
	tags, err := s.client.ListTags(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.todos = todos
	s.tags = tags
	s.mu.Unlock()
	return nil
}

// CreateTodo creates a todo and refetches.
func (s *Store) CreateTodo(ctx context.Context, title, description string, parentID *string, tagIDs []string) error {
	if _, err := s.client.CreateTodo(ctx, title, description, parentID, tagIDs); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// UpdateTodo applies a partial update and refetches.
func (s *Store) UpdateTodo(ctx context.Context, id string, title, description *string, tagIDs *[]string) error {
	if _, err := s.client.UpdateTodo(ctx, id, title, description, tagIDs); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// ToggleTodo flips completion and refetches.
func (s *Store) ToggleTodo(ctx context.Context, id string) error {
	if _, err := s.client.ToggleTodo(ctx, id); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// SetPriority sets the priority flag and refetches.
func (s *Store) SetPriority(ctx context.Context, id string, isPriority bool) error {
	if _, err := s.client.SetPriority(ctx, id, isPriority); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// ReorderTodos submits a new root ordering and refetches.
func (s *Store) ReorderTodos(ctx context.Context, ids []string) error {
	if err := s.client.ReorderTodos(ctx, ids); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// DeleteTodo removes a subtree and refetches, returning the removed count.
func (s *Store) DeleteTodo(ctx context.Context, id string) (int, error) {
	count, err := s.client.DeleteTodo(ctx, id)
	if err != nil {
		return 0, err
	}
	return count, s.Refresh(ctx)
}

// DeleteCompleted removes all completed todos and refetches.
func (s *Store) DeleteCompleted(ctx context.Context) (int, error) {
	count, err := s.client.DeleteCompleted(ctx)
	if err != nil {
		return 0, err
	}
	return count, s.Refresh(ctx)
}

// DeleteCompletedOn removes todos completed on the given day and refetches.
func (s *Store) DeleteCompletedOn(ctx context.Context, day time.Time) (int, error) {
	count, err := s.client.DeleteCompletedOn(ctx, day)
	if err != nil {
		return 0, err
	}
	return count, s.Refresh(ctx)
}

// CreateTag creates a tag and refetches.
func (s *Store) CreateTag(ctx context.Context, name string) error {
	if _, err := s.client.CreateTag(ctx, name); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// UpdateTag renames or recolors a tag and refetches.
func (s *Store) UpdateTag(ctx context.Context, id string, name, color *string) error {
	if _, err := s.client.UpdateTag(ctx, id, name, color); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// DeleteTag removes a tag and refetches.
func (s *Store) DeleteTag(ctx context.Context, id string) error {
	if err := s.client.DeleteTag(ctx, id); err != nil {
		return err
	}
	return s.Refresh(ctx)
}
