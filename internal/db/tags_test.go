package db

import (
	"context"
	"errors"
	"testing"
)

func TestGetOrCreateTagIdempotent(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()
	userID := newTestUser(t, database, "tags@example.com")

	first, err := database.GetOrCreateTag(ctx, userID, "work")
	if err != nil {
		t.Fatalf("GetOrCreateTag: %v", err)
	}
	second, err := database.GetOrCreateTag(ctx, userID, "work")
	if err != nil {
		t.Fatalf("second GetOrCreateTag: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("repeated create made a new tag: %s vs %s", first.ID, second.ID)
	}

	tags, err := database.ListTags(ctx, userID)
	if err != nil {
		t.Fatalf("ListTags: %v", err)
	}
	if len(tags) != 1 {
		t.Errorf("got %d tags, want 1", len(tags))
	}
}

func TestTagColorDeterministic(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()
	aliceID := newTestUser(t, database, "alice-color@example.com")
	bobID := newTestUser(t, database, "bob-color@example.com")

	hers, err := database.GetOrCreateTag(ctx, aliceID, "urgent")
	if err != nil {
		t.Fatalf("GetOrCreateTag: %v", err)
	}
	his, err := database.GetOrCreateTag(ctx, bobID, "urgent")
	if err != nil {
		t.Fatalf("GetOrCreateTag: %v", err)
	}
	if hers.Color != his.Color {
		t.Errorf("same name produced different colors: %s vs %s", hers.Color, his.Color)
	}

	found := false
	for _, c := range tagPalette {
		if hers.Color == c {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("color %s not drawn from the palette", hers.Color)
	}
}

func TestTagNameScopedToUser(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()
	aliceID := newTestUser(t, database, "alice-scope@example.com")
	bobID := newTestUser(t, database, "bob-scope@example.com")

	hers, err := database.GetOrCreateTag(ctx, aliceID, "home")
	if err != nil {
		t.Fatalf("GetOrCreateTag: %v", err)
	}
	his, err := database.GetOrCreateTag(ctx, bobID, "home")
	if err != nil {
		t.Fatalf("GetOrCreateTag: %v", err)
	}
	if hers.ID == his.ID {
		t.Error("two users share one tag record")
	}
}

func TestUpdateTag(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()
	userID := newTestUser(t, database, "rename@example.com")

	tag, err := database.GetOrCreateTag(ctx, userID, "work")
	if err != nil {
		t.Fatalf("GetOrCreateTag: %v", err)
	}

	name := "office"
	color := "#AABBCC"
	updated, err := database.UpdateTag(ctx, userID, tag.ID, &name, &color)
	if err != nil {
		t.Fatalf("UpdateTag: %v", err)
	}
	if updated.Name != "office" || updated.Color != "#AABBCC" {
		t.Errorf("got %q/%q after update", updated.Name, updated.Color)
	}

	bad := "purple"
	if _, err := database.UpdateTag(ctx, userID, tag.ID, nil, &bad); !IsValidation(err) {
		t.Errorf("non-hex color: got %v, want validation error", err)
	}
}

func TestUpdateTagNameCollision(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()
	userID := newTestUser(t, database, "collide@example.com")

	if _, err := database.GetOrCreateTag(ctx, userID, "work"); err != nil {
		t.Fatalf("GetOrCreateTag: %v", err)
	}
	other, err := database.GetOrCreateTag(ctx, userID, "home")
	if err != nil {
		t.Fatalf("GetOrCreateTag: %v", err)
	}

	taken := "work"
	if _, err := database.UpdateTag(ctx, userID, other.ID, &taken, nil); !IsValidation(err) {
		t.Errorf("renaming onto existing name: got %v, want validation error", err)
	}
}

func TestDeleteTagDetachesFromTodos(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()
	userID := newTestUser(t, database, "detach@example.com")

	tag, err := database.GetOrCreateTag(ctx, userID, "work")
	if err != nil {
		t.Fatalf("GetOrCreateTag: %v", err)
	}
	todo, err := database.CreateTodo(ctx, userID, "task", "", nil, []string{tag.ID})
	if err != nil {
		t.Fatalf("CreateTodo: %v", err)
	}
	if len(todo.Tags) != 1 {
		t.Fatalf("todo created with %d tags, want 1", len(todo.Tags))
	}

	if err := database.DeleteTag(ctx, userID, tag.ID); err != nil {
		t.Fatalf("DeleteTag: %v", err)
	}

	got, err := database.GetTodo(ctx, userID, todo.ID)
	if err != nil {
		t.Fatalf("GetTodo: %v", err)
	}
	if len(got.Tags) != 0 {
		t.Errorf("todo still carries the deleted tag: %v", got.Tags)
	}
}

func TestDeleteTagNotFound(t *testing.T) {
	database := newTestDB(t)
	userID := newTestUser(t, database, "delete-tag@example.com")

	if err := database.DeleteTag(context.Background(), userID, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}
