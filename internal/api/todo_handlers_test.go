package api

import (
	"context"
	"net/http"
	"testing"

	"todonest/internal/model"
)

func (ts *TestServer) createTodo(t *testing.T, userID string, req CreateTodoRequest) *model.Todo {
	t.Helper()

	rec, httpReq := ts.MakeAuthRequest(t, http.MethodPost, "/api/todos", req, userID, nil)
	ts.HandleCreateTodo(rec, httpReq)
	AssertStatusCode(t, rec.Code, http.StatusCreated)

	var resp TodoResponse
	DecodeJSON(t, rec, &resp)
	return resp.Todo
}

func (ts *TestServer) listTodos(t *testing.T, userID string) []*model.Todo {
	t.Helper()

	rec, req := ts.MakeAuthRequest(t, http.MethodGet, "/api/todos", nil, userID, nil)
	ts.HandleListTodos(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusOK)

	var resp TodoListResponse
	DecodeJSON(t, rec, &resp)
	return resp.Todos
}

func TestHandleCreateAndListTodos(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	userID := ts.CreateTestUser(t, "todos@example.com", "password1")

	parent := ts.createTodo(t, userID, CreateTodoRequest{Title: "parent"})
	child := ts.createTodo(t, userID, CreateTodoRequest{Title: "child", ParentID: &parent.ID})
	newest := ts.createTodo(t, userID, CreateTodoRequest{Title: "newest"})

	todos := ts.listTodos(t, userID)
	if len(todos) != 2 {
		t.Fatalf("got %d roots, want 2", len(todos))
	}

	// Newest root created takes position 0 and lists first.
	if todos[0].ID != newest.ID {
		t.Errorf("first root = %q, want %q", todos[0].Title, "newest")
	}
	if len(todos[1].Children) != 1 || todos[1].Children[0].ID != child.ID {
		t.Errorf("parent children = %+v, want the child nested", todos[1].Children)
	}
}

func TestHandleCreateTodoValidation(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	userID := ts.CreateTestUser(t, "invalid@example.com", "password1")

	rec, req := ts.MakeAuthRequest(t, http.MethodPost, "/api/todos", CreateTodoRequest{Title: "  "}, userID, nil)
	ts.HandleCreateTodo(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusBadRequest)
}

func TestHandleCreateTodoUnderForeignParent(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	aliceID := ts.CreateTestUser(t, "alice@example.com", "password1")
	bobID := ts.CreateTestUser(t, "bob@example.com", "password1")

	theirs := ts.createTodo(t, aliceID, CreateTodoRequest{Title: "theirs"})

	rec, req := ts.MakeAuthRequest(t, http.MethodPost, "/api/todos",
		CreateTodoRequest{Title: "sneaky", ParentID: &theirs.ID}, bobID, nil)
	ts.HandleCreateTodo(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusNotFound)
}

func TestHandleUpdateTodo(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	userID := ts.CreateTestUser(t, "update@example.com", "password1")
	todo := ts.createTodo(t, userID, CreateTodoRequest{Title: "before"})

	title := "after"
	rec, req := ts.MakeAuthRequest(t, http.MethodPut, "/api/todos/"+todo.ID,
		UpdateTodoRequest{Title: &title}, userID, map[string]string{"id": todo.ID})
	ts.HandleUpdateTodo(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusOK)

	var resp TodoResponse
	DecodeJSON(t, rec, &resp)
	if resp.Todo.Title != "after" {
		t.Errorf("title = %q, want %q", resp.Todo.Title, "after")
	}
}

func TestHandleToggleTodo(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	userID := ts.CreateTestUser(t, "toggle@example.com", "password1")
	todo := ts.createTodo(t, userID, CreateTodoRequest{Title: "task"})

	rec, req := ts.MakeAuthRequest(t, http.MethodPatch, "/api/todos/"+todo.ID+"/toggle",
		nil, userID, map[string]string{"id": todo.ID})
	ts.HandleToggleTodo(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusOK)

	var resp TodoResponse
	DecodeJSON(t, rec, &resp)
	if !resp.Todo.IsCompleted {
		t.Error("todo not completed")
	}
	if resp.Todo.CompletedAt == nil {
		t.Error("completed todo has no completion time")
	}
}

func TestHandleToggleTodoNotFound(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	userID := ts.CreateTestUser(t, "missing@example.com", "password1")

	rec, req := ts.MakeAuthRequest(t, http.MethodPatch, "/api/todos/nope/toggle",
		nil, userID, map[string]string{"id": "nope"})
	ts.HandleToggleTodo(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusNotFound)
}

func TestHandleReorderTodos(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	userID := ts.CreateTestUser(t, "reorder@example.com", "password1")

	a := ts.createTodo(t, userID, CreateTodoRequest{Title: "a"})
	b := ts.createTodo(t, userID, CreateTodoRequest{Title: "b"})
	c := ts.createTodo(t, userID, CreateTodoRequest{Title: "c"})

	rec, req := ts.MakeAuthRequest(t, http.MethodPatch, "/api/todos/reorder",
		ReorderRequest{TodoIDs: []string{b.ID, c.ID, a.ID}}, userID, nil)
	ts.HandleReorderTodos(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusOK)

	todos := ts.listTodos(t, userID)
	gotOrder := []string{todos[0].ID, todos[1].ID, todos[2].ID}
	wantOrder := []string{b.ID, c.ID, a.ID}
	for i := range wantOrder {
		if gotOrder[i] != wantOrder[i] {
			t.Errorf("root %d = %s, want %s", i, gotOrder[i], wantOrder[i])
		}
	}
}

func TestHandleReorderRejectsForeignTodo(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	aliceID := ts.CreateTestUser(t, "alice-r@example.com", "password1")
	bobID := ts.CreateTestUser(t, "bob-r@example.com", "password1")

	mine := ts.createTodo(t, aliceID, CreateTodoRequest{Title: "mine"})
	theirs := ts.createTodo(t, bobID, CreateTodoRequest{Title: "theirs"})

	rec, req := ts.MakeAuthRequest(t, http.MethodPatch, "/api/todos/reorder",
		ReorderRequest{TodoIDs: []string{mine.ID, theirs.ID}}, aliceID, nil)
	ts.HandleReorderTodos(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusNotFound)
}

func TestHandleDeleteTodoReportsCount(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	userID := ts.CreateTestUser(t, "delete@example.com", "password1")

	root := ts.createTodo(t, userID, CreateTodoRequest{Title: "root"})
	child := ts.createTodo(t, userID, CreateTodoRequest{Title: "child", ParentID: &root.ID})
	ts.createTodo(t, userID, CreateTodoRequest{Title: "grandchild", ParentID: &child.ID})

	rec, req := ts.MakeAuthRequest(t, http.MethodDelete, "/api/todos/"+root.ID,
		nil, userID, map[string]string{"id": root.ID})
	ts.HandleDeleteTodo(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusOK)

	var resp DeleteResponse
	DecodeJSON(t, rec, &resp)
	if resp.DeletedCount != 3 {
		t.Errorf("deletedCount = %d, want 3", resp.DeletedCount)
	}
}

func TestHandleDeleteCompleted(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	userID := ts.CreateTestUser(t, "sweep@example.com", "password1")

	done := ts.createTodo(t, userID, CreateTodoRequest{Title: "done"})
	ts.createTodo(t, userID, CreateTodoRequest{Title: "open"})
	if _, err := ts.DB.ToggleTodo(context.Background(), userID, done.ID); err != nil {
		t.Fatalf("ToggleTodo: %v", err)
	}

	rec, req := ts.MakeAuthRequest(t, http.MethodDelete, "/api/todos/completed", nil, userID, nil)
	ts.HandleDeleteCompleted(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusOK)

	var resp DeleteResponse
	DecodeJSON(t, rec, &resp)
	if resp.DeletedCount != 1 {
		t.Errorf("deletedCount = %d, want 1", resp.DeletedCount)
	}

	if todos := ts.listTodos(t, userID); len(todos) != 1 {
		t.Errorf("got %d roots after sweep, want 1", len(todos))
	}
}

func TestHandleDeleteCompletedByDate(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	userID := ts.CreateTestUser(t, "by-date@example.com", "password1")

	rec, req := ts.MakeAuthRequest(t, http.MethodDelete, "/api/todos/completed/not-a-date",
		nil, userID, map[string]string{"date": "not-a-date"})
	ts.HandleDeleteCompletedByDate(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusBadRequest)

	rec, req = ts.MakeAuthRequest(t, http.MethodDelete, "/api/todos/completed/2026-01-01",
		nil, userID, map[string]string{"date": "2026-01-01"})
	ts.HandleDeleteCompletedByDate(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusOK)

	var resp DeleteResponse
	DecodeJSON(t, rec, &resp)
	if resp.DeletedCount != 0 {
		t.Errorf("deletedCount = %d, want 0", resp.DeletedCount)
	}
}
