package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"todonest/internal/hierarchy"
	"todonest/internal/model"
)

// TodoResponse wraps a single todo
type TodoResponse struct {
	Success bool        `json:"success"`
	Todo    *model.Todo `json:"todo"`
}

// TodoListResponse wraps the assembled todo tree
type TodoListResponse struct {
	Success bool          `json:"success"`
	Todos   []*model.Todo `json:"todos"`
}

// DeleteResponse reports how many todos a delete removed
type DeleteResponse struct {
	Success      bool `json:"success"`
	DeletedCount int  `json:"deletedCount"`
}

// CreateTodoRequest represents the create payload
type CreateTodoRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	ParentID    *string  `json:"parentId"`
	Tags        []string `json:"tags"`
}

// UpdateTodoRequest represents the partial update payload
type UpdateTodoRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Tags        *[]string `json:"tags"`
}

// PriorityRequest represents the priority flag payload
type PriorityRequest struct {
	IsPriority bool `json:"isPriority"`
}

// ReorderRequest carries the new root ordering, first id on top
type ReorderRequest struct {
	TodoIDs []string `json:"todoIds"`
}

// HandleListTodos returns the user's todos as an ordered tree of roots
func (s *Server) HandleListTodos(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "user not authenticated")
		return
	}

	flat, err := s.db.ListTodos(r.Context(), userID)
	if err != nil {
		s.respondStoreError(w, r, err, "list todos")
		return
	}

	roots, err := hierarchy.Assemble(flat)
	if err != nil {
		s.logger.Error("failed to assemble todo tree",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	hierarchy.SortRoots(roots)

	respondJSON(w, http.StatusOK, TodoListResponse{Success: true, Todos: roots})
}

// HandleCreateTodo creates a root or child todo
func (s *Server) HandleCreateTodo(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "user not authenticated")
		return
	}

	var req CreateTodoRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	todo, err := s.db.CreateTodo(r.Context(), userID, req.Title, req.Description, req.ParentID, req.Tags)
	if err != nil {
		s.respondStoreError(w, r, err, "create todo")
		return
	}

	respondJSON(w, http.StatusCreated, TodoResponse{Success: true, Todo: todo})
}

// HandleUpdateTodo applies a partial update to a todo
func (s *Server) HandleUpdateTodo(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "user not authenticated")
		return
	}

	var req UpdateTodoRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	todo, err := s.db.UpdateTodo(r.Context(), userID, chi.URLParam(r, "id"), req.Title, req.Description, req.Tags)
	if err != nil {
		s.respondStoreError(w, r, err, "update todo")
		return
	}

	respondJSON(w, http.StatusOK, TodoResponse{Success: true, Todo: todo})
}

// HandleToggleTodo flips a todo's completion state
func (s *Server) HandleToggleTodo(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "user not authenticated")
		return
	}

	todo, err := s.db.ToggleTodo(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		s.respondStoreError(w, r, err, "toggle todo")
		return
	}

	respondJSON(w, http.StatusOK, TodoResponse{Success: true, Todo: todo})
}

// HandleSetPriority sets or clears a todo's priority flag
func (s *Server) HandleSetPriority(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "user not authenticated")
		return
	}

	var req PriorityRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	todo, err := s.db.SetPriority(r.Context(), userID, chi.URLParam(r, "id"), req.IsPriority)
	if err != nil {
		s.respondStoreError(w, r, err, "set priority")
		return
	}

	respondJSON(w, http.StatusOK, TodoResponse{Success: true, Todo: todo})
}

// HandleReorderTodos rewrites root positions from the submitted id order
func (s *Server) HandleReorderTodos(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "user not authenticated")
		return
	}

	var req ReorderRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.db.ReorderTodos(r.Context(), userID, req.TodoIDs); err != nil {
		s.respondStoreError(w, r, err, "reorder todos")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// HandleDeleteTodo removes a todo and its whole subtree
func (s *Server) HandleDeleteTodo(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "user not authenticated")
		return
	}

	count, err := s.db.DeleteTodo(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		s.respondStoreError(w, r, err, "delete todo")
		return
	}

	respondJSON(w, http.StatusOK, DeleteResponse{Success: true, DeletedCount: count})
}

// HandleDeleteCompleted removes all completed todos and their subtrees
func (s *Server) HandleDeleteCompleted(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "user not authenticated")
		return
	}

	count, err := s.db.DeleteCompleted(r.Context(), userID)
	if err != nil {
		s.respondStoreError(w, r, err, "delete completed todos")
		return
	}

	respondJSON(w, http.StatusOK, DeleteResponse{Success: true, DeletedCount: count})
}

// HandleDeleteCompletedByDate removes todos completed on the given local day.
// The date parameter is a plain YYYY-MM-DD.
func (s *Server) HandleDeleteCompletedByDate(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "user not authenticated")
		return
	}

	day, err := time.ParseInLocation("2006-01-02", chi.URLParam(r, "date"), time.Local)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	count, err := s.db.DeleteCompletedBetween(r.Context(), userID, day, day.AddDate(0, 0, 1))
	if err != nil {
		s.respondStoreError(w, r, err, "delete completed todos by date")
		return
	}

	respondJSON(w, http.StatusOK, DeleteResponse{Success: true, DeletedCount: count})
}
